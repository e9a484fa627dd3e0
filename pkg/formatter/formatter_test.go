package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PlainMarkdown(t *testing.T) {
	raw := "Here is **our** store: [shop](https://shop.example.com)\n\n![logo](/static/logo.png)"

	c := Parse(raw)
	assert.Equal(t, PlainText{Text: raw}, c)

	out := Format(raw)
	assert.Equal(t, RenderMarkdown(raw), out)
	assert.Contains(t, out, "<strong>our</strong>")
	assert.Contains(t, out, `href="https://shop.example.com"`)
	assert.Equal(t, 2, strings.Count(out, `target="_blank"`), "link and image wrapper both open externally")
	assert.Contains(t, out, `<a href="/static/logo.png" target="_blank" rel="noopener noreferrer" class="image-link"><img`)
	assert.Contains(t, out, `src="/static/logo.png"`)
}

func TestRenderMarkdown_RelativeLinksAreExternalToo(t *testing.T) {
	out := RenderMarkdown("see [orders](/orders/1)")
	assert.Contains(t, out, `href="/orders/1"`)
	assert.Contains(t, out, `target="_blank"`)
	assert.Contains(t, out, `rel="noopener noreferrer"`)
}

func TestRenderMarkdown_ImageInsideLinkNotDoubleWrapped(t *testing.T) {
	out := RenderMarkdown("[![thumb](/t.jpg)](https://full.example.com/x.jpg)")
	assert.Equal(t, 1, strings.Count(out, "<a "))
	assert.NotContains(t, out, "image-link")
	assert.Contains(t, out, `src="/t.jpg"`)
}

func TestRenderMarkdown_Empty(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown(""))
}

func TestRenderMarkdown_RawHTMLAnchors(t *testing.T) {
	out := Format(`See <a href="https://shop.example.com/p/1">this item</a> now`)
	assert.Contains(t, out, `<a href="https://shop.example.com/p/1" target="_blank" rel="noopener noreferrer">this item</a>`)

	block := RenderMarkdown("<div>\n<a href='/x' target=\"_self\" rel=opener>x</a>\n</div>\n")
	assert.Contains(t, block, `<a href='/x' target="_blank" rel="noopener noreferrer">x</a>`)
	assert.NotContains(t, block, "_self")
	assert.NotContains(t, block, "rel=opener")

	abbr := RenderMarkdown(`an <abbr title="stock keeping unit">SKU</abbr>`)
	assert.NotContains(t, abbr, "target=")
}

func TestParse_ProductList(t *testing.T) {
	raw := "Intro text\nProducts:\n- Title: A\nDescription: d\nPrice: $5 (Discount: 10%)\nCategory ID: 3"

	c := Parse(raw)
	list, ok := c.(ProductList)
	require.True(t, ok, "expected ProductList, got %T", c)
	assert.Equal(t, "Intro text\n", list.Preamble)
	require.Len(t, list.Products, 1)

	p := list.Products[0]
	assert.Equal(t, "A", p.Title)
	assert.Equal(t, "d", p.Description)
	assert.Equal(t, "$5", p.Price)
	assert.Equal(t, 10, p.Discount)
	assert.Equal(t, "3", p.CategoryID)
	assert.Empty(t, p.Images)

	out := Render(c)
	assert.True(t, strings.HasPrefix(out, "Intro text\n"), "preamble passes through verbatim")
	assert.Equal(t, 1, strings.Count(out, `class="product-card"`))
	assert.Contains(t, out, "<h4>A</h4>")
	assert.Contains(t, out, `<p class="product-price">$5</p>`)
	assert.Contains(t, out, `<div class="discount-badge">-10%</div>`)
	assert.Contains(t, out, "<p>Category ID: 3</p>")
	assert.NotContains(t, out, "product-image")
}

func TestParse_MultipleProducts(t *testing.T) {
	raw := `We found these:
Products:
- Title: Linen Shirt
  Description: Breathable
  Price: 350,000 VND
- Title: Wool Coat
  Price: 1,200,000 VND (Discount: abc%)
  Images: 2 images available`

	list, ok := Parse(raw).(ProductList)
	require.True(t, ok)
	require.Len(t, list.Products, 2)

	assert.Equal(t, "Linen Shirt", list.Products[0].Title)
	assert.Equal(t, "Breathable", list.Products[0].Description)
	assert.Equal(t, "350,000 VND", list.Products[0].Price)

	coat := list.Products[1]
	assert.Equal(t, "Wool Coat", coat.Title)
	assert.Equal(t, "1,200,000 VND", coat.Price)
	assert.Equal(t, 0, coat.Discount, "non-numeric discount parses as 0")
	assert.Equal(t, "", coat.Description, "missing label defaults to empty")
	assert.Equal(t, []string{"/images/placeholder_1.jpg", "/images/placeholder_2.jpg"}, coat.Images)

	out := Render(list)
	assert.NotContains(t, out, "discount-badge")
	assert.Contains(t, out, `src="/images/placeholder_1.jpg"`)
}

func TestParse_ProductsMarkerWithoutTitlesDegrades(t *testing.T) {
	raw := "Products: none match your search."
	assert.Equal(t, PlainText{Text: raw}, Parse(raw))
}

func TestParseAttributes(t *testing.T) {
	p := parseProduct("- Title: X\nAttributes: color: red, size: M")
	assert.Equal(t, map[string]string{"color": "red", "size": "M"}, p.AttributeMap())
	assert.Equal(t, []Attribute{{"color", "red"}, {"size", "M"}}, p.Attributes)
}

func TestParseAttributes_EdgeCases(t *testing.T) {
	p := parseProduct("- Title: X\nAttributes: handmade, color: red, , color: blue, url: https://x.io")
	assert.Equal(t, []Attribute{
		{"handmade", ""},
		{"color", "blue"},
		{"url", "https://x.io"},
	}, p.Attributes)
}

func TestParseImages(t *testing.T) {
	tests := []struct {
		name    string
		segment string
		want    []string
	}{
		{
			name:    "count",
			segment: "- Title: X\nImages: 3 images available",
			want:    []string{"/images/placeholder_1.jpg", "/images/placeholder_2.jpg", "/images/placeholder_3.jpg"},
		},
		{
			name:    "non-numeric count",
			segment: "- Title: X\nImages: several images available",
			want:    nil,
		},
		{
			name:    "inline list",
			segment: "- Title: X\nImages: https://cdn.example.com/a.jpg, /img/b.jpg",
			want:    []string{"https://cdn.example.com/a.jpg", "/img/b.jpg"},
		},
		{
			name:    "bullets",
			segment: "- Title: X\nImages:\n  * Image 1: /img/a.jpg\n  * Image 2: https://cdn.example.com/b.jpg\n  - /img/c.jpg\nCategory ID: 9",
			want:    []string{"/img/a.jpg", "https://cdn.example.com/b.jpg", "/img/c.jpg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := parseProduct(tt.segment)
			assert.Equal(t, tt.want, p.Images)
		})
	}

	p := parseProduct("- Title: X\nImages:\n  * Image 1: /img/a.jpg\nCategory ID: 9")
	assert.Equal(t, "9", p.CategoryID, "label after image bullets is still parsed")
}

func TestProductCard_Images(t *testing.T) {
	p := Product{
		Title:  "Lamp",
		Images: []string{"/1.jpg", "/2.jpg", "/3.jpg", "/4.jpg", "/5.jpg", "/6.jpg"},
	}
	out := RenderProductCard(p)

	assert.Equal(t, 1, strings.Count(out, `class="product-image"`))
	assert.Equal(t, 3, strings.Count(out, `class="product-thumbnail"`))
	assert.Contains(t, out, "+2 more")
	assert.NotContains(t, out, "/5.jpg")

	exact := RenderProductCard(Product{Title: "Lamp", Images: p.Images[:4]})
	assert.NotContains(t, exact, "more")
	assert.Equal(t, 3, strings.Count(exact, `class="product-thumbnail"`))
}

func TestProductCard_EscapesFields(t *testing.T) {
	out := RenderProductCard(Product{
		Title:      `<script>alert(1)</script>`,
		Attributes: []Attribute{{"<b>", "x&y"}},
		Images:     []string{"javascript:alert(1)"},
	})
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "&lt;b&gt;: x&amp;y")
	assert.NotContains(t, out, "javascript:")
}

func TestParse_Gallery(t *testing.T) {
	raw := "Here are the photos:\n\n```image-gallery\n[Front view](https://cdn.example.com/front.jpg)\n[Back view](/img/back.jpg)\n```\n"

	c := Parse(raw)
	g, ok := c.(Gallery)
	require.True(t, ok, "expected Gallery, got %T", c)
	assert.Equal(t, "Here are the photos:", g.Text)
	assert.Equal(t, []GalleryItem{
		{Title: "Front view", URL: "https://cdn.example.com/front.jpg"},
		{Title: "Back view", URL: "/img/back.jpg"},
	}, g.Items)

	out := Render(c)
	assert.Contains(t, out, "<p>Here are the photos:</p>")
	assert.Equal(t, 2, strings.Count(out, `class="gallery-item"`))
	assert.Less(t, strings.Index(out, "front.jpg"), strings.Index(out, "back.jpg"))
	assert.Contains(t, out, `<div class="gallery-caption">Back view</div>`)
	assert.NotContains(t, out, "image-gallery\n[", "fenced block is removed from the text")
}

func TestParse_GalleryLinksWithTitles(t *testing.T) {
	raw := "```image-gallery\n[Front](https://x/a.jpg \"Front view\")\n![Side]( /img/s.jpg 'side' )\n[Back](https://x/b.jpg)\n```"

	g, ok := Parse(raw).(Gallery)
	require.True(t, ok)
	assert.Equal(t, []GalleryItem{
		{Title: "Front", URL: "https://x/a.jpg"},
		{Title: "Side", URL: "/img/s.jpg"},
		{Title: "Back", URL: "https://x/b.jpg"},
	}, g.Items)
	assert.Equal(t, 3, strings.Count(Render(g), `class="gallery-item"`))
}

func TestParse_GalleryWithoutLinksDegrades(t *testing.T) {
	raw := "text\n```image-gallery\nnothing here\n```"
	assert.Equal(t, PlainText{Text: raw}, Parse(raw))
}

func TestParse_ProductsWinOverGallery(t *testing.T) {
	raw := "Products:\n- Title: A\n```image-gallery\n[a](/a.jpg)\n```"
	_, ok := Parse(raw).(ProductList)
	assert.True(t, ok)
}

func TestParseLeadingInt(t *testing.T) {
	tests := map[string]int{
		"10":    10,
		" 10% ": 10,
		"-3":    -3,
		"abc":   0,
		"":      0,
		"7 img": 7,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLeadingInt(in), "input %q", in)
	}
}

func TestRenderText(t *testing.T) {
	raw := "Intro\nProducts:\n- Title: A\nDescription: d\nPrice: $5 (Discount: 10%)\nCategory ID: 3\nAttributes: color: red"
	out := FormatText(raw)

	assert.Equal(t, "Intro\n\n[1] A  (-10%)\n    d\n    Price: $5\n    Category ID: 3\n    color: red", out)

	g := RenderText(Gallery{Text: "Photos", Items: []GalleryItem{{"Front", "/f.jpg"}, {"", "/b.jpg"}}})
	assert.Equal(t, "Photos\n\nImages:\n  1. Front  /f.jpg\n  2. image  /b.jpg", g)

	assert.Equal(t, "**bold**", RenderText(PlainText{Text: "  **bold**\n"}))
}
