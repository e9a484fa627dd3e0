package formatter

import (
	"html/template"
	"strings"

	"github.com/interlux/shopchat/pkg/logger"
)

// A card shows the primary image and up to three thumbnails.
const cardImages = 4

var cardTmpl = template.Must(template.New("card").Parse(`<div class="product-card">
{{- if gt .Discount 0}}
<div class="discount-badge">-{{.Discount}}%</div>
{{- end}}
{{- with .Primary}}
<a href="{{.}}" target="_blank" rel="noopener noreferrer"><img src="{{.}}" alt="{{$.Title}}" class="product-image"></a>
{{- end}}
{{- if .Thumbs}}
<div class="product-thumbnails">
{{- range .Thumbs}}
<a href="{{.}}" target="_blank" rel="noopener noreferrer"><img src="{{.}}" alt="{{$.Title}}" class="product-thumbnail" loading="lazy"></a>
{{- end}}
{{- if gt $.More 0}}
<span class="more-images">+{{$.More}} more</span>
{{- end}}
</div>
{{- end}}
<h4>{{.Title}}</h4>
<p>{{.Description}}</p>
<p class="product-price">{{.Price}}</p>
<p>Category ID: {{.CategoryID}}</p>
{{- if .Attributes}}
<div class="product-attributes">
{{- range .Attributes}}
<span>{{.Key}}: {{.Value}}</span>
{{- end}}
</div>
{{- end}}
</div>
`))

var galleryTmpl = template.Must(template.New("gallery").Parse(`<div class="image-gallery">
{{- range .}}
<div class="gallery-item">
<a href="{{.URL}}" target="_blank" rel="noopener noreferrer"><img src="{{.URL}}" alt="{{.Title}}" loading="lazy"></a>
<div class="gallery-caption">{{.Title}}</div>
</div>
{{- end}}
</div>
`))

type cardView struct {
	Product
	Primary string
	Thumbs  []string
	More    int
}

func newCardView(p Product) cardView {
	v := cardView{Product: p}
	if len(p.Images) == 0 {
		return v
	}
	v.Primary = p.Images[0]
	v.Thumbs = p.Images[1:min(len(p.Images), cardImages)]
	if len(p.Images) > cardImages {
		v.More = len(p.Images) - cardImages
	}
	return v
}

// Format parses and renders a reply in one step.
func Format(raw string) string {
	return Render(Parse(raw))
}

// Render produces the HTML fragment for c. The ProductList preamble and
// any raw HTML inside Markdown come from the backend and are emitted as-is.
func Render(c Content) string {
	switch c := c.(type) {
	case PlainText:
		return RenderMarkdown(c.Text)
	case ProductList:
		var b strings.Builder
		b.WriteString(c.Preamble)
		for _, p := range c.Products {
			b.WriteString(RenderProductCard(p))
		}
		return b.String()
	case Gallery:
		var b strings.Builder
		b.WriteString(RenderMarkdown(c.Text))
		b.WriteString(RenderGallery(c.Items))
		return b.String()
	}
	return ""
}

func RenderProductCard(p Product) string {
	var b strings.Builder
	if err := cardTmpl.Execute(&b, newCardView(p)); err != nil {
		logger.ErrorCF("formatter", "Product card template failed", map[string]interface{}{
			"title": p.Title,
			"error": err.Error(),
		})
		return "<div class=\"product-card\"><h4>" + template.HTMLEscapeString(p.Title) + "</h4></div>\n"
	}
	return b.String()
}

func RenderGallery(items []GalleryItem) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	if err := galleryTmpl.Execute(&b, items); err != nil {
		logger.ErrorCF("formatter", "Gallery template failed", map[string]interface{}{
			"items": len(items),
			"error": err.Error(),
		})
		return ""
	}
	return b.String()
}
