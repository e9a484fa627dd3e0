package formatter

import (
	"regexp"
	"strings"

	"github.com/interlux/shopchat/pkg/logger"
)

const (
	productsMarker = "Products:"
	titleMarker    = "- Title:"
)

var (
	galleryBlockRe = regexp.MustCompile("(?s)```image-gallery[ \\t]*\\r?\\n(.*?)```")
	galleryLinkRe  = regexp.MustCompile(`!?\[([^\]]*)\]\(\s*([^)\s]+)(?:\s+(?:"[^"]*"|'[^']*'))?\s*\)`)
)

// Parse classifies a reply. A "Products:" section wins over an image-gallery
// block; anything else is plain Markdown. Parse never fails: input it cannot
// make sense of comes back as PlainText.
func Parse(raw string) Content {
	if c, ok := parseProductList(raw); ok {
		return c
	}
	if c, ok := parseGallery(raw); ok {
		return c
	}
	return PlainText{Text: raw}
}

func parseProductList(raw string) (Content, bool) {
	preamble, rest, found := strings.Cut(raw, productsMarker)
	if !found {
		return nil, false
	}

	segments := strings.Split(rest, titleMarker)
	if len(segments) < 2 {
		logger.DebugCF("formatter", "Products marker without any product titles", map[string]interface{}{
			"length": len(raw),
		})
		return nil, false
	}

	list := ProductList{Preamble: preamble}
	for _, seg := range segments[1:] {
		list.Products = append(list.Products, parseProduct(titleMarker+seg))
	}
	return list, true
}

func parseGallery(raw string) (Content, bool) {
	blocks := galleryBlockRe.FindAllStringSubmatchIndex(raw, -1)
	if len(blocks) == 0 {
		return nil, false
	}

	var items []GalleryItem
	var text strings.Builder
	last := 0
	for _, b := range blocks {
		text.WriteString(raw[last:b[0]])
		last = b[1]

		for _, m := range galleryLinkRe.FindAllStringSubmatch(raw[b[2]:b[3]], -1) {
			items = append(items, GalleryItem{
				Title: strings.TrimSpace(m[1]),
				URL:   m[2],
			})
		}
	}
	text.WriteString(raw[last:])

	if len(items) == 0 {
		logger.DebugCF("formatter", "image-gallery block without links", map[string]interface{}{
			"blocks": len(blocks),
		})
		return nil, false
	}

	return Gallery{Text: strings.TrimSpace(text.String()), Items: items}, true
}
