package formatter

import (
	"fmt"
	"strings"
)

// FormatText parses and renders a reply for a terminal.
func FormatText(raw string) string {
	return RenderText(Parse(raw))
}

// RenderText is the plain-text counterpart of Render. Markdown is left as
// written; product cards become indented blocks and galleries a numbered list.
func RenderText(c Content) string {
	switch c := c.(type) {
	case PlainText:
		return strings.TrimSpace(c.Text)
	case ProductList:
		var b strings.Builder
		if pre := strings.TrimSpace(c.Preamble); pre != "" {
			b.WriteString(pre)
			b.WriteString("\n\n")
		}
		for i, p := range c.Products {
			if i > 0 {
				b.WriteString("\n")
			}
			writeProductText(&b, i+1, p)
		}
		return strings.TrimRight(b.String(), "\n")
	case Gallery:
		var b strings.Builder
		if c.Text != "" {
			b.WriteString(c.Text)
			b.WriteString("\n\n")
		}
		b.WriteString("Images:\n")
		for i, item := range c.Items {
			title := item.Title
			if title == "" {
				title = "image"
			}
			fmt.Fprintf(&b, "  %d. %s  %s\n", i+1, title, item.URL)
		}
		return strings.TrimRight(b.String(), "\n")
	}
	return ""
}

func writeProductText(b *strings.Builder, n int, p Product) {
	fmt.Fprintf(b, "[%d] %s", n, p.Title)
	if p.Discount > 0 {
		fmt.Fprintf(b, "  (-%d%%)", p.Discount)
	}
	b.WriteString("\n")

	if p.Description != "" {
		fmt.Fprintf(b, "    %s\n", p.Description)
	}
	if p.Price != "" {
		fmt.Fprintf(b, "    Price: %s\n", p.Price)
	}
	if p.CategoryID != "" {
		fmt.Fprintf(b, "    Category ID: %s\n", p.CategoryID)
	}
	if len(p.Attributes) > 0 {
		pairs := make([]string, 0, len(p.Attributes))
		for _, a := range p.Attributes {
			pairs = append(pairs, a.Key+": "+a.Value)
		}
		fmt.Fprintf(b, "    %s\n", strings.Join(pairs, ", "))
	}
	if len(p.Images) > 0 {
		shown := p.Images[:min(len(p.Images), cardImages)]
		fmt.Fprintf(b, "    Images: %s", strings.Join(shown, ", "))
		if extra := len(p.Images) - len(shown); extra > 0 {
			fmt.Fprintf(b, " (+%d more)", extra)
		}
		b.WriteString("\n")
	}
}
