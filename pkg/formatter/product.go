package formatter

import (
	"fmt"
	"strings"
	"unicode"
)

const maxPlaceholderImages = 50

// parseProduct scans one "- Title:" segment line by line. Labels are matched
// anywhere in the line and checked in a fixed order, so a line carrying two
// labels is attributed to the first one.
func parseProduct(segment string) Product {
	var p Product
	lines := strings.Split(segment, "\n")

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		switch {
		case strings.Contains(line, titleMarker):
			p.Title = valueAfter(line, titleMarker)
		case strings.Contains(line, "Description:"):
			p.Description = valueAfter(line, "Description:")
		case strings.Contains(line, "Price:"):
			p.Price, p.Discount = parsePrice(valueAfter(line, "Price:"))
		case strings.Contains(line, "Category ID:"):
			p.CategoryID = valueAfter(line, "Category ID:")
		case strings.Contains(line, "Attributes:"):
			parseAttributes(&p, valueAfter(line, "Attributes:"))
		case strings.Contains(line, "Images:"):
			p.Images = append(p.Images, parseImages(valueAfter(line, "Images:"))...)
			for i+1 < len(lines) {
				url, ok := bulletURL(lines[i+1])
				if !ok {
					break
				}
				p.Images = append(p.Images, url)
				i++
			}
		}
	}
	return p
}

func valueAfter(line, label string) string {
	return strings.TrimSpace(strings.Replace(line, label, "", 1))
}

// parsePrice splits "$5 (Discount: 10%)" into "$5" and 10.
func parsePrice(text string) (string, int) {
	if !strings.Contains(text, "Discount:") {
		return text, 0
	}

	sep := "(Discount:"
	if !strings.Contains(text, sep) {
		sep = "Discount:"
	}
	price, rest, _ := strings.Cut(text, sep)
	rest = strings.TrimSpace(strings.Replace(rest, "%)", "", 1))
	return strings.TrimSpace(price), parseLeadingInt(rest)
}

func parseAttributes(p *Product, text string) {
	for _, pair := range strings.Split(text, ",") {
		key, value, _ := strings.Cut(pair, ":")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		p.setAttribute(key, strings.TrimSpace(value))
	}
}

// parseImages handles the text after "Images:": either "N images available"
// or an inline list of URLs.
func parseImages(text string) []string {
	if strings.Contains(text, "available") {
		fields := strings.Fields(text)
		if len(fields) == 0 {
			return nil
		}
		n := min(parseLeadingInt(fields[0]), maxPlaceholderImages)
		images := make([]string, 0, max(n, 0))
		for i := 1; i <= n; i++ {
			images = append(images, fmt.Sprintf("/images/placeholder_%d.jpg", i))
		}
		return images
	}

	var images []string
	for _, tok := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	}) {
		if looksLikeURL(tok) {
			images = append(images, tok)
		}
	}
	return images
}

// bulletURL extracts the URL from lines like "* Image 1: /img/a.jpg" or
// "- https://cdn/x.png".
func bulletURL(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "*") && !strings.HasPrefix(trimmed, "-") {
		return "", false
	}
	if strings.HasPrefix(trimmed, titleMarker) {
		return "", false
	}
	for _, tok := range strings.Fields(trimmed[1:]) {
		if looksLikeURL(tok) {
			return tok, true
		}
	}
	return "", false
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		(strings.HasPrefix(s, "/") && len(s) > 1)
}

// parseLeadingInt reads an optional sign and the digits that follow it,
// ignoring anything after them. No digits yields 0.
func parseLeadingInt(s string) int {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		if n > 1<<20 {
			break
		}
	}
	if neg {
		return -n
	}
	return n
}
