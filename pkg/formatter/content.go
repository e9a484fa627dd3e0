// Package formatter turns a raw bot reply into something a front end can
// show. Parse classifies the reply into one of the Content variants; Render
// and RenderText turn that into HTML or terminal text.
package formatter

// Content is the parsed form of one reply: PlainText, ProductList or Gallery.
type Content interface {
	content()
}

// PlainText is a reply with no recognized structure. Text is Markdown.
type PlainText struct {
	Text string
}

// ProductList is a reply containing a "Products:" section.
type ProductList struct {
	Preamble string
	Products []Product
}

// Gallery is a Markdown reply with an image-gallery block pulled out of it.
type Gallery struct {
	Text  string
	Items []GalleryItem
}

func (PlainText) content()   {}
func (ProductList) content() {}
func (Gallery) content()     {}

type GalleryItem struct {
	Title string
	URL   string
}

type Attribute struct {
	Key   string
	Value string
}

type Product struct {
	Title       string
	Description string
	Price       string
	Discount    int
	CategoryID  string
	Attributes  []Attribute
	Images      []string
}

// AttributeMap returns the attributes keyed by name.
func (p Product) AttributeMap() map[string]string {
	m := make(map[string]string, len(p.Attributes))
	for _, a := range p.Attributes {
		m[a.Key] = a.Value
	}
	return m
}

func (p *Product) setAttribute(key, value string) {
	for i := range p.Attributes {
		if p.Attributes[i].Key == key {
			p.Attributes[i].Value = value
			return
		}
	}
	p.Attributes = append(p.Attributes, Attribute{Key: key, Value: value})
}
