// Package page wraps a parsed HTML document and finds, replaces and restores
// its translatable text.
package page

import (
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ZaguanLabs/medtravel"
)

// DefaultRootSelectors are tried in order when no root selector is configured.
var DefaultRootSelectors = []string{"main", "body"}

// Document is a parsed HTML page.
type Document struct {
	doc *goquery.Document
}

// Parse reads an HTML document from r.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &medtravel.ScanError{Message: "failed to parse HTML", Cause: err}
	}
	return &Document{doc: doc}, nil
}

// ParseString parses an HTML document held in memory.
func ParseString(content string) (*Document, error) {
	return Parse(strings.NewReader(content))
}

// ParseFile parses the HTML file at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path) // #nosec G304 - path is operator-provided
	if err != nil {
		return nil, &medtravel.ScanError{Message: "failed to open " + path, Cause: err}
	}
	defer f.Close()
	return Parse(f)
}

// HTML serializes the document.
func (d *Document) HTML() (string, error) {
	out, err := d.doc.Html()
	if err != nil {
		return "", &medtravel.ScanError{Message: "failed to serialize HTML", Cause: err}
	}
	return out, nil
}

// Selection returns the whole document as a goquery selection.
func (d *Document) Selection() *goquery.Selection {
	return d.doc.Selection
}

// Find returns the elements matching selector.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Root returns the content root: the first match of selector when given,
// otherwise the first of DefaultRootSelectors that matches, otherwise the
// whole document.
func (d *Document) Root(selector string) *goquery.Selection {
	if selector != "" {
		if sel := d.doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	for _, s := range DefaultRootSelectors {
		if sel := d.doc.Find(s).First(); sel.Length() > 0 {
			return sel
		}
	}
	return d.doc.Selection
}

// SetLanguage updates the lang and dir attributes of the <html> element.
func (d *Document) SetLanguage(lang medtravel.Language) {
	h := d.doc.Find("html").First()
	h.SetAttr("lang", medtravel.ToHTMLLang(lang.Code))
	h.SetAttr("dir", lang.Dir())
}

// Lang returns the lang attribute of the <html> element.
func (d *Document) Lang() string {
	v, _ := d.doc.Find("html").First().Attr("lang")
	return v
}

// Dir returns the dir attribute of the <html> element.
func (d *Document) Dir() string {
	v, _ := d.doc.Find("html").First().Attr("dir")
	return v
}
