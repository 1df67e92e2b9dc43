package page

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/ZaguanLabs/medtravel"
)

// DefaultIgnoredTags are elements whose text is never translated.
var DefaultIgnoredTags = []string{
	"script", "style", "noscript", "template", "code", "pre", "textarea", "svg", "iframe",
}

// DefaultMinLength is the shortest trimmed text, in runes, that is translated.
const DefaultMinLength = 2

var (
	numericPattern = regexp.MustCompile(`^[\p{N}\p{Sc}\s.,:;%+\-–()/#*xX]+$`)
	urlPattern     = regexp.MustCompile(`(?i)^(?:[a-z][a-z0-9+.\-]*://|www\.)\S+$`)
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Eligible reports whether trimmed text is worth translating: at least
// minRunes long and not a number, phone number, URL or email address.
func Eligible(text string, minRunes int) bool {
	t := strings.TrimSpace(text)
	if t == "" || utf8.RuneCountInString(t) < minRunes {
		return false
	}
	if numericPattern.MatchString(t) && strings.ContainsAny(t, "0123456789") {
		return false
	}
	return !urlPattern.MatchString(t) && !emailPattern.MatchString(t)
}

// ScannedNode is an eligible text node found by a scan. It is only valid
// until the document is next modified.
type ScannedNode struct {
	medtravel.TextNode

	// Raw is the original data including surrounding whitespace.
	Raw string
	// Shown is the data the node displayed when scanned.
	Shown string

	node *html.Node
}

// Translated reports whether the node currently shows a translation.
func (n ScannedNode) Translated() bool {
	return n.Shown != n.Raw
}

// Scanner finds translatable text under a document's content root and keeps
// the originals side-map for one page view.
type Scanner struct {
	rootSelector string
	ignoredTags  map[string]bool
	minLength    int
	originals    *Originals
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithRootSelector sets the CSS selector of the content root.
func WithRootSelector(selector string) ScannerOption {
	return func(s *Scanner) {
		s.rootSelector = selector
	}
}

// WithIgnoredTags replaces the set of ignored element names.
func WithIgnoredTags(tags ...string) ScannerOption {
	return func(s *Scanner) {
		s.ignoredTags = make(map[string]bool, len(tags))
		for _, tag := range tags {
			s.ignoredTags[strings.ToLower(tag)] = true
		}
	}
}

// WithMinLength sets the shortest translated text in runes.
func WithMinLength(n int) ScannerOption {
	return func(s *Scanner) {
		s.minLength = n
	}
}

// NewScanner creates a scanner with an empty side-map.
func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		ignoredTags: make(map[string]bool, len(DefaultIgnoredTags)),
		minLength:   DefaultMinLength,
		originals:   NewOriginals(),
	}
	for _, tag := range DefaultIgnoredTags {
		s.ignoredTags[tag] = true
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Originals returns the scanner's side-map.
func (s *Scanner) Originals() *Originals {
	return s.originals
}

// Reset clears the side-map.
func (s *Scanner) Reset() {
	s.originals.Reset()
}

// Scan returns the eligible text nodes under the content root in document
// order. Each node carries its stored original, so a node that already shows
// a translation is reported with the text it had before.
func (s *Scanner) Scan(doc *Document) []ScannedNode {
	root := doc.Root(s.rootSelector)
	eligible := func(data string) bool { return Eligible(data, s.minLength) }

	if top := doc.Selection().Nodes; len(top) > 0 {
		s.originals.prune(top[0])
	}

	var nodes []ScannedNode
	for _, rn := range root.Nodes {
		if s.excludedByAncestor(rn) {
			continue
		}
		walk(rn, nodePath(rn), s.skip, func(n *html.Node, path string) {
			orig, ok := s.originals.resolve(n, path, eligible)
			if !ok {
				return
			}
			text := strings.TrimSpace(orig.Raw)
			tn := medtravel.TextNode{
				ID:       orig.ID,
				Text:     text,
				Hash:     medtravel.HashText(text),
				Path:     path,
				Metadata: map[string]string{},
			}
			if n.Parent != nil && n.Parent.Type == html.ElementNode {
				tn.Metadata["parent_tag"] = n.Parent.Data
			}
			nodes = append(nodes, ScannedNode{TextNode: tn, Raw: orig.Raw, Shown: n.Data, node: n})
		})
	}
	return nodes
}

// Apply writes translations (keyed by original trimmed text) into the
// scanned nodes, keeping each node's leading and trailing whitespace. Nodes
// whose data changed since the scan are left alone. It returns the number of
// nodes written.
func (s *Scanner) Apply(nodes []ScannedNode, translations map[string]string) int {
	applied := 0
	for _, n := range nodes {
		translated, ok := translations[n.Text]
		if !ok || strings.TrimSpace(translated) == "" {
			continue
		}
		if n.node.Parent == nil || n.node.Data != n.Shown {
			continue
		}
		data := preserveWhitespace(n.Raw, translated)
		n.node.Data = data
		s.originals.markApplied(n.node, data)
		applied++
	}
	return applied
}

// Restore puts every tracked original back into the document and returns
// the number of nodes changed. Nodes re-rendered since the last Apply keep
// their current text.
func (s *Scanner) Restore(doc *Document) int {
	if s.originals.Len() == 0 {
		return 0
	}
	restored := 0
	for _, rn := range doc.Selection().Nodes {
		walk(rn, nodePath(rn), nil, func(n *html.Node, _ string) {
			if raw, ok := s.originals.restoreValue(n); ok {
				n.Data = raw
				restored++
			}
		})
	}
	return restored
}

// skip reports whether an element and its subtree are excluded.
func (s *Scanner) skip(n *html.Node) bool {
	if s.ignoredTags[strings.ToLower(n.Data)] {
		return true
	}
	return optedOut(n)
}

func (s *Scanner) excludedByAncestor(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && s.skip(p) {
			return true
		}
	}
	return false
}

// optedOut reports whether an element is marked non-translatable.
func optedOut(n *html.Node) bool {
	for _, attr := range n.Attr {
		switch attr.Key {
		case "data-no-translate":
			return true
		case "translate":
			if strings.EqualFold(strings.TrimSpace(attr.Val), "no") {
				return true
			}
		case "class":
			for _, c := range strings.Fields(attr.Val) {
				if c == "notranslate" {
					return true
				}
			}
		}
	}
	return false
}

// walk visits every text node below n, skipping element subtrees for which
// skip returns true. Paths follow nodePath's format.
func walk(n *html.Node, path string, skip func(*html.Node) bool, visit func(*html.Node, string)) {
	if n.Type == html.TextNode {
		visit(n, path)
		return
	}
	if n.Type == html.ElementNode && skip != nil && skip(n) {
		return
	}

	counts := make(map[string]int)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		step := stepName(c)
		if step == "" {
			continue
		}
		walk(c, path+"/"+step+"["+strconv.Itoa(counts[step])+"]", skip, visit)
		counts[step]++
	}
}

// nodePath returns the structural path of n from the document root, e.g.
// /html[0]/body[0]/main[0]/p[2]/#text[0].
func nodePath(n *html.Node) string {
	var steps []string
	for c := n; c != nil && c.Parent != nil; c = c.Parent {
		step := stepName(c)
		idx := 0
		for sib := c.PrevSibling; sib != nil; sib = sib.PrevSibling {
			if stepName(sib) == step {
				idx++
			}
		}
		steps = append(steps, step+"["+strconv.Itoa(idx)+"]")
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	if len(steps) == 0 {
		return ""
	}
	return "/" + strings.Join(steps, "/")
}

func stepName(n *html.Node) string {
	switch n.Type {
	case html.ElementNode:
		return n.Data
	case html.TextNode:
		return "#text"
	default:
		return ""
	}
}

// preserveWhitespace keeps the original's leading and trailing whitespace
// around the translated text.
func preserveWhitespace(original, translated string) string {
	leadingLen := len(original) - len(strings.TrimLeft(original, " \t\n\r"))
	trailingLen := len(original) - len(strings.TrimRight(original, " \t\n\r"))
	if leadingLen == len(original) {
		return translated
	}
	return original[:leadingLen] + strings.TrimSpace(translated) + original[len(original)-trailingLen:]
}
