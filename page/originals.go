package page

import (
	"sync"

	"golang.org/x/net/html"

	"github.com/ZaguanLabs/medtravel"
)

// Original is the side-map record of one text node.
type Original struct {
	ID      string // medtravel.NodeID(path at capture, Raw)
	Path    string // structural path when last scanned
	Raw     string // text data as first captured, whitespace included
	Applied string // data last written by Apply, empty until then
}

// Originals maps live text nodes to the text they showed before any
// translation was applied. Entries are keyed by node identity, so a node
// keeps its original when content is inserted before it. It lives for one
// page view.
type Originals struct {
	mu      sync.Mutex
	entries map[*html.Node]*Original
}

// NewOriginals creates an empty side-map.
func NewOriginals() *Originals {
	return &Originals{entries: make(map[*html.Node]*Original)}
}

// resolve returns the original for n, now found at path. A node showing
// neither its original nor the last applied value was re-rendered in place
// and is captured again. ok is false when the node is not tracked and
// eligible reports false for its data.
func (o *Originals) resolve(n *html.Node, path string, eligible func(string) bool) (*Original, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if e, ok := o.entries[n]; ok {
		if n.Data == e.Raw || (e.Applied != "" && n.Data == e.Applied) {
			e.Path = path
			return e, true
		}
	}

	if !eligible(n.Data) {
		delete(o.entries, n)
		return nil, false
	}

	e := &Original{ID: medtravel.NodeID(path, n.Data), Path: path, Raw: n.Data}
	o.entries[n] = e
	return e, true
}

func (o *Originals) markApplied(n *html.Node, data string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e, ok := o.entries[n]; ok {
		e.Applied = data
	}
}

// Get returns a copy of the entry for the node last scanned at path.
func (o *Originals) Get(path string) (Original, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, e := range o.entries {
		if e.Path == path {
			return *e, true
		}
	}
	return Original{}, false
}

// Len returns the number of tracked nodes.
func (o *Originals) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.entries)
}

// Reset forgets every tracked node.
func (o *Originals) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries = make(map[*html.Node]*Original)
}

// prune drops entries whose node is no longer attached under top.
func (o *Originals) prune(top *html.Node) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for n := range o.entries {
		if !attached(n, top) {
			delete(o.entries, n)
		}
	}
}

// restoreValue returns the original data for n when it still shows the
// value Apply wrote.
func (o *Originals) restoreValue(n *html.Node) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.entries[n]
	if !ok || e.Applied == "" || n.Data != e.Applied {
		return "", false
	}
	e.Applied = ""
	return e.Raw, true
}

func attached(n, top *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == top {
			return true
		}
	}
	return false
}
