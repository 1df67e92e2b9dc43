package page

import (
	"strings"
	"testing"
)

func texts(nodes []ScannedNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Text
	}
	return out
}

func mustParse(t *testing.T, content string) *Document {
	t.Helper()
	doc, err := ParseString(content)
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	return doc
}

func TestScanner_Scan_Basic(t *testing.T) {
	doc := mustParse(t, `<html><body><main><h1>Dental implants</h1><p>Welcome to our clinic.</p></main></body></html>`)
	s := NewScanner()

	nodes := s.Scan(doc)
	got := texts(nodes)
	if len(got) != 2 || got[0] != "Dental implants" || got[1] != "Welcome to our clinic." {
		t.Fatalf("unexpected nodes: %v", got)
	}

	if nodes[0].Path != "/html[0]/body[0]/main[0]/h1[0]/#text[0]" {
		t.Errorf("unexpected path %q", nodes[0].Path)
	}
	if nodes[0].Metadata["parent_tag"] != "h1" {
		t.Errorf("parent_tag = %q", nodes[0].Metadata["parent_tag"])
	}
	if nodes[0].Hash == "" || len(nodes[0].ID) != 24 {
		t.Errorf("node should carry hash and ID, got %+v", nodes[0].TextNode)
	}
	if s.Originals().Len() != 2 {
		t.Errorf("expected 2 tracked originals, got %d", s.Originals().Len())
	}
}

func TestScanner_RootSelection(t *testing.T) {
	doc := mustParse(t, `<html><body><nav><a href="/">Home page</a></nav><main><p>Main content</p></main></body></html>`)

	got := texts(NewScanner().Scan(doc))
	if len(got) != 1 || got[0] != "Main content" {
		t.Errorf("default root should be main, got %v", got)
	}

	got = texts(NewScanner(WithRootSelector("nav")).Scan(doc))
	if len(got) != 1 || got[0] != "Home page" {
		t.Errorf("custom root should be nav, got %v", got)
	}

	noMain := mustParse(t, `<html><body><div>Body text</div></body></html>`)
	got = texts(NewScanner().Scan(noMain))
	if len(got) != 1 || got[0] != "Body text" {
		t.Errorf("root should fall back to body, got %v", got)
	}

	got = texts(NewScanner(WithRootSelector("#missing")).Scan(noMain))
	if len(got) != 1 {
		t.Errorf("unmatched selector should fall back, got %v", got)
	}
}

func TestScanner_IgnoredTags(t *testing.T) {
	doc := mustParse(t, `<main>
		<p>Translate me</p>
		<script>doNotTranslate();</script>
		<style>.class { color: red; }</style>
		<noscript>Enable scripts</noscript>
		<code>const x = 1;</code>
		<pre>preformatted</pre>
		<textarea>form input</textarea>
		<svg><text>chart label</text></svg>
	</main>`)

	got := texts(NewScanner().Scan(doc))
	if len(got) != 1 || got[0] != "Translate me" {
		t.Errorf("only 'Translate me' should be scanned, got %v", got)
	}
}

func TestScanner_OptOutMarkers(t *testing.T) {
	doc := mustParse(t, `<main>
		<p data-no-translate>Dr. Ayşe Yılmaz</p>
		<p translate="no">MedTravel</p>
		<div class="brand notranslate"><span>Istanbul Clinic</span></div>
		<p>Translate this</p>
	</main>`)

	got := texts(NewScanner().Scan(doc))
	if len(got) != 1 || got[0] != "Translate this" {
		t.Errorf("opted-out content should be skipped, got %v", got)
	}
}

func TestScanner_RootInsideOptOut(t *testing.T) {
	doc := mustParse(t, `<body><div data-no-translate><main><p>Hidden</p></main></div></body>`)
	if got := NewScanner().Scan(doc); len(got) != 0 {
		t.Errorf("root inside an opted-out container should yield nothing, got %v", texts(got))
	}
}

func TestEligible(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Hair transplant", true},
		{"Hi", true},
		{"3 nights in hotel", true},
		{"", false},
		{"   ", false},
		{"A", false},
		{"é", false},
		{"12345", false},
		{"+1-555-0100", false},
		{"(0212) 555 01 00", false},
		{"$2,500", false},
		{"24/7", false},
		{"https://x.y", false},
		{"www.example.com", false},
		{"a@b.com", false},
		{"info@medtravel.example", false},
	}
	for _, tt := range tests {
		if got := Eligible(tt.text, DefaultMinLength); got != tt.want {
			t.Errorf("Eligible(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestScanner_ExclusionFilter(t *testing.T) {
	doc := mustParse(t, `<main>
		<span>A</span><span>12345</span><span>a@b.com</span><span>+1-555-0100</span>
		<a href="https://x.y">https://x.y</a>
		<p>Call us today</p>
	</main>`)

	got := texts(NewScanner().Scan(doc))
	if len(got) != 1 || got[0] != "Call us today" {
		t.Errorf("filtered strings must not be scanned, got %v", got)
	}
}

func TestScanner_ApplyPreservesWhitespaceAndAttributes(t *testing.T) {
	doc := mustParse(t, `<main><p>
    Book a consultation
  </p><a href="/doctors" title="Doctors">Our doctors</a><img src="/uploads/a.jpg" alt="clinic"></main>`)
	s := NewScanner()

	nodes := s.Scan(doc)
	n := s.Apply(nodes, map[string]string{
		"Book a consultation": "Réservez une consultation",
		"Our doctors":         "Nos médecins",
	})
	if n != 2 {
		t.Fatalf("Apply wrote %d nodes, want 2", n)
	}

	if got := doc.Find("p").Nodes[0].FirstChild.Data; got != "\n    Réservez une consultation\n  " {
		t.Errorf("whitespace not preserved: %q", got)
	}

	a := doc.Find("a")
	if a.Text() != "Nos médecins" {
		t.Errorf("link text = %q", a.Text())
	}
	if href, _ := a.Attr("href"); href != "/doctors" {
		t.Errorf("href changed to %q", href)
	}
	if title, _ := a.Attr("title"); title != "Doctors" {
		t.Errorf("title changed to %q", title)
	}
	if src, _ := doc.Find("img").Attr("src"); src != "/uploads/a.jpg" {
		t.Errorf("src changed to %q", src)
	}
}

func TestScanner_NoDoubleTranslation(t *testing.T) {
	doc := mustParse(t, `<main><p>Hello world</p></main>`)
	s := NewScanner()

	first := s.Scan(doc)
	s.Apply(first, map[string]string{"Hello world": "Bonjour le monde"})

	second := s.Scan(doc)
	if len(second) != 1 {
		t.Fatalf("expected 1 node, got %d", len(second))
	}
	if second[0].Text != "Hello world" {
		t.Errorf("rescan should report the stored original, got %q", second[0].Text)
	}
	if !second[0].Translated() {
		t.Error("node should be reported as translated")
	}
	if second[0].ID != first[0].ID {
		t.Error("node ID should be stable across passes")
	}

	s.Apply(second, map[string]string{"Hello world": "Bonjour le monde"})
	if got := doc.Find("p").Text(); got != "Bonjour le monde" {
		t.Errorf("output should be stable across passes, got %q", got)
	}
}

func TestScanner_ReRenderedContentIsRecaptured(t *testing.T) {
	doc := mustParse(t, `<main><p>Old headline</p></main>`)
	s := NewScanner()

	s.Apply(s.Scan(doc), map[string]string{"Old headline": "Ancien titre"})
	doc.Find("p").Nodes[0].FirstChild.Data = "New headline"

	nodes := s.Scan(doc)
	if len(nodes) != 1 || nodes[0].Text != "New headline" {
		t.Fatalf("re-rendered text should be captured as the new original, got %v", texts(nodes))
	}
	orig, ok := s.Originals().Get(nodes[0].Path)
	if !ok || orig.Raw != "New headline" || orig.Applied != "" {
		t.Errorf("unexpected side-map entry %+v", orig)
	}
}

func TestScanner_InsertedSiblingKeepsOriginal(t *testing.T) {
	doc := mustParse(t, `<main><p>Free consultation</p><p>Airport transfer</p></main>`)
	s := NewScanner()

	s.Apply(s.Scan(doc), map[string]string{
		"Free consultation": "Consultation gratuite",
		"Airport transfer":  "Transfert aéroport",
	})
	doc.Find("main").PrependHtml("<p>Newly loaded banner</p>")

	nodes := s.Scan(doc)
	want := []string{"Newly loaded banner", "Free consultation", "Airport transfer"}
	if got := texts(nodes); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("scan should report stored originals, got %v", got)
	}
	if nodes[0].Translated() || !nodes[1].Translated() {
		t.Error("only the shifted nodes should be reported as translated")
	}
	if orig, ok := s.Originals().Get(nodes[1].Path); !ok || orig.Raw != "Free consultation" {
		t.Errorf("entry should follow the node to its new path, got %+v", orig)
	}

	if n := s.Restore(doc); n != 2 {
		t.Errorf("Restore changed %d nodes, want 2", n)
	}
	if got := doc.Find("main").Text(); got != "Newly loaded bannerFree consultationAirport transfer" {
		t.Errorf("text after restore = %q", got)
	}
}

func TestScanner_DetachedNodesArePruned(t *testing.T) {
	doc := mustParse(t, `<main><p>Hello world</p><div id="list"><p>Eye surgery</p></div></main>`)
	s := NewScanner()

	s.Scan(doc)
	doc.Find("#list").SetHtml("<p>Hair transplant</p>")
	s.Scan(doc)

	if s.Originals().Len() != 2 {
		t.Errorf("replaced nodes should be forgotten, tracking %d", s.Originals().Len())
	}
}

func TestScanner_ApplySkipsChangedNodes(t *testing.T) {
	doc := mustParse(t, `<main><p>Hello world</p></main>`)
	s := NewScanner()

	nodes := s.Scan(doc)
	doc.Find("p").Nodes[0].FirstChild.Data = "Changed meanwhile"

	if n := s.Apply(nodes, map[string]string{"Hello world": "Bonjour le monde"}); n != 0 {
		t.Errorf("Apply should skip nodes changed since the scan, wrote %d", n)
	}
	if got := doc.Find("p").Text(); got != "Changed meanwhile" {
		t.Errorf("text = %q", got)
	}
}

func TestScanner_Restore(t *testing.T) {
	doc := mustParse(t, `<main><h2> Treatments </h2><p>Hair transplant</p><p>Eye surgery</p></main>`)
	s := NewScanner()

	s.Apply(s.Scan(doc), map[string]string{
		"Treatments":      "Traitements",
		"Hair transplant": "Greffe de cheveux",
	})

	if n := s.Restore(doc); n != 2 {
		t.Errorf("Restore changed %d nodes, want 2", n)
	}

	out, err := doc.HTML()
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if !strings.Contains(out, "<h2> Treatments </h2><p>Hair transplant</p><p>Eye surgery</p>") {
		t.Errorf("originals not restored verbatim: %s", out)
	}

	if n := s.Restore(doc); n != 0 {
		t.Errorf("second Restore should be a no-op, changed %d", n)
	}
}

func TestScanner_Reset(t *testing.T) {
	doc := mustParse(t, `<main><p>Hello world</p></main>`)
	s := NewScanner()
	s.Apply(s.Scan(doc), map[string]string{"Hello world": "Hallo Welt"})

	s.Reset()
	if s.Originals().Len() != 0 {
		t.Fatal("Reset should clear the side-map")
	}

	// After a reset the displayed text is captured as-is.
	nodes := s.Scan(doc)
	if len(nodes) != 1 || nodes[0].Text != "Hallo Welt" {
		t.Errorf("expected displayed text to be captured, got %v", texts(nodes))
	}
}

func TestWithIgnoredTags(t *testing.T) {
	doc := mustParse(t, `<main><h1>Title text</h1><p>Body text</p><script>var a = "script text";</script></main>`)

	got := texts(NewScanner(WithIgnoredTags("H1")).Scan(doc))
	if len(got) != 2 || got[0] != "Body text" {
		t.Errorf("custom ignored tags should replace the defaults, got %v", got)
	}
}

func TestWithMinLength(t *testing.T) {
	doc := mustParse(t, `<main><p>Hi</p><p>Hello</p></main>`)

	got := texts(NewScanner(WithMinLength(3)).Scan(doc))
	if len(got) != 1 || got[0] != "Hello" {
		t.Errorf("got %v", got)
	}
}

func TestPreserveWhitespace(t *testing.T) {
	tests := []struct {
		original   string
		translated string
		want       string
	}{
		{"Hello", "Hola", "Hola"},
		{"  Hello  ", "Hola", "  Hola  "},
		{"\n\tHello\n", " Hola ", "\n\tHola\n"},
		{"   ", "Hola", "Hola"},
	}
	for _, tt := range tests {
		if got := preserveWhitespace(tt.original, tt.translated); got != tt.want {
			t.Errorf("preserveWhitespace(%q, %q) = %q, want %q", tt.original, tt.translated, got, tt.want)
		}
	}
}
