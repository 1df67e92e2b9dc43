// Package medtravel holds the shared types of the medical-tourism site and its
// page auto-translation pipeline.
//
// The site renders catalog pages (treatments, doctors, hospitals, FAQs) in
// English. When a visitor picks another language, the pipeline scans the
// rendered page for eligible text, resolves translations from a cache, fetches
// the rest in bounded batches from POST /api/translate and swaps the text in
// place. Switching back to English restores the captured originals.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "fmt"
//
//	    "github.com/ZaguanLabs/medtravel/cache"
//	    "github.com/ZaguanLabs/medtravel/page"
//	    "github.com/ZaguanLabs/medtravel/pipeline"
//	    "github.com/ZaguanLabs/medtravel/provider"
//	)
//
//	func main() {
//	    doc, _ := page.ParseString(html)
//	    batch := pipeline.NewBatchClient(
//	        provider.NewHTTPProvider(provider.HTTPConfig{BaseURL: "https://example.org"}),
//	        cache.NewMemory(0),
//	    )
//	    state := pipeline.NewLanguageState(pipeline.NewMemoryPreferences())
//	    s := pipeline.NewSession(doc, state, batch)
//	    defer s.Close()
//
//	    result, _ := s.SetLanguage(context.Background(), "fr")
//	    fmt.Println(result.Applied)
//	}
package medtravel
