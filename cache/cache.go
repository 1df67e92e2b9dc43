// Package cache provides translation cache implementations keyed by
// (language, original text).
package cache

// Cache stores translations of original site text per target language.
// Writes are idempotent: the same (lang, text) pair always maps to the same
// translated value once written.
type Cache interface {
	// Get returns the cached translation of text in lang.
	Get(lang, text string) (string, bool)

	// Set stores the translation of text in lang.
	Set(lang, text, value string) error
}

// Entry is one cached translation.
type Entry struct {
	Lang  string `json:"lang"`
	Text  string `json:"text"`
	Value string `json:"value"`
}

// Enumerable is implemented by caches that can list their contents.
type Enumerable interface {
	Entries() []Entry
}
