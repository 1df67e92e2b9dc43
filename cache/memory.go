package cache

import (
	"sort"
	"sync"
	"time"
)

// memoryEntry holds a cached value with its write time.
type memoryEntry struct {
	value     string
	timestamp time.Time
}

// Memory is a goroutine-safe two-level map: language → original text → entry.
type Memory struct {
	langs map[string]map[string]memoryEntry
	mu    sync.RWMutex
	ttl   time.Duration
}

// NewMemory creates an in-memory cache with the given TTL in seconds.
// A TTL of 0 or less keeps entries for the lifetime of the cache, which is
// what a page session wants.
func NewMemory(ttlSeconds int) *Memory {
	var ttl time.Duration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	return &Memory{
		langs: make(map[string]map[string]memoryEntry),
		ttl:   ttl,
	}
}

// Get returns the translation of text in lang if present and not expired.
func (c *Memory) Get(lang, text string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.langs[lang][text]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}

	if c.expired(entry, time.Now()) {
		c.mu.Lock()
		if texts, ok := c.langs[lang]; ok {
			delete(texts, text)
		}
		c.mu.Unlock()
		return "", false
	}

	return entry.value, true
}

// Set stores the translation of text in lang.
func (c *Memory) Set(lang, text, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	texts, ok := c.langs[lang]
	if !ok {
		texts = make(map[string]memoryEntry)
		c.langs[lang] = texts
	}
	texts[text] = memoryEntry{value: value, timestamp: time.Now()}
	return nil
}

// Len returns the number of entries across all languages (including expired ones).
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, texts := range c.langs {
		n += len(texts)
	}
	return n
}

// Reset removes all entries.
func (c *Memory) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.langs = make(map[string]map[string]memoryEntry)
}

// Languages returns the languages that have at least one entry, sorted.
func (c *Memory) Languages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.langs))
	for lang, texts := range c.langs {
		if len(texts) > 0 {
			out = append(out, lang)
		}
	}
	sort.Strings(out)
	return out
}

// Entries returns all non-expired entries ordered by language then text.
func (c *Memory) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	var out []Entry
	for lang, texts := range c.langs {
		for text, entry := range texts {
			if c.expired(entry, now) {
				continue
			}
			out = append(out, Entry{Lang: lang, Text: text, Value: entry.value})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Lang != out[j].Lang {
			return out[i].Lang < out[j].Lang
		}
		return out[i].Text < out[j].Text
	})
	return out
}

func (c *Memory) expired(entry memoryEntry, now time.Time) bool {
	return c.ttl > 0 && now.Sub(entry.timestamp) > c.ttl
}

var (
	_ Cache      = (*Memory)(nil)
	_ Enumerable = (*Memory)(nil)
)
