package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemory_GetSet(t *testing.T) {
	c := NewMemory(0)

	if err := c.Set("fr", "Book a consultation", "Réservez une consultation"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, ok := c.Get("fr", "Book a consultation")
	if !ok {
		t.Error("Get should return true for existing key")
	}
	if val != "Réservez une consultation" {
		t.Errorf("Get returned %q", val)
	}

	// Same text, other language
	if _, ok := c.Get("de", "Book a consultation"); ok {
		t.Error("entries must be scoped per language")
	}

	val, ok = c.Get("fr", "nonexistent")
	if ok || val != "" {
		t.Errorf("missing key should return (\"\", false), got (%q, %v)", val, ok)
	}
}

func TestMemory_TTL(t *testing.T) {
	c := NewMemory(1)
	c.Set("fr", "Hello", "Bonjour")

	if val, ok := c.Get("fr", "Hello"); !ok || val != "Bonjour" {
		t.Error("Value should be available immediately after set")
	}

	time.Sleep(1100 * time.Millisecond)

	if _, ok := c.Get("fr", "Hello"); ok {
		t.Error("Value should be expired after TTL")
	}
	if len(c.Entries()) != 0 {
		t.Error("expired entries must not be listed")
	}
}

func TestMemory_NoTTL(t *testing.T) {
	c := NewMemory(0)
	c.Set("fr", "Hello", "Bonjour")

	if val, ok := c.Get("fr", "Hello"); !ok || val != "Bonjour" {
		t.Error("Value should be available with no TTL")
	}
}

func TestMemory_LenResetLanguages(t *testing.T) {
	c := NewMemory(0)
	if c.Len() != 0 {
		t.Errorf("Empty cache should have length 0, got %d", c.Len())
	}

	c.Set("fr", "Hello", "Bonjour")
	c.Set("fr", "World", "Monde")
	c.Set("ar", "Hello", "مرحبا")

	if c.Len() != 3 {
		t.Errorf("Cache should have length 3, got %d", c.Len())
	}
	langs := c.Languages()
	if len(langs) != 2 || langs[0] != "ar" || langs[1] != "fr" {
		t.Errorf("Languages() = %v", langs)
	}

	c.Reset()
	if c.Len() != 0 {
		t.Errorf("Reset cache should have length 0, got %d", c.Len())
	}
	if _, ok := c.Get("fr", "Hello"); ok {
		t.Error("Reset cache should not contain any keys")
	}
}

func TestMemory_EntriesSorted(t *testing.T) {
	c := NewMemory(0)
	c.Set("fr", "b", "B")
	c.Set("ar", "z", "Z")
	c.Set("fr", "a", "A")

	entries := c.Entries()
	want := []Entry{{"ar", "z", "Z"}, {"fr", "a", "A"}, {"fr", "b", "B"}}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestMemory_Concurrent(t *testing.T) {
	c := NewMemory(0)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.Set("fr", fmt.Sprintf("text-%d", i%26), "valeur")
		}(i)
		go func(i int) {
			defer wg.Done()
			c.Get("fr", fmt.Sprintf("text-%d", i%26))
		}(i)
	}

	wg.Wait()
	if c.Len() != 26 {
		t.Errorf("expected 26 distinct entries, got %d", c.Len())
	}
}
