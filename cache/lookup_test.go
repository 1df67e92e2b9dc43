package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingCache struct {
	*Memory
	gets     atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	mu       sync.Mutex
}

func (c *countingCache) Get(lang, text string) (string, bool) {
	c.gets.Add(1)
	n := c.inFlight.Add(1)
	c.mu.Lock()
	if n > c.maxSeen.Load() {
		c.maxSeen.Store(n)
	}
	c.mu.Unlock()
	time.Sleep(5 * time.Millisecond)
	c.inFlight.Add(-1)
	return c.Memory.Get(lang, text)
}

func TestLookupAll(t *testing.T) {
	c := &countingCache{Memory: NewMemory(0)}
	c.Set("fr", "Hello", "Bonjour")
	c.Set("fr", "Clinic", "Clinique")

	res, err := LookupAll(context.Background(), c, "fr", []string{"Hello", "Doctor", "Clinic", "Hello", "Surgery"}, 2)
	if err != nil {
		t.Fatalf("LookupAll failed: %v", err)
	}

	if len(res.Hits) != 2 || res.Hits["Hello"] != "Bonjour" || res.Hits["Clinic"] != "Clinique" {
		t.Errorf("unexpected hits: %v", res.Hits)
	}
	if len(res.Misses) != 2 || res.Misses[0] != "Doctor" || res.Misses[1] != "Surgery" {
		t.Errorf("misses should keep input order, got %v", res.Misses)
	}
	if c.gets.Load() != 4 {
		t.Errorf("duplicates should be looked up once, got %d gets", c.gets.Load())
	}
	if c.maxSeen.Load() > 2 {
		t.Errorf("concurrency limit exceeded: %d", c.maxSeen.Load())
	}
}

func TestLookupAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := LookupAll(ctx, NewMemory(0), "fr", []string{"a", "b"}, 1); err == nil {
		t.Error("expected error for cancelled context")
	}
}
