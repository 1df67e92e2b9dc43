package cache

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultLookupConcurrency bounds parallel lookups against remote caches.
const DefaultLookupConcurrency = 8

// LookupResult partitions a batch of texts into cache hits and misses.
type LookupResult struct {
	// Hits maps original text to its cached translation.
	Hits map[string]string
	// Misses lists texts with no cached translation, in input order.
	Misses []string
}

// LookupAll looks up every text for lang using up to concurrency parallel
// Get calls. Duplicate texts are looked up once. Misses keep input order.
func LookupAll(ctx context.Context, c Cache, lang string, texts []string, concurrency int) (*LookupResult, error) {
	if concurrency <= 0 {
		concurrency = DefaultLookupConcurrency
	}

	unique := make([]string, 0, len(texts))
	seen := make(map[string]struct{}, len(texts))
	for _, t := range texts {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}

	values := make([]string, len(unique))
	found := make([]bool, len(unique))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, text := range unique {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			values[i], found[i] = c.Get(lang, text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &LookupResult{Hits: make(map[string]string)}
	for i, text := range unique {
		if found[i] {
			result.Hits[text] = values[i]
		} else {
			result.Misses = append(result.Misses, text)
		}
	}
	return result, nil
}
