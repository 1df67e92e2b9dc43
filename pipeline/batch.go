package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ZaguanLabs/medtravel"
	"github.com/ZaguanLabs/medtravel/cache"
)

// BatchResult reports how one Translate call resolved its strings.
type BatchResult struct {
	// Translations maps original text to translated text. Strings whose batch
	// failed are absent.
	Translations map[string]string
	CacheHits    int
	Fetched      int
	Failed       int
	Calls        int
}

// BatchClient resolves strings through the cache and fetches the misses
// from a provider in bounded, sequential batches.
type BatchClient struct {
	provider  medtravel.Provider
	cache     cache.Cache
	batchSize int
	pause     time.Duration
	timeout   time.Duration
	style     medtravel.TranslationStyle
	logger    *zap.Logger
}

// BatchOption configures a BatchClient.
type BatchOption func(*BatchClient)

// WithBatchSize sets the number of strings per provider call.
func WithBatchSize(n int) BatchOption {
	return func(b *BatchClient) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// WithBatchPause sets the pause between successive provider calls.
func WithBatchPause(d time.Duration) BatchOption {
	return func(b *BatchClient) {
		b.pause = d
	}
}

// WithBatchTimeout bounds each provider call. Zero means no timeout.
func WithBatchTimeout(d time.Duration) BatchOption {
	return func(b *BatchClient) {
		b.timeout = d
	}
}

// WithStyle sets the translation style sent with each batch.
func WithStyle(style medtravel.TranslationStyle) BatchOption {
	return func(b *BatchClient) {
		b.style = style
	}
}

// WithBatchLogger sets the logger used for batch failures.
func WithBatchLogger(l *zap.Logger) BatchOption {
	return func(b *BatchClient) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBatchClient creates a batch client with the default batch size and pause.
func NewBatchClient(provider medtravel.Provider, c cache.Cache, opts ...BatchOption) *BatchClient {
	b := &BatchClient{
		provider:  provider,
		cache:     c,
		batchSize: medtravel.DefaultBatchSize,
		pause:     medtravel.DefaultBatchPause,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Cache returns the cache the client reads and writes.
func (b *BatchClient) Cache() cache.Cache {
	return b.cache
}

// Translate resolves texts into lang. Duplicates are resolved once. Cache
// hits are used directly; misses go to the provider in batches sent one
// after another, each result written to the cache before it is returned. A
// failed batch is logged and its strings are left out. Translating into the
// base language does nothing. The error is non-nil only when ctx ends; the
// result then holds what was resolved so far.
func (b *BatchClient) Translate(ctx context.Context, lang string, texts []string) (*BatchResult, error) {
	res := &BatchResult{Translations: make(map[string]string)}
	if len(texts) == 0 || medtravel.IsBaseLanguage(lang) {
		return res, nil
	}

	lookup, err := cache.LookupAll(ctx, b.cache, lang, texts, 0)
	if err != nil {
		return res, err
	}
	for text, value := range lookup.Hits {
		res.Translations[text] = value
	}
	res.CacheHits = len(lookup.Hits)

	misses := lookup.Misses
	for start, n := 0, 0; start < len(misses); start, n = start+b.batchSize, n+1 {
		if start > 0 && b.pause > 0 {
			if err := sleep(ctx, b.pause); err != nil {
				res.Failed += len(misses) - start
				return res, err
			}
		}

		end := min(start+b.batchSize, len(misses))
		batch := misses[start:end]

		res.Calls++
		out, err := b.call(ctx, lang, batch)
		if err != nil {
			res.Failed += len(batch)
			if ctx.Err() != nil {
				res.Failed += len(misses) - end
				return res, ctx.Err()
			}
			b.logger.Warn("translation batch failed",
				zap.String("lang", lang),
				zap.Int("batch", n),
				zap.Int("size", len(batch)),
				zap.Error(err),
			)
			continue
		}

		for i, text := range batch {
			value := out[i]
			if value == "" {
				res.Failed++
				continue
			}
			// An echo of the source is applied but not cached, so the next
			// pass asks again.
			if value != text {
				if err := b.cache.Set(lang, text, value); err != nil {
					b.logger.Warn("cache write failed", zap.String("lang", lang), zap.Error(err))
				}
			}
			res.Translations[text] = value
			res.Fetched++
		}
	}

	return res, nil
}

func (b *BatchClient) call(ctx context.Context, lang string, batch []string) ([]string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	out, err := b.provider.Translate(ctx, medtravel.TranslateRequest{
		Texts:      batch,
		TargetLang: lang,
		SourceLang: medtravel.BaseLanguage,
		Style:      b.style,
	})
	if err != nil {
		return nil, err
	}
	if len(out) != len(batch) {
		return nil, &medtravel.CountMismatchError{Expected: len(batch), Got: len(out)}
	}
	return out, nil
}

// sleep waits for d or until ctx ends.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
