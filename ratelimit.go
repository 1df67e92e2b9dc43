package medtravel

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultVisitorIdle is how long an unused visitor bucket is kept.
const DefaultVisitorIdle = 10 * time.Minute

// RateLimitConfig sizes a token bucket.
type RateLimitConfig struct {
	RequestsPerMinute int // sustained rate (default 60)
	BurstSize         int // bucket size (default: RequestsPerMinute)
}

func (c RateLimitConfig) newLimiter() *rate.Limiter {
	rpm := c.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	burst := c.BurstSize
	if burst <= 0 {
		burst = rpm
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60), burst)
}

// RateLimitedProvider keeps the server inside the upstream provider's quota.
// Every visitor who switches language fans out into /api/translate calls that
// all share one API key.
type RateLimitedProvider struct {
	provider Provider
	limiter  *rate.Limiter
}

// NewRateLimitedProvider wraps provider with a shared bucket.
func NewRateLimitedProvider(provider Provider, cfg RateLimitConfig) *RateLimitedProvider {
	return &RateLimitedProvider{provider: provider, limiter: cfg.newLimiter()}
}

// Translate waits for quota, then calls the wrapped provider. A wait that
// cannot finish before ctx ends returns a *RateLimitError.
func (p *RateLimitedProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &RateLimitError{Scope: ScopeUpstream, Cause: err}
	}
	return p.provider.Translate(ctx, req)
}

// Limiter returns the shared bucket.
func (p *RateLimitedProvider) Limiter() *rate.Limiter {
	return p.limiter
}

var _ Provider = (*RateLimitedProvider)(nil)

// VisitorLimiter gives each visitor key (the client IP on /api/translate)
// its own bucket, so one browser looping on language switches cannot use up
// the upstream quota for everybody. Buckets unused for the idle period are
// dropped.
type VisitorLimiter struct {
	cfg  RateLimitConfig
	idle time.Duration
	now  func() time.Time

	mu        sync.Mutex
	buckets   map[string]*visitorBucket
	lastSweep time.Time
}

type visitorBucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

// NewVisitorLimiter creates a per-visitor limiter. idle <= 0 uses
// DefaultVisitorIdle.
func NewVisitorLimiter(cfg RateLimitConfig, idle time.Duration) *VisitorLimiter {
	if idle <= 0 {
		idle = DefaultVisitorIdle
	}
	return &VisitorLimiter{
		cfg:     cfg,
		idle:    idle,
		now:     time.Now,
		buckets: make(map[string]*visitorBucket),
	}
}

// Allow takes one token from key's bucket. When the bucket is empty it
// returns a *RateLimitError whose RetryAfter is the wait for the next token.
func (v *VisitorLimiter) Allow(key string) error {
	now := v.now()

	v.mu.Lock()
	defer v.mu.Unlock()

	v.sweep(now)
	b, ok := v.buckets[key]
	if !ok {
		b = &visitorBucket{limiter: v.cfg.newLimiter()}
		v.buckets[key] = b
	}
	b.seen = now

	if b.limiter.AllowN(now, 1) {
		return nil
	}
	r := b.limiter.ReserveN(now, 1)
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	return &RateLimitError{Scope: ScopeVisitor, Key: key, RetryAfter: wait}
}

// Len returns the number of tracked visitors.
func (v *VisitorLimiter) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.buckets)
}

// sweep drops idle buckets at most once per idle period. Caller holds v.mu.
func (v *VisitorLimiter) sweep(now time.Time) {
	if now.Sub(v.lastSweep) < v.idle {
		return
	}
	v.lastSweep = now
	for key, b := range v.buckets {
		if now.Sub(b.seen) >= v.idle {
			delete(v.buckets, key)
		}
	}
}
