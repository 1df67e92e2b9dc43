package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/ZaguanLabs/medtravel"
	"github.com/ZaguanLabs/medtravel/page"
)

const (
	// DefaultSettleDelay is waited after a language or route change before scanning.
	DefaultSettleDelay = 100 * time.Millisecond
	// DefaultDebounce coalesces bursts of content changes into one pass.
	DefaultDebounce = 300 * time.Millisecond
)

// PassResult summarizes one translation pass.
type PassResult struct {
	Language   string
	Nodes      int
	Applied    int
	CacheHits  int
	Fetched    int
	Failed     int
	BatchCalls int
	Restored   int

	// Dropped is set when another pass was already running. Passes started
	// by a language or route change are never dropped; they cancel the
	// running pass and wait for it instead.
	Dropped bool
	// Skipped is set when a content pass found nothing new to translate.
	Skipped bool
	// Stale is set when the language or document changed while the batches
	// were in flight; nothing was applied.
	Stale bool

	Duration time.Duration
}

// Session owns the translation state of one page view: the document, its
// originals side-map, the language state and the pass guard.
type Session struct {
	mu         sync.Mutex // guards doc, scanner, generation, lastNodes, passCancel
	doc        *page.Document
	scanner    *page.Scanner
	generation uint64
	lastNodes  []medtravel.TextNode
	passCancel context.CancelFunc

	state  *LanguageState
	batch  *BatchClient
	guard  *semaphore.Weighted
	logger *zap.Logger

	settle   time.Duration
	debounce time.Duration
	hook     func(PassResult)

	timerMu sync.Mutex
	timer   *time.Timer
	closed  bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// passKind selects how a pass treats the guard and unchanged content.
type passKind int

const (
	passManual  passKind = iota // dropped when busy
	passContent                 // dropped when busy, skipped when nothing changed
	passSwitch                  // waits for the guard
)

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSettleDelay sets the delay between a language or route change and the pass.
func WithSettleDelay(d time.Duration) SessionOption {
	return func(s *Session) {
		s.settle = d
	}
}

// WithDebounce sets the quiet period required after ContentChanged.
func WithDebounce(d time.Duration) SessionOption {
	return func(s *Session) {
		s.debounce = d
	}
}

// WithPassHook registers fn to receive the result of every pass, including
// dropped and debounced ones.
func WithPassHook(fn func(PassResult)) SessionOption {
	return func(s *Session) {
		s.hook = fn
	}
}

// WithScanner replaces the default scanner.
func WithScanner(sc *page.Scanner) SessionOption {
	return func(s *Session) {
		if sc != nil {
			s.scanner = sc
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession creates a session for doc. The document's lang and dir
// attributes are set from state right away.
func NewSession(doc *page.Document, state *LanguageState, batch *BatchClient, opts ...SessionOption) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		doc:      doc,
		scanner:  page.NewScanner(),
		state:    state,
		batch:    batch,
		guard:    semaphore.NewWeighted(1),
		logger:   zap.NewNop(),
		settle:   DefaultSettleDelay,
		debounce: DefaultDebounce,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	doc.SetLanguage(state.Current())
	return s
}

// State returns the session's language state.
func (s *Session) State() *LanguageState {
	return s.state
}

// HTML serializes the current document.
func (s *Session) HTML() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.HTML()
}

// SetLanguage switches the page to code. Previously applied translations are
// restored to their originals and the side-map is cleared. For the base
// language nothing else happens; otherwise a pass runs after the settle delay.
func (s *Session) SetLanguage(ctx context.Context, code string) (PassResult, error) {
	s.mu.Lock()
	s.supersede()
	restored := s.scanner.Restore(s.doc)
	s.scanner.Reset()
	lang, err := s.state.SetLanguage(code)
	s.doc.SetLanguage(lang)
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("persisting language preference failed", zap.String("lang", code), zap.Error(err))
	}
	s.logger.Debug("language changed", zap.String("requested", code), zap.String("lang", lang.Code), zap.Int("restored", restored))

	if lang.IsBase() {
		res := PassResult{Language: lang.Code, Restored: restored}
		s.report(res)
		return res, nil
	}

	if err := sleep(ctx, s.settle); err != nil {
		return PassResult{Language: lang.Code, Restored: restored}, err
	}
	res, err := s.runPass(ctx, passSwitch)
	res.Restored = restored
	return res, err
}

// RouteChanged replaces the document after in-site navigation. The
// side-map is cleared and, for a non-base language, a pass runs after the
// settle delay.
func (s *Session) RouteChanged(ctx context.Context, doc *page.Document) (PassResult, error) {
	lang := s.state.Current()

	s.mu.Lock()
	s.supersede()
	s.doc = doc
	s.scanner.Reset()
	doc.SetLanguage(lang)
	s.mu.Unlock()

	if lang.IsBase() {
		return PassResult{Language: lang.Code}, nil
	}

	if err := sleep(ctx, s.settle); err != nil {
		return PassResult{Language: lang.Code}, err
	}
	return s.runPass(ctx, passSwitch)
}

// ContentChanged tells the session that visible text was added or changed.
// Calls within the debounce period are coalesced into one pass, which only
// runs when the current language is not the base language.
func (s *Session) ContentChanged() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.contentPass)
}

// Mutate runs fn with exclusive access to the document, then signals
// ContentChanged.
func (s *Session) Mutate(fn func(doc *page.Document)) {
	s.mu.Lock()
	fn(s.doc)
	s.mu.Unlock()
	s.ContentChanged()
}

// RunPass scans the document, translates the eligible text and applies it.
func (s *Session) RunPass(ctx context.Context) (PassResult, error) {
	return s.runPass(ctx, passManual)
}

// Close stops pending debounced passes. A pass already running finishes
// but its context is cancelled.
func (s *Session) Close() error {
	s.timerMu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerMu.Unlock()

	s.cancel()
	return nil
}

func (s *Session) contentPass() {
	if s.state.Current().IsBase() {
		return
	}
	if _, err := s.runPass(s.ctx, passContent); err != nil && s.ctx.Err() == nil {
		s.logger.Warn("content pass failed", zap.Error(err))
	}
}

// supersede invalidates the pass in flight and cancels its provider calls.
// Caller holds s.mu.
func (s *Session) supersede() {
	s.generation++
	s.lastNodes = nil
	if s.passCancel != nil {
		s.passCancel()
		s.passCancel = nil
	}
}

func (s *Session) runPass(ctx context.Context, kind passKind) (PassResult, error) {
	res := PassResult{Language: s.state.Current().Code}

	if kind == passSwitch {
		if err := s.guard.Acquire(ctx, 1); err != nil {
			return res, err
		}
	} else if !s.guard.TryAcquire(1) {
		res.Dropped = true
		s.logger.Debug("translation pass dropped", zap.String("lang", res.Language))
		s.report(res)
		return res, nil
	}
	defer s.guard.Release(1)

	// Read after acquiring: a switch may have happened while waiting.
	lang := s.state.Current()
	res.Language = lang.Code
	if lang.IsBase() {
		s.report(res)
		return res, nil
	}

	start := time.Now()
	passCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	gen := s.generation
	nodes := s.scanner.Scan(s.doc)
	scanned := make([]medtravel.TextNode, len(nodes))
	for i, n := range nodes {
		scanned[i] = n.TextNode
	}
	unchanged := kind == passContent && s.lastNodes != nil && !medtravel.DiffNodes(s.lastNodes, scanned).HasChanges()
	s.lastNodes = scanned
	if !unchanged {
		s.passCancel = cancel
	}
	s.mu.Unlock()

	res.Nodes = len(nodes)
	if unchanged {
		res.Skipped = true
		res.Duration = time.Since(start)
		s.report(res)
		return res, nil
	}

	texts := make([]string, len(nodes))
	for i, n := range nodes {
		texts[i] = n.Text
	}

	br, err := s.batch.Translate(passCtx, lang.Code, texts)
	res.CacheHits = br.CacheHits
	res.Fetched = br.Fetched
	res.Failed = br.Failed
	res.BatchCalls = br.Calls

	s.mu.Lock()
	if s.generation != gen || s.state.Current().Code != lang.Code {
		res.Stale = true
		// Cancelled by the switch, not by the caller.
		if ctx.Err() == nil {
			err = nil
		}
	} else {
		res.Applied = s.scanner.Apply(nodes, br.Translations)
		s.passCancel = nil
	}
	s.mu.Unlock()

	res.Duration = time.Since(start)
	s.logger.Debug("translation pass finished",
		zap.String("lang", res.Language),
		zap.Int("nodes", res.Nodes),
		zap.Int("applied", res.Applied),
		zap.Int("cache_hits", res.CacheHits),
		zap.Int("fetched", res.Fetched),
		zap.Int("failed", res.Failed),
		zap.Int("batch_calls", res.BatchCalls),
		zap.Bool("stale", res.Stale),
		zap.Duration("duration", res.Duration),
	)
	s.report(res)
	return res, err
}

func (s *Session) report(res PassResult) {
	if s.hook != nil {
		s.hook(res)
	}
}
