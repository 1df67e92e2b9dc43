package provider

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockCall records one Translate invocation.
type MockCall struct {
	Request TranslateRequest
	Start   time.Time
	End     time.Time
}

// Mock is an in-process provider used by tests and by the server's "mock"
// provider setting. Unknown texts come back as "[lang] text".
type Mock struct {
	// Translations maps source text to a fixed translation for every language.
	Translations map[string]string
	// Delay is slept (honouring ctx) before answering each call.
	Delay time.Duration

	mu        sync.Mutex
	calls     []MockCall
	failures  map[int]error
	failAll   error
	inFlight  int
	maxFlight int
}

// NewMock creates a mock provider with a few fixed translations.
func NewMock() *Mock {
	return &Mock{
		Translations: map[string]string{
			"Hello":       "Bonjour",
			"Hello world": "Bonjour le monde",
			"Our doctors": "Nos médecins",
		},
		failures: make(map[int]error),
	}
}

// Translate returns mock translations.
func (m *Mock) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	start := time.Now()

	m.mu.Lock()
	idx := len(m.calls)
	m.calls = append(m.calls, MockCall{Request: cloneRequest(req), Start: start})
	m.inFlight++
	if m.inFlight > m.maxFlight {
		m.maxFlight = m.inFlight
	}
	err := m.failAll
	if e, ok := m.failures[idx+1]; ok {
		err = e
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.calls[idx].End = time.Now()
		m.mu.Unlock()
	}()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}

	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		if translation, ok := m.Translations[text]; ok {
			results[i] = translation
		} else {
			results[i] = fmt.Sprintf("[%s] %s", req.TargetLang, text)
		}
	}
	return results, nil
}

// FailCall makes the n-th call (1-based) return err.
func (m *Mock) FailCall(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[n] = err
}

// FailAll makes every call return err; nil restores normal behaviour.
func (m *Mock) FailAll(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAll = err
}

// Calls returns a copy of the recorded calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Translate calls.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// MaxConcurrent returns the highest number of calls observed in flight at once.
func (m *Mock) MaxConcurrent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxFlight
}

// Reset clears recorded calls and failures.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.failures = make(map[int]error)
	m.failAll = nil
	m.maxFlight = 0
}

func cloneRequest(req TranslateRequest) TranslateRequest {
	req.Texts = append([]string(nil), req.Texts...)
	return req
}

var _ Provider = (*Mock)(nil)
