// Package pipeline runs the page auto-translation passes: language state,
// batched translation through the cache, and the triggers that start a pass.
package pipeline

import (
	"sync"

	"github.com/ZaguanLabs/medtravel"
)

// LanguageState holds the visitor's single active language.
type LanguageState struct {
	mu     sync.RWMutex
	code   string
	store  PreferenceStore
	subs   map[int]func(medtravel.Language)
	nextID int
}

// NewLanguageState creates the state and restores a previously persisted
// choice from store. A nil store keeps the choice in memory only.
func NewLanguageState(store PreferenceStore) *LanguageState {
	if store == nil {
		store = NewMemoryPreferences()
	}

	code := medtravel.BaseLanguage
	if saved, err := store.Load(PreferenceKey); err == nil && saved != "" {
		code = saved
	}

	return &LanguageState{
		code:  code,
		store: store,
		subs:  make(map[int]func(medtravel.Language)),
	}
}

// Code returns the code as last set, without resolution.
func (s *LanguageState) Code() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.code
}

// Current returns the active language. Unknown codes resolve to the base
// language.
func (s *LanguageState) Current() medtravel.Language {
	return medtravel.LookupLanguage(s.Code())
}

// SetLanguage makes code the active language, persists it and notifies
// subscribers with the resolved language. The code is stored as given; the
// returned error only reports a persistence failure.
func (s *LanguageState) SetLanguage(code string) (medtravel.Language, error) {
	s.mu.Lock()
	s.code = code
	subs := make([]func(medtravel.Language), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	err := s.store.Save(PreferenceKey, code)

	lang := medtravel.LookupLanguage(code)
	for _, fn := range subs {
		fn(lang)
	}
	return lang, err
}

// Subscribe registers fn to be called after every SetLanguage. The returned
// function removes the subscription.
func (s *LanguageState) Subscribe(fn func(medtravel.Language)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
