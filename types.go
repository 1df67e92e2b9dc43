package medtravel

import (
	"context"
	"time"
)

// BaseLanguage is the language the site's source text is authored in.
const BaseLanguage = "en"

const (
	// DefaultBatchSize is the number of strings sent per translation call.
	DefaultBatchSize = 20
	// DefaultBatchPause separates successive batch calls within one pass.
	DefaultBatchPause = 100 * time.Millisecond
)

// TranslationStyle controls the tone of upstream translations.
type TranslationStyle string

const (
	// StyleNeutral uses a neutral, professional tone.
	StyleNeutral TranslationStyle = "neutral"
	// StyleMarketing uses persuasive, engaging language for landing pages.
	StyleMarketing TranslationStyle = "marketing"
	// StyleMedical keeps clinical terminology precise and conservative.
	StyleMedical TranslationStyle = "medical"
)

// TextNode is one translatable unit found on a page.
type TextNode struct {
	ID       string            // Content-addressed key: hash of path + original text
	Text     string            // Original text (trimmed)
	Hash     string            // SHA-256 of Text
	Path     string            // Structural path of the text node in the document
	Metadata map[string]string // Parent tag, etc.
}

// TranslateRequest is a single batch sent to a Provider.
type TranslateRequest struct {
	Texts         []string
	TargetLang    string
	SourceLang    string
	ExcludedTerms []string
	Context       string
	Style         TranslationStyle
}

// Provider translates a batch of texts. Implementations must return exactly
// one translation per input text, in input order.
type Provider interface {
	Translate(ctx context.Context, req TranslateRequest) ([]string, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, req TranslateRequest) ([]string, error)

// Translate calls f(ctx, req).
func (f ProviderFunc) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	return f(ctx, req)
}

// StyleDescription returns the prompt guidance for a translation style.
func StyleDescription(style TranslationStyle) string {
	switch style {
	case StyleMarketing:
		return "Use warm, persuasive language that builds trust with international patients. Keep calls to action short."
	case StyleMedical:
		return "Use precise, conservative clinical language. Never soften or exaggerate medical claims."
	default:
		return "Use a neutral, professional tone suitable for a healthcare website."
	}
}
