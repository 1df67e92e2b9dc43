package pipeline

import (
	"context"

	"github.com/ZaguanLabs/medtravel/page"
)

// Render translates doc in place into lang with a throwaway session and no
// settle delay. It is used for server-side page rendering and the CLI.
func Render(ctx context.Context, doc *page.Document, lang string, batch *BatchClient, opts ...SessionOption) (PassResult, error) {
	opts = append([]SessionOption{WithSettleDelay(0)}, opts...)
	s := NewSession(doc, NewLanguageState(nil), batch, opts...)
	defer s.Close()
	return s.SetLanguage(ctx, lang)
}
