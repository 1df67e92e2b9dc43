package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ZaguanLabs/medtravel"
)

// DefaultTranslatePath is the path of the translate endpoint.
const DefaultTranslatePath = "/api/translate"

// APIRequest is the JSON body of POST /api/translate.
type APIRequest struct {
	Texts      []string `json:"texts"`
	TargetLang string   `json:"targetLang"`
	SourceLang string   `json:"sourceLang"`
}

// APIResponse is the JSON body returned by POST /api/translate.
// TranslatedTexts[i] corresponds to Texts[i] of the request; an empty entry
// means that text has no translation yet.
type APIResponse struct {
	Success         bool     `json:"success"`
	TranslatedTexts []string `json:"translatedTexts,omitempty"`
	Message         string   `json:"message,omitempty"`
}

// HTTPConfig holds configuration for the translate API client.
type HTTPConfig struct {
	BaseURL string        // Site origin, e.g. "https://medtravel.example"
	Path    string        // Endpoint path (default: DefaultTranslatePath)
	Client  *http.Client  // HTTP client (default: a client with Timeout)
	Timeout time.Duration // Request timeout when Client is nil (default: 30s)
}

// HTTPProvider calls the site's translate API.
type HTTPProvider struct {
	endpoint string
	client   *http.Client
}

// NewHTTPProvider creates a client for the translate API.
func NewHTTPProvider(cfg HTTPConfig) *HTTPProvider {
	path := cfg.Path
	if path == "" {
		path = DefaultTranslatePath
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &HTTPProvider{
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/"),
		client:   client,
	}
}

// Endpoint returns the full URL requests are sent to.
func (p *HTTPProvider) Endpoint() string {
	return p.endpoint
}

// Translate sends one batch to the translate API.
func (p *HTTPProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	source := req.SourceLang
	if source == "" {
		source = medtravel.BaseLanguage
	}

	body, err := json.Marshal(APIRequest{Texts: req.Texts, TargetLang: req.TargetLang, SourceLang: source})
	if err != nil {
		return nil, &medtravel.ProviderError{Message: "encoding request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &medtravel.ProviderError{Message: "building request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", medtravel.UserAgent())

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &medtravel.ProviderError{
			Message:   "translate request failed",
			Cause:     err,
			Retryable: ctx.Err() == nil,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, &medtravel.ProviderError{Message: "reading response", Cause: err, Retryable: true}
	}

	var out APIResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := out.Message
		if decodeErr != nil {
			msg = ""
		}
		return nil, medtravel.NewStatusError(msg, resp.StatusCode)
	}

	if decodeErr != nil {
		return nil, &medtravel.ProviderError{Message: "invalid response body", Cause: decodeErr, StatusCode: resp.StatusCode}
	}

	if !out.Success {
		msg := out.Message
		if msg == "" {
			msg = "translation failed"
		}
		return nil, &medtravel.ProviderError{Message: msg, StatusCode: resp.StatusCode}
	}

	if len(out.TranslatedTexts) != len(req.Texts) {
		return nil, &medtravel.CountMismatchError{Expected: len(req.Texts), Got: len(out.TranslatedTexts)}
	}

	return out.TranslatedTexts, nil
}

func (p *HTTPProvider) String() string {
	return fmt.Sprintf("http(%s)", p.endpoint)
}

var _ Provider = (*HTTPProvider)(nil)
