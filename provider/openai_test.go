package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ZaguanLabs/medtravel"
)

func TestBuildSystemPrompt(t *testing.T) {
	p := NewOpenAI(OpenAIConfig{APIKey: "test"})

	req := TranslateRequest{
		TargetLang:    "fr",
		SourceLang:    "en",
		Context:       "Dental implants",
		ExcludedTerms: []string{"MedTravel", "JCI"},
	}

	prompt := p.buildSystemPrompt(req)

	if !strings.Contains(prompt, "Français (fr)") {
		t.Error("Prompt should contain target language")
	}
	if !strings.Contains(prompt, "English (en)") {
		t.Error("Prompt should contain source language")
	}
	if !strings.Contains(prompt, "Dental implants") {
		t.Error("Prompt should contain context")
	}
	if !strings.Contains(prompt, "MedTravel") || !strings.Contains(prompt, "JCI") {
		t.Error("Prompt should contain excluded terms")
	}
	if !strings.Contains(prompt, "clinical") {
		t.Error("Prompt should default to the medical style")
	}
	if strings.Contains(prompt, "right to left") {
		t.Error("French prompt should not carry the RTL hint")
	}
}

func TestBuildSystemPrompt_StyleAndRTL(t *testing.T) {
	p := NewOpenAI(OpenAIConfig{APIKey: "test"})

	prompt := p.buildSystemPrompt(TranslateRequest{TargetLang: "ar_SA", Style: medtravel.StyleMarketing})

	if !strings.Contains(prompt, "persuasive") {
		t.Error("Prompt should contain marketing style description")
	}
	if !strings.Contains(prompt, "right to left") {
		t.Error("Arabic prompt should carry the RTL hint")
	}
	if !strings.Contains(prompt, "(ar)") {
		t.Error("regional code should resolve to its base language")
	}
}

func TestParseResponse_TranslationsKey(t *testing.T) {
	p := NewOpenAI(OpenAIConfig{APIKey: "test"})

	result, err := p.parseResponse(`{"translations": ["Bonjour", "Monde"]}`, 2)
	if err != nil {
		t.Fatalf("parseResponse failed: %v", err)
	}
	if len(result) != 2 || result[0] != "Bonjour" || result[1] != "Monde" {
		t.Errorf("Unexpected translations: %v", result)
	}
}

func TestParseResponse_DirectArray(t *testing.T) {
	p := NewOpenAI(OpenAIConfig{APIKey: "test"})

	result, err := p.parseResponse(`["Bonjour", "Monde"]`, 2)
	if err != nil {
		t.Fatalf("parseResponse failed: %v", err)
	}
	if result[0] != "Bonjour" || result[1] != "Monde" {
		t.Errorf("Unexpected translations: %v", result)
	}
}

func TestParseResponse_FallbackArrayKey(t *testing.T) {
	p := NewOpenAI(OpenAIConfig{APIKey: "test"})

	result, err := p.parseResponse(`{"results": ["Bonjour", "Monde"]}`, 2)
	if err != nil {
		t.Fatalf("parseResponse failed: %v", err)
	}
	if result[0] != "Bonjour" || result[1] != "Monde" {
		t.Errorf("Unexpected translations: %v", result)
	}
}

func TestParseResponse_CountMismatch(t *testing.T) {
	p := NewOpenAI(OpenAIConfig{APIKey: "test"})

	_, err := p.parseResponse(`{"translations": ["Bonjour"]}`, 2)
	var mismatch *medtravel.CountMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("Expected CountMismatchError, got %v", err)
	}
}

func TestParseResponse_Garbage(t *testing.T) {
	p := NewOpenAI(OpenAIConfig{APIKey: "test"})

	_, err := p.parseResponse(`not json`, 1)
	var provErr *medtravel.ProviderError
	if !errors.As(err, &provErr) {
		t.Errorf("Expected ProviderError, got %v", err)
	}
}

func TestOpenAI_Translate(t *testing.T) {
	var gotTexts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var body struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		json.Unmarshal([]byte(body.Messages[1].Content), &gotTexts)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"translations\":[\"Bonjour\",\"Nos médecins\"]}"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAI(OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"})
	out, err := p.Translate(context.Background(), TranslateRequest{Texts: []string{"Hello", "Our doctors"}, TargetLang: "fr"})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if len(out) != 2 || out[1] != "Nos médecins" {
		t.Errorf("unexpected output %v", out)
	}
	if len(gotTexts) != 2 || gotTexts[0] != "Hello" {
		t.Errorf("user message should be the JSON text array, got %v", gotTexts)
	}
}

func TestOpenAI_Translate_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit_error"}}`))
	}))
	defer srv.Close()

	p := NewOpenAI(OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"})
	_, err := p.Translate(context.Background(), TranslateRequest{Texts: []string{"Hello"}, TargetLang: "fr"})

	var provErr *medtravel.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("Expected ProviderError, got %v", err)
	}
	if !provErr.Retryable || provErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("429 should be retryable with status, got %+v", provErr)
	}
}

func TestOpenAI_Translate_Empty(t *testing.T) {
	p := NewOpenAI(OpenAIConfig{APIKey: "test", BaseURL: "http://127.0.0.1:1"})
	out, err := p.Translate(context.Background(), TranslateRequest{TargetLang: "fr"})
	if err != nil || len(out) != 0 {
		t.Errorf("empty batch should short-circuit, got %v, %v", out, err)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("context deadline exceeded (Client.Timeout exceeded)"), true},
		{errors.New("invalid api key"), false},
	}
	for _, tt := range tests {
		if got := isRetryableError(tt.err); got != tt.want {
			t.Errorf("isRetryableError(%q) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
