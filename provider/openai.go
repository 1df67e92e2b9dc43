package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ZaguanLabs/medtravel"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAI translates batches with OpenAI chat completions. It backs the
// server's translate endpoint.
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float32
	style       medtravel.TranslationStyle
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string                     // OpenAI API key
	Model       string                     // Model to use (default: DefaultOpenAIModel)
	Temperature float32                    // Temperature for generation (default: 0.2)
	BaseURL     string                     // Custom base URL (optional)
	Style       medtravel.TranslationStyle // Default style when a request has none
}

// NewOpenAI creates an OpenAI provider.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	style := cfg.Style
	if style == "" {
		style = medtravel.StyleMedical
	}

	return &OpenAI{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
		style:       style,
	}
}

// Translate translates a batch of texts.
func (p *OpenAI) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	userMessage, err := json.Marshal(req.Texts)
	if err != nil {
		return nil, &medtravel.ProviderError{Message: "encoding texts", Cause: err}
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: string(userMessage)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &medtravel.ProviderError{
			Message:    "OpenAI API call failed",
			Cause:      err,
			StatusCode: statusCode(err),
			Retryable:  isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return nil, &medtravel.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return p.parseResponse(resp.Choices[0].Message.Content, len(req.Texts))
}

func (p *OpenAI) buildSystemPrompt(req TranslateRequest) string {
	source := medtravel.LookupLanguage(req.SourceLang)
	target := medtravel.LookupLanguage(req.TargetLang)

	style := req.Style
	if style == "" {
		style = p.style
	}

	contextText := "The texts come from a medical-tourism website: treatment descriptions, doctor profiles, hospital pages, FAQs and inquiry forms."
	if req.Context != "" {
		contextText += " Page: " + req.Context + "."
	}

	prompt := fmt.Sprintf(`# Role
You are a professional healthcare translator. You translate website text from %s (%s) into %s (%s) for international patients.

# Context
%s

# Register
%s

# Rules
- Keep medical terms, drug names, dosages and units accurate. Do not add or remove claims.
- Keep names of doctors, hospitals and cities unchanged unless a standard exonym exists.
- Do NOT translate URLs, email addresses, phone numbers, prices or placeholders (e.g. {name}, %%s).
- Preserve the number and order of the input strings.`,
		source.Name, source.Code, target.Name, target.Code, contextText, medtravel.StyleDescription(style))

	if target.RTL {
		prompt += "\n- The target language is written right to left; keep embedded Latin brand names as they are."
	}

	if len(req.ExcludedTerms) > 0 {
		prompt += "\n\n# Exclusions\nKeep these terms exactly as written:\n- " + strings.Join(req.ExcludedTerms, "\n- ")
	}

	prompt += `

# Format
Return a JSON object with a single key "translations" holding an array of strings in the same order as the input.
Example: { "translations": ["translated string 1", "translated string 2"] }`

	return prompt
}

func (p *OpenAI) parseResponse(content string, expectedCount int) ([]string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &obj); err == nil {
		if raw, ok := obj["translations"]; ok {
			return toStrings(raw, expectedCount)
		}
		for _, raw := range obj {
			if out, err := toStrings(raw, expectedCount); err == nil {
				return out, nil
			}
		}
	}

	if out, err := toStrings(json.RawMessage(content), expectedCount); err == nil {
		return out, nil
	}

	return nil, &medtravel.ProviderError{Message: "invalid response format from OpenAI"}
}

func toStrings(raw json.RawMessage, expectedCount int) ([]string, error) {
	var arr []any
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, err
	}

	out := make([]string, len(arr))
	for i, v := range arr {
		if s, ok := v.(string); ok {
			out[i] = s
		} else {
			out[i] = fmt.Sprintf("%v", v)
		}
	}

	if len(out) != expectedCount {
		return nil, &medtravel.CountMismatchError{Expected: expectedCount, Got: len(out)}
	}
	return out, nil
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func isRetryableError(err error) bool {
	if code := statusCode(err); code != 0 {
		return medtravel.RetryableStatus(code)
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"rate limit", "timeout", "connection refused", "connection reset", "temporary", "eof"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

var _ Provider = (*OpenAI)(nil)
