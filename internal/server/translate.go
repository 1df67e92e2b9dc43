package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/medtravel"
	"github.com/ZaguanLabs/medtravel/cache"
	"github.com/ZaguanLabs/medtravel/provider"
)

const (
	maxTranslateTexts = 100
	maxTextLength     = 5000
)

// translate serves the batch endpoint the page pipeline calls.
func (s *Server) translate(c *gin.Context) {
	var req provider.APIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, provider.APIResponse{Message: "invalid request body"})
		return
	}
	if err := validateTranslateRequest(req); err != nil {
		c.JSON(http.StatusBadRequest, provider.APIResponse{Message: err.Error()})
		return
	}

	lang := medtravel.LookupLanguage(req.TargetLang)
	source := medtravel.LookupLanguage(req.SourceLang).Code

	out, err := s.translateTexts(c.Request.Context(), lang, source, req.Texts)
	if err != nil {
		s.logger.Error("Translation failed",
			zap.String("lang", lang.Code),
			zap.Int("texts", len(req.Texts)),
			zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, provider.APIResponse{Message: "translation failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, provider.APIResponse{Success: true, TranslatedTexts: out})
}

func validateTranslateRequest(req provider.APIRequest) error {
	if len(req.Texts) == 0 {
		return fmt.Errorf("texts must not be empty")
	}
	if len(req.Texts) > maxTranslateTexts {
		return fmt.Errorf("at most %d texts per request", maxTranslateTexts)
	}
	for i, t := range req.Texts {
		if utf8.RuneCountInString(t) > maxTextLength {
			return fmt.Errorf("text %d exceeds %d characters", i, maxTextLength)
		}
	}
	return nil
}

// translateTexts returns translations positionally. Blank strings are echoed,
// cached strings are served from the cache and the rest go upstream in one
// call. A string upstream left untranslated comes back empty. Base-language
// targets are echoed unchanged.
func (s *Server) translateTexts(ctx context.Context, lang medtravel.Language, source string, texts []string) ([]string, error) {
	out := make([]string, len(texts))
	copy(out, texts)

	pending := make([]string, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			pending = append(pending, t)
		}
	}
	if lang.IsBase() || len(pending) == 0 {
		return out, nil
	}

	lookup, err := cache.LookupAll(ctx, s.cache, lang.Code, pending, 0)
	if err != nil {
		return nil, err
	}

	fetched := make(map[string]string, len(lookup.Misses))
	if len(lookup.Misses) > 0 {
		if s.provider == nil {
			return nil, &medtravel.ProviderError{Message: "no translation provider configured"}
		}
		translated, err := s.provider.Translate(ctx, medtravel.TranslateRequest{
			Texts:      lookup.Misses,
			TargetLang: lang.Code,
			SourceLang: source,
			Style:      medtravel.TranslationStyle(s.cfg.Translation.Style),
		})
		if err != nil {
			return nil, err
		}
		if len(translated) != len(lookup.Misses) {
			return nil, &medtravel.CountMismatchError{Expected: len(lookup.Misses), Got: len(translated)}
		}
		for i, text := range lookup.Misses {
			if translated[i] == "" {
				continue
			}
			fetched[text] = translated[i]
			if err := s.cache.Set(lang.Code, text, translated[i]); err != nil {
				s.logger.Warn("Failed to cache translation", zap.String("lang", lang.Code), zap.Error(err))
			}
		}
	}

	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		if v, ok := lookup.Hits[t]; ok {
			out[i] = v
		} else if v, ok := fetched[t]; ok {
			out[i] = v
		} else {
			// Upstream gave nothing back; an echo would be cached as a translation.
			out[i] = ""
		}
	}
	return out, nil
}
