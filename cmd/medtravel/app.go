package main

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ZaguanLabs/medtravel"
	"github.com/ZaguanLabs/medtravel/cache"
	"github.com/ZaguanLabs/medtravel/internal/config"
	"github.com/ZaguanLabs/medtravel/internal/logging"
	"github.com/ZaguanLabs/medtravel/provider"
)

func loadConfig(opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Development)
}

// buildProvider returns the upstream translator named by the config, behind
// rate limiting and bounded retry.
func buildProvider(cfg *config.Config) (medtravel.Provider, error) {
	var upstream medtravel.Provider
	switch cfg.Translation.Provider {
	case "mock":
		return provider.NewMock(), nil
	case "openai", "":
		if cfg.Translation.OpenAIKey == "" {
			return nil, errors.New("OpenAI API key required (translation.openai_key or OPENAI_API_KEY)")
		}
		upstream = provider.NewOpenAI(provider.OpenAIConfig{
			APIKey:  cfg.Translation.OpenAIKey,
			Model:   cfg.Translation.OpenAIModel,
			BaseURL: cfg.Translation.OpenAIBaseURL,
			Style:   medtravel.TranslationStyle(cfg.Translation.Style),
		})
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Translation.Provider)
	}

	limited := medtravel.NewRateLimitedProvider(upstream, medtravel.RateLimitConfig{
		RequestsPerMinute: cfg.Translation.RateLimitRPM,
	})
	retry := medtravel.DefaultRetryConfig()
	retry.MaxRetries = cfg.Translation.MaxRetries
	if cfg.Translation.RequestTimeout > 0 {
		retry.AttemptTimeout = cfg.Translation.RequestTimeout
	}
	return medtravel.NewRetryableProvider(limited, retry), nil
}

// buildCache returns Redis when configured, otherwise an in-memory cache.
// The closer is never nil.
func buildCache(cfg *config.Config) (cache.Cache, io.Closer, error) {
	if cfg.Translation.RedisURL == "" {
		return cache.NewMemory(cfg.Translation.CacheTTL), nopCloser{}, nil
	}
	r, err := cache.NewRedis(cache.RedisConfig{
		URL: cfg.Translation.RedisURL,
		TTL: cfg.Translation.CacheTTL,
	})
	if err != nil {
		return nil, nil, err
	}
	return r, r, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
