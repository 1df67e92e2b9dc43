// Package provider contains translation backends: the site's own
// POST /api/translate endpoint, OpenAI and an in-process mock.
package provider

import "github.com/ZaguanLabs/medtravel"

// Provider is an alias to the main package interface for convenience.
type Provider = medtravel.Provider

// TranslateRequest is an alias to the main package type.
type TranslateRequest = medtravel.TranslateRequest
