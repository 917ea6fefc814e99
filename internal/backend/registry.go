// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the model provider adapters.
package backend

import "go.uber.org/zap"

// Registry hands out the adapter for a model identifier. Adapters share one
// rate-limited client; per-model LLM7 adapters are created on demand.
type Registry struct {
	client *Client
	gemini *GeminiBackend
	search *SearchBackend
	image  *ImageBackend
}

// NewRegistry creates a registry over a fresh client.
func NewRegistry(opts Options, log *zap.Logger) *Registry {
	client := NewClient(opts, log)
	return &Registry{
		client: client,
		gemini: NewGeminiBackend(client),
		search: NewSearchBackend(client),
		image:  NewImageBackend(client),
	}
}

// For returns the adapter serving modelID. Every identifier resolves;
// unknown models get the default chat adapter under their own name.
func (r *Registry) For(modelID string) Invoker {
	switch FamilyOf(modelID) {
	case FamilyGemini:
		return r.gemini
	case FamilySearch:
		return r.search
	case FamilyImage:
		return r.image
	default:
		// Chat and GPT5 both speak chat completions; the model ID rides
		// through as-is.
		return NewLLM7Backend(r.client, modelID)
	}
}

// Image returns the image adapter, used directly by the HTTP proxy for the
// enhance-prompt and generation endpoints.
func (r *Registry) Image() *ImageBackend {
	return r.image
}

// Gemini returns the Gemini adapter, used directly by the HTTP proxy for
// raw payload forwarding.
func (r *Registry) Gemini() *GeminiBackend {
	return r.gemini
}
