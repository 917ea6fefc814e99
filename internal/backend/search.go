// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the model provider adapters.
package backend

import (
	"context"
	"strings"
)

// searchAttribution is appended to every search-augmented reply so the user
// can tell live results from model memory.
const searchAttribution = "\n\n*🔍 Answered with real-time web search*"

// searchModel is the LLM7 identifier behind the search family.
const searchModel = "gemini-search"

// =============================================================================
// SEARCH BACKEND
// =============================================================================

// SearchBackend serves the search family. Messages that actually need live
// information go to the search-augmented model and get the attribution
// suffix; greetings and small talk fall back to a plain chat call with the
// lite model, which answers faster and doesn't waste a search.
type SearchBackend struct {
	search   *LLM7Backend
	fallback *LLM7Backend
}

// NewSearchBackend creates the search adapter over the shared client.
func NewSearchBackend(client *Client) *SearchBackend {
	return &SearchBackend{
		search:   NewLLM7Backend(client, searchModel),
		fallback: NewLLM7Backend(client, client.opts.LiteModel),
	}
}

// Invoke routes by message intent and returns the reply.
func (b *SearchBackend) Invoke(ctx context.Context, req Request) (string, error) {
	if !ShouldSearchWeb(req.Message) {
		return b.fallback.Invoke(ctx, req)
	}

	reply, err := b.search.Invoke(ctx, req)
	if err != nil {
		return "", err
	}
	return reply + searchAttribution, nil
}

// =============================================================================
// SEARCH INTENT HEURISTIC
// =============================================================================

// smallTalkPhrases are messages that never need a web search.
var smallTalkPhrases = []string{
	"hi", "hello", "hey", "yo", "sup",
	"ok", "okay", "thanks", "thank you", "thx",
	"bye", "goodbye", "good morning", "good afternoon", "good evening", "good night",
	"how are you", "how are you doing", "what's up", "whats up",
	"who are you", "what can you do", "help",
	"lol", "haha", "nice", "cool", "great",
}

// ShouldSearchWeb decides whether a message needs live information.
// Greetings and small talk return false; everything else defaults to true,
// matching the search family's purpose.
func ShouldSearchWeb(message string) bool {
	normalized := strings.ToLower(strings.TrimSpace(message))
	normalized = strings.TrimRight(normalized, ".!?,")
	if normalized == "" {
		return false
	}

	for _, phrase := range smallTalkPhrases {
		if normalized == phrase {
			return false
		}
	}

	// Short messages that open with a greeting ("hi there", "hello bot")
	// are still small talk.
	if len([]rune(normalized)) < 25 {
		for _, phrase := range []string{"hi ", "hello ", "hey ", "thanks ", "thank you "} {
			if strings.HasPrefix(normalized, phrase) {
				return false
			}
		}
	}

	return true
}
