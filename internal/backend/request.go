// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the model provider adapters.
package backend

import (
	"context"

	"github.com/jeranaias/nexorax/internal/model"
)

// Request carries one invocation's inputs to a provider adapter.
type Request struct {
	// Message is the user's current message text.
	Message string

	// Files are the attachments on the current message. Only the Gemini
	// adapter forwards them.
	Files []model.File

	// History is the bounded prior conversation, already filtered and
	// windowed by the caller.
	History []model.ChatMessage

	// OnDelta, when non-nil, receives cumulative (never shrinking) progress
	// text zero or more times before the terminal return.
	OnDelta func(cumulative string)
}

// emit forwards progress text when a delta callback is attached.
func (r Request) emit(cumulative string) {
	if r.OnDelta != nil {
		r.OnDelta(cumulative)
	}
}

// Invoker is the adapter contract: zero or more OnDelta calls, then exactly
// one terminal return carrying the final content or an error.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (string, error)
}
