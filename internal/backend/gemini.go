// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the model provider adapters.
package backend

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jeranaias/nexorax/internal/model"
)

// =============================================================================
// GEMINI WIRE FORMAT
// =============================================================================

// geminiContent is one turn in a generateContent request. Assistant turns
// use the "model" role.
type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Text string `json:"text"`
}

// =============================================================================
// GEMINI BACKEND
// =============================================================================

// GeminiBackend talks to the Google generateContent API. It is the only
// adapter that forwards file attachments.
type GeminiBackend struct {
	client *Client
}

// NewGeminiBackend creates the Gemini adapter.
func NewGeminiBackend(client *Client) *GeminiBackend {
	return &GeminiBackend{client: client}
}

// Invoke sends the windowed history plus the current message (with any
// attachments as inline_data) and returns the first candidate's text.
func (b *GeminiBackend) Invoke(ctx context.Context, req Request) (string, error) {
	if b.client.opts.GeminiAPIKey == "" {
		return "", ErrAPIKeyMissing
	}

	contents := GeminiContents(req.History, req.Message, req.Files)
	url := b.client.opts.GeminiBaseURL + "/models/" + b.client.opts.GeminiModel +
		":generateContent?key=" + b.client.opts.GeminiAPIKey

	var resp geminiResponse
	if err := b.client.postJSON(ctx, url, nil, map[string]any{"contents": contents}, &resp); err != nil {
		return "", err
	}

	return extractGeminiText(resp), nil
}

// Forward sends a raw generateContent payload upstream for modelID and
// returns the provider's JSON document unmodified. Used by the HTTP proxy,
// which passes client payloads through rather than reshaping them.
func (b *GeminiBackend) Forward(ctx context.Context, modelID string, payload json.RawMessage) (json.RawMessage, error) {
	if b.client.opts.GeminiAPIKey == "" {
		return nil, ErrAPIKeyMissing
	}
	if modelID == "" {
		modelID = b.client.opts.GeminiModel
	}

	url := b.client.opts.GeminiBaseURL + "/models/" + modelID +
		":generateContent?key=" + b.client.opts.GeminiAPIKey

	var out json.RawMessage
	if err := b.client.postJSON(ctx, url, nil, payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GeminiContents converts history plus the current message into the
// generateContent shape. Attachments ride on the current message; a
// data:...;base64, prefix is stripped when present.
func GeminiContents(history []model.ChatMessage, message string, files []model.File) []geminiContent {
	contents := make([]geminiContent, 0, len(history)+1)
	for _, msg := range history {
		role := "user"
		if msg.Role == string(model.RoleAssistant) {
			role = "model"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}

	current := geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: message}},
	}
	for _, f := range files {
		data := f.Base64
		if i := strings.IndexByte(data, ','); i >= 0 {
			data = data[i+1:]
		}
		if f.Type == "" || strings.TrimSpace(data) == "" {
			continue
		}
		current.Parts = append(current.Parts, geminiPart{
			InlineData: &geminiInlineData{MimeType: f.Type, Data: data},
		})
	}
	contents = append(contents, current)
	return contents
}

// extractGeminiText pulls the reply text out of a generateContent response,
// degrading to raw JSON when the shape is unexpected.
func extractGeminiText(resp geminiResponse) string {
	if len(resp.Candidates) > 0 {
		candidate := resp.Candidates[0]
		if len(candidate.Content.Parts) > 0 {
			return candidate.Content.Parts[0].Text
		}
		if data, err := json.Marshal(candidate); err == nil {
			return string(data)
		}
	}
	if resp.Text != "" {
		return resp.Text
	}
	if data, err := json.Marshal(resp); err == nil {
		return string(data)
	}
	return ""
}
