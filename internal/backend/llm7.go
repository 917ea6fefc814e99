// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the model provider adapters.
package backend

import (
	"context"
	"encoding/json"
	"strings"
)

// =============================================================================
// LLM7 WIRE FORMAT
// =============================================================================

type llm7Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type llm7Request struct {
	Model       string        `json:"model"`
	Messages    []llm7Message `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type llm7Response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// =============================================================================
// LLM7 BACKEND
// =============================================================================

// LLM7Backend talks to an OpenAI-compatible chat completions API. It serves
// both the Chat and GPT5 families; the model identifier is fixed at
// construction.
type LLM7Backend struct {
	client *Client
	model  string
}

// NewLLM7Backend creates an LLM7 adapter for the given model.
func NewLLM7Backend(client *Client, modelID string) *LLM7Backend {
	return &LLM7Backend{client: client, model: modelID}
}

// Invoke sends the windowed history plus the current message and returns
// the first choice's content, unwrapping the nested-JSON quirk some models
// exhibit.
func (b *LLM7Backend) Invoke(ctx context.Context, req Request) (string, error) {
	messages := make([]llm7Message, 0, len(req.History)+1)
	for _, msg := range req.History {
		messages = append(messages, llm7Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, llm7Message{Role: "user", Content: req.Message})

	headers := map[string]string{}
	if b.client.opts.LLM7APIKey != "" {
		headers["Authorization"] = "Bearer " + b.client.opts.LLM7APIKey
	}

	var resp llm7Response
	err := b.client.postJSON(ctx, b.client.opts.LLM7BaseURL+"/chat/completions", headers, llm7Request{
		Model:       b.model,
		Messages:    messages,
		Temperature: 0.7,
	}, &resp)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "no choices in completion response"}
	}
	return UnwrapNestedReply(resp.Choices[0].Message.Content), nil
}

// UnwrapNestedReply handles the quirk where some models return a raw JSON
// completion document as their reply text. When the text parses as a
// {"choices":[...]} document, the inner message content is returned;
// otherwise the text passes through unchanged.
func UnwrapNestedReply(text string) string {
	if !strings.HasPrefix(text, "{") || !strings.Contains(text, "choices") {
		return text
	}

	var nested llm7Response
	if err := json.Unmarshal([]byte(text), &nested); err != nil {
		return text
	}
	if len(nested.Choices) == 0 || nested.Choices[0].Message.Content == "" {
		return text
	}
	return nested.Choices[0].Message.Content
}
