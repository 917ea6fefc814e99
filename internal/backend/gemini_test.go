// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jeranaias/nexorax/internal/model"
)

func TestGeminiContents(t *testing.T) {
	history := []model.ChatMessage{
		{Role: "user", Content: "question"},
		{Role: "assistant", Content: "answer"},
	}
	files := []model.File{
		{Name: "photo.png", Type: "image/png", Base64: "data:image/png;base64,AAAA"},
		{Name: "raw.jpg", Type: "image/jpeg", Base64: "BBBB"},
		{Name: "broken.gif", Type: "image/gif", Base64: ""},
	}

	contents := GeminiContents(history, "what is in these?", files)
	require.Len(t, contents, 3)

	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role, "assistant maps to the model role")

	current := contents[2]
	assert.Equal(t, "user", current.Role)
	require.Len(t, current.Parts, 3, "text part plus two valid attachments")
	assert.Equal(t, "what is in these?", current.Parts[0].Text)
	assert.Equal(t, "AAAA", current.Parts[1].InlineData.Data, "data URL prefix stripped")
	assert.Equal(t, "image/png", current.Parts[1].InlineData.MimeType)
	assert.Equal(t, "BBBB", current.Parts[2].InlineData.Data, "bare base64 kept as-is")
}

func TestGeminiInvoke(t *testing.T) {
	var capturedPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path + "?" + r.URL.RawQuery

		var body struct {
			Contents []geminiContent `json:"contents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.NotEmpty(t, body.Contents)

		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "gemini says hi"}}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewClient(Options{
		GeminiBaseURL:     srv.URL,
		GeminiAPIKey:      "secret",
		GeminiModel:       "gemini-2.0-flash-exp",
		RequestsPerSecond: 1000,
		Burst:             1000,
	}, zap.NewNop())

	reply, err := NewGeminiBackend(client).Invoke(context.Background(), Request{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "gemini says hi", reply)
	assert.Equal(t, "/models/gemini-2.0-flash-exp:generateContent?key=secret", capturedPath)
}

func TestGeminiInvokeMissingAPIKey(t *testing.T) {
	client := NewClient(Options{}, zap.NewNop())
	_, err := NewGeminiBackend(client).Invoke(context.Background(), Request{Message: "hello"})
	assert.ErrorIs(t, err, ErrAPIKeyMissing)
}

func TestExtractGeminiText(t *testing.T) {
	var empty geminiResponse
	require.NoError(t, json.Unmarshal([]byte(`{"text":"top-level text"}`), &empty))
	assert.Equal(t, "top-level text", extractGeminiText(empty))

	var noParts geminiResponse
	require.NoError(t, json.Unmarshal([]byte(`{"candidates":[{"content":{"parts":[]}}]}`), &noParts))
	assert.NotEmpty(t, extractGeminiText(noParts), "degrades to raw JSON, never empty")
}
