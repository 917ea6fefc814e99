// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the model provider adapters.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// Options holds provider endpoints, credentials, and client tuning.
type Options struct {
	// GeminiBaseURL is the generateContent API root
	// (default: https://generativelanguage.googleapis.com/v1beta).
	GeminiBaseURL string

	// GeminiAPIKey authenticates Gemini requests (query parameter).
	GeminiAPIKey string

	// GeminiModel is the upstream model the nexorax1 identifier maps to.
	GeminiModel string

	// LLM7BaseURL is the OpenAI-compatible API root
	// (default: https://api.llm7.io/v1).
	LLM7BaseURL string

	// LLM7APIKey authenticates LLM7 requests (bearer token, optional).
	LLM7APIKey string

	// PollinationsBaseURL is the image generation root
	// (default: https://image.pollinations.ai).
	PollinationsBaseURL string

	// LiteModel serves prompt enhancement and the search small-talk
	// fallback (default: gemini-2.5-flash-lite).
	LiteModel string

	// Timeout bounds each provider request (default: 120s, matching the
	// provider-side generation budgets).
	Timeout time.Duration

	// RequestsPerSecond and Burst tune the shared rate limiter.
	RequestsPerSecond float64
	Burst             int
}

// DefaultOptions returns the default client options.
func DefaultOptions() Options {
	return Options{
		GeminiBaseURL:       "https://generativelanguage.googleapis.com/v1beta",
		GeminiModel:         "gemini-2.0-flash-exp",
		LLM7BaseURL:         "https://api.llm7.io/v1",
		PollinationsBaseURL: "https://image.pollinations.ai",
		LiteModel:           "gemini-2.5-flash-lite",
		Timeout:             120 * time.Second,
		RequestsPerSecond:   2,
		Burst:               4,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is the shared HTTP machinery behind every adapter: one pooled
// http.Client, one rate limiter, one error mapping.
type Client struct {
	opts       Options
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

// NewClient creates a provider client. Zero-valued options fall back to
// defaults.
func NewClient(opts Options, log *zap.Logger) *Client {
	def := DefaultOptions()
	if opts.GeminiBaseURL == "" {
		opts.GeminiBaseURL = def.GeminiBaseURL
	}
	if opts.GeminiModel == "" {
		opts.GeminiModel = def.GeminiModel
	}
	if opts.LLM7BaseURL == "" {
		opts.LLM7BaseURL = def.LLM7BaseURL
	}
	if opts.PollinationsBaseURL == "" {
		opts.PollinationsBaseURL = def.PollinationsBaseURL
	}
	if opts.LiteModel == "" {
		opts.LiteModel = def.LiteModel
	}
	if opts.Timeout == 0 {
		opts.Timeout = def.Timeout
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = def.RequestsPerSecond
	}
	if opts.Burst == 0 {
		opts.Burst = def.Burst
	}

	return &Client{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		log:        log,
	}
}

// postJSON sends a JSON body and decodes the JSON response into out.
func (c *Client) postJSON(ctx context.Context, url string, headers map[string]string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return c.mapErr("rate limiter interrupted", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.mapErr("request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("upstream error",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode))
		return &ClientError{
			Type:    ErrTypeUpstream,
			Message: "upstream returned " + resp.Status + ": " + truncateBody(data),
		}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
		}
	}
	return nil
}

// fetch performs a rate-limited GET and discards the body. Used to trigger
// image generation, where the URL itself is the deliverable.
func (c *Client) fetch(ctx context.Context, url string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return c.mapErr("rate limiter interrupted", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.mapErr("request failed", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &ClientError{Type: ErrTypeUpstream, Message: "upstream returned " + resp.Status}
	}
	return nil
}

// mapErr converts transport errors into the client taxonomy.
func (c *Client) mapErr(msg string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return &ClientError{Type: ErrTypeConnection, Message: "request canceled", Cause: err}
	}
	return &ClientError{Type: ErrTypeConnection, Message: msg, Cause: err}
}

// truncateBody keeps upstream error bodies readable in messages.
func truncateBody(data []byte) string {
	const max = 200
	s := string(data)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
