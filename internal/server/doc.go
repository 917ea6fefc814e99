// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the HTTP proxy that fronts the model providers.
//
// The proxy keeps API keys server-side: browser or CLI clients call the
// /api/... endpoints and the server forwards to the upstream providers with
// its own credentials.
//
// # Endpoints
//
//   - POST /api/gemini                - Raw generateContent forwarding
//   - POST /api/llm7/chat             - Chat completions, model from body
//   - POST /api/llm7/gpt-5-chat      - Chat completions, model pinned
//   - POST /api/llm7/gemini-search   - Web-search chat, model pinned
//   - POST /api/pollinations/generate - Image generation
//   - POST /api/enhance-prompt        - Prompt enhancement only
//   - GET  /health                    - Health check
//
// # Error Envelope
//
// Failures are reported as JSON:
//
//	{"error": "human-readable message", "code": "UPSTREAM_ERROR"}
//
// with codes API_KEY_MISSING, UPSTREAM_ERROR, CONNECTION_ERROR,
// INVALID_JSON, MISSING_MESSAGE, SYSTEM_ERROR, and NOT_FOUND.
package server
