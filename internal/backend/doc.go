// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the model provider adapters.
//
// A model identifier routes to exactly one Family, and each family has an
// adapter speaking its provider's wire format:
//
//   - Gemini: Google generateContent, with inline_data file attachments
//   - GPT5 and Chat: OpenAI-style chat completions via LLM7
//   - Search: search-augmented replies, with a plain-chat fallback for
//     greetings and small talk
//   - Image: prompt enhancement followed by Pollinations image generation
//
// All adapters implement Invoke(ctx, Request) (string, error): zero or more
// OnDelta calls with monotonically growing cumulative text, then exactly one
// terminal return. Adapters share one rate-limited HTTP client and the
// package's typed error taxonomy.
//
// The full routing table lives in FamilyOf and is validated at
// configuration-load time, so an unknown family can never reach dispatch.
package backend
