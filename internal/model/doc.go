// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Conversation: A titled, ordered sequence of messages plus metadata
//     (pin state, creation time)
//   - Message: A single user or assistant message; assistant messages carry
//     a typing flag while their content is still being produced
//   - File: An attached-file descriptor (name, MIME type, base64 payload)
//   - ChatMessage: The role/content shape forwarded to model backends
//
// # Identity
//
// Conversation IDs are a millisecond timestamp plus a random base36 suffix.
// Message IDs reuse the timestamp with a per-slot suffix (_user, _ai,
// _primary, _secondary) so the two halves of a dual-mode response can never
// collide within one exchange.
//
// # History Windows
//
// HistoryWindow returns the bounded suffix of prior messages forwarded to a
// backend: typing placeholders and empty messages are filtered out first,
// then the most recent N survive. PartitionDual splits a dual-mode
// conversation so each backend only ever sees its own half of the exchange.
package model
