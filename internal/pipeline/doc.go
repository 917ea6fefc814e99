// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pipeline manages the message lifecycle inside a conversation.
//
// User messages are appended settled. Assistant messages are appended as
// typing placeholders and move through streaming updates to exactly one
// terminal transition, either Finalize or Fail. Both terminal transitions
// produce the same shape: settled assistant text with the typing flag
// cleared. A failure is just text the user reads, not a distinct state.
//
// Interested parties (the terminal UI, tests) observe mutations through
// Subscribe. Events are published after the mutation is applied, so a
// subscriber reading the message sees the new state. The pipeline never
// touches presentation and never persists; persistence is the
// orchestrator's call once a request settles.
package pipeline
