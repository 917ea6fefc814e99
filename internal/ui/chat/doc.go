// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the Bubble Tea chat view for the nexorax TUI.

The view renders a conversation sidebar (pinned conversations first), the
message transcript for the active conversation, and a single-line input.
In dual-chat mode the transcript splits into two columns, one per model,
each showing the shared user turns and its own responses.

Message mutations arrive as pipeline events. Attach bridges them into the
Bubble Tea loop with program.Send, so streaming updates repaint the
transcript as they happen.
*/
package chat
