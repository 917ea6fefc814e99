// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

// ChatMessage is the role/content shape forwarded to model backends.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Files   []File `json:"-"`
}

// HistoryWindow returns the bounded history forwarded to a backend: typing
// placeholders and empty messages are dropped first, then the most recent
// limit messages survive. The input slice is not modified.
func HistoryWindow(msgs []*Message, limit int) []*Message {
	filtered := make([]*Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.IsTyping || msg.IsEmpty() {
			continue
		}
		filtered = append(filtered, msg)
	}
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}
	return filtered
}

// PartitionDual splits a dual-mode conversation into per-backend views.
// Each side sees every user message plus only its own assistant replies, so
// neither model is ever shown text the other one produced.
func PartitionDual(msgs []*Message) (primary, secondary []*Message) {
	for _, msg := range msgs {
		switch {
		case msg.Role == RoleUser:
			primary = append(primary, msg)
			secondary = append(secondary, msg)
		case msg.Primary():
			primary = append(primary, msg)
		case msg.Secondary():
			secondary = append(secondary, msg)
		}
	}
	return primary, secondary
}

// ToChatMessages converts conversation messages to the backend history shape.
func ToChatMessages(msgs []*Message) []ChatMessage {
	out := make([]ChatMessage, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, ChatMessage{
			Role:    msg.Role.String(),
			Content: msg.Content,
			Files:   msg.Files,
		})
	}
	return out
}
