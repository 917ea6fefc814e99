// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE ID SUFFIXES
// =============================================================================

// Message ID suffixes mark which slot a message belongs to.
const (
	SuffixUser      = "user"
	SuffixAssistant = "ai"
	SuffixPrimary   = "primary"
	SuffixSecondary = "secondary"
)

// NewMessageID creates a message ID from the current time, a slot suffix,
// and a short random tail, e.g. "1735689600123_primary_k3x9". The tail
// keeps same-slot IDs unique inside one millisecond.
func NewMessageID(suffix string) string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + suffix + "_" + randomBase36(4)
}

// =============================================================================
// FILE TYPE
// =============================================================================

// File is an attachment carried on a user message. The payload is stored
// base64-encoded, matching the persisted schema.
type File struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Base64 string `json:"base64"`
}

// IsImage reports whether the attachment has an image MIME type.
func (f File) IsImage() bool {
	return strings.HasPrefix(f.Type, "image/")
}

// HasImageFiles reports whether any attachment in the list is an image.
func HasImageFiles(files []File) bool {
	for _, f := range files {
		if f.IsImage() {
			return true
		}
	}
	return false
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
//
// Assistant messages begin life as placeholders with IsTyping set and empty
// content; streaming updates overwrite Content with cumulative text, and the
// terminal transition clears IsTyping atomically with the final content.
// IsPrimary is a tri-state: nil in single mode, set in dual mode to mark
// which column the message belongs to.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Streaming state. Persisted so an interrupted placeholder is visible
	// (and filtered from history) after a reload.
	IsTyping bool `json:"isTyping,omitempty"`

	// Model that produced (or is producing) an assistant message.
	Model string `json:"model,omitempty"`

	// Dual-mode slot marker. Absent on single-mode and user messages.
	IsPrimary *bool `json:"isPrimary,omitempty"`

	// Attachments on user messages.
	Files []File `json:"files,omitempty"`
}

// NewUserMessage creates a user message with attached files (may be nil).
func NewUserMessage(content string, files []File) *Message {
	return &Message{
		ID:        NewMessageID(SuffixUser),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
		Files:     files,
	}
}

// NewPlaceholder creates an empty assistant message with IsTyping set.
// The suffix selects the ID slot (_ai, _primary, _secondary).
func NewPlaceholder(modelID, suffix string) *Message {
	return &Message{
		ID:        NewMessageID(suffix),
		Role:      RoleAssistant,
		Timestamp: time.Now(),
		IsTyping:  true,
		Model:     modelID,
	}
}

// SetPrimary marks the message's dual-mode slot.
func (m *Message) SetPrimary(primary bool) {
	m.IsPrimary = &primary
}

// Primary reports whether the message is the primary half of a dual response.
// Returns false for messages with no slot marker.
func (m *Message) Primary() bool {
	return m.IsPrimary != nil && *m.IsPrimary
}

// Secondary reports whether the message is the secondary half of a dual
// response.
func (m *Message) Secondary() bool {
	return m.IsPrimary != nil && !*m.IsPrimary
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	return string(runes[:maxLen-3]) + "..."
}

// Clone returns a copy of the message. The IsPrimary pointer and the file
// slice are duplicated so the copy shares no mutable state.
func (m *Message) Clone() *Message {
	cp := *m
	if m.IsPrimary != nil {
		v := *m.IsPrimary
		cp.IsPrimary = &v
	}
	if m.Files != nil {
		cp.Files = make([]File, len(m.Files))
		copy(cp.Files, m.Files)
	}
	return &cp
}
