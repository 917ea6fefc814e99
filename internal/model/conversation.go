// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"crypto/rand"
	"strconv"
	"time"
)

// TitleLimit is the maximum rune length of a derived conversation title
// before the ellipsis is appended.
const TitleLimit = 50

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds a complete chat conversation with history and metadata.
// The JSON tags match the persisted schema.
type Conversation struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Messages  []*Message `json:"messages"`
	CreatedAt time.Time  `json:"createdAt"`
	IsPinned  bool       `json:"isPinned"`
}

// NewConversation creates a conversation titled from the seed text. The seed
// message itself is not appended; callers add it through the pipeline.
func NewConversation(seedText string) *Conversation {
	return &Conversation{
		ID:        generateConversationID(),
		Title:     DeriveTitle(seedText),
		Messages:  make([]*Message, 0),
		CreatedAt: time.Now(),
	}
}

// DeriveTitle builds a conversation title from the seed text: the first
// TitleLimit runes, with "..." appended when the text was longer.
func DeriveTitle(seedText string) string {
	runes := []rune(seedText)
	if len(runes) <= TitleLimit {
		return seedText
	}
	return string(runes[:TitleLimit]) + "..."
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message to the conversation.
func (c *Conversation) AddMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
}

// LastMessage returns the most recent message, or nil if empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// MessageByID returns a message by its ID, or nil when absent.
func (c *Conversation) MessageByID(id string) *Message {
	for _, msg := range c.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// LastUserMessage returns the most recent user message, or nil.
func (c *Conversation) LastUserMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleUser {
			return c.Messages[i]
		}
	}
	return nil
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// Clone creates a deep copy of the conversation.
func (c *Conversation) Clone() *Conversation {
	clone := &Conversation{
		ID:        c.ID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		IsPinned:  c.IsPinned,
		Messages:  make([]*Message, len(c.Messages)),
	}
	for i, msg := range c.Messages {
		clone.Messages[i] = msg.Clone()
	}
	return clone
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// randomBase36 returns n random base36 characters.
func randomBase36(n int) string {
	buf := make([]byte, n)
	rand.Read(buf)
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = base36Alphabet[int(b)%len(base36Alphabet)]
	}
	return string(out)
}

// generateConversationID creates a unique conversation ID: the current
// millisecond timestamp plus a 9-character random base36 suffix.
func generateConversationID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + randomBase36(9)
}
