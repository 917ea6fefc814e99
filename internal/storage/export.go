// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation and settings persistence for nexorax.
package storage

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/nexorax/internal/model"
	"github.com/jeranaias/nexorax/internal/util"
)

// =============================================================================
// SESSION EXPORT
// =============================================================================

// ExportMarkdown renders a conversation as a Markdown document with the
// title, creation time, and every settled message. Placeholders still typing
// are skipped.
func ExportMarkdown(conv *model.Conversation) string {
	var sb strings.Builder
	sb.WriteString("# " + conv.Title + "\n\n")
	sb.WriteString("Created: " + conv.CreatedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range conv.Messages {
		if msg.IsTyping {
			continue
		}
		label := "**" + msg.Role.DisplayName() + "**"
		if msg.Role == model.RoleAssistant && msg.Model != "" {
			label += " (" + msg.Model + ")"
		}
		sb.WriteString(label + " (" + msg.Timestamp.Format("15:04") + "):\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}

// ExportJSON renders a conversation as pretty-printed JSON.
func ExportJSON(conv *model.Conversation) ([]byte, error) {
	return json.MarshalIndent(conv, "", "  ")
}

// WriteExport writes export data to path atomically.
func WriteExport(path string, data []byte) error {
	return util.AtomicWriteFile(path, data, 0644)
}

// =============================================================================
// SESSION LIST FORMATTING
// =============================================================================

// FormatSessionList formats conversations for CLI display: ID, creation
// time, message count, and title.
func FormatSessionList(conversations []*model.Conversation) string {
	if len(conversations) == 0 {
		return "No conversations found."
	}

	var sb strings.Builder
	sb.WriteString("Conversations:\n")
	sb.WriteString("--------------------------------------------------------------\n")
	sb.WriteString(pad("ID", 24) + " " + pad("Created", 17) + " " + pad("Msgs", 5) + " " + pad("Pin", 4) + " Title\n")
	sb.WriteString("--------------------------------------------------------------\n")

	for _, conv := range conversations {
		pin := ""
		if conv.IsPinned {
			pin = "*"
		}
		sb.WriteString(pad(util.TruncateRunesNoEllipsis(conv.ID, 24), 24) + " " +
			pad(conv.CreatedAt.Format("2006-01-02 15:04"), 17) + " " +
			pad(strconv.Itoa(conv.MessageCount()), 5) + " " +
			pad(pin, 4) + " " +
			util.TruncateRunes(util.CollapseNewlines(conv.Title), 40) + "\n")
	}
	return sb.String()
}

// FormatFeedbackList formats stored feedback entries for CLI display:
// submission time, star rating, and comment.
func FormatFeedbackList(entries []Feedback) string {
	if len(entries) == 0 {
		return "No feedback recorded."
	}

	var sb strings.Builder
	sb.WriteString("Feedback:\n")
	sb.WriteString("--------------------------------------------------------------\n")
	sb.WriteString(pad("Submitted", 17) + " " + pad("Rating", 7) + " Comment\n")
	sb.WriteString("--------------------------------------------------------------\n")

	for _, fb := range entries {
		stars := strings.Repeat("*", fb.Rating)
		sb.WriteString(pad(fb.Timestamp.Format("2006-01-02 15:04"), 17) + " " +
			pad(stars, 7) + " " +
			util.TruncateRunes(util.CollapseNewlines(fb.Comment), 60) + "\n")
	}
	return sb.String()
}

// pad pads a string to the specified width with spaces.
func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(runes))
}
