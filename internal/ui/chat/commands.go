// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/nexorax/internal/model"
)

// statusInterval is how long a transient status message stays visible.
const statusInterval = 3 * time.Second

// sendCmd dispatches the message off the UI goroutine. Streaming progress
// arrives separately through pipeline events; the returned message only
// reports validation failures.
func sendCmd(sender Sender, conversationID, text string, files []model.File) tea.Cmd {
	return func() tea.Msg {
		err := sender.Send(context.Background(), conversationID, text, files)
		return SendDoneMsg{ConversationID: conversationID, Err: err}
	}
}

// clearStatusCmd schedules the status bar reset.
func clearStatusCmd(setAt time.Time) tea.Cmd {
	return tea.Tick(statusInterval, func(time.Time) tea.Msg {
		return ClearStatusMsg{SetAt: setAt}
	})
}
