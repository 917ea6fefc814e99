// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/nexorax/internal/backend"
	"github.com/jeranaias/nexorax/internal/pipeline"
)

// Update handles Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.chatWidth()
		m.viewport.Height = m.height - chromeHeight
		m.help.Width = msg.Width
		m.rebuildMarkdown()
		m.refreshTranscript()
		return m, nil

	case PipelineEventMsg:
		if msg.Event.ConversationID == m.currentID {
			m.refreshTranscript()
			m.viewport.GotoBottom()
		}
		if msg.Event.Kind == pipeline.EventMessageSettled && !m.anyTyping() {
			m.sending = false
		}
		return m, nil

	case SendDoneMsg:
		m.sending = m.anyTyping()
		if msg.Err != nil {
			return m.setStatus(msg.Err.Error(), true)
		}
		return m, nil

	case StatusMsg:
		return m.setStatus(msg.Text, false)

	case ClearStatusMsg:
		// A newer status supersedes the pending reset.
		if msg.SetAt.Equal(m.statusSetAt) {
			m.status = ""
			m.statusIsError = false
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.anyTyping() {
			m.refreshTranscript()
		}
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A pending delete only listens for its confirmation.
	if m.confirmDelete {
		m.confirmDelete = false
		if msg.String() == "y" || msg.String() == "Y" {
			return m.deleteCurrent()
		}
		return m.setStatus("Delete cancelled", false)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Send):
		return m.submit()

	case key.Matches(msg, m.keys.NewChat):
		conv := m.store.Create("")
		m.currentID = conv.ID
		m.sidebarIndex = 0
		m.refreshTranscript()
		return m.setStatus("New chat", false)

	case key.Matches(msg, m.keys.DeleteChat):
		m.confirmDelete = true
		return m.setStatus("Delete this chat? (y/n)", false)

	case key.Matches(msg, m.keys.PinChat):
		m.store.TogglePin(m.currentID)
		m.store.Persist()
		m.syncSidebarIndex()
		return m, nil

	case key.Matches(msg, m.keys.ToggleSidebar):
		m.showSidebar = !m.showSidebar
		m.viewport.Width = m.chatWidth()
		m.rebuildMarkdown()
		m.refreshTranscript()
		return m, nil

	case key.Matches(msg, m.keys.ToggleDual):
		return m.toggleDual()

	case key.Matches(msg, m.keys.CycleModel):
		return m.cycleModel()

	case key.Matches(msg, m.keys.PrevChat):
		return m.moveSelection(-1)

	case key.Matches(msg, m.keys.NextChat):
		return m.moveSelection(1)

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// ACTIONS
// =============================================================================

// submit dispatches the input line to the active conversation.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if m.sending {
		return m.setStatus("Still waiting for a response", false)
	}

	m.input.Reset()
	m.sending = true
	return m, sendCmd(m.sender, m.currentID, text, nil)
}

// deleteCurrent removes the active conversation and selects its neighbor.
func (m Model) deleteCurrent() (tea.Model, tea.Cmd) {
	m.store.Delete(m.currentID)
	m.store.Persist()

	convs := m.store.List()
	if len(convs) == 0 {
		m.currentID = m.store.Create("").ID
		m.store.Persist()
	} else {
		if m.sidebarIndex >= len(convs) {
			m.sidebarIndex = len(convs) - 1
		}
		m.currentID = convs[m.sidebarIndex].ID
	}
	m.refreshTranscript()
	return m.setStatus("Chat deleted", false)
}

// toggleDual flips dual-chat mode, rejecting an ineligible selected model.
func (m Model) toggleDual() (tea.Model, tea.Cmd) {
	if !m.store.DualChatMode() && !backend.DualEligible(m.store.SelectedModel()) {
		return m.setStatus(backend.DisplayName(m.store.SelectedModel())+" cannot join dual mode", true)
	}
	enabled := !m.store.DualChatMode()
	m.store.SetDualChatMode(enabled)
	m.refreshTranscript()
	if enabled {
		primary, secondary := m.store.DualModels()
		return m.setStatus("Dual mode: "+backend.DisplayName(primary)+" + "+backend.DisplayName(secondary), false)
	}
	return m.setStatus("Dual mode off", false)
}

// cycleModel advances the selected model through the catalog order.
func (m Model) cycleModel() (tea.Model, tea.Cmd) {
	selected := m.store.SelectedModel()
	next := modelCycle[0]
	for i, id := range modelCycle {
		if id == selected {
			next = modelCycle[(i+1)%len(modelCycle)]
			break
		}
	}
	m.store.SetSelectedModel(next)
	return m.setStatus("Model: "+backend.DisplayName(next), false)
}

// moveSelection shifts the sidebar selection and activates the conversation.
func (m Model) moveSelection(delta int) (tea.Model, tea.Cmd) {
	convs := m.store.List()
	if len(convs) == 0 {
		return m, nil
	}

	idx := m.sidebarIndex + delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(convs) {
		idx = len(convs) - 1
	}
	m.sidebarIndex = idx
	m.currentID = convs[idx].ID
	m.refreshTranscript()
	m.viewport.GotoBottom()
	return m, nil
}

// syncSidebarIndex repoints the selection at the active conversation after
// the display order changed.
func (m *Model) syncSidebarIndex() {
	for i, conv := range m.store.List() {
		if conv.ID == m.currentID {
			m.sidebarIndex = i
			return
		}
	}
	m.sidebarIndex = 0
}

// setStatus shows a transient status message.
func (m Model) setStatus(text string, isError bool) (tea.Model, tea.Cmd) {
	m.status = text
	m.statusIsError = isError
	m.statusSetAt = time.Now()
	return m, clearStatusCmd(m.statusSetAt)
}

// refreshTranscript re-renders the transcript into the viewport.
func (m *Model) refreshTranscript() {
	m.viewport.SetContent(m.renderTranscript())
}
