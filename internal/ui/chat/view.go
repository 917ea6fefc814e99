// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/nexorax/internal/backend"
	"github.com/jeranaias/nexorax/internal/model"
)

// View renders the chat screen.
func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	main := m.viewport.View()
	if m.showSidebar {
		main = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), main)
	}

	sections := []string{
		m.renderHeader(),
		main,
		m.theme.InputContainer.Width(m.width).Render(m.input.View()),
		m.renderFooter(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// =============================================================================
// HEADER AND FOOTER
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("NexoraX")

	var modelInfo string
	if m.store.DualChatMode() {
		primary, secondary := m.store.DualModels()
		modelInfo = m.theme.PrimaryHeader.Render(backend.DisplayName(primary)) +
			m.theme.HeaderModel.Render(" + ") +
			m.theme.SecondaryHeader.Render(backend.DisplayName(secondary))
	} else {
		modelInfo = m.theme.HeaderModel.Render(backend.DisplayName(m.store.SelectedModel()))
	}

	return m.theme.Header.Width(m.width).Render(title + "  " + modelInfo)
}

func (m Model) renderFooter() string {
	if m.status != "" {
		style := m.theme.StatusBar
		if m.statusIsError {
			style = m.theme.StatusError
		}
		return style.Render(m.status)
	}
	return m.help.View(m.keys)
}

// =============================================================================
// SIDEBAR
// =============================================================================

// renderSidebar draws the conversation list, pinned conversations first.
func (m Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("Chats"))
	b.WriteString("\n")

	for _, conv := range m.store.List() {
		title := conv.Title
		if title == "" {
			title = "New chat"
		}

		marker := "  "
		if conv.IsPinned {
			marker = m.theme.SidebarPinned.Render("* ")
		}
		line := marker + runewidth.Truncate(title, sidebarWidth-4, "...")

		if conv.ID == m.currentID {
			line = m.theme.SidebarSelected.Width(sidebarWidth - 1).Render(line)
		} else {
			line = m.theme.SidebarItem.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	height := m.height - chromeHeight
	return m.theme.Sidebar.Width(sidebarWidth).Height(height).Render(b.String())
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderTranscript renders the active conversation. Dual mode splits the
// transcript into a column per model.
func (m Model) renderTranscript() string {
	conv := m.current()
	if conv == nil {
		return ""
	}
	if len(conv.Messages) == 0 {
		return m.theme.Typing.Render("Send a message to start the conversation.")
	}

	if m.store.DualChatMode() {
		return m.renderDualColumns(conv)
	}

	width := m.chatWidth() - 2
	var parts []string
	for _, msg := range conv.Messages {
		parts = append(parts, m.renderMessage(msg, width))
	}
	return strings.Join(parts, "\n")
}

// renderDualColumns shows each model's view of the conversation side by
// side: the shared user turns plus that model's own responses.
func (m Model) renderDualColumns(conv *model.Conversation) string {
	primary, secondary := model.PartitionDual(conv.Messages)
	primaryID, secondaryID := m.store.DualModels()
	colWidth := (m.chatWidth() - 3) / 2

	left := m.renderColumn(m.theme.PrimaryHeader.Render(backend.DisplayName(primaryID)), primary, colWidth)
	right := m.renderColumn(m.theme.SecondaryHeader.Render(backend.DisplayName(secondaryID)), secondary, colWidth)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, " | ", right)
}

func (m Model) renderColumn(header string, msgs []*model.Message, width int) string {
	parts := []string{header}
	for _, msg := range msgs {
		parts = append(parts, m.renderMessage(msg, width))
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(parts, "\n"))
}

// renderMessage draws one message bubble.
func (m Model) renderMessage(msg *model.Message, width int) string {
	if msg.Role == model.RoleUser {
		label := m.theme.UserLabel.Render("You")
		body := msg.Content
		if len(msg.Files) > 0 {
			names := make([]string, 0, len(msg.Files))
			for _, f := range msg.Files {
				names = append(names, f.Name)
			}
			body += "\n" + m.theme.HelpText.Render("attached: "+strings.Join(names, ", "))
		}
		return label + "\n" + m.theme.UserBubble.MaxWidth(width).Render(body)
	}

	label := m.theme.AssistantLabel.Render(backend.DisplayName(msg.Model))
	if msg.IsTyping && msg.IsEmpty() {
		return label + "\n" + m.theme.Typing.Render(m.spinner.View()+" thinking...")
	}

	body := msg.Content
	if !msg.IsTyping {
		body = m.renderMarkdown(body)
	}
	return label + "\n" + m.theme.AssistantBubble.MaxWidth(width).Render(body)
}

// renderMarkdown renders settled assistant content, falling back to the
// raw text when the renderer is unavailable.
func (m Model) renderMarkdown(content string) string {
	if m.markdown == nil {
		return content
	}
	out, err := m.markdown.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSpace(out)
}
