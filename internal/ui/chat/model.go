// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/nexorax/internal/model"
	"github.com/jeranaias/nexorax/internal/pipeline"
	"github.com/jeranaias/nexorax/internal/storage"
	"github.com/jeranaias/nexorax/internal/ui/styles"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// sidebarWidth is the fixed column width of the conversation list.
	sidebarWidth = 28

	// chromeHeight is the vertical space taken by the header, input border,
	// input line, and help line around the transcript viewport.
	chromeHeight = 5
)

// modelCycle is the selection order for the model shortcut.
var modelCycle = []string{
	"gpt-5-chat",
	"nexorax1",
	"nexorax2",
	"gemini-2.5-flash-lite",
	"deepseek-reasoning",
	"nova-fast",
	"mistral-medium-2508",
}

// =============================================================================
// SENDER
// =============================================================================

// Sender dispatches a user message into a conversation. The orchestrator
// implements it; tests substitute stubs.
type Sender interface {
	Send(ctx context.Context, conversationID, text string, files []model.File) error
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Collaborators
	store  *storage.Store
	sender Sender
	pipe   *pipeline.Pipeline

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Active conversation
	currentID string

	// Sidebar state
	showSidebar  bool
	sidebarIndex int

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	help     help.Model

	// Markdown rendering for settled assistant messages.
	markdown *glamour.TermRenderer

	// Key bindings
	keys KeyMap

	// Transient state
	sending       bool
	confirmDelete bool
	status        string
	statusIsError bool
	statusSetAt   time.Time
}

// New creates the chat view over the given store and dispatcher. The most
// recent conversation becomes active; an empty store gets a fresh one.
func New(store *storage.Store, sender Sender, pipe *pipeline.Pipeline, theme *styles.Theme) Model {
	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.Prompt = "> "
	input.CharLimit = 0
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Typing

	vp := viewport.New(80, 20)

	m := Model{
		store:    store,
		sender:   sender,
		pipe:     pipe,
		theme:    theme,
		viewport: vp,
		input:    input,
		spinner:  sp,
		help:     help.New(),
		keys:     DefaultKeyMap(),
	}

	convs := store.List()
	if len(convs) == 0 {
		m.currentID = store.Create("").ID
	} else {
		m.currentID = convs[0].ID
	}
	m.showSidebar = true
	return m
}

// Attach bridges pipeline events into the Bubble Tea loop. Call it after
// tea.NewProgram, before Run.
func (m *Model) Attach(p *tea.Program) {
	m.pipe.Subscribe(func(ev pipeline.Event) {
		p.Send(PipelineEventMsg{Event: ev})
	})
}

// Init starts the cursor blink and spinner tickers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// current returns a snapshot of the active conversation, or nil when it was
// deleted out from under the view. The copy keeps rendering independent of
// backend goroutines still streaming into the live record.
func (m *Model) current() *model.Conversation {
	conv, ok := m.store.Snapshot(m.currentID)
	if !ok {
		return nil
	}
	return conv
}

// anyTyping reports whether the active conversation has an unsettled
// placeholder.
func (m *Model) anyTyping() bool {
	conv := m.current()
	if conv == nil {
		return false
	}
	for _, msg := range conv.Messages {
		if msg.IsTyping {
			return true
		}
	}
	return false
}

// chatWidth returns the width available to the transcript.
func (m *Model) chatWidth() int {
	w := m.width
	if m.showSidebar {
		w -= sidebarWidth + 1
	}
	if w < 20 {
		w = 20
	}
	return w
}

// rebuildMarkdown recreates the glamour renderer for the current width.
// Rendering falls back to plain text when the renderer cannot be built.
func (m *Model) rebuildMarkdown() {
	wrap := m.chatWidth() - 4
	if wrap < 20 {
		wrap = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		m.markdown = nil
		return
	}
	m.markdown = renderer
}
