// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/nexorax/internal/pipeline"
)

func TestRenderSidebarMarksPinnedAndSelected(t *testing.T) {
	m, store, _ := newTestModel(t, nil)
	second := store.Create("a question about goroutines")
	store.TogglePin(second.ID)
	m.syncSidebarIndex()

	out := m.renderSidebar()

	assert.Contains(t, out, "Chats")
	assert.Contains(t, out, "*")
	assert.Contains(t, out, "a question about goroutines")
}

func TestRenderSidebarTruncatesLongTitles(t *testing.T) {
	m, store, _ := newTestModel(t, nil)
	store.Create("this title is far too long to fit inside the narrow sidebar column")

	out := m.renderSidebar()

	assert.Contains(t, out, "...")
	assert.NotContains(t, out, "narrow sidebar column")
}

func TestRenderTranscriptEmptyConversation(t *testing.T) {
	m, _, _ := newTestModel(t, nil)

	out := m.renderTranscript()

	assert.Contains(t, out, "Send a message")
}

func TestRenderTranscriptShowsTypingIndicator(t *testing.T) {
	m, store, pipe := newTestModel(t, nil)
	conv, ok := store.Get(m.currentID)
	require.True(t, ok)

	pipe.AppendUserMessage(conv, "explain channels", nil)
	pipe.AppendPlaceholder(conv, "gpt-5-chat", pipeline.SlotSingle)

	out := m.renderTranscript()

	assert.Contains(t, out, "You")
	assert.Contains(t, out, "explain channels")
	assert.Contains(t, out, "thinking...")
	assert.Contains(t, out, "GPT-5")
}

func TestRenderTranscriptSettledMessage(t *testing.T) {
	m, store, pipe := newTestModel(t, nil)
	conv, ok := store.Get(m.currentID)
	require.True(t, ok)

	pipe.AppendUserMessage(conv, "explain channels", nil)
	placeholder := pipe.AppendPlaceholder(conv, "gpt-5-chat", pipeline.SlotSingle)
	pipe.Finalize(conv.ID, placeholder, "Channels carry values between goroutines.")

	out := m.renderTranscript()

	assert.NotContains(t, out, "thinking...")
	assert.Contains(t, out, "Channels carry values between goroutines.")
}

func TestRenderDualColumnsPartitionsBySlot(t *testing.T) {
	m, store, pipe := newTestModel(t, nil)
	store.SetDualChatMode(true)
	store.SetDualModels("gpt-5-chat", "nexorax1")

	conv, ok := store.Get(m.currentID)
	require.True(t, ok)

	pipe.AppendUserMessage(conv, "compare yourselves", nil)
	primary := pipe.AppendPlaceholder(conv, "gpt-5-chat", pipeline.SlotPrimary)
	secondary := pipe.AppendPlaceholder(conv, "nexorax1", pipeline.SlotSecondary)
	pipe.Finalize(conv.ID, primary, "primary answer")
	pipe.Finalize(conv.ID, secondary, "secondary answer")

	out := m.renderTranscript()

	assert.Contains(t, out, "GPT-5")
	assert.Contains(t, out, "Gemini 2.5 Flash")
	assert.Contains(t, out, "primary answer")
	assert.Contains(t, out, "secondary answer")
}

func TestViewRendersAllSections(t *testing.T) {
	m, _, _ := newTestModel(t, nil)

	out := m.View()

	assert.Contains(t, out, "NexoraX")
	assert.Contains(t, out, "Type a message")
}

func TestHeaderShowsDualModels(t *testing.T) {
	m, store, _ := newTestModel(t, nil)
	store.SetDualChatMode(true)
	store.SetDualModels("gpt-5-chat", "nexorax1")

	out := m.renderHeader()

	assert.Contains(t, out, "GPT-5")
	assert.Contains(t, out, "Gemini 2.5 Flash")
}
