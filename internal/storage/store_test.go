// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jeranaias/nexorax/internal/model"
)

func newTestStore(t *testing.T) (*Store, *KV) {
	t.Helper()
	kv := openTestKV(t)
	return NewStore(kv, zap.NewNop()), kv
}

func TestStoreCreateAndGet(t *testing.T) {
	store, _ := newTestStore(t)

	conv := store.Create("Tell me about Go generics")
	require.NotNil(t, conv)
	assert.Equal(t, "Tell me about Go generics", conv.Title)
	assert.Empty(t, conv.Messages)

	got, ok := store.Get(conv.ID)
	require.True(t, ok)
	assert.Same(t, conv, got)

	_, ok = store.Get("nope")
	assert.False(t, ok)
}

func TestStoreDeleteIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	conv := store.Create("hello")

	store.Delete(conv.ID)
	_, ok := store.Get(conv.ID)
	assert.False(t, ok)

	// Second delete converges on the same state.
	store.Delete(conv.ID)
	assert.Equal(t, 0, store.Count())

	// Unknown IDs are a no-op.
	store.Delete("never-existed")
}

func TestStoreTogglePin(t *testing.T) {
	store, _ := newTestStore(t)
	conv := store.Create("pin me")

	store.TogglePin(conv.ID)
	assert.True(t, conv.IsPinned)
	store.TogglePin(conv.ID)
	assert.False(t, conv.IsPinned)

	// Unknown ID is a no-op, not a panic.
	store.TogglePin("missing")
}

func TestStoreListOrdering(t *testing.T) {
	store, _ := newTestStore(t)

	a := store.Create("a")
	b := store.Create("b")
	c := store.Create("c")

	// Force distinct creation times, oldest to newest: a < b < c.
	base := time.Now()
	a.CreatedAt = base.Add(-3 * time.Hour)
	b.CreatedAt = base.Add(-2 * time.Hour)
	c.CreatedAt = base.Add(-1 * time.Hour)

	list := store.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{c.ID, b.ID, a.ID}, ids(list), "newest first")

	// Pinned conversations float above unpinned regardless of age.
	store.TogglePin(a.ID)
	list = store.List()
	assert.Equal(t, []string{a.ID, c.ID, b.ID}, ids(list))

	// Creation-time ties keep insertion order.
	b.CreatedAt = c.CreatedAt
	list = store.List()
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, ids(list))
}

func ids(list []*model.Conversation) []string {
	out := make([]string, len(list))
	for i, conv := range list {
		out[i] = conv.ID
	}
	return out
}

func TestStorePersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nexorax.db")

	kv, err := OpenKV(path)
	require.NoError(t, err)
	store := NewStore(kv, zap.NewNop())

	conv := store.Create("persist me")
	msg := model.NewUserMessage("hello there", nil)
	conv.AddMessage(msg)
	store.TogglePin(conv.ID)
	store.Persist()
	require.NoError(t, kv.Close())

	kv, err = OpenKV(path)
	require.NoError(t, err)
	defer kv.Close()
	reloaded := NewStore(kv, zap.NewNop())

	got, ok := reloaded.Get(conv.ID)
	require.True(t, ok)
	assert.Equal(t, "persist me", got.Title)
	assert.True(t, got.IsPinned)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "hello there", got.Messages[0].Content)
	assert.Equal(t, model.RoleUser, got.Messages[0].Role)
}

func TestStoreLoadCorruptDocument(t *testing.T) {
	kv := openTestKV(t)
	require.NoError(t, kv.Set(KeyChats, "{not json"))

	store := NewStore(kv, zap.NewNop())
	assert.Equal(t, 0, store.Count(), "corrupt document yields empty store")

	// The store still works after the soft failure.
	conv := store.Create("fresh start")
	_, ok := store.Get(conv.ID)
	assert.True(t, ok)
}

func TestStoreClearAll(t *testing.T) {
	store, kv := newTestStore(t)
	store.Create("one")
	store.Create("two")

	store.ClearAll()
	assert.Equal(t, 0, store.Count())
	assert.Empty(t, store.List())

	value, ok, err := kv.Get(KeyChats)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "{}", value, "empty set persisted, not the old one")
}

func TestStoreSettings(t *testing.T) {
	store, _ := newTestStore(t)

	assert.Equal(t, DefaultSelectedModel, store.SelectedModel())
	store.SetSelectedModel("nexorax1")
	assert.Equal(t, "nexorax1", store.SelectedModel())

	assert.False(t, store.DarkMode())
	store.SetDarkMode(true)
	assert.True(t, store.DarkMode())

	assert.False(t, store.DualChatMode())
	store.SetDualChatMode(true)
	assert.True(t, store.DualChatMode())

	primary, secondary := store.DualModels()
	assert.Equal(t, DefaultDualPrimary, primary)
	assert.Equal(t, DefaultDualSecondary, secondary)

	store.SetDualModels("gpt-5-mini", "nexorax1")
	primary, secondary = store.DualModels()
	assert.Equal(t, "gpt-5-mini", primary)
	assert.Equal(t, "nexorax1", secondary)
}

func TestStoreFeedback(t *testing.T) {
	store, _ := newTestStore(t)

	assert.Empty(t, store.Feedbacks())

	require.NoError(t, store.AddFeedback(5, "great"))
	require.NoError(t, store.AddFeedback(1, "bad"))

	err := store.AddFeedback(0, "invalid")
	assert.ErrorIs(t, err, ErrInvalidRating)
	err = store.AddFeedback(6, "invalid")
	assert.ErrorIs(t, err, ErrInvalidRating)

	entries := store.Feedbacks()
	require.Len(t, entries, 2)
	assert.Equal(t, 5, entries[0].Rating)
	assert.Equal(t, "great", entries[0].Comment)
	assert.NotEmpty(t, entries[0].ID)
	assert.Equal(t, 1, entries[1].Rating)
}

func TestFormatFeedbackList(t *testing.T) {
	assert.Equal(t, "No feedback recorded.", FormatFeedbackList(nil))

	entries := []Feedback{
		{ID: "a", Rating: 5, Comment: "great\nstuff", Timestamp: time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC)},
		{ID: "b", Rating: 2, Timestamp: time.Date(2026, 1, 3, 9, 30, 0, 0, time.UTC)},
	}

	out := FormatFeedbackList(entries)
	assert.Contains(t, out, "2026-01-02 15:04")
	assert.Contains(t, out, "*****")
	assert.Contains(t, out, "great stuff", "newlines collapse to spaces")
	assert.Contains(t, out, "2026-01-03 09:30")
}

func TestStoreSnapshotDetached(t *testing.T) {
	store, _ := newTestStore(t)
	conv := store.Create("live record")
	conv.AddMessage(model.NewUserMessage("original", nil))

	snap, ok := store.Snapshot(conv.ID)
	require.True(t, ok)
	assert.NotSame(t, conv, snap)

	// Mutating the snapshot never reaches the live record.
	snap.Messages[0].Content = "mutated"
	snap.Title = "renamed"
	assert.Equal(t, "original", conv.Messages[0].Content)
	assert.Equal(t, "live record", conv.Title)

	_, ok = store.Snapshot("nope")
	assert.False(t, ok)
}

func TestStoreSetTitle(t *testing.T) {
	store, _ := newTestStore(t)
	conv := store.Create("")

	store.SetTitle(conv.ID, "first question")
	assert.Equal(t, "first question", conv.Title)

	// Unknown IDs are a no-op.
	store.SetTitle("nope", "ignored")
}

func TestExportMarkdown(t *testing.T) {
	conv := model.NewConversation("export me")
	conv.AddMessage(model.NewUserMessage("question", nil))
	reply := model.NewPlaceholder("gpt-5-chat", model.SuffixAssistant)
	reply.Content = "answer"
	reply.IsTyping = false
	conv.AddMessage(reply)
	typing := model.NewPlaceholder("gpt-5-chat", model.SuffixAssistant)
	conv.AddMessage(typing)

	md := ExportMarkdown(conv)
	assert.Contains(t, md, "# export me")
	assert.Contains(t, md, "**You**")
	assert.Contains(t, md, "**Assistant** (gpt-5-chat)")
	assert.Contains(t, md, "answer")
	// One leading rule plus one per settled message; the typing placeholder
	// contributes nothing.
	assert.Equal(t, 3, strings.Count(md, "---"))
}
