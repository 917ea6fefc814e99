// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/jeranaias/nexorax/internal/backend"
	"github.com/jeranaias/nexorax/internal/model"
	"github.com/jeranaias/nexorax/internal/pipeline"
	"github.com/jeranaias/nexorax/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =============================================================================
// TEST DOUBLES
// =============================================================================

type invokerFunc func(ctx context.Context, req backend.Request) (string, error)

func (f invokerFunc) Invoke(ctx context.Context, req backend.Request) (string, error) {
	return f(ctx, req)
}

// recordingResolver hands out per-model fakes and records which models were
// resolved, in order.
type recordingResolver struct {
	mu       sync.Mutex
	resolved []string
	invokers map[string]invokerFunc
	fallback invokerFunc
}

func (r *recordingResolver) For(modelID string) backend.Invoker {
	r.mu.Lock()
	r.resolved = append(r.resolved, modelID)
	r.mu.Unlock()

	if f, ok := r.invokers[modelID]; ok {
		return f
	}
	if r.fallback != nil {
		return r.fallback
	}
	return invokerFunc(func(context.Context, backend.Request) (string, error) {
		return "fallback reply", nil
	})
}

func (r *recordingResolver) models() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.resolved))
	copy(out, r.resolved)
	return out
}

func newTestHarness(t *testing.T, resolver Resolver) (*Orchestrator, *storage.Store, *storage.KV) {
	t.Helper()

	kv, err := storage.OpenKV(filepath.Join(t.TempDir(), "nexorax.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	log := zap.NewNop()
	store := storage.NewStore(kv, log)
	pipe := pipeline.New(store.Locker(), log)
	return New(store, pipe, resolver, log), store, kv
}

// =============================================================================
// SINGLE MODE
// =============================================================================

func TestSendSingleSettlesReply(t *testing.T) {
	resolver := &recordingResolver{
		fallback: invokerFunc(func(_ context.Context, req backend.Request) (string, error) {
			req.OnDelta("partial")
			return "the full reply", nil
		}),
	}
	orch, store, kv := newTestHarness(t, resolver)

	conv := store.Create("first question")
	require.NoError(t, orch.Send(context.Background(), conv.ID, "first question", nil))

	require.Equal(t, 2, conv.MessageCount())
	user, reply := conv.Messages[0], conv.Messages[1]

	assert.Equal(t, model.RoleUser, user.Role)
	assert.Equal(t, "first question", user.Content)

	assert.Equal(t, model.RoleAssistant, reply.Role)
	assert.Equal(t, "the full reply", reply.Content)
	assert.False(t, reply.IsTyping)
	assert.Equal(t, storage.DefaultSelectedModel, reply.Model)
	assert.Nil(t, reply.IsPrimary, "single mode carries no slot marker")

	// The exchange is durable: a fresh store over the same KV sees it.
	reloaded := storage.NewStore(kv, zap.NewNop())
	persisted, ok := reloaded.Get(conv.ID)
	require.True(t, ok)
	assert.Equal(t, 2, persisted.MessageCount())
	assert.Equal(t, "the full reply", persisted.Messages[1].Content)
}

func TestSendSingleBackendErrorSettlesFailText(t *testing.T) {
	resolver := &recordingResolver{
		fallback: invokerFunc(func(context.Context, backend.Request) (string, error) {
			return "", errors.New("upstream exploded")
		}),
	}
	orch, store, _ := newTestHarness(t, resolver)

	conv := store.Create("hello")
	require.NoError(t, orch.Send(context.Background(), conv.ID, "hello", nil),
		"a backend failure settles the placeholder, it does not fail the send")

	reply := conv.LastMessage()
	assert.False(t, reply.IsTyping)
	assert.Contains(t, reply.Content, "Sorry, GPT-5 ran into an error")
}

func TestSendSingleHistoryExcludesCurrentMessage(t *testing.T) {
	var captured []model.ChatMessage
	resolver := &recordingResolver{
		fallback: invokerFunc(func(_ context.Context, req backend.Request) (string, error) {
			captured = req.History
			return "ok", nil
		}),
	}
	orch, store, _ := newTestHarness(t, resolver)

	conv := store.Create("q1")
	require.NoError(t, orch.Send(context.Background(), conv.ID, "q1", nil))
	require.NoError(t, orch.Send(context.Background(), conv.ID, "q2", nil))

	// The second send sees the first exchange, not its own message.
	require.Len(t, captured, 2)
	assert.Equal(t, "q1", captured[0].Content)
	assert.Equal(t, "ok", captured[1].Content)
}

func TestSendImageAutoRoutesToVisionModel(t *testing.T) {
	resolver := &recordingResolver{}
	orch, store, _ := newTestHarness(t, resolver)

	store.SetSelectedModel("gpt-5-chat")
	conv := store.Create("look at this")
	files := []model.File{{Name: "cat.png", Type: "image/png", Base64: "AAAA"}}

	require.NoError(t, orch.Send(context.Background(), conv.ID, "look at this", files))

	assert.Equal(t, []string{"nexorax1"}, resolver.models())
	assert.Equal(t, "nexorax1", conv.LastMessage().Model,
		"the placeholder records the model that actually served the request")
}

func TestSendValidation(t *testing.T) {
	orch, store, _ := newTestHarness(t, &recordingResolver{})
	conv := store.Create("seed")

	assert.ErrorIs(t, orch.Send(context.Background(), conv.ID, "   ", nil), ErrEmptyMessage)
	assert.ErrorIs(t, orch.Send(context.Background(), "missing", "hello", nil), storage.ErrConversationNotFound)
	assert.Equal(t, 0, conv.MessageCount(), "rejected sends leave the conversation untouched")
}

func TestSendRetitlesFreshConversation(t *testing.T) {
	orch, store, _ := newTestHarness(t, &recordingResolver{})

	conv := store.Create("")
	require.NoError(t, orch.Send(context.Background(), conv.ID, "what is the speed of light", nil))
	assert.Equal(t, "what is the speed of light", conv.Title)
}

// =============================================================================
// DUAL MODE
// =============================================================================

func TestSendDualFaultIsolation(t *testing.T) {
	resolver := &recordingResolver{
		invokers: map[string]invokerFunc{
			"gpt-5-chat": func(context.Context, backend.Request) (string, error) {
				return "primary reply", nil
			},
			"nexorax1": func(context.Context, backend.Request) (string, error) {
				return "", errors.New("gemini down")
			},
		},
	}
	orch, store, kv := newTestHarness(t, resolver)
	store.SetDualChatMode(true)

	conv := store.Create("compare yourselves")
	require.NoError(t, orch.Send(context.Background(), conv.ID, "compare yourselves", nil))

	require.Equal(t, 3, conv.MessageCount())
	primary, secondary := conv.Messages[1], conv.Messages[2]

	assert.True(t, primary.Primary())
	assert.False(t, primary.IsTyping)
	assert.Equal(t, "primary reply", primary.Content)

	assert.True(t, secondary.Secondary())
	assert.False(t, secondary.IsTyping)
	assert.Contains(t, secondary.Content, "Sorry, Gemini 2.5 Flash ran into an error")

	// The failed branch is persisted alongside the successful one.
	reloaded := storage.NewStore(kv, zap.NewNop())
	persisted, ok := reloaded.Get(conv.ID)
	require.True(t, ok)
	assert.Equal(t, 3, persisted.MessageCount())
}

func TestSendDualPanicIsolation(t *testing.T) {
	resolver := &recordingResolver{
		invokers: map[string]invokerFunc{
			"gpt-5-chat": func(context.Context, backend.Request) (string, error) {
				return "still standing", nil
			},
			"nexorax1": func(context.Context, backend.Request) (string, error) {
				panic("adapter bug")
			},
		},
	}
	orch, store, _ := newTestHarness(t, resolver)
	store.SetDualChatMode(true)

	conv := store.Create("hi both")
	require.NoError(t, orch.Send(context.Background(), conv.ID, "hi both", nil))

	assert.Equal(t, "still standing", conv.Messages[1].Content)
	assert.Contains(t, conv.Messages[2].Content, "ran into an error")
	assert.False(t, conv.Messages[2].IsTyping)
}

func TestSendDualPartitionsHistory(t *testing.T) {
	var mu sync.Mutex
	histories := map[string][]model.ChatMessage{}
	record := func(modelID string) invokerFunc {
		return func(_ context.Context, req backend.Request) (string, error) {
			mu.Lock()
			histories[modelID] = req.History
			mu.Unlock()
			return modelID + " reply", nil
		}
	}
	resolver := &recordingResolver{
		invokers: map[string]invokerFunc{
			"gpt-5-chat": record("gpt-5-chat"),
			"nexorax1":   record("nexorax1"),
		},
	}
	orch, store, _ := newTestHarness(t, resolver)
	store.SetDualChatMode(true)

	conv := store.Create("round one")
	require.NoError(t, orch.Send(context.Background(), conv.ID, "round one", nil))
	require.NoError(t, orch.Send(context.Background(), conv.ID, "round two", nil))

	primaryHist := histories["gpt-5-chat"]
	require.Len(t, primaryHist, 2, "shared user turn plus own reply only")
	assert.Equal(t, "round one", primaryHist[0].Content)
	assert.Equal(t, "gpt-5-chat reply", primaryHist[1].Content)

	secondaryHist := histories["nexorax1"]
	require.Len(t, secondaryHist, 2)
	assert.Equal(t, "round one", secondaryHist[0].Content)
	assert.Equal(t, "nexorax1 reply", secondaryHist[1].Content)
}

func TestSendDualPlaceholdersPrecedeDispatch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	resolver := &recordingResolver{
		fallback: invokerFunc(func(context.Context, backend.Request) (string, error) {
			once.Do(func() { close(started) })
			<-release
			return "done", nil
		}),
	}
	orch, store, _ := newTestHarness(t, resolver)
	store.SetDualChatMode(true)

	conv := store.Create("hello")

	done := make(chan error, 1)
	go func() { done <- orch.Send(context.Background(), conv.ID, "hello", nil) }()

	<-started
	// Both typing placeholders are visible while the backends are in flight.
	require.Equal(t, 3, conv.MessageCount())
	assert.True(t, conv.Messages[1].IsTyping)
	assert.True(t, conv.Messages[2].IsTyping)
	assert.True(t, conv.Messages[1].Primary())
	assert.True(t, conv.Messages[2].Secondary())

	close(release)
	require.NoError(t, <-done)
	assert.False(t, conv.Messages[1].IsTyping)
	assert.False(t, conv.Messages[2].IsTyping)
}

func TestSendDualConcurrentReadersSeeConsistentState(t *testing.T) {
	stream := func(final string) invokerFunc {
		return func(_ context.Context, req backend.Request) (string, error) {
			text := ""
			for _, r := range final {
				text += string(r)
				req.OnDelta(text)
			}
			return final, nil
		}
	}
	resolver := &recordingResolver{
		invokers: map[string]invokerFunc{
			"gpt-5-chat": stream("primary answer streamed rune by rune"),
			"nexorax1":   stream("secondary answer streamed rune by rune"),
		},
	}
	orch, store, _ := newTestHarness(t, resolver)
	store.SetDualChatMode(true)

	conv := store.Create("compare yourselves")

	// Walk snapshots and persist from the subscriber while both branches
	// stream, the way the UI repaints and the store saves mid-exchange.
	// Subscribers fire on the dispatch goroutines, so guard the counter.
	var mu sync.Mutex
	walked := 0
	orch.pipeline.Subscribe(func(ev pipeline.Event) {
		snap, ok := store.Snapshot(conv.ID)
		if !ok {
			return
		}
		total := 0
		for _, msg := range snap.Messages {
			total += len(msg.Content)
		}
		store.Persist()

		mu.Lock()
		walked += total
		mu.Unlock()
	})

	require.NoError(t, orch.Send(context.Background(), conv.ID, "compare yourselves", nil))

	require.Equal(t, 3, conv.MessageCount())
	assert.Equal(t, "primary answer streamed rune by rune", conv.Messages[1].Content)
	assert.Equal(t, "secondary answer streamed rune by rune", conv.Messages[2].Content)
	assert.False(t, conv.Messages[1].IsTyping)
	assert.False(t, conv.Messages[2].IsTyping)
	assert.Positive(t, walked)
}
