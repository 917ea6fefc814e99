// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package orchestrator dispatches user messages to model backends and
// drives the message lifecycle from placeholder to settled reply.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/nexorax/internal/backend"
	"github.com/jeranaias/nexorax/internal/model"
	"github.com/jeranaias/nexorax/internal/pipeline"
	"github.com/jeranaias/nexorax/internal/storage"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrEmptyMessage is returned when a send carries neither text nor files.
var ErrEmptyMessage = &storage.ConversationError{Message: "message is empty"}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Resolver maps a model identifier to its provider adapter.
type Resolver interface {
	For(modelID string) backend.Invoker
}

// Orchestrator coordinates one exchange: append the user message, create
// the response placeholder(s), invoke the backend(s), settle, persist.
type Orchestrator struct {
	store    *storage.Store
	pipeline *pipeline.Pipeline
	backends Resolver
	log      *zap.Logger
}

// New creates an orchestrator.
func New(store *storage.Store, pipe *pipeline.Pipeline, backends Resolver, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		store:    store,
		pipeline: pipe,
		backends: backends,
		log:      log,
	}
}

// Send runs a complete exchange in the given conversation and blocks until
// every response has settled. The conversation set is persisted exactly
// once, after the last response settles, whether the backends succeeded or
// not. A request already in flight is never cancelled by a later Send;
// callers that switch conversations simply stop watching the old events.
func (o *Orchestrator) Send(ctx context.Context, conversationID, text string, files []model.File) error {
	text = strings.TrimSpace(text)
	if text == "" && len(files) == 0 {
		return ErrEmptyMessage
	}

	conv, ok := o.store.Get(conversationID)
	if !ok {
		return storage.ErrConversationNotFound
	}

	// History comes from a snapshot so an earlier exchange still streaming
	// into this conversation cannot race the reads below.
	snap, _ := o.store.Snapshot(conversationID)

	// The first message retitles a conversation created without seed text.
	if snap.IsEmpty() && text != "" {
		o.store.SetTitle(conversationID, model.DeriveTitle(text))
	}

	if o.store.DualChatMode() {
		return o.sendDual(ctx, conv, snap, text, files)
	}
	return o.sendSingle(ctx, conv, snap, text, files)
}

// =============================================================================
// SINGLE MODE
// =============================================================================

func (o *Orchestrator) sendSingle(ctx context.Context, conv, snap *model.Conversation, text string, files []model.File) error {
	modelID := effectiveModel(o.store.SelectedModel(), files)

	// History is the prior context only; the current message rides on the
	// request itself.
	history := windowHistory(snap.Messages, modelID)

	o.pipeline.AppendUserMessage(conv, text, files)
	placeholder := o.pipeline.AppendPlaceholder(conv, modelID, pipeline.SlotSingle)
	defer o.store.Persist()

	o.log.Debug("dispatching message",
		zap.String("conversation", conv.ID),
		zap.String("model", modelID),
		zap.Int("history", len(history)))

	reply, err := o.invoke(ctx, modelID, backend.Request{
		Message: text,
		Files:   files,
		History: history,
		OnDelta: func(cumulative string) {
			o.pipeline.ApplyDelta(conv.ID, placeholder, cumulative)
		},
	})
	if err != nil {
		o.log.Warn("backend failed",
			zap.String("model", modelID),
			zap.Error(err))
		o.pipeline.Fail(conv.ID, placeholder, failText(modelID))
		return nil
	}

	o.pipeline.Finalize(conv.ID, placeholder, reply)
	return nil
}

// =============================================================================
// DUAL MODE
// =============================================================================

func (o *Orchestrator) sendDual(ctx context.Context, conv, snap *model.Conversation, text string, files []model.File) error {
	primaryModel, secondaryModel := o.store.DualModels()
	primaryModel = effectiveModel(primaryModel, files)
	secondaryModel = effectiveModel(secondaryModel, files)

	// Each side sees the shared user turns plus only its own replies.
	primaryMsgs, secondaryMsgs := model.PartitionDual(snap.Messages)
	primaryHistory := windowHistory(primaryMsgs, primaryModel)
	secondaryHistory := windowHistory(secondaryMsgs, secondaryModel)

	o.pipeline.AppendUserMessage(conv, text, files)

	// Both placeholders exist before either dispatch starts, so the user
	// sees two typing columns immediately.
	primaryPH := o.pipeline.AppendPlaceholder(conv, primaryModel, pipeline.SlotPrimary)
	secondaryPH := o.pipeline.AppendPlaceholder(conv, secondaryModel, pipeline.SlotSecondary)
	defer o.store.Persist()

	o.log.Debug("dispatching dual message",
		zap.String("conversation", conv.ID),
		zap.String("primary", primaryModel),
		zap.String("secondary", secondaryModel))

	var wg sync.WaitGroup
	dispatch := func(modelID string, history []model.ChatMessage, placeholder *model.Message) {
		defer wg.Done()
		reply, err := o.invoke(ctx, modelID, backend.Request{
			Message: text,
			Files:   files,
			History: history,
			OnDelta: func(cumulative string) {
				o.pipeline.ApplyDelta(conv.ID, placeholder, cumulative)
			},
		})
		if err != nil {
			o.log.Warn("dual branch failed",
				zap.String("model", modelID),
				zap.Error(err))
			o.pipeline.Fail(conv.ID, placeholder, failText(modelID))
			return
		}
		o.pipeline.Finalize(conv.ID, placeholder, reply)
	}

	wg.Add(2)
	go dispatch(primaryModel, primaryHistory, primaryPH)
	go dispatch(secondaryModel, secondaryHistory, secondaryPH)
	wg.Wait()

	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// invoke calls the backend for modelID, converting a panic into an error so
// one misbehaving adapter can never take down its sibling branch.
func (o *Orchestrator) invoke(ctx context.Context, modelID string, req backend.Request) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("backend panicked",
				zap.String("model", modelID),
				zap.Any("panic", r))
			err = fmt.Errorf("backend %s panicked: %v", modelID, r)
		}
	}()
	return o.backends.For(modelID).Invoke(ctx, req)
}

// effectiveModel reroutes image-bearing sends to the vision-capable model.
func effectiveModel(modelID string, files []model.File) string {
	if model.HasImageFiles(files) && !backend.SupportsImages(modelID) {
		return "nexorax1"
	}
	return modelID
}

// windowHistory converts conversation messages to windowed backend history
// using the limit for modelID.
func windowHistory(msgs []*model.Message, modelID string) []model.ChatMessage {
	return model.ToChatMessages(model.HistoryWindow(msgs, backend.HistoryLimitFor(modelID)))
}

// failText is the settled content of a failed response branch.
func failText(modelID string) string {
	return "Sorry, " + backend.DisplayName(modelID) + " ran into an error. Please try again."
}
