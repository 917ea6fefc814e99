// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pipeline manages the message lifecycle inside a conversation.
package pipeline

import (
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/nexorax/internal/model"
)

// =============================================================================
// EVENTS
// =============================================================================

// EventKind identifies the message mutation an event reports.
type EventKind int

const (
	// EventMessageAdded fires when a message is appended to a conversation.
	EventMessageAdded EventKind = iota
	// EventMessageUpdated fires on each streaming content update.
	EventMessageUpdated
	// EventMessageSettled fires on the terminal transition (finalize or fail).
	EventMessageSettled
)

// Event describes a single message mutation. Message is a detached copy
// taken at publish time; reading it never races with the live record.
type Event struct {
	Kind           EventKind
	ConversationID string
	Message        *model.Message
}

// =============================================================================
// SLOTS
// =============================================================================

// Slot selects which response column a placeholder belongs to.
type Slot int

const (
	// SlotSingle is the only slot in single-model mode.
	SlotSingle Slot = iota
	// SlotPrimary is the left column of a dual-mode exchange.
	SlotPrimary
	// SlotSecondary is the right column of a dual-mode exchange.
	SlotSecondary
)

func (s Slot) suffix() string {
	switch s {
	case SlotPrimary:
		return model.SuffixPrimary
	case SlotSecondary:
		return model.SuffixSecondary
	default:
		return model.SuffixAssistant
	}
}

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline applies message mutations and publishes events to subscribers.
// Safe for concurrent use; in dual mode two goroutines stream into the same
// conversation at once.
type Pipeline struct {
	mu   sync.Locker
	subs []func(Event)
	log  *zap.Logger
}

// New creates a pipeline. Every message mutation happens under locker; pass
// the conversation store's Locker so store snapshots and persistence are
// synchronized with streaming writes. A nil locker gets a private mutex.
func New(locker sync.Locker, log *zap.Logger) *Pipeline {
	if locker == nil {
		locker = &sync.Mutex{}
	}
	return &Pipeline{mu: locker, log: log}
}

// Subscribe registers an observer for message events. Subscribers are
// invoked synchronously after each mutation, in registration order.
func (p *Pipeline) Subscribe(fn func(Event)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, fn)
}

// AppendUserMessage appends a settled user message to the conversation.
func (p *Pipeline) AppendUserMessage(conv *model.Conversation, text string, files []model.File) *model.Message {
	msg := model.NewUserMessage(text, files)

	p.mu.Lock()
	conv.AddMessage(msg)
	subs := p.snapshot()
	evMsg := msg.Clone()
	p.mu.Unlock()

	p.publish(subs, Event{Kind: EventMessageAdded, ConversationID: conv.ID, Message: evMsg})
	return msg
}

// AppendPlaceholder appends an empty typing assistant message for modelID.
// Dual-mode slots mark the message with its column.
func (p *Pipeline) AppendPlaceholder(conv *model.Conversation, modelID string, slot Slot) *model.Message {
	msg := model.NewPlaceholder(modelID, slot.suffix())
	switch slot {
	case SlotPrimary:
		msg.SetPrimary(true)
	case SlotSecondary:
		msg.SetPrimary(false)
	}

	p.mu.Lock()
	conv.AddMessage(msg)
	subs := p.snapshot()
	evMsg := msg.Clone()
	p.mu.Unlock()

	p.publish(subs, Event{Kind: EventMessageAdded, ConversationID: conv.ID, Message: evMsg})
	return msg
}

// ApplyDelta overwrites the placeholder's content with cumulative text.
// Updates arriving after the terminal transition, and updates that would
// shrink the content, are dropped.
func (p *Pipeline) ApplyDelta(convID string, msg *model.Message, cumulative string) {
	p.mu.Lock()
	if !msg.IsTyping || len(cumulative) < len(msg.Content) {
		p.mu.Unlock()
		return
	}
	msg.Content = cumulative
	subs := p.snapshot()
	evMsg := msg.Clone()
	p.mu.Unlock()

	p.publish(subs, Event{Kind: EventMessageUpdated, ConversationID: convID, Message: evMsg})
}

// Finalize settles the placeholder with its final content and clears the
// typing flag in the same step. A second terminal call is a no-op.
func (p *Pipeline) Finalize(convID string, msg *model.Message, final string) {
	p.settle(convID, msg, final)
}

// Fail settles the placeholder with error text. The result is shaped
// exactly like a successful finalize; the user just reads what went wrong.
func (p *Pipeline) Fail(convID string, msg *model.Message, errText string) {
	p.log.Warn("message failed",
		zap.String("conversation", convID),
		zap.String("message", msg.ID),
		zap.String("model", msg.Model))
	p.settle(convID, msg, errText)
}

func (p *Pipeline) settle(convID string, msg *model.Message, content string) {
	p.mu.Lock()
	if !msg.IsTyping {
		p.mu.Unlock()
		return
	}
	msg.Content = content
	msg.IsTyping = false
	subs := p.snapshot()
	evMsg := msg.Clone()
	p.mu.Unlock()

	p.publish(subs, Event{Kind: EventMessageSettled, ConversationID: convID, Message: evMsg})
}

// snapshot copies the subscriber list; callers hold p.mu.
func (p *Pipeline) snapshot() []func(Event) {
	subs := make([]func(Event), len(p.subs))
	copy(subs, p.subs)
	return subs
}

// publish invokes subscribers outside the pipeline lock so a handler can
// call back into the pipeline without deadlocking.
func (p *Pipeline) publish(subs []func(Event), ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}
