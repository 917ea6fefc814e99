// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation and settings persistence for nexorax.
package storage

import (
	"encoding/json"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/nexorax/internal/model"
)

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// Store holds every conversation in memory and writes the full set back to
// the key-value store after each durable mutation.
type Store struct {
	mu  sync.RWMutex
	kv  *KV
	log *zap.Logger

	conversations map[string]*model.Conversation
	// order remembers insertion order so List can break CreatedAt ties
	// deterministically.
	order []string
}

// NewStore creates a store over kv and loads the persisted conversations.
// A missing or unreadable conversations document yields an empty store.
func NewStore(kv *KV, log *zap.Logger) *Store {
	s := &Store{
		kv:            kv,
		log:           log,
		conversations: make(map[string]*model.Conversation),
	}
	s.load()
	return s
}

// load reads the conversations document. Fail-soft: any error leaves the
// store empty and the user with a working application.
func (s *Store) load() {
	raw, ok, err := s.kv.Get(KeyChats)
	if err != nil {
		s.log.Warn("failed to read conversations, starting empty", zap.Error(err))
		return
	}
	if !ok {
		return
	}

	var conversations map[string]*model.Conversation
	if err := json.Unmarshal([]byte(raw), &conversations); err != nil {
		s.log.Warn("corrupt conversations document, starting empty", zap.Error(err))
		return
	}
	if conversations == nil {
		return
	}

	s.conversations = conversations

	// JSON objects carry no order, so rebuild insertion order from the
	// creation timestamps (ID as a deterministic tie-break).
	s.order = make([]string, 0, len(conversations))
	for id := range conversations {
		s.order = append(s.order, id)
	}
	sort.Slice(s.order, func(i, j int) bool {
		a, b := conversations[s.order[i]], conversations[s.order[j]]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return s.order[i] < s.order[j]
	})
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// Create makes a new conversation titled from seedText, registers it, and
// persists. The seed message is not appended; that is the pipeline's job.
func (s *Store) Create(seedText string) *model.Conversation {
	conv := model.NewConversation(seedText)

	s.mu.Lock()
	s.conversations[conv.ID] = conv
	s.order = append(s.order, conv.ID)
	s.mu.Unlock()

	s.Persist()
	s.log.Debug("conversation created", zap.String("id", conv.ID))
	return conv
}

// Get returns the live conversation record. The record is shared with the
// message pipeline; mutate it only through pipeline operations, which hold
// Locker. Readers that walk messages use Snapshot instead.
func (s *Store) Get(id string) (*model.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	return conv, ok
}

// Snapshot returns a deep copy of a conversation, safe to read while the
// pipeline is streaming into the live record.
func (s *Store) Snapshot(id string) (*model.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	if !ok {
		return nil, false
	}
	return conv.Clone(), true
}

// SetTitle renames a conversation. Unknown IDs are a no-op.
func (s *Store) SetTitle(id, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.conversations[id]; ok {
		conv.Title = title
	}
}

// Locker exposes the store's write lock. The message pipeline takes it for
// every message mutation so Snapshot, List, and Persist always observe
// complete records.
func (s *Store) Locker() sync.Locker {
	return &s.mu
}

// Delete removes a conversation. Deleting an absent ID is a no-op; repeating
// a delete converges on the same state.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	_, existed := s.conversations[id]
	if existed {
		delete(s.conversations, id)
		for i, oid := range s.order {
			if oid == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if existed {
		s.Persist()
		s.log.Debug("conversation deleted", zap.String("id", id))
	}
}

// TogglePin flips the pin state of a conversation. Unknown IDs are a no-op.
func (s *Store) TogglePin(id string) {
	s.mu.Lock()
	conv, ok := s.conversations[id]
	if ok {
		conv.IsPinned = !conv.IsPinned
	}
	s.mu.Unlock()

	if ok {
		s.Persist()
	}
}

// ClearAll removes every conversation and persists the empty set.
func (s *Store) ClearAll() {
	s.mu.Lock()
	s.conversations = make(map[string]*model.Conversation)
	s.order = nil
	s.mu.Unlock()

	s.Persist()
	s.log.Info("all conversations cleared")
}

// Count returns the number of conversations.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

// List returns conversation copies in display order: pinned first, newest
// first within each group, insertion order breaking creation-time ties.
// The order is recomputed on every call, never cached.
func (s *Store) List() []*model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Conversation, 0, len(s.order))
	for _, id := range s.order {
		if conv, ok := s.conversations[id]; ok {
			out = append(out, conv.Clone())
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsPinned != out[j].IsPinned {
			return out[i].IsPinned
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Persist writes the entire conversation set back to the key-value store,
// replacing the previous document. Errors are logged, not returned; the
// in-memory state stays authoritative for the session.
func (s *Store) Persist() {
	s.mu.RLock()
	data, err := json.Marshal(s.conversations)
	s.mu.RUnlock()

	if err != nil {
		s.log.Error("failed to encode conversations", zap.Error(err))
		return
	}
	if err := s.kv.Set(KeyChats, string(data)); err != nil {
		s.log.Error("failed to persist conversations", zap.Error(err))
	}
}
