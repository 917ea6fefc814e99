// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation and settings persistence for nexorax.
package storage

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// =============================================================================
// SETTINGS
// =============================================================================

// SelectedModel returns the active model ID, falling back to the default
// when unset.
func (s *Store) SelectedModel() string {
	value, ok, err := s.kv.Get(KeySelectedModel)
	if err != nil || !ok || value == "" {
		return DefaultSelectedModel
	}
	return value
}

// SetSelectedModel persists the active model ID.
func (s *Store) SetSelectedModel(modelID string) {
	if err := s.kv.Set(KeySelectedModel, modelID); err != nil {
		s.log.Error("failed to persist selected model", zap.Error(err))
	}
}

// DarkMode returns whether dark mode is enabled.
func (s *Store) DarkMode() bool {
	return s.getBool(KeyDarkMode)
}

// SetDarkMode persists the dark mode flag.
func (s *Store) SetDarkMode(enabled bool) {
	s.setBool(KeyDarkMode, enabled)
}

// DualChatMode returns whether dual-chat mode is enabled.
func (s *Store) DualChatMode() bool {
	return s.getBool(KeyDualChatMode)
}

// SetDualChatMode persists the dual-chat flag.
func (s *Store) SetDualChatMode(enabled bool) {
	s.setBool(KeyDualChatMode, enabled)
}

// DualModels returns the primary and secondary dual-chat model IDs, with
// defaults for unset entries.
func (s *Store) DualModels() (primary, secondary string) {
	primary = DefaultDualPrimary
	secondary = DefaultDualSecondary
	if v, ok, err := s.kv.Get(KeyDualPrimaryModel); err == nil && ok && v != "" {
		primary = v
	}
	if v, ok, err := s.kv.Get(KeyDualSecondaryModel); err == nil && ok && v != "" {
		secondary = v
	}
	return primary, secondary
}

// SetDualModels persists the dual-chat model pair.
func (s *Store) SetDualModels(primary, secondary string) {
	if err := s.kv.Set(KeyDualPrimaryModel, primary); err != nil {
		s.log.Error("failed to persist dual primary model", zap.Error(err))
	}
	if err := s.kv.Set(KeyDualSecondaryModel, secondary); err != nil {
		s.log.Error("failed to persist dual secondary model", zap.Error(err))
	}
}

func (s *Store) getBool(key string) bool {
	value, ok, err := s.kv.Get(key)
	if err != nil || !ok {
		return false
	}
	enabled, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return enabled
}

func (s *Store) setBool(key string, enabled bool) {
	if err := s.kv.Set(key, strconv.FormatBool(enabled)); err != nil {
		s.log.Error("failed to persist setting", zap.String("key", key), zap.Error(err))
	}
}

// =============================================================================
// FEEDBACK
// =============================================================================

// Feedback is a single user feedback entry. The list is append-only.
type Feedback struct {
	ID        string    `json:"id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrInvalidRating is returned when a feedback rating is outside 1..5.
var ErrInvalidRating = &ConversationError{Message: "rating must be between 1 and 5"}

// AddFeedback validates and appends a feedback entry.
func (s *Store) AddFeedback(rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}

	entries := s.Feedbacks()
	entries = append(entries, Feedback{
		ID:        uuid.NewString(),
		Rating:    rating,
		Comment:   comment,
		Timestamp: time.Now(),
	})

	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.kv.Set(KeyFeedbacks, string(data))
}

// Feedbacks returns the stored feedback entries. An unreadable list yields
// an empty slice.
func (s *Store) Feedbacks() []Feedback {
	raw, ok, err := s.kv.Get(KeyFeedbacks)
	if err != nil || !ok {
		return nil
	}

	var entries []Feedback
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.log.Warn("corrupt feedback list, ignoring", zap.Error(err))
		return nil
	}
	return entries
}
