// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation and settings persistence for nexorax.
package storage

// Storage keys. The nexorax_ prefix namespaces the application's entries;
// the novax_ prefix is the retired branding the migration cleans up.
const (
	KeyChats              = "nexorax_chats"
	KeyDarkMode           = "nexorax_dark_mode"
	KeySelectedModel      = "nexorax_selected_model"
	KeyFeedbacks          = "nexorax_feedbacks"
	KeyDualChatMode       = "nexorax_dual_chat_mode"
	KeyDualPrimaryModel   = "nexorax_dual_primary_model"
	KeyDualSecondaryModel = "nexorax_dual_secondary_model"
)

// Defaults applied when a settings key is absent.
const (
	DefaultSelectedModel = "gpt-5-chat"
	DefaultDualPrimary   = "gpt-5-chat"
	DefaultDualSecondary = "nexorax1"
)

// legacyKeyPairs maps retired novax_ keys to their nexorax_ replacements.
// Only the keys that existed under the old branding have a pair.
var legacyKeyPairs = []struct {
	old string
	new string
}{
	{"novax_chats", KeyChats},
	{"novax_dark_mode", KeyDarkMode},
	{"novax_selected_model", KeySelectedModel},
	{"novax_feedbacks", KeyFeedbacks},
}
