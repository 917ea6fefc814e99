// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation and settings persistence for nexorax.
//
// Persistence is a local SQLite-backed key-value store. Conversations are
// kept under a single key as one JSON document mapping conversation ID to
// conversation; every durable mutation rewrites the document in full.
// Scalar settings (selected model, dark mode, dual-chat configuration) and
// the feedback list live under their own keys.
//
// # Key Types
//
//   - KV: SQLite-backed key-value store with legacy key migration
//   - Store: In-memory conversation store persisted through a KV
//   - Feedback: A single user feedback entry
//
// # Usage
//
//	kv, err := storage.OpenKV(path)
//	store, err := storage.NewStore(kv, logger)
//
//	conv := store.Create("first message text")
//	store.TogglePin(conv.ID)
//	list := store.List()
//
// # Fail-Soft Loading
//
// A missing or corrupt conversations document yields an empty store, never
// an error. Users keep a working application and lose at most the
// unreadable history.
package storage
