// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation and settings persistence for nexorax.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// KEY-VALUE STORE
// =============================================================================

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// KV is a SQLite-backed key-value store. It stands in for the browser
// localStorage the persisted schema was designed around: string keys,
// string values, last write wins.
type KV struct {
	db *sql.DB
}

// OpenKV opens (creating if necessary) the key-value store at path and runs
// the legacy key migration.
func OpenKV(path string) (*KV, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(kvSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	kv := &KV{db: db}
	if err := kv.migrateLegacyKeys(); err != nil {
		db.Close()
		return nil, fmt.Errorf("legacy key migration failed: %w", err)
	}

	return kv, nil
}

// Get returns the value under key and whether the key exists.
func (kv *KV) Get(key string) (string, bool, error) {
	var value string
	err := kv.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (kv *KV) Set(key, value string) error {
	_, err := kv.db.Exec(
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// Delete removes key. Deleting an absent key is not an error.
func (kv *KV) Delete(key string) error {
	_, err := kv.db.Exec("DELETE FROM kv WHERE key = ?", key)
	return err
}

// Close closes the underlying database.
func (kv *KV) Close() error {
	return kv.db.Close()
}

// =============================================================================
// LEGACY KEY MIGRATION
// =============================================================================

// migrateLegacyKeys moves data stored under the retired novax_ keys to their
// nexorax_ replacements. For each pair: if the old key exists and the new
// one does not, the value is copied, then the old key is removed. A value
// already present under the new key wins and the old key is dropped.
// Running the migration twice equals running it once.
func (kv *KV) migrateLegacyKeys() error {
	for _, pair := range legacyKeyPairs {
		oldValue, oldExists, err := kv.Get(pair.old)
		if err != nil {
			return err
		}
		if !oldExists {
			continue
		}

		_, newExists, err := kv.Get(pair.new)
		if err != nil {
			return err
		}
		if !newExists {
			if err := kv.Set(pair.new, oldValue); err != nil {
				return err
			}
		}

		if err := kv.Delete(pair.old); err != nil {
			return err
		}
	}
	return nil
}
