// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exactly at limit", "hello", 5, "hello"},
		{"truncated with ellipsis", "hello world", 8, "hello..."},
		{"limit of three", "hello", 3, "hel"},
		{"zero limit", "hello", 0, ""},
		{"unicode safe", "héllo wörld", 8, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateRunes(tt.input, tt.maxRunes))
		})
	}
}

func TestTruncateRunesNoEllipsis(t *testing.T) {
	assert.Equal(t, "héllo", TruncateRunesNoEllipsis("héllo wörld", 5))
	assert.Equal(t, "short", TruncateRunesNoEllipsis("short", 10))
	assert.Equal(t, "", TruncateRunesNoEllipsis("short", 0))
}

func TestCollapseNewlines(t *testing.T) {
	assert.Equal(t, "a b c", CollapseNewlines("a\nb\nc"))
	assert.Equal(t, "a b", CollapseNewlines("a\r\nb"))
	assert.Equal(t, "plain", CollapseNewlines("plain"))
}

func TestRuneLen(t *testing.T) {
	assert.Equal(t, 5, RuneLen("héllo"))
	assert.Equal(t, 0, RuneLen(""))
}

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.json")

	require.NoError(t, AtomicWriteFile(path, []byte(`{"ok":true}`), 0644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))

	// Overwrite replaces the previous content in full.
	require.NoError(t, AtomicWriteFile(path, []byte("v2"), 0644))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
