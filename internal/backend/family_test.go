// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFamilyOf(t *testing.T) {
	tests := []struct {
		modelID string
		want    Family
	}{
		{"nexorax1", FamilyGemini},
		{"gpt-5-chat", FamilyGPT5},
		{"gpt-5-mini", FamilyGPT5},
		{"gpt-5-nano-2025-08-07", FamilyGPT5},
		{"gpt-o4-mini-2025-04-16", FamilyGPT5},
		{"gemini-search", FamilySearch},
		{"nexorax2", FamilySearch},
		{"image-gen", FamilyImage},
		{"mistral-small-2503", FamilyChat},
		{"never-heard-of-it", FamilyChat},
		{"", FamilyChat},
	}

	for _, tt := range tests {
		t.Run(tt.modelID, func(t *testing.T) {
			assert.Equal(t, tt.want, FamilyOf(tt.modelID))
		})
	}
}

func TestEveryKnownModelRoutesToValidFamily(t *testing.T) {
	for _, modelID := range KnownModels() {
		family := FamilyOf(modelID)
		assert.True(t, family.Valid(), "model %q routes to invalid family %q", modelID, family)
	}
}

func TestFamilyValid(t *testing.T) {
	for _, f := range Families() {
		assert.True(t, f.Valid())
	}
	assert.False(t, Family("bogus").Valid())
	assert.False(t, Family("").Valid())
}

func TestHistoryLimitFor(t *testing.T) {
	assert.Equal(t, 20, HistoryLimitFor("nexorax1"))
	assert.Equal(t, 15, HistoryLimitFor("gpt-5-chat"))
	assert.Equal(t, 15, HistoryLimitFor("mistral-small-2503"))
	assert.Equal(t, 15, HistoryLimitFor("unknown-model"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Gemini 2.5 Flash", DisplayName("nexorax1"))
	assert.Equal(t, "GPT-5", DisplayName("gpt-5-chat"))
	assert.Equal(t, "custom-model", DisplayName("custom-model"))
}

func TestSupportsImages(t *testing.T) {
	assert.True(t, SupportsImages("nexorax1"))
	assert.False(t, SupportsImages("gpt-5-chat"))
	assert.False(t, SupportsImages("image-gen"))
}

func TestDualEligible(t *testing.T) {
	assert.True(t, DualEligible("gpt-5-chat"))
	assert.True(t, DualEligible("nexorax1"))
	assert.True(t, DualEligible("gemma-2-2b-it"))
	assert.False(t, DualEligible("image-gen"))
	assert.False(t, DualEligible("nexorax2"))
	assert.False(t, DualEligible("gemini-search"))
}
