// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the model provider adapters.
package backend

// =============================================================================
// FAMILY TYPE
// =============================================================================

// Family identifies which provider adapter serves a model.
type Family string

const (
	// FamilyChat is the default: OpenAI-style chat completions via LLM7.
	FamilyChat Family = "llm7"
	// FamilyGemini is Google generateContent (the only image-capable family).
	FamilyGemini Family = "gemini"
	// FamilyGPT5 covers the GPT-5 line, also served through LLM7.
	FamilyGPT5 Family = "gpt5"
	// FamilySearch is the search-augmented family.
	FamilySearch Family = "search"
	// FamilyImage is text-to-image generation.
	FamilyImage Family = "image"
)

// Families returns every valid family.
func Families() []Family {
	return []Family{FamilyChat, FamilyGemini, FamilyGPT5, FamilySearch, FamilyImage}
}

// Valid reports whether f is a known family.
func (f Family) Valid() bool {
	switch f {
	case FamilyChat, FamilyGemini, FamilyGPT5, FamilySearch, FamilyImage:
		return true
	}
	return false
}

// FamilyOf routes a model identifier to its family. Unknown identifiers
// fall through to FamilyChat, so every string routes somewhere.
func FamilyOf(modelID string) Family {
	switch modelID {
	case "nexorax1":
		return FamilyGemini
	case "gpt-5-chat", "gpt-5-mini", "gpt-5-nano-2025-08-07", "gpt-o4-mini-2025-04-16":
		return FamilyGPT5
	case "gemini-search", "nexorax2":
		return FamilySearch
	case "image-gen":
		return FamilyImage
	default:
		return FamilyChat
	}
}

// =============================================================================
// HISTORY LIMITS
// =============================================================================

// History window sizes forwarded to providers.
const (
	HistoryLimitGemini = 20
	HistoryLimitLLM7   = 15
)

// HistoryLimitFor returns the history window size for a model.
func HistoryLimitFor(modelID string) int {
	if FamilyOf(modelID) == FamilyGemini {
		return HistoryLimitGemini
	}
	return HistoryLimitLLM7
}

// =============================================================================
// MODEL CATALOG
// =============================================================================

// modelNames maps model identifiers to display names.
var modelNames = map[string]string{
	"nexorax1":                       "Gemini 2.5 Flash",
	"nexorax2":                       "Search",
	"gpt-5-chat":                     "GPT-5",
	"image-gen":                      "Image Generator",
	"deepseek-reasoning":             "DeepSeek Reasoning",
	"nova-fast":                      "Nova Fast",
	"gpt-5-mini":                     "GPT-5 Mini",
	"gpt-5-nano-2025-08-07":          "GPT-5 Nano",
	"gpt-4.1-nano-2025-04-14":        "GPT-4.1 Nano",
	"qwen2.5-coder-32b-instruct":     "Qwen Coder",
	"codestral-2501":                 "Codestral",
	"llama-3.1-8B-instruct":          "Llama 3.1",
	"bidara":                         "Bidara",
	"mistral-medium-2508":            "Mistral Medium",
	"mistral-small-2503":             "Mistral Small",
	"ministral-3b-2512":              "Ministral 3B",
	"open-mixtral-8x7b":              "Mixtral 8x7B",
	"Steelskull/L3.3-MS-Nevoria-70b": "Nevoria 70B",
	"gemma-2-2b-it":                  "Gemma 2",
	"gemini-2.5-flash-lite":          "Gemini 2.5 Flash Lite",
	"glm-4.5-flash":                  "GLM 4.5 Flash",
}

// DisplayName returns the human-readable name for a model, falling back to
// the identifier itself.
func DisplayName(modelID string) string {
	if name, ok := modelNames[modelID]; ok {
		return name
	}
	return modelID
}

// KnownModels returns every catalogued model identifier.
func KnownModels() []string {
	out := make([]string, 0, len(modelNames))
	for id := range modelNames {
		out = append(out, id)
	}
	return out
}

// SupportsImages reports whether a model accepts image attachments. Only
// the Gemini model does, through inline_data parts.
func SupportsImages(modelID string) bool {
	return modelID == "nexorax1"
}

// DualEligible reports whether a model may be picked for dual-chat mode.
// Image generation and the search models are excluded.
func DualEligible(modelID string) bool {
	switch FamilyOf(modelID) {
	case FamilyImage, FamilySearch:
		return false
	}
	return true
}
