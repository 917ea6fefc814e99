// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for nexorax.
//
// Supports TOML configuration with sensible defaults, environment variable
// overrides, validation, and live reload on file change.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ProvidersConfig: Upstream provider endpoints and credentials
//   - DualConfig: Dual-chat model pair
//   - ServerConfig: Proxy server listen and CORS settings
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (GEMINI_API_KEY, LLM7_API_KEY, NEXORAX_*)
//   - ~/.nexorax/config.toml
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	model := cfg.DefaultModel
//	opts := cfg.BackendOptions()
package config
