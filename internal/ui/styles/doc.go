// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the nexorax TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Color System (colors.go)

Primary accent colors:

  - Purple - Primary accent, assistant messages
  - Cyan - Brand color, user highlights
  - Emerald - Success states, the primary dual-chat column
  - Amber - Warnings, the secondary dual-chat column, pinned markers
  - Rose - Errors and delete confirmations

Surfaces (Surface, SurfaceDim, Overlay) layer backgrounds, and text colors
(TextPrimary, TextSecondary, TextMuted) form the type hierarchy. Message
bubbles use the UserBubble and AssistantBubble tokens.

# Theme System (theme.go)

The Theme struct bundles the ready-to-use lipgloss styles and honors the
configured theme preference:

	theme := styles.NewTheme("auto")
	header := theme.HeaderTitle.Render("nexorax")

"dark" and "light" force the palette; "auto" detects the terminal
background.
*/
package styles
