// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/jeranaias/nexorax/internal/pipeline"
)

// =============================================================================
// PIPELINE EVENTS
// =============================================================================

// PipelineEventMsg wraps a pipeline event for the Bubble Tea loop. Attach
// bridges subscriber callbacks into these messages with program.Send.
type PipelineEventMsg struct {
	Event pipeline.Event
}

// =============================================================================
// SEND LIFECYCLE
// =============================================================================

// SendDoneMsg reports that a dispatch finished. Err is non-nil only for
// validation failures; backend errors settle into the transcript instead.
type SendDoneMsg struct {
	ConversationID string
	Err            error
}

// =============================================================================
// STATUS MESSAGES
// =============================================================================

// StatusMsg shows a transient message in the status bar.
type StatusMsg struct {
	Text string
}

// ClearStatusMsg clears the status bar after the display interval.
type ClearStatusMsg struct {
	SetAt time.Time
}
