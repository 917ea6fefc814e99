// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewThemeHonorsPreference(t *testing.T) {
	tests := []struct {
		name string
		pref string
		want func(t *testing.T, theme *Theme)
	}{
		{
			name: "dark forces dark palette",
			pref: "dark",
			want: func(t *testing.T, theme *Theme) {
				assert.True(t, theme.IsDark)
			},
		},
		{
			name: "light forces light palette",
			pref: "light",
			want: func(t *testing.T, theme *Theme) {
				assert.False(t, theme.IsDark)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme := NewTheme(tt.pref)
			require.NotNil(t, theme)
			tt.want(t, theme)
		})
	}
}

func TestNewThemePopulatesStyles(t *testing.T) {
	theme := NewTheme("dark")

	assert.True(t, theme.HeaderTitle.GetBold())
	assert.True(t, theme.SidebarSelected.GetBold())
	assert.True(t, theme.Typing.GetItalic())
	assert.Equal(t, 1, theme.UserBubble.GetPaddingLeft())
}
