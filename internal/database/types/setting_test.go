package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wardenbot/warden/internal/database/types"
)

func TestIsCooldownChannel(t *testing.T) {
	t.Parallel()

	settings := &types.GuildSettings{
		CooldownChannels: map[string]int{"100": 30, "200": 60},
	}

	minutes, ok := settings.IsCooldownChannel("100")
	assert.True(t, ok)
	assert.Equal(t, 30, minutes)

	_, ok = settings.IsCooldownChannel("300")
	assert.False(t, ok)
}

func TestIsExempt(t *testing.T) {
	t.Parallel()

	settings := &types.GuildSettings{
		ExemptRoles: []string{"Moderator", "424242"},
	}

	tests := []struct {
		name      string
		roleNames []string
		roleIDs   []string
		want      bool
	}{
		{
			name: "no roles",
			want: false,
		},
		{
			name:      "exempt by name",
			roleNames: []string{"Member", "Moderator"},
			want:      true,
		},
		{
			name:    "exempt by id",
			roleIDs: []string{"424242"},
			want:    true,
		},
		{
			name:      "case sensitive names",
			roleNames: []string{"moderator"},
			want:      false,
		},
		{
			name:      "unrelated roles",
			roleNames: []string{"Member"},
			roleIDs:   []string{"999"},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, settings.IsExempt(tt.roleNames, tt.roleIDs))
		})
	}
}
