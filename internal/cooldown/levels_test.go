package cooldown_test

import (
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"

	"github.com/wardenbot/warden/internal/cooldown"
)

func TestParseLevelRoles(t *testing.T) {
	t.Parallel()

	roles := []discord.Role{
		{ID: snowflake.ID(1), Name: "[Level 10] Regular"},
		{ID: snowflake.ID(2), Name: "[Level 40] Veteran"},
		{ID: snowflake.ID(3), Name: "Moderator"},
		{ID: snowflake.ID(4), Name: "[Level ten] Broken"},
		{ID: snowflake.ID(5), Name: "[Level 5 Unclosed"},
	}

	parsed := cooldown.ParseLevelRoles(roles)
	assert.Equal(t, 2, parsed.Len())
}

func TestHighest(t *testing.T) {
	t.Parallel()

	parsed := cooldown.ParseLevelRoles([]discord.Role{
		{ID: snowflake.ID(1), Name: "[Level 10] Regular"},
		{ID: snowflake.ID(2), Name: "[Level 40] Veteran"},
		{ID: snowflake.ID(3), Name: "[Level 25] Member"},
	})

	tests := []struct {
		name    string
		roleIDs []snowflake.ID
		want    int
	}{
		{
			name:    "no roles",
			roleIDs: nil,
			want:    0,
		},
		{
			name:    "no level roles held",
			roleIDs: []snowflake.ID{99},
			want:    0,
		},
		{
			name:    "single level role",
			roleIDs: []snowflake.ID{1},
			want:    10,
		},
		{
			name:    "highest of several",
			roleIDs: []snowflake.ID{1, 2, 3},
			want:    40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, parsed.Highest(tt.roleIDs))
		})
	}
}
