package cooldown

import (
	"strconv"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

// levelRolePrefix marks roles whose names encode a numeric level, in
// the form "[Level N] Name".
const levelRolePrefix = "[Level "

// LevelRoles maps role IDs to the numeric level encoded in their
// names. It is an immutable value object built once per guild
// role-set change instead of parsing role names on every lookup.
type LevelRoles struct {
	byRole map[snowflake.ID]int
}

// ParseLevelRoles extracts the level mapping from a guild's role set.
// Roles that do not match the "[Level N] ..." format are skipped.
func ParseLevelRoles(roles []discord.Role) *LevelRoles {
	byRole := make(map[snowflake.ID]int)

	for _, role := range roles {
		level, ok := parseLevelRoleName(role.Name)
		if !ok {
			continue
		}

		byRole[role.ID] = level
	}

	return &LevelRoles{byRole: byRole}
}

// parseLevelRoleName extracts N from a "[Level N] ..." role name.
func parseLevelRoleName(name string) (int, bool) {
	if !strings.HasPrefix(name, levelRolePrefix) {
		return 0, false
	}

	rest := name[len(levelRolePrefix):]

	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return 0, false
	}

	level, err := strconv.Atoi(strings.TrimSpace(rest[:end]))
	if err != nil || level < 0 {
		return 0, false
	}

	return level, true
}

// Highest returns the greatest level encoded in any of the given
// roles, or 0 when none of them carry a level.
func (l *LevelRoles) Highest(roleIDs []snowflake.ID) int {
	highest := 0

	for _, id := range roleIDs {
		if level, ok := l.byRole[id]; ok && level > highest {
			highest = level
		}
	}

	return highest
}

// Len returns the number of level roles in the mapping.
func (l *LevelRoles) Len() int {
	return len(l.byRole)
}
