package types

// GuildSettings holds the runtime-mutable moderation configuration for
// a guild. The cooldown engine re-reads these on every operation, so
// administrative changes take effect immediately.
type GuildSettings struct {
	GuildID string `bun:",pk,notnull" json:"guildId"`
	// CooldownChannels maps channel IDs to cooldown durations in minutes.
	CooldownChannels map[string]int `bun:",notnull,type:jsonb,default:'{}'" json:"cooldownChannels"`
	// ExemptRoles lists role names or role IDs exempt from cooldowns.
	ExemptRoles []string `bun:",notnull,type:jsonb,default:'[]'" json:"exemptRoles"`
	// ReducePerTier is the number of minutes removed from a cooldown for
	// every 20 levels the author has reached.
	ReducePerTier int `bun:",notnull,default:0" json:"reducePerTier"`
	// LogChannelID is the moderation log channel, empty when unset.
	LogChannelID string `bun:"" json:"logChannelId"`
}

// IsCooldownChannel reports whether the channel is rate limited and
// returns its configured duration in minutes.
func (s *GuildSettings) IsCooldownChannel(channelID string) (int, bool) {
	minutes, ok := s.CooldownChannels[channelID]
	return minutes, ok
}

// IsExempt reports whether any of the given role names or IDs appear in
// the exempt list.
func (s *GuildSettings) IsExempt(roleNames, roleIDs []string) bool {
	exempt := make(map[string]struct{}, len(s.ExemptRoles))
	for _, r := range s.ExemptRoles {
		exempt[r] = struct{}{}
	}

	for _, name := range roleNames {
		if _, ok := exempt[name]; ok {
			return true
		}
	}

	for _, id := range roleIDs {
		if _, ok := exempt[id]; ok {
			return true
		}
	}

	return false
}
