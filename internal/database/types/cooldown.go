package types

import (
	"time"
)

// Cooldown records when a user may next post in a rate-limited channel.
// IDs are stored as text to preserve the precision of snowflake values.
type Cooldown struct {
	UserID          string    `bun:",pk,notnull" json:"userId"`
	ChannelID       string    `bun:",pk,notnull" json:"channelId"`
	CooldownEndTime time.Time `bun:",notnull"    json:"cooldownEndTime"`
}

// Expired reports whether the cooldown no longer applies at the given time.
func (c *Cooldown) Expired(at time.Time) bool {
	return !at.Before(c.CooldownEndTime)
}
