// Package constants defines shared values used across the bot's
// command surface.
package constants

const (
	// DefaultEmbedColor is used for informational replies.
	DefaultEmbedColor = 0x3498DB
	// SuccessEmbedColor is used for confirmations.
	SuccessEmbedColor = 0x2ECC71
	// ErrorEmbedColor is used for failures.
	ErrorEmbedColor = 0xE74C3C

	// LeaderboardLimit caps the number of leaderboard entries shown.
	LeaderboardLimit = 10
	// TopTagsLimit caps the number of tags in the top-tags listing.
	TopTagsLimit = 10
)
