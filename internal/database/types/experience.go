package types

// Experience is a user's XP ledger entry. Experience holds the XP
// accumulated inside the current level, and Level is always the unique
// value derived from the cumulative total via the level step function.
type Experience struct {
	UserID     string `bun:",pk,notnull"        json:"userId"`
	Experience int64  `bun:",notnull,default:0" json:"experience"`
	Level      int64  `bun:",notnull,default:0" json:"level"`
}
