package types

// Tag is a named, guild-scoped snippet of stored text.
// Names are unique per guild; UseCount only moves upward while the
// record exists.
type Tag struct {
	GuildID  string `bun:",pk,notnull"           json:"guildId"`
	Name     string `bun:",pk,notnull"           json:"name"`
	Content  string `bun:",notnull"              json:"content"`
	UseCount int64  `bun:",notnull,default:0"    json:"useCount"`
}
