package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/wardenbot/warden/internal/database/types"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.Cooldown)(nil),
			(*types.Tag)(nil),
			(*types.Experience)(nil),
			(*types.GuildSettings)(nil),
		}

		for _, model := range models {
			_, err := db.NewCreateTable().
				Model(model).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to create table for %T: %w", model, err)
			}
		}

		// The tag leaderboard sorts by use count per guild.
		_, err := db.NewCreateIndex().
			Model((*types.Tag)(nil)).
			Index("tags_guild_use_count_idx").
			Column("guild_id", "use_count").
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create tag index: %w", err)
		}

		// Cooldown resets delete by user across channels.
		_, err = db.NewCreateIndex().
			Model((*types.Cooldown)(nil)).
			Index("cooldowns_user_idx").
			Column("user_id").
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create cooldown index: %w", err)
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.GuildSettings)(nil),
			(*types.Experience)(nil),
			(*types.Tag)(nil),
			(*types.Cooldown)(nil),
		}

		for _, model := range models {
			_, err := db.NewDropTable().
				Model(model).
				IfExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to drop table for %T: %w", model, err)
			}
		}

		return nil
	})
}
