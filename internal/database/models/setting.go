package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/wardenbot/warden/internal/database/types"
)

// SettingModel handles database operations for guild settings.
type SettingModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewSetting creates a new setting model.
func NewSetting(db *bun.DB, logger *zap.Logger) *SettingModel {
	return &SettingModel{
		db:     db,
		logger: logger.Named("db_setting"),
	}
}

// GetGuildSettings retrieves the settings for a guild, creating a
// default record on first access.
func (r *SettingModel) GetGuildSettings(ctx context.Context, guildID string) (*types.GuildSettings, error) {
	var settings types.GuildSettings

	err := r.db.NewSelect().
		Model(&settings).
		Where("guild_id = ?", guildID).
		Scan(ctx)
	if err == nil {
		return &settings, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}

	settings = types.GuildSettings{
		GuildID:          guildID,
		CooldownChannels: map[string]int{},
		ExemptRoles:      []string{},
	}

	_, err = r.db.NewInsert().
		Model(&settings).
		On("CONFLICT (guild_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create guild settings: %w", err)
	}

	return &settings, nil
}

// UpsertGuildSettings replaces the stored settings for a guild.
func (r *SettingModel) UpsertGuildSettings(ctx context.Context, settings *types.GuildSettings) error {
	_, err := r.db.NewInsert().
		Model(settings).
		On("CONFLICT (guild_id) DO UPDATE").
		Set("cooldown_channels = EXCLUDED.cooldown_channels").
		Set("exempt_roles = EXCLUDED.exempt_roles").
		Set("reduce_per_tier = EXCLUDED.reduce_per_tier").
		Set("log_channel_id = EXCLUDED.log_channel_id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert guild settings: %w", err)
	}

	return nil
}
