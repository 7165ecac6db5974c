package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/wardenbot/warden/internal/database/types"
)

// CooldownModel handles database operations for per-(user, channel)
// cooldown records.
type CooldownModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewCooldown creates a new cooldown model.
func NewCooldown(db *bun.DB, logger *zap.Logger) *CooldownModel {
	return &CooldownModel{
		db:     db,
		logger: logger.Named("db_cooldown"),
	}
}

// UpsertCooldown writes the expiry for a user in a channel, replacing
// any prior record for the pair.
func (r *CooldownModel) UpsertCooldown(ctx context.Context, userID, channelID string, expiry time.Time) error {
	cooldown := &types.Cooldown{
		UserID:          userID,
		ChannelID:       channelID,
		CooldownEndTime: expiry,
	}

	_, err := r.db.NewInsert().
		Model(cooldown).
		On("CONFLICT (user_id, channel_id) DO UPDATE").
		Set("cooldown_end_time = EXCLUDED.cooldown_end_time").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert cooldown: %w", err)
	}

	return nil
}

// GetCooldown retrieves the stored expiry for a user in a channel.
// The second return value is false when no record exists.
func (r *CooldownModel) GetCooldown(ctx context.Context, userID, channelID string) (time.Time, bool, error) {
	var cooldown types.Cooldown

	err := r.db.NewSelect().
		Model(&cooldown).
		Where("user_id = ?", userID).
		Where("channel_id = ?", channelID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}

		return time.Time{}, false, fmt.Errorf("failed to get cooldown: %w", err)
	}

	return cooldown.CooldownEndTime, true, nil
}

// GetUserCooldowns retrieves all stored cooldowns for a user, keyed by
// channel ID.
func (r *CooldownModel) GetUserCooldowns(ctx context.Context, userID string) (map[string]time.Time, error) {
	var cooldowns []types.Cooldown

	err := r.db.NewSelect().
		Model(&cooldowns).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user cooldowns: %w", err)
	}

	result := make(map[string]time.Time, len(cooldowns))
	for _, c := range cooldowns {
		result[c.ChannelID] = c.CooldownEndTime
	}

	return result, nil
}

// DeleteCooldown removes the record for a user in a single channel.
func (r *CooldownModel) DeleteCooldown(ctx context.Context, userID, channelID string) error {
	_, err := r.db.NewDelete().
		Model((*types.Cooldown)(nil)).
		Where("user_id = ?", userID).
		Where("channel_id = ?", channelID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete cooldown: %w", err)
	}

	return nil
}

// DeleteUserCooldowns removes all records for a user across channels.
func (r *CooldownModel) DeleteUserCooldowns(ctx context.Context, userID string) error {
	_, err := r.db.NewDelete().
		Model((*types.Cooldown)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user cooldowns: %w", err)
	}

	return nil
}

// CheckAndReset performs the posting-eligibility check and the global
// reset as one atomic read-modify-write per user. A per-user advisory
// lock held for the transaction serializes concurrent messages; a row
// lock alone cannot, since no row exists for the posted channel before
// the user's first post or after a reset. When the stored expiry is
// absent or expired at the message time, every entry of newExpiries is
// upserted in the same transaction and the post is allowed. Two
// concurrent messages from the same user therefore cannot both be
// treated as allowed.
func (r *CooldownModel) CheckAndReset(
	ctx context.Context, userID, channelID string, at time.Time, newExpiries map[string]time.Time,
) (bool, error) {
	var allowed bool

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"SELECT pg_advisory_xact_lock(hashtext(?))", userID); err != nil {
			return fmt.Errorf("failed to lock user cooldowns: %w", err)
		}

		var cooldown types.Cooldown

		err := tx.NewSelect().
			Model(&cooldown).
			Where("user_id = ?", userID).
			Where("channel_id = ?", channelID).
			Scan(ctx)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to get cooldown: %w", err)
		}

		if err == nil && !cooldown.Expired(at) {
			allowed = false
			return nil
		}

		allowed = true

		cooldowns := make([]types.Cooldown, 0, len(newExpiries))
		for channel, expiry := range newExpiries {
			cooldowns = append(cooldowns, types.Cooldown{
				UserID:          userID,
				ChannelID:       channel,
				CooldownEndTime: expiry,
			})
		}

		if len(cooldowns) == 0 {
			return nil
		}

		_, err = tx.NewInsert().
			Model(&cooldowns).
			On("CONFLICT (user_id, channel_id) DO UPDATE").
			Set("cooldown_end_time = EXCLUDED.cooldown_end_time").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to reset cooldowns: %w", err)
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return allowed, nil
}
