package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/wardenbot/warden/internal/database/types"
	"github.com/wardenbot/warden/internal/levels/curve"
)

// ExperienceModel handles database operations for the per-user XP
// ledger.
type ExperienceModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewExperience creates a new experience model.
func NewExperience(db *bun.DB, logger *zap.Logger) *ExperienceModel {
	return &ExperienceModel{
		db:     db,
		logger: logger.Named("db_experience"),
	}
}

// GetProgression retrieves a user's ledger entry, creating a zeroed
// record on first access.
func (r *ExperienceModel) GetProgression(ctx context.Context, userID string) (*types.Experience, error) {
	var entry types.Experience

	err := r.db.NewSelect().
		Model(&entry).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err == nil {
		return &entry, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get progression: %w", err)
	}

	entry = types.Experience{UserID: userID}

	_, err = r.db.NewInsert().
		Model(&entry).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create progression: %w", err)
	}

	return &entry, nil
}

// AddExperience adds XP to a user and recomputes the derived level
// inside a single transaction, so the stored level and experience can
// never drift apart. It returns the updated entry and whether the user
// gained at least one level.
func (r *ExperienceModel) AddExperience(
	ctx context.Context, userID string, amount int64,
) (*types.Experience, bool, error) {
	if amount < 0 {
		return nil, false, fmt.Errorf("negative experience amount: %d", amount)
	}

	var (
		entry   types.Experience
		leveled bool
	)

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(&entry).
			Where("user_id = ?", userID).
			For("UPDATE").
			Scan(ctx)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to get progression: %w", err)
		}

		if errors.Is(err, sql.ErrNoRows) {
			entry = types.Experience{UserID: userID}
		}

		oldLevel := entry.Level
		entry.Level, entry.Experience = curve.Advance(entry.Level, entry.Experience, amount)
		leveled = entry.Level > oldLevel

		_, err = tx.NewInsert().
			Model(&entry).
			On("CONFLICT (user_id) DO UPDATE").
			Set("experience = EXCLUDED.experience").
			Set("level = EXCLUDED.level").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to store progression: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to add experience: %w", err)
	}

	return &entry, leveled, nil
}

// ResetProgression zeroes a user's experience and level.
func (r *ExperienceModel) ResetProgression(ctx context.Context, userID string) error {
	_, err := r.db.NewUpdate().
		Model((*types.Experience)(nil)).
		Set("experience = 0").
		Set("level = 0").
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset progression: %w", err)
	}

	return nil
}

// ListLeaderboard retrieves up to limit ledger entries ordered by level
// descending, in-level experience as the tiebreak.
func (r *ExperienceModel) ListLeaderboard(ctx context.Context, limit int) ([]types.Experience, error) {
	var entries []types.Experience

	err := r.db.NewSelect().
		Model(&entries).
		Order("level DESC", "experience DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard: %w", err)
	}

	return entries, nil
}
