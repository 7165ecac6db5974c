package levels

import (
	"context"

	"go.uber.org/zap"

	"github.com/wardenbot/warden/internal/database"
	"github.com/wardenbot/warden/internal/database/dbretry"
	"github.com/wardenbot/warden/internal/database/types"
)

// Service exposes the XP ledger to the command surface and the message
// pipeline.
type Service struct {
	db     database.Client
	logger *zap.Logger
}

// NewService creates the ledger service.
func NewService(db database.Client, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.Named("levels"),
	}
}

// Award credits XP to a user and reports the updated entry along with
// whether a level boundary was crossed.
func (s *Service) Award(ctx context.Context, userID string, amount int64) (*types.Experience, bool, error) {
	type result struct {
		entry   *types.Experience
		leveled bool
	}

	res, err := dbretry.Operation(ctx, func(ctx context.Context) (result, error) {
		entry, leveled, err := s.db.Model().Experience().AddExperience(ctx, userID, amount)
		return result{entry: entry, leveled: leveled}, err
	})
	if err != nil {
		return nil, false, err
	}

	return res.entry, res.leveled, nil
}

// Progression returns a user's ledger entry, creating a zeroed one on
// first access.
func (s *Service) Progression(ctx context.Context, userID string) (*types.Experience, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Experience, error) {
		return s.db.Model().Experience().GetProgression(ctx, userID)
	})
}

// Leaderboard returns up to limit entries ordered by progression.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]types.Experience, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]types.Experience, error) {
		return s.db.Model().Experience().ListLeaderboard(ctx, limit)
	})
}

// Reset zeroes a user's progression.
func (s *Service) Reset(ctx context.Context, userID string) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		return s.db.Model().Experience().ResetProgression(ctx, userID)
	})
}
