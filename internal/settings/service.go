// Package settings provides the configuration service consumed by the
// cooldown engine and the command surface. Settings are stored per
// guild and always re-fetched on demand, so administrative changes are
// visible to the next operation without any reload step.
package settings

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wardenbot/warden/internal/database"
	"github.com/wardenbot/warden/internal/database/dbretry"
	"github.com/wardenbot/warden/internal/database/types"
)

// Service is the configuration contract the engines depend on. Get
// returns the current settings; mutators apply a change and report
// whether anything changed.
type Service interface {
	Get(ctx context.Context, guildID string) (*types.GuildSettings, error)
	SetCooldownChannel(ctx context.Context, guildID, channelID string, minutes int) (prev int, existed bool, err error)
	RemoveCooldownChannel(ctx context.Context, guildID, channelID string) (removed bool, err error)
	AddExemptRole(ctx context.Context, guildID, role string) (added bool, err error)
	RemoveExemptRole(ctx context.Context, guildID, role string) (removed bool, err error)
	SetReducePerTier(ctx context.Context, guildID string, minutes int) error
	SetLogChannel(ctx context.Context, guildID, channelID string) error
}

type service struct {
	db     database.Client
	logger *zap.Logger
}

// New creates the database-backed settings service.
func New(db database.Client, logger *zap.Logger) Service {
	return &service{
		db:     db,
		logger: logger.Named("settings"),
	}
}

func (s *service) Get(ctx context.Context, guildID string) (*types.GuildSettings, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.GuildSettings, error) {
		return s.db.Model().Setting().GetGuildSettings(ctx, guildID)
	})
}

func (s *service) SetCooldownChannel(
	ctx context.Context, guildID, channelID string, minutes int,
) (int, bool, error) {
	if minutes <= 0 {
		return 0, false, fmt.Errorf("cooldown duration must be positive, got %d", minutes)
	}

	current, err := s.Get(ctx, guildID)
	if err != nil {
		return 0, false, err
	}

	prev, existed := current.CooldownChannels[channelID]
	current.CooldownChannels[channelID] = minutes

	if err := s.upsert(ctx, current); err != nil {
		return 0, false, err
	}

	return prev, existed, nil
}

func (s *service) RemoveCooldownChannel(ctx context.Context, guildID, channelID string) (bool, error) {
	current, err := s.Get(ctx, guildID)
	if err != nil {
		return false, err
	}

	if _, ok := current.CooldownChannels[channelID]; !ok {
		return false, nil
	}

	delete(current.CooldownChannels, channelID)

	if err := s.upsert(ctx, current); err != nil {
		return false, err
	}

	return true, nil
}

func (s *service) AddExemptRole(ctx context.Context, guildID, role string) (bool, error) {
	current, err := s.Get(ctx, guildID)
	if err != nil {
		return false, err
	}

	for _, r := range current.ExemptRoles {
		if r == role {
			return false, nil
		}
	}

	current.ExemptRoles = append(current.ExemptRoles, role)

	if err := s.upsert(ctx, current); err != nil {
		return false, err
	}

	return true, nil
}

func (s *service) RemoveExemptRole(ctx context.Context, guildID, role string) (bool, error) {
	current, err := s.Get(ctx, guildID)
	if err != nil {
		return false, err
	}

	filtered := current.ExemptRoles[:0]

	removed := false
	for _, r := range current.ExemptRoles {
		if r == role {
			removed = true
			continue
		}

		filtered = append(filtered, r)
	}

	if !removed {
		return false, nil
	}

	current.ExemptRoles = filtered

	if err := s.upsert(ctx, current); err != nil {
		return false, err
	}

	return true, nil
}

func (s *service) SetReducePerTier(ctx context.Context, guildID string, minutes int) error {
	if minutes < 0 {
		return fmt.Errorf("reduction must be non-negative, got %d", minutes)
	}

	current, err := s.Get(ctx, guildID)
	if err != nil {
		return err
	}

	current.ReducePerTier = minutes

	return s.upsert(ctx, current)
}

func (s *service) SetLogChannel(ctx context.Context, guildID, channelID string) error {
	current, err := s.Get(ctx, guildID)
	if err != nil {
		return err
	}

	current.LogChannelID = channelID

	return s.upsert(ctx, current)
}

func (s *service) upsert(ctx context.Context, settings *types.GuildSettings) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		return s.db.Model().Setting().UpsertGuildSettings(ctx, settings)
	})
}
