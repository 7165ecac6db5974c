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

var (
	// ErrTagNotFound is returned when a tag does not exist in the guild.
	ErrTagNotFound = errors.New("tag not found")
	// ErrTagExists is returned when creating a tag whose name is taken.
	ErrTagExists = errors.New("tag already exists")
)

// TagModel handles database operations for guild-scoped tags.
type TagModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewTag creates a new tag model.
func NewTag(db *bun.DB, logger *zap.Logger) *TagModel {
	return &TagModel{
		db:     db,
		logger: logger.Named("db_tag"),
	}
}

// GetTag retrieves the content of a tag by exact name. Reading is
// side-effect free; incrementing the use counter is a separate call.
func (r *TagModel) GetTag(ctx context.Context, guildID, name string) (string, error) {
	var tag types.Tag

	err := r.db.NewSelect().
		Model(&tag).
		Where("guild_id = ?", guildID).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrTagNotFound
		}

		return "", fmt.Errorf("failed to get tag: %w", err)
	}

	return tag.Content, nil
}

// IncrementTagUse adds one to the tag's use counter.
func (r *TagModel) IncrementTagUse(ctx context.Context, guildID, name string) error {
	_, err := r.db.NewUpdate().
		Model((*types.Tag)(nil)).
		Set("use_count = use_count + 1").
		Where("guild_id = ?", guildID).
		Where("name = ?", name).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to increment tag use: %w", err)
	}

	return nil
}

// CreateTag inserts a new tag. Returns ErrTagExists when the name is
// already taken in the guild.
func (r *TagModel) CreateTag(ctx context.Context, guildID, name, content string) error {
	tag := &types.Tag{
		GuildID: guildID,
		Name:    name,
		Content: content,
	}

	res, err := r.db.NewInsert().
		Model(tag).
		On("CONFLICT (guild_id, name) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return ErrTagExists
	}

	return nil
}

// EditTag replaces the content of an existing tag. Returns
// ErrTagNotFound when the tag does not exist.
func (r *TagModel) EditTag(ctx context.Context, guildID, name, content string) error {
	res, err := r.db.NewUpdate().
		Model((*types.Tag)(nil)).
		Set("content = ?", content).
		Where("guild_id = ?", guildID).
		Where("name = ?", name).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to edit tag: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return ErrTagNotFound
	}

	return nil
}

// DeleteTag removes a tag. Deleting a nonexistent tag fails with
// ErrTagNotFound; this is the documented contract so that typos are
// visible to moderators instead of silently succeeding.
func (r *TagModel) DeleteTag(ctx context.Context, guildID, name string) error {
	res, err := r.db.NewDelete().
		Model((*types.Tag)(nil)).
		Where("guild_id = ?", guildID).
		Where("name = ?", name).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return ErrTagNotFound
	}

	return nil
}

// ListTagNames retrieves all tag names in a guild.
func (r *TagModel) ListTagNames(ctx context.Context, guildID string) ([]string, error) {
	var names []string

	err := r.db.NewSelect().
		Model((*types.Tag)(nil)).
		Column("name").
		Where("guild_id = ?", guildID).
		Order("name ASC").
		Scan(ctx, &names)
	if err != nil {
		return nil, fmt.Errorf("failed to list tag names: %w", err)
	}

	return names, nil
}

// ListTopTags retrieves up to limit tags ordered by use count
// descending, name ascending as the tiebreak.
func (r *TagModel) ListTopTags(ctx context.Context, guildID string, limit int) ([]types.Tag, error) {
	var tags []types.Tag

	err := r.db.NewSelect().
		Model(&tags).
		Where("guild_id = ?", guildID).
		Order("use_count DESC", "name ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list top tags: %w", err)
	}

	return tags, nil
}
