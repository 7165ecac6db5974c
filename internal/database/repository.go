package database

import (
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/wardenbot/warden/internal/database/models"
)

// Repository provides access to all database models.
type Repository struct {
	cooldown   *models.CooldownModel
	tag        *models.TagModel
	experience *models.ExperienceModel
	setting    *models.SettingModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		cooldown:   models.NewCooldown(db, logger),
		tag:        models.NewTag(db, logger),
		experience: models.NewExperience(db, logger),
		setting:    models.NewSetting(db, logger),
	}
}

// Cooldown returns the cooldown model repository.
func (r *Repository) Cooldown() *models.CooldownModel {
	return r.cooldown
}

// Tag returns the tag model repository.
func (r *Repository) Tag() *models.TagModel {
	return r.tag
}

// Experience returns the experience model repository.
func (r *Repository) Experience() *models.ExperienceModel {
	return r.experience
}

// Setting returns the setting model repository.
func (r *Repository) Setting() *models.SettingModel {
	return r.setting
}
