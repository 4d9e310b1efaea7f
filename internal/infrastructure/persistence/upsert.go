package persistence

import (
	"strings"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsert inserts the model or, on an id conflict, overwrites every column
// except id and created_at.
func upsert(db *gorm.DB, model any, omit ...string) error {
	return db.Omit(omit...).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(model).Error
}

// saveVersioned inserts a new aggregate, or updates the row only while it
// still has the version the aggregate was loaded at. A lost race is
// shared.ErrConcurrentUpdate. toModel is called after the version is settled.
func saveVersioned(db *gorm.DB, model any, root *shared.BaseAggregateRoot, toModel func() any, omit ...string) error {
	expected := root.StoredVersion()
	if expected == 0 {
		if err := db.Omit(omit...).Create(toModel()).Error; err != nil {
			return err
		}
		root.MarkStored()
		return nil
	}

	prev := root.Version
	if root.Version <= expected {
		root.Version = expected + 1
	}
	result := db.Model(model).
		Select("*").Omit(append(omit, "id", "created_at")...).
		Where("id = ? AND version = ?", root.ID, expected).
		Updates(toModel())
	if result.Error != nil {
		root.Version = prev
		return result.Error
	}
	if result.RowsAffected == 0 {
		root.Version = prev
		var count int64
		if err := db.Model(model).Where("id = ?", root.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrentUpdate
	}
	root.MarkStored()
	return nil
}

func deleteByID(db *gorm.DB, model any, id uuid.UUID) error {
	result := db.Delete(model, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func existsBySlug(db *gorm.DB, model any, slug string, excludeID *uuid.UUID) (bool, error) {
	query := db.Model(model).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
