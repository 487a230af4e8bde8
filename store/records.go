package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/studydeck/studydeck-api/models"
)

// gormStore implements RecordStore over a gorm connection. The remote postgres
// database and the local sqlite file share the same schema, so one
// implementation serves both backends.
type gormStore struct {
	db   *gorm.DB
	name string // "remote" or "local", for log/error context
}

// NewRecordStore wraps an open database as a RecordStore.
func NewRecordStore(db *gorm.DB, name string) RecordStore {
	return &gormStore{db: db, name: name}
}

func (s *gormStore) List(ctx context.Context) ([]models.SavedSet, error) {
	var sets []models.SavedSet
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&sets).Error
	if err != nil {
		return nil, fmt.Errorf("%s store: list: %w", s.name, err)
	}
	return sets, nil
}

func (s *gormStore) Insert(ctx context.Context, set models.SavedSet) error {
	if err := s.db.WithContext(ctx).Create(&set).Error; err != nil {
		return fmt.Errorf("%s store: insert %s: %w", s.name, set.ID, err)
	}
	return nil
}

func (s *gormStore) Update(ctx context.Context, id string, set models.SavedSet) error {
	set.ID = id
	result := s.db.WithContext(ctx).
		Model(&models.SavedSet{}).
		Where("id = ?", id).
		Select("Title", "TesterName", "CardCount", "Flashcards", "Grouping", "Description", "SavedAt").
		Updates(&set)
	if result.Error != nil {
		return fmt.Errorf("%s store: update %s: %w", s.name, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s store: update %s: %w", s.name, id, ErrNotFound)
	}
	return nil
}

// Delete removes a record by id. Deleting an id that does not exist is not an
// error.
func (s *gormStore) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.SavedSet{}).Error
	if err != nil {
		return fmt.Errorf("%s store: delete %s: %w", s.name, id, err)
	}
	return nil
}
