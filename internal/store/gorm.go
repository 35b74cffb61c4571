package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// GormBackend stores entries in the kv_entries table. Several server
// processes may share one database; the version column arbitrates between
// them.
type GormBackend struct {
	db *gorm.DB
}

func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db}
}

func (b *GormBackend) Get(ctx context.Context, key string) (Entry, error) {
	var entry Entry
	err := b.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Entry{Key: key}, nil
	}
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return entry, nil
}

func (b *GormBackend) Put(ctx context.Context, key string, value []byte, expected int64) (Entry, error) {
	db := b.db.WithContext(ctx)
	now := time.Now()

	if expected == 0 {
		entry := Entry{Key: key, Value: value, Version: 1, UpdatedAt: now}
		if err := db.Create(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) || b.exists(ctx, key) {
				return Entry{}, ErrConflict
			}
			return Entry{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return entry, nil
	}

	result := db.Model(&Entry{}).
		Where("entry_key = ? AND version = ?", key, expected).
		Updates(map[string]any{
			"value":      value,
			"version":    expected + 1,
			"updated_at": now,
		})
	if result.Error != nil {
		return Entry{}, fmt.Errorf("%w: %w", ErrUnavailable, result.Error)
	}
	if result.RowsAffected == 0 {
		return Entry{}, ErrConflict
	}
	return Entry{Key: key, Value: value, Version: expected + 1, UpdatedAt: now}, nil
}

func (b *GormBackend) Versions(ctx context.Context, keys []string) (map[string]int64, error) {
	versions := make(map[string]int64, len(keys))
	if len(keys) == 0 {
		return versions, nil
	}

	var rows []Entry
	err := b.db.WithContext(ctx).
		Select("entry_key", "version").
		Where("entry_key IN ?", keys).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	for _, row := range rows {
		versions[row.Key] = row.Version
	}
	return versions, nil
}

func (b *GormBackend) exists(ctx context.Context, key string) bool {
	var count int64
	err := b.db.WithContext(ctx).Model(&Entry{}).Where("entry_key = ?", key).Count(&count).Error
	return err == nil && count > 0
}
