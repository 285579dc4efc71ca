// Package repo implements the durable key/value substrate behind the local
// store and the persisted session. This file provides the key/value
// repository functions for the StorageItem model.
//
// All functions are context-aware and accept a *gorm.DB handle. They follow
// the "thin repository" approach: no business logic, only persistence.
//
// Error semantics:
//   - When a key is absent, GetItem returns ErrNotFound.
//   - On DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-topup-portal/internal/domain"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrEmptyKey is returned for blank keys.
var ErrEmptyKey = errors.New("storage key is empty")

// GetItem returns the value stored under key, or ErrNotFound.
func GetItem(ctx context.Context, db *gorm.DB, key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", ErrEmptyKey
	}
	var item domain.StorageItem
	err := db.WithContext(ctx).Where("key = ?", key).First(&item).Error
	if err != nil {
		return "", err
	}
	return item.Value, nil
}

// SetItem stores value under key, overwriting any previous value.
func SetItem(ctx context.Context, db *gorm.DB, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	item := domain.StorageItem{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&item).Error
}

// RemoveItem deletes key. Removing an absent key is not an error.
func RemoveItem(ctx context.Context, db *gorm.DB, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return db.WithContext(ctx).Where("key = ?", key).Delete(&domain.StorageItem{}).Error
}

// LocalStorage adapts the free functions above to the storage.KV and
// session vault contracts, bound to one *gorm.DB.
type LocalStorage struct {
	DB *gorm.DB
}

// NewLocalStorage returns a LocalStorage bound to db.
func NewLocalStorage(db *gorm.DB) *LocalStorage {
	return &LocalStorage{DB: db}
}

// GetItem reports the value and whether it exists. A missing key is not an
// error.
func (s *LocalStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := GetItem(ctx, s.DB, key)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// SetItem proxies SetItem.
func (s *LocalStorage) SetItem(ctx context.Context, key, value string) error {
	return SetItem(ctx, s.DB, key, value)
}

// RemoveItem proxies RemoveItem.
func (s *LocalStorage) RemoveItem(ctx context.Context, key string) error {
	return RemoveItem(ctx, s.DB, key)
}
