package models

import (
	"errors"

	pkgErrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrRecordNotFound = errors.New("storage record not found")

// Store wraps the db connection & exposes the durable key-value records
// used by the contact & settings stores
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// PutRecord creates or replaces the record stored under 'key'
func (store *Store) PutRecord(key, value string) error {
	err := store.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&StorageRecord{Key: key, Value: value}).Error

	if err != nil {
		return pkgErrors.Wrapf(err, "failed to persist record %q", key)
	}

	return nil
}

// GetRecord returns the value stored under 'key' or ErrRecordNotFound
func (store *Store) GetRecord(key string) (string, error) {
	record := StorageRecord{}

	err := store.db.Where(&StorageRecord{Key: key}).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrRecordNotFound
	}

	if err != nil {
		return "", pkgErrors.Wrapf(err, "failed to load record %q", key)
	}

	return record.Value, nil
}

// CreateDispatchEntry records the summary of an alert dispatch run
func (store *Store) CreateDispatchEntry(entry *DispatchEntry) error {
	return store.db.Create(entry).Error
}

// RecentDispatchEntries returns the last 'limit' dispatch records, newest first
func (store *Store) RecentDispatchEntries(limit int) ([]DispatchEntry, error) {
	entries := []DispatchEntry{}

	err := store.db.Order("created_at desc").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}
