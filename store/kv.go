package store

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type kvEntry struct {
	Key   string `gorm:"primaryKey;size:100"`
	Value string `gorm:"not null"`
}

func (kvEntry) TableName() string {
	return "kv_entries"
}

// KV is the sqlite-backed KeyValue implementation.
type KV struct {
	db *gorm.DB
}

func NewKV(db *gorm.DB) (*KV, error) {
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, err
	}
	return &KV{db: db}, nil
}

func (kv *KV) Get(key string) (string, bool) {
	var entry kvEntry
	if err := kv.db.Where("key = ?", key).First(&entry).Error; err != nil {
		return "", false
	}
	return entry.Value, true
}

func (kv *KV) Set(key, value string) {
	err := kv.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&kvEntry{Key: key, Value: value}).Error
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("kv set failed")
	}
}

func (kv *KV) Remove(key string) {
	if err := kv.db.Where("key = ?", key).Delete(&kvEntry{}).Error; err != nil {
		logrus.WithError(err).WithField("key", key).Warn("kv remove failed")
	}
}
