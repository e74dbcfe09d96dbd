package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Entry struct {
	Key       string    `gorm:"column:storage_key;primaryKey;size:255" json:"key"`
	Value     []byte    `gorm:"not null"                               json:"value"`
	UpdatedAt time.Time `                                              json:"updated_at"`
}

func (Entry) TableName() string {
	return "kv_entries"
}

type Gorm struct {
	DB *gorm.DB
}

func NewGorm(ctx context.Context, db *gorm.DB) (*Gorm, error) {
	if err := db.WithContext(ctx).AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate kv_entries: %w", err)
	}
	return &Gorm{DB: db}, nil
}

func (g *Gorm) Get(ctx context.Context, key string) ([]byte, error) {
	var e Entry
	if err := g.DB.WithContext(ctx).Where("storage_key = ?", key).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e.Value, nil
}

func (g *Gorm) Set(ctx context.Context, key string, value []byte) error {
	e := Entry{Key: key, Value: value}
	return g.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

func (g *Gorm) Delete(ctx context.Context, key string) error {
	return g.DB.WithContext(ctx).Where("storage_key = ?", key).Delete(&Entry{}).Error
}
