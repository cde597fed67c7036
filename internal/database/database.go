package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/glebarez/sqlite"
	"github.com/jon4hz/bixblion/internal/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var _ storage.Store = (*Client)(nil) // Ensure Client implements storage.Store

// Entry is a single persisted key-value pair.
type Entry struct {
	Key       string `gorm:"primaryKey;column:entry_key"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

// Client wraps the gorm.DB instance.
type Client struct {
	db *gorm.DB
}

// New creates a new database connection and performs migrations.
func New(dbpath string) (*Client, error) {
	if dir := filepath.Dir(dbpath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbpath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Client{db: db}, nil
}

func (c *Client) Get(ctx context.Context, key string) (string, error) {
	var entry Entry
	if err := c.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", storage.ErrNotFound
		}
		log.Error("failed to get entry", "key", key, "error", err)
		return "", err
	}
	return entry.Value, nil
}

func (c *Client) Set(ctx context.Context, key, value string) error {
	entry := Entry{
		Key:   key,
		Value: value,
	}
	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		log.Error("failed to set entry", "key", key, "error", err)
		return err
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&Entry{}).Error; err != nil {
		log.Error("failed to delete entry", "key", key, "error", err)
		return err
	}
	return nil
}

// Close closes the underlying database connection.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
