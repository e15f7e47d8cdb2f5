package database

import (
	"context"
	"fmt"

	"github.com/Luiz-altf4/Rose-Forum/models"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"go.uber.org/zap"
)

// Store keeps documents in a single "documents" table.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// Open connects with the given gorm dialect ("sqlite3" or "postgres") and
// migrates the documents table.
func Open(dialect, dsn string, log *zap.Logger) (*Store, error) {
	db, err := gorm.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}
	db.LogMode(false)
	if dialect == "sqlite3" {
		// one connection keeps ":memory:" databases alive and serializes writers
		db.DB().SetMaxOpenConns(1)
	}

	store, err := NewStoreWithConnection(db, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	store.log.Info("connected to document database", zap.String("dialect", dialect))
	return store, nil
}

// NewStoreWithConnection wraps an existing connection (used by tests).
func NewStoreWithConnection(db *gorm.DB, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := db.AutoMigrate(&models.Document{}).Error; err != nil {
		return nil, fmt.Errorf("failed to migrate documents table: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		// gorm drops zero-value struct conditions, so this would match any row
		return nil, false, nil
	}
	var doc models.Document
	err := s.db.Where(&models.Document{Key: key}).First(&doc).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("could not get document %s: %w", key, err)
	}
	return []byte(doc.Value), true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	doc := models.Document{Key: key, Value: string(value)}
	if err := s.db.Save(&doc).Error; err != nil {
		return fmt.Errorf("could not save document %s: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if key == "" {
		// an empty primary key would turn this into a table wide delete
		return nil
	}
	err := s.db.Delete(&models.Document{Key: key}).Error
	if err != nil {
		return fmt.Errorf("could not delete document %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close the database connection: %w", err)
	}
	s.log.Info("database connection closed")
	return nil
}
