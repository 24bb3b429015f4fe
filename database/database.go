package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"stock-journal/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateUser = errors.New("username already exists")
	ErrInvalidBatch  = errors.New("invalid batch size")
)

// ValidationError reports a trade or reflection that cannot be stored.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Store is the journal's persistence layer. Every method is scoped to an
// explicit owner; there is no ambient current user.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection, mainly for Close.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Migrate creates or updates the three journal tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Trade{},
		&models.DailyReflection{},
	); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}
	return nil
}

// Page is one page of a date-descending listing.
type Page[T any] struct {
	Items   []T
	Page    int
	PerPage int
	Total   int64
}

func (p Page[T]) Pages() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

func (p Page[T]) HasPrev() bool { return p.Page > 1 }
func (p Page[T]) HasNext() bool { return p.Page < p.Pages() }
func (p Page[T]) PrevNum() int  { return p.Page - 1 }
func (p Page[T]) NextNum() int  { return p.Page + 1 }

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	return page, perPage
}

// CreateInBatches inserts items in chunks of batchSize inside one
// transaction. Nothing is written if any chunk fails.
func CreateInBatches[T any](ctx context.Context, db *gorm.DB, items []T, batchSize int) error {
	if batchSize <= 0 {
		return ErrInvalidBatch
	}
	if len(items) == 0 {
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		total := len(items)
		for i := 0; i < total; i += batchSize {
			end := i + batchSize
			if end > total {
				end = total
			}
			chunk := items[i:end]
			if err := tx.Create(&chunk).Error; err != nil {
				return fmt.Errorf("batch insert failed: %w", err)
			}
		}
		return nil
	})
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
