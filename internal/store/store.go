// Package store owns the persisted School and Student records. It is the only
// writer of those tables: every mutation runs in a single transaction, student
// mutations are approved by the rules package against the prospective state
// before anything is written, and deactivating a school unlinks its active
// students in the same transaction.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"school-service/internal/model"
)

// Page is a limit/offset window over a listing
type Page struct {
	Limit  int
	Offset int
}

// Store persists schools and students through GORM
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// New returns a Store backed by db. A nil logger disables store logging.
func New(db *gorm.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log.Named("store")}
}

// Migrate creates or updates the school and student tables
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&model.School{}, &model.Student{}); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return nil
}

// DB exposes the underlying handle, mainly for health checks
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Ping checks that the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

// lockActiveSchool loads an active school and holds a row lock on it until the
// transaction ends, so capacity checks against it are serialized.
func lockActiveSchool(tx *gorm.DB, id uint) (*model.School, error) {
	var school model.School
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_active = ?", id, true).
		First(&school).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load school %d: %w", id, err)
	}
	return &school, nil
}

func countActiveStudents(tx *gorm.DB, schoolID uint) (int64, error) {
	var count int64
	err := tx.Model(&model.Student{}).
		Where("school_id = ? AND is_active = ?", schoolID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count students of school %d: %w", schoolID, err)
	}
	return count, nil
}

// CountActiveStudents returns the number of active students referencing schoolID
func (s *Store) CountActiveStudents(ctx context.Context, schoolID uint) (int64, error) {
	return countActiveStudents(s.db.WithContext(ctx), schoolID)
}

func newestFirst(q *gorm.DB) *gorm.DB {
	return q.Order("created_at DESC").Order("id DESC")
}

func paginate(q *gorm.DB, p Page) *gorm.DB {
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	return q
}
