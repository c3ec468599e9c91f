package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/saqrcrm/sales-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumberSequenceRepository handles database operations for document number
// sequences. Quotes and invoices each draw from their own keyed sequence so
// numbers stay unique and monotonic.
type NumberSequenceRepository struct {
	db *gorm.DB
}

// NewNumberSequenceRepository creates a new NumberSequenceRepository
func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// Next atomically takes the next number for a key and returns it formatted
// with the sequence prefix, e.g. "Q-2026-000123". Uses SELECT FOR UPDATE to
// prevent two callers drawing the same number. If the sequence does not
// exist yet it is created with the given prefix.
func (r *NumberSequenceRepository) Next(ctx context.Context, key, defaultPrefix string) (string, error) {
	var formatted string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq domain.NumberSequence
		query := tx.Where("key = ?", key)
		// SQLite serializes writers on its own and rejects FOR UPDATE
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		result := query.First(&seq)

		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			seq = domain.NumberSequence{
				Key:       key,
				Prefix:    defaultPrefix,
				NextValue: 2,
				UpdatedAt: time.Now(),
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence: %w", err)
			}
			formatted = fmt.Sprintf("%s-%06d", seq.Prefix, 1)
			return nil
		}
		if result.Error != nil {
			return fmt.Errorf("failed to get number sequence: %w", result.Error)
		}

		value := seq.NextValue
		if err := tx.Model(&seq).Updates(map[string]interface{}{
			"next_value": value + 1,
			"updated_at": time.Now(),
		}).Error; err != nil {
			return fmt.Errorf("failed to update number sequence: %w", err)
		}
		formatted = fmt.Sprintf("%s-%06d", seq.Prefix, value)
		return nil
	})

	if err != nil {
		return "", err
	}
	return formatted, nil
}

// Peek returns the next value without consuming it. Returns 1 for an unknown key.
func (r *NumberSequenceRepository) Peek(ctx context.Context, key string) (int64, error) {
	var seq domain.NumberSequence
	result := r.db.WithContext(ctx).Where("key = ?", key).First(&seq)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get number sequence: %w", result.Error)
	}
	return seq.NextValue, nil
}
