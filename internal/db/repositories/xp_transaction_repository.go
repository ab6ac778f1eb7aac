package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"clubconnect/backend/internal/models/entities"
)

// XPTransactionRepository owns the append-only XP audit log. Rows are never
// updated or deleted.
type XPTransactionRepository struct {
	db *gorm.DB
}

func NewXPTransactionRepository(db *gorm.DB) *XPTransactionRepository {
	return &XPTransactionRepository{db: db}
}

// Append writes one audit row for an XP award.
func (r *XPTransactionRepository) Append(ctx context.Context, txn *entities.XPTransaction) error {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return fmt.Errorf("append xp transaction: %w", err)
	}
	return nil
}

// HasAward reports whether an award with this (user, action, reference)
// identity was already logged. The gamification facade uses it to keep the
// retry-XP-only path idempotent.
func (r *XPTransactionRepository) HasAward(ctx context.Context, userID, action, referenceID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.XPTransaction{}).
		Where("user_id = ? AND action = ? AND reference_id = ?", userID, action, referenceID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("lookup xp transaction: %w", err)
	}
	return count > 0, nil
}

// CountByUserAndAction returns how many awards of one action a user has
// received, regardless of reference.
func (r *XPTransactionRepository) CountByUserAndAction(ctx context.Context, userID, action string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.XPTransaction{}).
		Where("user_id = ? AND action = ?", userID, action).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count xp transactions: %w", err)
	}
	return count, nil
}

// ListByUser returns a user's award history, newest first.
func (r *XPTransactionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]entities.XPTransaction, error) {
	var txns []entities.XPTransaction
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("list xp transactions: %w", err)
	}
	return txns, nil
}
