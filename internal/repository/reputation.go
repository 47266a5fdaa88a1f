package repository

import (
	"context"
	"time"

	"circle/internal/cache"
	"circle/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReputationRepository is the append-only points ledger.
type ReputationRepository interface {
	Award(ctx context.Context, entry *models.ReputationEntry) (int64, error)
	History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.ReputationEntry, error)
	Total(ctx context.Context, userID uuid.UUID) (int64, error)
}

type reputationRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewReputationRepository creates a new reputation repository
func NewReputationRepository(db *gorm.DB) ReputationRepository {
	return &reputationRepository{db: db, now: time.Now}
}

const recomputeReputationSQL = `UPDATE profiles
SET reputation_points = (SELECT COALESCE(SUM(points), 0) FROM reputation_history WHERE user_id = ?), updated_at = ?
WHERE id = ?`

// Award appends entry and sets the profile total to the ledger sum in one
// transaction. It returns the new total.
func (r *reputationRepository) Award(ctx context.Context, entry *models.ReputationEntry) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		// Serialises awards per user so the recomputed sum sees every entry.
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&profile, "id = ?", entry.UserID).Error
		if err != nil {
			return err
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		if err := tx.Exec(recomputeReputationSQL, entry.UserID, r.now().UTC(), entry.UserID).Error; err != nil {
			return err
		}
		return tx.Model(&models.Profile{}).Where("id = ?", entry.UserID).Select("reputation_points").Scan(&total).Error
	})
	if err != nil {
		return 0, storageErr(err, "Profile", entry.UserID)
	}
	cache.InvalidateProfile(ctx, entry.UserID)
	return total, nil
}

// History returns entries newest first.
func (r *reputationRepository) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.ReputationEntry, error) {
	limit, offset = clampPage(limit, offset)
	var entries []*models.ReputationEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return entries, nil
}

// Total sums the ledger directly rather than trusting the profile column.
func (r *reputationRepository) Total(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.ReputationEntry{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, models.NewStorageError(err)
	}
	return total, nil
}
