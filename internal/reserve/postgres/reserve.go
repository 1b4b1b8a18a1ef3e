package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/goal-tracker/internal"
	reserveDatamodel "github.com/frahmantamala/goal-tracker/internal/core/datamodel/reserve"
	"github.com/frahmantamala/goal-tracker/internal/reserve"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReserveRepository expects a *gorm.DB opened with TranslateError so unique
// violations arrive as gorm.ErrDuplicatedKey.
type ReserveRepository struct {
	db *gorm.DB
}

func NewReserveRepository(db *gorm.DB) reserve.Repository {
	return &ReserveRepository{db: db}
}

// Upsert updates the month's row when it exists and inserts it otherwise. Two
// writers inserting the same month race on the unique index; the loser gets
// internal.ErrDuplicateReserve.
func (r *ReserveRepository) Upsert(ctx context.Context, row *reserveDatamodel.GoalReserve) (*reserveDatamodel.GoalReserve, error) {
	db := r.db.WithContext(ctx)

	result := db.Model(&reserveDatamodel.GoalReserve{}).
		Where("goal_id = ? AND user_id = ? AND month = ?", row.GoalID, row.UserID, row.Month).
		Updates(map[string]interface{}{
			"amount":     row.Amount,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		if err := db.Create(row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, internal.ErrDuplicateReserve.WithCause(err)
			}
			return nil, err
		}
		return row, nil
	}

	var stored reserveDatamodel.GoalReserve
	err := db.Where("goal_id = ? AND user_id = ? AND month = ?", row.GoalID, row.UserID, row.Month).
		First(&stored).Error
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *ReserveRepository) GetByID(ctx context.Context, id, owner string) (*reserveDatamodel.GoalReserve, error) {
	var row reserveDatamodel.GoalReserve
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrReserveNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *ReserveRepository) ListByGoal(ctx context.Context, goalID, owner string) ([]*reserveDatamodel.GoalReserve, error) {
	var rows []*reserveDatamodel.GoalReserve
	err := r.db.WithContext(ctx).
		Where("goal_id = ? AND user_id = ?", goalID, owner).
		Order("month ASC").
		Find(&rows).Error
	return rows, err
}

func (r *ReserveRepository) ListByGoals(ctx context.Context, goalIDs []string, owner string) ([]*reserveDatamodel.GoalReserve, error) {
	var rows []*reserveDatamodel.GoalReserve
	if len(goalIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Where("goal_id IN ? AND user_id = ?", goalIDs, owner).
		Order("goal_id ASC, month ASC").
		Find(&rows).Error
	return rows, err
}

func (r *ReserveRepository) UpdateAmount(ctx context.Context, id, owner string, amount decimal.Decimal) (*reserveDatamodel.GoalReserve, error) {
	result := r.db.WithContext(ctx).Model(&reserveDatamodel.GoalReserve{}).
		Where("id = ? AND user_id = ?", id, owner).
		Updates(map[string]interface{}{
			"amount":     amount,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, internal.ErrReserveNotFound
	}
	return r.GetByID(ctx, id, owner)
}

func (r *ReserveRepository) Delete(ctx context.Context, id, owner string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, owner).
		Delete(&reserveDatamodel.GoalReserve{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
