package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/goal-tracker/internal"
	goalDatamodel "github.com/frahmantamala/goal-tracker/internal/core/datamodel/goal"
	reserveDatamodel "github.com/frahmantamala/goal-tracker/internal/core/datamodel/reserve"
	"github.com/frahmantamala/goal-tracker/internal/goal"
	"gorm.io/gorm"
)

// GoalRepository implements goal.Repository using GORM. It also satisfies
// reserve.GoalLookup.
type GoalRepository struct {
	db *gorm.DB
}

func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

var _ goal.Repository = (*GoalRepository)(nil)

func (r *GoalRepository) List(ctx context.Context, owner string, filter goal.ListFilter) ([]*goalDatamodel.Goal, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", owner)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	var rows []*goalDatamodel.Goal
	err := query.Order("created_at ASC, id ASC").Find(&rows).Error
	return rows, err
}

func (r *GoalRepository) GetByID(ctx context.Context, id, owner string) (*goalDatamodel.Goal, error) {
	var row goalDatamodel.Goal
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrGoalNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *GoalRepository) Create(ctx context.Context, row *goalDatamodel.Goal) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// Update writes every editable column, so nil pointers clear their column.
// Status is left to UpdateStatus.
func (r *GoalRepository) Update(ctx context.Context, row *goalDatamodel.Goal) error {
	result := r.db.WithContext(ctx).Model(&goalDatamodel.Goal{}).
		Where("id = ? AND user_id = ?", row.ID, row.UserID).
		Updates(map[string]interface{}{
			"name":          row.Name,
			"description":   row.Description,
			"target_amount": row.TargetAmount,
			"category_id":   row.CategoryID,
			"type":          row.Type,
			"recurrence":    row.Recurrence,
			"start_date":    row.StartDate,
			"end_date":      row.EndDate,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrGoalNotFound
	}
	return nil
}

// UpdateStatus moves the goal from status from to status to. It reports false
// without writing when the stored status is no longer from, which happens when
// another evaluator applied the change first.
func (r *GoalRepository) UpdateStatus(ctx context.Context, id, owner, from, to string, completedAt *time.Time) (bool, error) {
	db := r.db.WithContext(ctx)

	result := db.Model(&goalDatamodel.Goal{}).
		Where("id = ? AND user_id = ? AND status = ?", id, owner, from).
		Updates(map[string]interface{}{
			"status":       to,
			"completed_at": completedAt,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	var count int64
	if err := db.Model(&goalDatamodel.Goal{}).Where("id = ? AND user_id = ?", id, owner).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, internal.ErrGoalNotFound
	}
	return false, nil
}

// Delete removes the goal's reserves and then the goal in one transaction.
// It reports false, with nothing removed, when the goal is not owned.
func (r *GoalRepository) Delete(ctx context.Context, id, owner string) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&goalDatamodel.Goal{}).Where("id = ? AND user_id = ?", id, owner).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return nil
		}

		if err := tx.Where("goal_id = ?", id).Delete(&reserveDatamodel.GoalReserve{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ? AND user_id = ?", id, owner).Delete(&goalDatamodel.Goal{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *GoalRepository) ListOwnersWithActiveGoals(ctx context.Context) ([]string, error) {
	var owners []string
	err := r.db.WithContext(ctx).Model(&goalDatamodel.Goal{}).
		Where("status = ?", string(goal.StatusActive)).
		Distinct().
		Order("user_id ASC").
		Pluck("user_id", &owners).Error
	return owners, err
}
