package reserve

import (
	errors "github.com/frahmantamala/goal-tracker/internal"
	"github.com/frahmantamala/goal-tracker/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

// UpsertReserveDTO records the amount pledged for one month of a goal.
type UpsertReserveDTO struct {
	GoalID string          `json:"-"`
	Month  string          `json:"-"`
	Amount decimal.Decimal `json:"amount"`
}

func (dto UpsertReserveDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("goal_id", dto.GoalID).Required()
	v.Field("month", dto.Month).Required().Month()
	v.Field("amount", dto.Amount).
		Positive(errors.ErrCodeInvalidAmount).
		MaxScale(validation.AmountScale, errors.ErrCodeInvalidAmount)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateReserveDTO struct {
	Amount decimal.Decimal `json:"amount"`
}

func (dto UpdateReserveDTO) Validate() error {
	if err := validation.ValidateAmount("amount", dto.Amount); err != nil {
		return err
	}
	return nil
}

type ReservesResponse struct {
	GoalID   string          `json:"goal_id"`
	Reserves []*Reserve      `json:"reserves"`
	Total    decimal.Decimal `json:"total"`
}
