package goal

import (
	"encoding/json"
	"time"

	errors "github.com/frahmantamala/goal-tracker/internal"
	"github.com/frahmantamala/goal-tracker/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

// Nullable tells an absent JSON field (Set == false) apart from an explicit
// null (Set == true, Value == nil).
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func Value[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

type CreateGoalDTO struct {
	Name         string          `json:"name"`
	Description  *string         `json:"description,omitempty"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	CategoryID   *string         `json:"category_id,omitempty"`
	Type         string          `json:"type"`
	Recurrence   *string         `json:"recurrence,omitempty"`
	StartDate    string          `json:"start_date"`
	EndDate      *string         `json:"end_date,omitempty"`
}

// ToGoal parses the request into an active goal for owner. Field rules are
// checked afterwards by Goal.Validate.
func (dto CreateGoalDTO) ToGoal(owner string) (*Goal, error) {
	start, err := parseDateField("start_date", dto.StartDate)
	if err != nil {
		return nil, err
	}
	var end *time.Time
	if dto.EndDate != nil {
		parsed, err := parseDateField("end_date", *dto.EndDate)
		if err != nil {
			return nil, err
		}
		end = &parsed
	}

	return &Goal{
		UserID:       owner,
		Name:         dto.Name,
		Description:  dto.Description,
		TargetAmount: dto.TargetAmount,
		CategoryID:   emptyToNil(dto.CategoryID),
		Type:         Type(dto.Type),
		Recurrence:   dto.Recurrence,
		StartDate:    start,
		EndDate:      end,
		Status:       StatusActive,
	}, nil
}

// UpdateGoalDTO is a partial update. Pointer fields are left alone when
// absent; CategoryID and EndDate can also be cleared with an explicit null.
type UpdateGoalDTO struct {
	Name         *string          `json:"name,omitempty"`
	Description  *string          `json:"description,omitempty"`
	TargetAmount *decimal.Decimal `json:"target_amount,omitempty"`
	CategoryID   Nullable[string] `json:"category_id"`
	Type         *string          `json:"type,omitempty"`
	Recurrence   *string          `json:"recurrence,omitempty"`
	StartDate    *string          `json:"start_date,omitempty"`
	EndDate      Nullable[string] `json:"end_date"`
}

func (dto UpdateGoalDTO) Apply(g *Goal) error {
	if dto.Name != nil {
		g.Name = *dto.Name
	}
	if dto.Description != nil {
		g.Description = dto.Description
	}
	if dto.TargetAmount != nil {
		g.TargetAmount = *dto.TargetAmount
	}
	if dto.CategoryID.Set {
		g.CategoryID = emptyToNil(dto.CategoryID.Value)
	}
	if dto.Type != nil {
		g.Type = Type(*dto.Type)
	}
	if dto.Recurrence != nil {
		g.Recurrence = dto.Recurrence
	}
	if dto.StartDate != nil {
		start, err := parseDateField("start_date", *dto.StartDate)
		if err != nil {
			return err
		}
		g.StartDate = start
	}
	if dto.EndDate.Set {
		if dto.EndDate.Value == nil {
			g.EndDate = nil
		} else {
			end, err := parseDateField("end_date", *dto.EndDate.Value)
			if err != nil {
				return err
			}
			g.EndDate = &end
		}
	}
	return nil
}

type ListFilter struct {
	Status string
	Type   string
}

func (f ListFilter) Validate() error {
	v := validation.NewValidator()
	if f.Status != "" {
		v.Field("status", f.Status).OneOf(errors.ErrCodeInvalidStatus, goalStatuses...)
	}
	if f.Type != "" {
		v.Field("type", f.Type).OneOf(errors.ErrCodeInvalidGoalType, goalTypes...)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type GoalResponse struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Name            string          `json:"name"`
	Description     *string         `json:"description,omitempty"`
	TargetAmount    decimal.Decimal `json:"target_amount"`
	CurrentAmount   decimal.Decimal `json:"current_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Percent         int             `json:"percent"`
	CategoryID      *string         `json:"category_id,omitempty"`
	Type            Type            `json:"type"`
	Recurrence      *string         `json:"recurrence,omitempty"`
	StartDate       string          `json:"start_date"`
	EndDate         *string         `json:"end_date,omitempty"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	SyncError       string          `json:"sync_error,omitempty"`
}

func NewGoalResponse(gp *GoalProgress) GoalResponse {
	g := gp.Goal
	resp := GoalResponse{
		ID:              g.ID,
		UserID:          g.UserID,
		Name:            g.Name,
		Description:     g.Description,
		TargetAmount:    g.TargetAmount,
		CurrentAmount:   gp.Progress.Current,
		RemainingAmount: gp.Progress.Remaining,
		Percent:         gp.Progress.Percent,
		CategoryID:      g.CategoryID,
		Type:            g.Type,
		Recurrence:      g.Recurrence,
		StartDate:       dayKey(g.StartDate),
		Status:          g.Status,
		CreatedAt:       g.CreatedAt,
		UpdatedAt:       g.UpdatedAt,
		CompletedAt:     g.CompletedAt,
	}
	if g.EndDate != nil {
		end := dayKey(*g.EndDate)
		resp.EndDate = &end
	}
	if gp.SyncError != nil {
		resp.SyncError = gp.SyncError.Error()
	}
	return resp
}

func NewGoalResponses(items []*GoalProgress) []GoalResponse {
	result := make([]GoalResponse, len(items))
	for i, gp := range items {
		result[i] = NewGoalResponse(gp)
	}
	return result
}

type GoalsResponse struct {
	Goals []GoalResponse `json:"goals"`
}

func parseDateField(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.NewValidationFieldError(field, field+" is required", errors.ErrCodeInvalidDate)
	}
	t, err := validation.ParseDate(value)
	if err != nil {
		return time.Time{}, errors.NewValidationFieldError(field, field+" must be formatted as YYYY-MM-DD", errors.ErrCodeInvalidDate)
	}
	return t, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
