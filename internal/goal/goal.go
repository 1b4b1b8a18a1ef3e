package goal

import (
	"time"

	errors "github.com/frahmantamala/goal-tracker/internal"
	"github.com/frahmantamala/goal-tracker/internal/core/common/validation"
	goalDatamodel "github.com/frahmantamala/goal-tracker/internal/core/datamodel/goal"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeSaving   Type = "saving"
	TypeSpending Type = "spending"
	TypePurchase Type = "purchase"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var (
	goalTypes    = []string{string(TypeSaving), string(TypeSpending), string(TypePurchase)}
	goalStatuses = []string{string(StatusActive), string(StatusCompleted), string(StatusCancelled)}
)

const maxNameLength = 255

type Goal struct {
	ID           string
	UserID       string
	Name         string
	Description  *string
	TargetAmount decimal.Decimal
	CategoryID   *string
	Type         Type
	Recurrence   *string
	StartDate    time.Time
	EndDate      *time.Time
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

func (g *Goal) IsActive() bool {
	return g.Status == StatusActive
}

// InPeriod reports whether a date falls in the goal's window, compared by
// calendar day in UTC. With both dates the window is inclusive; with only a
// start date it is open-ended; with no start date every date matches.
func (g *Goal) InPeriod(date time.Time) bool {
	if g.StartDate.IsZero() {
		return true
	}
	day := dayKey(date)
	if day < dayKey(g.StartDate) {
		return false
	}
	if g.EndDate != nil && day > dayKey(*g.EndDate) {
		return false
	}
	return true
}

// EndedBefore reports whether now is on a calendar day after the end date.
func (g *Goal) EndedBefore(now time.Time) bool {
	return g.EndDate != nil && dayKey(now) > dayKey(*g.EndDate)
}

// ApplyStatus sets the status and keeps CompletedAt in step: stamped when
// entering completed, cleared when leaving it.
func (g *Goal) ApplyStatus(status Status, at time.Time) {
	switch {
	case status == StatusCompleted && g.Status != StatusCompleted:
		stamp := at
		g.CompletedAt = &stamp
	case status != StatusCompleted:
		g.CompletedAt = nil
	}
	g.Status = status
}

func (g *Goal) Validate() error {
	v := validation.NewValidator()
	v.Field("name", g.Name).Required().MaxLength(maxNameLength)
	v.Field("target_amount", g.TargetAmount).
		Positive(errors.ErrCodeInvalidAmount).
		MaxScale(validation.AmountScale, errors.ErrCodeInvalidAmount)
	v.Field("type", string(g.Type)).Required().OneOf(errors.ErrCodeInvalidGoalType, goalTypes...)
	v.Field("status", string(g.Status)).OneOf(errors.ErrCodeInvalidStatus, goalStatuses...)
	v.Field("start_date", g.StartDate).Required()
	v.Field("end_date", g.EndDate).NotBefore(g.StartDate, "start_date")
	if g.Type == TypeSpending {
		v.Field("category_id", g.CategoryID).Custom(func(value interface{}) *errors.AppError {
			if g.CategoryID == nil || *g.CategoryID == "" {
				return errors.NewValidationFieldError("category_id", "category_id is required for spending goals", errors.ErrCodeInvalidCategory)
			}
			return nil
		})
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func dayKey(t time.Time) string {
	return t.UTC().Format(validation.DateLayout)
}

func ToDataModel(g *Goal) *goalDatamodel.Goal {
	return &goalDatamodel.Goal{
		ID:           g.ID,
		UserID:       g.UserID,
		Name:         g.Name,
		Description:  g.Description,
		TargetAmount: g.TargetAmount,
		CategoryID:   g.CategoryID,
		Type:         string(g.Type),
		Recurrence:   g.Recurrence,
		StartDate:    g.StartDate,
		EndDate:      g.EndDate,
		Status:       string(g.Status),
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
		CompletedAt:  g.CompletedAt,
	}
}

func FromDataModel(g *goalDatamodel.Goal) *Goal {
	return &Goal{
		ID:           g.ID,
		UserID:       g.UserID,
		Name:         g.Name,
		Description:  g.Description,
		TargetAmount: g.TargetAmount,
		CategoryID:   g.CategoryID,
		Type:         Type(g.Type),
		Recurrence:   g.Recurrence,
		StartDate:    g.StartDate,
		EndDate:      g.EndDate,
		Status:       Status(g.Status),
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
		CompletedAt:  g.CompletedAt,
	}
}

func FromDataModelSlice(rows []*goalDatamodel.Goal) []*Goal {
	result := make([]*Goal, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result
}
