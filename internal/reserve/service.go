package reserve

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/goal-tracker/internal"
	goalDatamodel "github.com/frahmantamala/goal-tracker/internal/core/datamodel/goal"
	reserveDatamodel "github.com/frahmantamala/goal-tracker/internal/core/datamodel/reserve"
	"github.com/shopspring/decimal"
)

const purchaseGoalType = "purchase"

// Repository is the storage side of the ledger. Uniqueness of
// (goal_id, user_id, month) is the store's job; a lost insert race comes back
// as internal.ErrDuplicateReserve.
type Repository interface {
	Upsert(ctx context.Context, row *reserveDatamodel.GoalReserve) (*reserveDatamodel.GoalReserve, error)
	GetByID(ctx context.Context, id, owner string) (*reserveDatamodel.GoalReserve, error)
	ListByGoal(ctx context.Context, goalID, owner string) ([]*reserveDatamodel.GoalReserve, error)
	ListByGoals(ctx context.Context, goalIDs []string, owner string) ([]*reserveDatamodel.GoalReserve, error)
	UpdateAmount(ctx context.Context, id, owner string, amount decimal.Decimal) (*reserveDatamodel.GoalReserve, error)
	Delete(ctx context.Context, id, owner string) (bool, error)
}

// GoalLookup resolves a goal owned by owner, returning internal.ErrGoalNotFound
// when it is absent or belongs to someone else.
type GoalLookup interface {
	GetByID(ctx context.Context, id, owner string) (*goalDatamodel.Goal, error)
}

type Service struct {
	repo   Repository
	goals  GoalLookup
	logger *slog.Logger
}

func NewService(repo Repository, goals GoalLookup, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		goals:  goals,
		logger: logger,
	}
}

// Upsert writes the amount for (goal, month): the existing row is updated in
// place, otherwise a new one is inserted.
func (s *Service) Upsert(ctx context.Context, owner string, dto UpsertReserveDTO) (*Reserve, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if err := s.requirePurchaseGoal(ctx, dto.GoalID, owner); err != nil {
		return nil, err
	}

	row, err := s.repo.Upsert(ctx, ToDataModel(NewReserve(owner, dto.GoalID, dto.Month, dto.Amount)))
	if err != nil {
		if errors.Is(err, internal.ErrDuplicateReserve) {
			return nil, s.reconcile(ctx, owner, dto.GoalID, err)
		}
		s.logger.Error("failed to upsert reserve", "error", err, "goal_id", dto.GoalID, "month", dto.Month)
		return nil, internal.AsPersistence("failed to save reserve", err)
	}

	s.logger.Info("reserve saved",
		"reserve_id", row.ID,
		"goal_id", row.GoalID,
		"month", row.Month,
		"amount", row.Amount.String())

	return FromDataModel(row), nil
}

// reconcile refetches the goal's reserves after a lost race so the caller can
// show what the store actually holds.
func (s *Service) reconcile(ctx context.Context, owner, goalID string, cause error) error {
	s.logger.Warn("reserve write lost a concurrent insert, refetching", "goal_id", goalID)

	rows, err := s.repo.ListByGoal(ctx, goalID, owner)
	if err != nil {
		s.logger.Error("failed to refetch reserves after conflict", "error", err, "goal_id", goalID)
		return internal.ErrDuplicateReserve.WithCause(cause)
	}

	return internal.ErrDuplicateReserve.
		WithCause(cause).
		WithDetails(ReservesResponse{
			GoalID:   goalID,
			Reserves: FromDataModelSlice(rows),
			Total:    Total(FromDataModelSlice(rows), goalID),
		})
}

func (s *Service) List(ctx context.Context, owner, goalID string) ([]*Reserve, error) {
	if _, err := s.lookupGoal(ctx, goalID, owner); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByGoal(ctx, goalID, owner)
	if err != nil {
		s.logger.Error("failed to list reserves", "error", err, "goal_id", goalID)
		return nil, internal.AsPersistence("failed to list reserves", err)
	}
	return FromDataModelSlice(rows), nil
}

// ListForGoals is the batch read used while evaluating goal progress.
func (s *Service) ListForGoals(ctx context.Context, owner string, goalIDs []string) ([]*Reserve, error) {
	if len(goalIDs) == 0 {
		return []*Reserve{}, nil
	}

	rows, err := s.repo.ListByGoals(ctx, goalIDs, owner)
	if err != nil {
		s.logger.Error("failed to list reserves for goals", "error", err, "goal_count", len(goalIDs))
		return nil, internal.AsPersistence("failed to list reserves", err)
	}
	return FromDataModelSlice(rows), nil
}

func (s *Service) Update(ctx context.Context, owner, reserveID string, dto UpdateReserveDTO) (*Reserve, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.UpdateAmount(ctx, reserveID, owner, dto.Amount)
	if err != nil {
		if !errors.Is(err, internal.ErrReserveNotFound) {
			s.logger.Error("failed to update reserve", "error", err, "reserve_id", reserveID)
		}
		return nil, internal.AsPersistence("failed to update reserve", err)
	}

	s.logger.Info("reserve updated", "reserve_id", row.ID, "amount", row.Amount.String())
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, owner, reserveID string) error {
	deleted, err := s.repo.Delete(ctx, reserveID, owner)
	if err != nil {
		s.logger.Error("failed to delete reserve", "error", err, "reserve_id", reserveID)
		return internal.AsPersistence("failed to delete reserve", err)
	}
	if !deleted {
		return internal.ErrReserveNotFound
	}

	s.logger.Info("reserve deleted", "reserve_id", reserveID)
	return nil
}

func (s *Service) lookupGoal(ctx context.Context, goalID, owner string) (*goalDatamodel.Goal, error) {
	g, err := s.goals.GetByID(ctx, goalID, owner)
	if err != nil {
		if !errors.Is(err, internal.ErrGoalNotFound) {
			s.logger.Error("failed to load goal for reserve", "error", err, "goal_id", goalID)
		}
		return nil, internal.AsPersistence("failed to load goal", err)
	}
	return g, nil
}

func (s *Service) requirePurchaseGoal(ctx context.Context, goalID, owner string) error {
	g, err := s.lookupGoal(ctx, goalID, owner)
	if err != nil {
		return err
	}
	if g.Type != purchaseGoalType {
		return internal.ErrNotPurchaseGoal
	}
	return nil
}
