package goal

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/goal-tracker/internal"
	goalDatamodel "github.com/frahmantamala/goal-tracker/internal/core/datamodel/goal"
	"github.com/frahmantamala/goal-tracker/internal/core/events"
	"github.com/frahmantamala/goal-tracker/internal/reserve"
	"github.com/frahmantamala/goal-tracker/internal/transaction"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Repository returns internal.ErrGoalNotFound for goals that are absent or
// owned by someone else. UpdateStatus only writes while the stored status
// still equals from and reports whether it did.
type Repository interface {
	List(ctx context.Context, owner string, filter ListFilter) ([]*goalDatamodel.Goal, error)
	GetByID(ctx context.Context, id, owner string) (*goalDatamodel.Goal, error)
	Create(ctx context.Context, row *goalDatamodel.Goal) error
	Update(ctx context.Context, row *goalDatamodel.Goal) error
	UpdateStatus(ctx context.Context, id, owner, from, to string, completedAt *time.Time) (bool, error)
	Delete(ctx context.Context, id, owner string) (bool, error)
	ListOwnersWithActiveGoals(ctx context.Context) ([]string, error)
}

type ReserveReader interface {
	ListForGoals(ctx context.Context, owner string, goalIDs []string) ([]*reserve.Reserve, error)
}

// GoalProgress is one evaluated goal. SyncError is set when an automatic
// status change was decided but could not be stored; Goal then still
// carries the stored status.
type GoalProgress struct {
	Goal         *Goal
	Progress     Progress
	Transitioned bool
	SyncError    error
}

type Service struct {
	repo         Repository
	transactions transaction.Feed
	reserves     ReserveReader
	publisher    events.Publisher
	logger       *slog.Logger
	writes       singleflight.Group
}

func NewService(repo Repository, transactions transaction.Feed, reserves ReserveReader, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:         repo,
		transactions: transactions,
		reserves:     reserves,
		publisher:    publisher,
		logger:       logger,
	}
}

// Evaluate computes progress for the owner's goals matching filter and
// applies any automatic status change that is due at now.
func (s *Service) Evaluate(ctx context.Context, owner string, filter ListFilter, now time.Time) ([]*GoalProgress, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var (
		rows         []*goalDatamodel.Goal
		transactions []*transaction.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.repo.List(gctx, owner, filter)
		if err != nil {
			s.logger.Error("failed to list goals", "error", err, "user_id", owner)
			return internal.AsPersistence("failed to list goals", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		transactions, err = s.listTransactions(gctx, owner)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	goals := FromDataModelSlice(rows)
	reserves, err := s.reserves.ListForGoals(ctx, owner, purchaseGoalIDs(goals))
	if err != nil {
		return nil, err
	}

	return s.assess(ctx, goals, transactions, reserves, now, true)
}

// Get evaluates a single goal, applying a due automatic status change.
func (s *Service) Get(ctx context.Context, owner, id string, now time.Time) (*GoalProgress, error) {
	g, err := s.load(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	return s.evaluateOne(ctx, g, now, true)
}

func (s *Service) Create(ctx context.Context, owner string, dto CreateGoalDTO, now time.Time) (*GoalProgress, error) {
	g, err := dto.ToGoal(owner)
	if err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	g.ID = uuid.NewString()
	g.CreatedAt = now
	g.UpdatedAt = now

	row := ToDataModel(g)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create goal", "error", err, "user_id", owner)
		return nil, internal.AsPersistence("failed to create goal", err)
	}

	s.logger.Info("goal created",
		"goal_id", row.ID,
		"user_id", owner,
		"type", row.Type,
		"target_amount", row.TargetAmount.String())

	return s.evaluateOne(ctx, FromDataModel(row), now, false)
}

// Update applies a partial edit. The merged goal is validated as a whole
// before anything is written.
func (s *Service) Update(ctx context.Context, owner, id string, dto UpdateGoalDTO, now time.Time) (*GoalProgress, error) {
	g, err := s.load(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if err := dto.Apply(g); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	g.UpdatedAt = now

	if err := s.repo.Update(ctx, ToDataModel(g)); err != nil {
		if !errors.Is(err, internal.ErrGoalNotFound) {
			s.logger.Error("failed to update goal", "error", err, "goal_id", id)
		}
		return nil, internal.AsPersistence("failed to update goal", err)
	}

	s.logger.Info("goal updated", "goal_id", id, "user_id", owner)
	return s.evaluateOne(ctx, g, now, false)
}

func (s *Service) Complete(ctx context.Context, owner, id string, now time.Time) (*GoalProgress, error) {
	return s.setStatus(ctx, owner, id, StatusCompleted, now)
}

func (s *Service) Cancel(ctx context.Context, owner, id string, now time.Time) (*GoalProgress, error) {
	return s.setStatus(ctx, owner, id, StatusCancelled, now)
}

func (s *Service) Reactivate(ctx context.Context, owner, id string, now time.Time) (*GoalProgress, error) {
	return s.setStatus(ctx, owner, id, StatusActive, now)
}

// Delete removes the goal together with its reserves.
func (s *Service) Delete(ctx context.Context, owner, id string) error {
	deleted, err := s.repo.Delete(ctx, id, owner)
	if err != nil {
		s.logger.Error("failed to delete goal", "error", err, "goal_id", id)
		return internal.AsPersistence("failed to delete goal", err)
	}
	if !deleted {
		return internal.ErrGoalNotFound
	}

	s.logger.Info("goal deleted", "goal_id", id, "user_id", owner)
	return nil
}

func (s *Service) ActiveOwners(ctx context.Context) ([]string, error) {
	owners, err := s.repo.ListOwnersWithActiveGoals(ctx)
	if err != nil {
		s.logger.Error("failed to list owners with active goals", "error", err)
		return nil, internal.AsPersistence("failed to list owners", err)
	}
	return owners, nil
}

// setStatus is the manual path. It reports progress without running the
// automatic rules, so a reactivated goal is shown as active.
func (s *Service) setStatus(ctx context.Context, owner, id string, to Status, now time.Time) (*GoalProgress, error) {
	g, err := s.load(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if g.Status != to {
		if _, err := s.writeStatus(ctx, g, to, now, events.TriggerManual); err != nil {
			return nil, err
		}
	}

	return s.evaluateOne(ctx, g, now, false)
}

func (s *Service) load(ctx context.Context, owner, id string) (*Goal, error) {
	row, err := s.repo.GetByID(ctx, id, owner)
	if err != nil {
		if !errors.Is(err, internal.ErrGoalNotFound) {
			s.logger.Error("failed to get goal", "error", err, "goal_id", id)
		}
		return nil, internal.AsPersistence("failed to get goal", err)
	}
	return FromDataModel(row), nil
}

// evaluateOne fetches the inputs for a goal that is already known, both at
// once.
func (s *Service) evaluateOne(ctx context.Context, goal *Goal, now time.Time, transitions bool) (*GoalProgress, error) {
	var (
		transactions []*transaction.Transaction
		reserves     []*reserve.Reserve
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		transactions, err = s.listTransactions(gctx, goal.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		reserves, err = s.reserves.ListForGoals(gctx, goal.UserID, purchaseGoalIDs([]*Goal{goal}))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results, err := s.assess(ctx, []*Goal{goal}, transactions, reserves, now, transitions)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

func (s *Service) assess(ctx context.Context, goals []*Goal, transactions []*transaction.Transaction, reserves []*reserve.Reserve, now time.Time, transitions bool) ([]*GoalProgress, error) {
	results := make([]*GoalProgress, 0, len(goals))
	for _, g := range goals {
		progress, err := CalculateProgress(g, transactions, reserves)
		if err != nil {
			s.logger.Error("failed to calculate goal progress", "error", err, "goal_id", g.ID, "type", g.Type)
			return nil, err
		}

		gp := &GoalProgress{Goal: g, Progress: progress}
		if transitions {
			if to, ok := ProposeStatus(g, progress.Percent, now); ok {
				applied, err := s.writeStatus(ctx, g, to, now, events.TriggerAutomatic)
				if err != nil {
					gp.SyncError = err
				} else {
					gp.Transitioned = applied
				}
			}
		}
		results = append(results, gp)
	}
	return results, nil
}

// writeStatus stores a status change and publishes it. The store only
// accepts the change while the goal still has the status this evaluation
// read, so a change applied by another evaluator is never written or
// published twice; g is then reloaded and false returned. Concurrent writes
// of the same change within this process collapse into one store call.
func (s *Service) writeStatus(ctx context.Context, g *Goal, to Status, at time.Time, trigger string) (bool, error) {
	from := g.Status
	changed := *g
	changed.ApplyStatus(to, at)

	key := g.ID + ":" + string(from) + ":" + string(to)
	v, err, _ := s.writes.Do(key, func() (interface{}, error) {
		applied, err := s.repo.UpdateStatus(ctx, g.ID, g.UserID, string(from), string(to), changed.CompletedAt)
		if err != nil || !applied {
			return false, err
		}
		s.logger.Info("goal status changed",
			"goal_id", g.ID,
			"user_id", g.UserID,
			"from", from,
			"to", to,
			"trigger", trigger)
		s.publishStatusChange(ctx, &changed, from, trigger, at)
		return true, nil
	})
	if err != nil {
		s.logger.Error("failed to update goal status", "error", err, "goal_id", g.ID, "to", to)
		return false, internal.AsPersistence("failed to update goal status", err)
	}

	if applied, _ := v.(bool); applied {
		g.ApplyStatus(to, at)
		return true, nil
	}

	s.logger.Info("goal status already changed elsewhere", "goal_id", g.ID, "from", from, "to", to)
	current, err := s.load(ctx, g.UserID, g.ID)
	if err != nil {
		return false, err
	}
	*g = *current
	return false, nil
}

func (s *Service) publishStatusChange(ctx context.Context, g *Goal, from Status, trigger string, at time.Time) {
	if s.publisher == nil {
		return
	}

	eventTypes := []string{events.EventTypeGoalStatusChanged}
	if trigger == events.TriggerAutomatic {
		switch g.Status {
		case StatusCompleted:
			eventTypes = append(eventTypes, events.EventTypeGoalCompleted)
		case StatusCancelled:
			eventTypes = append(eventTypes, events.EventTypeGoalLimitExceeded)
		}
	} else if g.Status == StatusCompleted {
		eventTypes = append(eventTypes, events.EventTypeGoalCompleted)
	}

	for _, eventType := range eventTypes {
		event := events.NewGoalStatusChangedEvent(eventType, g.ID, g.UserID, string(from), string(g.Status), trigger, at)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish goal event", "error", err, "event_type", eventType, "goal_id", g.ID)
		}
	}
}

func (s *Service) listTransactions(ctx context.Context, owner string) ([]*transaction.Transaction, error) {
	transactions, err := s.transactions.ListByOwner(ctx, owner)
	if err != nil {
		s.logger.Error("failed to list transactions", "error", err, "user_id", owner)
		return nil, internal.AsPersistence("failed to list transactions", err)
	}
	return transactions, nil
}

func purchaseGoalIDs(goals []*Goal) []string {
	ids := make([]string, 0, len(goals))
	for _, g := range goals {
		if g.Type == TypePurchase {
			ids = append(ids, g.ID)
		}
	}
	return ids
}
