package goal

import (
	"context"
	"net/http"
	"time"

	"github.com/frahmantamala/goal-tracker/internal"
	"github.com/frahmantamala/goal-tracker/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Evaluate(ctx context.Context, owner string, filter ListFilter, now time.Time) ([]*GoalProgress, error)
	Get(ctx context.Context, owner, id string, now time.Time) (*GoalProgress, error)
	Create(ctx context.Context, owner string, dto CreateGoalDTO, now time.Time) (*GoalProgress, error)
	Update(ctx context.Context, owner, id string, dto UpdateGoalDTO, now time.Time) (*GoalProgress, error)
	Complete(ctx context.Context, owner, id string, now time.Time) (*GoalProgress, error)
	Cancel(ctx context.Context, owner, id string, now time.Time) (*GoalProgress, error)
	Reactivate(ctx context.Context, owner, id string, now time.Time) (*GoalProgress, error)
	Delete(ctx context.Context, owner, id string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Now     func() time.Time
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	owner, ok := internal.OwnerFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	filter := ListFilter{
		Status: r.URL.Query().Get("status"),
		Type:   r.URL.Query().Get("type"),
	}

	results, err := h.Service.Evaluate(r.Context(), owner, filter, h.Now())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, GoalsResponse{Goals: NewGoalResponses(results)})
}

func (h *Handler) GetGoal(w http.ResponseWriter, r *http.Request) {
	owner, ok := internal.OwnerFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	gp, err := h.Service.Get(r.Context(), owner, chi.URLParam(r, "id"), h.Now())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewGoalResponse(gp))
}

func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	owner, ok := internal.OwnerFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	var dto CreateGoalDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	gp, err := h.Service.Create(r.Context(), owner, dto, h.Now())
	if err != nil {
		h.Logger.Warn("CreateGoal: service error", "error", err, "user_id", owner)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, NewGoalResponse(gp))
}

func (h *Handler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	owner, ok := internal.OwnerFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	var dto UpdateGoalDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	gp, err := h.Service.Update(r.Context(), owner, chi.URLParam(r, "id"), dto, h.Now())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewGoalResponse(gp))
}

func (h *Handler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	owner, ok := internal.OwnerFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	if err := h.Service.Delete(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CompleteGoal(w http.ResponseWriter, r *http.Request) {
	h.statusAction(w, r, h.Service.Complete)
}

func (h *Handler) CancelGoal(w http.ResponseWriter, r *http.Request) {
	h.statusAction(w, r, h.Service.Cancel)
}

func (h *Handler) ReactivateGoal(w http.ResponseWriter, r *http.Request) {
	h.statusAction(w, r, h.Service.Reactivate)
}

type statusFunc func(ctx context.Context, owner, id string, now time.Time) (*GoalProgress, error)

func (h *Handler) statusAction(w http.ResponseWriter, r *http.Request, action statusFunc) {
	owner, ok := internal.OwnerFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	gp, err := action(r.Context(), owner, chi.URLParam(r, "id"), h.Now())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewGoalResponse(gp))
}
