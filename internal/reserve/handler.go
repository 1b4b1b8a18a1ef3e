package reserve

import (
	"context"
	"net/http"

	"github.com/frahmantamala/goal-tracker/internal"
	"github.com/frahmantamala/goal-tracker/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Updater
	Upsert(ctx context.Context, owner string, dto UpsertReserveDTO) (*Reserve, error)
	List(ctx context.Context, owner, goalID string) ([]*Reserve, error)
	Delete(ctx context.Context, owner, reserveID string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) ListReserves(w http.ResponseWriter, r *http.Request) {
	owner, ok := internal.OwnerFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	goalID := chi.URLParam(r, "id")
	reserves, err := h.Service.List(r.Context(), owner, goalID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ReservesResponse{
		GoalID:   goalID,
		Reserves: reserves,
		Total:    Total(reserves, goalID),
	})
}

// PutReserve sets the amount for /goals/{id}/reserves/{month}.
func (h *Handler) PutReserve(w http.ResponseWriter, r *http.Request) {
	owner, ok := internal.OwnerFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	var dto UpsertReserveDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	dto.GoalID = chi.URLParam(r, "id")
	dto.Month = chi.URLParam(r, "month")

	saved, err := h.Service.Upsert(r.Context(), owner, dto)
	if err != nil {
		h.Logger.Warn("PutReserve: service error", "error", err, "goal_id", dto.GoalID, "month", dto.Month)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, saved)
}

func (h *Handler) UpdateReserve(w http.ResponseWriter, r *http.Request) {
	owner, ok := internal.OwnerFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	var dto UpdateReserveDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	editor := NewEditor(h.Service, owner)
	editor.Begin(chi.URLParam(r, "reserveID"))

	saved, err := editor.Save(r.Context(), dto.Amount)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, saved)
}

func (h *Handler) DeleteReserve(w http.ResponseWriter, r *http.Request) {
	owner, ok := internal.OwnerFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	if err := h.Service.Delete(r.Context(), owner, chi.URLParam(r, "reserveID")); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
