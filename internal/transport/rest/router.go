package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/goal-tracker/api"
	"github.com/frahmantamala/goal-tracker/internal/auth"
	"github.com/frahmantamala/goal-tracker/internal/goal"
	"github.com/frahmantamala/goal-tracker/internal/reserve"
	"github.com/frahmantamala/goal-tracker/internal/transport/middleware"
	"github.com/frahmantamala/goal-tracker/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(router *chi.Mux, db Pinger, goalHandler *goal.Handler, reserveHandler *reserve.Handler, validator auth.TokenValidator, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get(swagger.SpecURL, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(api.Spec)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)
		r.Get("/ping", healthHandler.Ping)

		r.Group(func(pr chi.Router) {
			pr.Use(middleware.Authenticate(validator))

			if goalHandler != nil {
				pr.Route("/goals", func(gr chi.Router) {
					gr.Get("/", goalHandler.ListGoals)
					gr.Post("/", goalHandler.CreateGoal)

					gr.Route("/{id}", func(ir chi.Router) {
						ir.Get("/", goalHandler.GetGoal)
						ir.Patch("/", goalHandler.UpdateGoal)
						ir.Delete("/", goalHandler.DeleteGoal)

						ir.Post("/complete", goalHandler.CompleteGoal)
						ir.Post("/cancel", goalHandler.CancelGoal)
						ir.Post("/reactivate", goalHandler.ReactivateGoal)

						if reserveHandler != nil {
							ir.Get("/reserves", reserveHandler.ListReserves)
							ir.Put("/reserves/{month}", reserveHandler.PutReserve)
						}
					})
				})
			}

			if reserveHandler != nil {
				pr.Route("/reserves/{reserveID}", func(rr chi.Router) {
					rr.Patch("/", reserveHandler.UpdateReserve)
					rr.Delete("/", reserveHandler.DeleteReserve)
				})
			}
		})
	})
}
