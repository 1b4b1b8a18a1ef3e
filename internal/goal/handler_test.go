package goal_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/frahmantamala/goal-tracker/internal"
	goalDatamodel "github.com/frahmantamala/goal-tracker/internal/core/datamodel/goal"
	reserveDatamodel "github.com/frahmantamala/goal-tracker/internal/core/datamodel/reserve"
	"github.com/frahmantamala/goal-tracker/internal/goal"
	goalPostgres "github.com/frahmantamala/goal-tracker/internal/goal/postgres"
	"github.com/frahmantamala/goal-tracker/internal/reserve"
	reservePostgres "github.com/frahmantamala/goal-tracker/internal/reserve/postgres"
	"github.com/frahmantamala/goal-tracker/internal/transaction"
	"github.com/frahmantamala/goal-tracker/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Goal Handler Integration", func() {
	var (
		db     *gorm.DB
		router chi.Router
	)

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&goalDatamodel.Goal{}, &reserveDatamodel.GoalReserve{})).To(Succeed())

		goalRepo := goalPostgres.NewGoalRepository(db)
		reserveService := reserve.NewService(reservePostgres.NewReserveRepository(db), goalRepo, slogger)
		feed := &mockFeed{transactions: []*transaction.Transaction{income("2024-02-01", "400")}}
		goalService := goal.NewService(goalRepo, feed, reserveService, nil, slogger)

		baseHandler := &transport.BaseHandler{Logger: slogger}
		goalHandler := goal.NewHandler(baseHandler, goalService)
		goalHandler.Now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
		reserveHandler := reserve.NewHandler(baseHandler, reserveService)

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(internal.ContextWithOwner(r.Context(), "u1")))
			})
		})
		router.Get("/goals", goalHandler.ListGoals)
		router.Post("/goals", goalHandler.CreateGoal)
		router.Get("/goals/{id}", goalHandler.GetGoal)
		router.Patch("/goals/{id}", goalHandler.UpdateGoal)
		router.Delete("/goals/{id}", goalHandler.DeleteGoal)
		router.Post("/goals/{id}/complete", goalHandler.CompleteGoal)
		router.Get("/goals/{id}/reserves", reserveHandler.ListReserves)
		router.Put("/goals/{id}/reserves/{month}", reserveHandler.PutReserve)
		router.Patch("/reserves/{reserveID}", reserveHandler.UpdateReserve)
		router.Delete("/reserves/{reserveID}", reserveHandler.DeleteReserve)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var payload bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&payload).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &payload).WithContext(context.Background())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	createGoal := func(body map[string]interface{}) goal.GoalResponse {
		w := do(http.MethodPost, "/goals", body)
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
		var resp goal.GoalResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		return resp
	}

	It("creates a saving goal and reports its progress", func() {
		created := createGoal(map[string]interface{}{
			"name":          "Emergency fund",
			"target_amount": 1000,
			"type":          "saving",
			"start_date":    "2024-01-01",
			"end_date":      "2024-12-31",
		})
		Expect(created.StartDate).To(Equal("2024-01-01"))
		Expect(*created.EndDate).To(Equal("2024-12-31"))
		Expect(created.Percent).To(Equal(40))

		w := do(http.MethodGet, "/goals", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var list goal.GoalsResponse
		Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
		Expect(list.Goals).To(HaveLen(1))
		Expect(list.Goals[0].CurrentAmount.String()).To(Equal("400"))
		Expect(list.Goals[0].RemainingAmount.String()).To(Equal("600"))
	})

	It("maps validation failures to 400", func() {
		w := do(http.MethodPost, "/goals", map[string]interface{}{
			"name":          "Bad",
			"target_amount": -1,
			"type":          "saving",
			"start_date":    "2024-01-01",
		})
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		var body internal.Response
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body.Error.Type).To(Equal(internal.ErrorTypeValidation))
	})

	It("maps unknown goals to 404", func() {
		w := do(http.MethodGet, "/goals/does-not-exist", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("rejects a malformed body", func() {
		req := httptest.NewRequest(http.MethodPost, "/goals", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("clears the end date with an explicit null", func() {
		created := createGoal(map[string]interface{}{
			"name":          "Open ended",
			"target_amount": 1000,
			"type":          "saving",
			"start_date":    "2024-01-01",
			"end_date":      "2024-12-31",
		})

		req := httptest.NewRequest(http.MethodPatch, "/goals/"+created.ID, bytes.NewBufferString(`{"end_date": null}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())

		var updated goal.GoalResponse
		Expect(json.NewDecoder(w.Body).Decode(&updated)).To(Succeed())
		Expect(updated.EndDate).To(BeNil())
		Expect(updated.Name).To(Equal("Open ended"))
	})

	It("tracks reserves for a purchase goal and cascades on delete", func() {
		created := createGoal(map[string]interface{}{
			"name":          "Laptop",
			"target_amount": 500,
			"type":          "purchase",
			"start_date":    "2024-01-01",
		})

		w := do(http.MethodPut, "/goals/"+created.ID+"/reserves/2024-02", map[string]interface{}{"amount": 100})
		Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())
		w = do(http.MethodPut, "/goals/"+created.ID+"/reserves/2024-03", map[string]interface{}{"amount": 30})
		Expect(w.Code).To(Equal(http.StatusOK))
		var march reserve.Reserve
		Expect(json.NewDecoder(w.Body).Decode(&march)).To(Succeed())

		w = do(http.MethodPut, "/goals/"+created.ID+"/reserves/2024-03", map[string]interface{}{"amount": 200})
		Expect(w.Code).To(Equal(http.StatusOK))
		var marchAgain reserve.Reserve
		Expect(json.NewDecoder(w.Body).Decode(&marchAgain)).To(Succeed())
		Expect(marchAgain.ID).To(Equal(march.ID))

		w = do(http.MethodGet, "/goals/"+created.ID, nil)
		var got goal.GoalResponse
		Expect(json.NewDecoder(w.Body).Decode(&got)).To(Succeed())
		Expect(got.CurrentAmount.String()).To(Equal("300"))
		Expect(got.Percent).To(Equal(60))
		Expect(got.RemainingAmount.String()).To(Equal("200"))

		w = do(http.MethodPatch, "/reserves/"+march.ID, map[string]interface{}{"amount": 50})
		Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())

		w = do(http.MethodGet, "/goals/"+created.ID+"/reserves", nil)
		var listed reserve.ReservesResponse
		Expect(json.NewDecoder(w.Body).Decode(&listed)).To(Succeed())
		Expect(listed.Reserves).To(HaveLen(2))
		Expect(listed.Reserves[0].Month).To(Equal("2024-02"))
		Expect(listed.Total.String()).To(Equal("150"))

		w = do(http.MethodDelete, "/goals/"+created.ID, nil)
		Expect(w.Code).To(Equal(http.StatusNoContent))

		var remaining int64
		Expect(db.Model(&reserveDatamodel.GoalReserve{}).Where("goal_id = ?", created.ID).Count(&remaining).Error).To(Succeed())
		Expect(remaining).To(BeZero())
	})

	It("refuses reserves on a saving goal", func() {
		created := createGoal(map[string]interface{}{
			"name":          "Fund",
			"target_amount": 100,
			"type":          "saving",
			"start_date":    "2024-01-01",
		})

		w := do(http.MethodPut, "/goals/"+created.ID+"/reserves/2024-02", map[string]interface{}{"amount": 10})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("completes a goal on request", func() {
		created := createGoal(map[string]interface{}{
			"name":          "Fund",
			"target_amount": 100,
			"type":          "saving",
			"start_date":    "2024-01-01",
		})

		w := do(http.MethodPost, "/goals/"+created.ID+"/complete", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var completed goal.GoalResponse
		Expect(json.NewDecoder(w.Body).Decode(&completed)).To(Succeed())
		Expect(completed.Status).To(Equal(goal.StatusCompleted))
		Expect(completed.CompletedAt).NotTo(BeNil())
	})
})
