package internal_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/frahmantamala/goal-tracker/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AppError", func() {
	It("keeps matching its sentinel after WithCause", func() {
		err := internal.ErrTokenExpired.WithCause(errors.New("exp claim"))
		Expect(errors.Is(err, internal.ErrTokenExpired)).To(BeTrue())
		Expect(errors.Is(err, internal.ErrInvalidToken)).To(BeFalse())
		Expect(internal.ErrTokenExpired.Cause).To(BeNil())
	})

	It("wraps foreign errors as persistence failures only once", func() {
		cause := errors.New("connection reset")
		wrapped := internal.AsPersistence("failed to load goals", cause)

		appErr, ok := internal.IsAppError(wrapped)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypePersistence))
		Expect(errors.Is(wrapped, cause)).To(BeTrue())

		Expect(internal.AsPersistence("again", internal.ErrGoalNotFound)).To(BeIdenticalTo(internal.ErrGoalNotFound))
		Expect(internal.AsPersistence("nothing", nil)).To(BeNil())
	})

	It("renders without the cause", func() {
		status, body := internal.NewPersistenceError("failed to save goal", errors.New("pq: secret detail")).ToHTTPResponse()
		Expect(status).To(Equal(http.StatusInternalServerError))

		raw, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).NotTo(ContainSubstring("secret detail"))
		Expect(string(raw)).To(ContainSubstring(`"message":"failed to save goal"`))
	})

	It("surfaces the first field message", func() {
		err := internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
		Expect(err.Error()).To(Equal("name is required"))
		Expect(err.StatusCode).To(Equal(http.StatusBadRequest))
	})
})

var _ = Describe("owner context", func() {
	It("round-trips the owner", func() {
		ctx := internal.ContextWithOwner(context.Background(), "u1")
		owner, ok := internal.OwnerFromContext(ctx)
		Expect(ok).To(BeTrue())
		Expect(owner).To(Equal("u1"))
	})

	It("treats an empty owner as absent", func() {
		_, ok := internal.OwnerFromContext(internal.ContextWithOwner(context.Background(), ""))
		Expect(ok).To(BeFalse())
	})
})
