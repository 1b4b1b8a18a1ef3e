package goal_test

import (
	"time"

	"github.com/frahmantamala/goal-tracker/internal/goal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ProposeStatus", func() {
	newGoal := func(goalType goal.Type, status goal.Status) *goal.Goal {
		return &goal.Goal{
			ID:        "g1",
			Type:      goalType,
			Status:    status,
			StartDate: day("2024-01-01"),
			EndDate:   dayPtr("2024-12-31"),
		}
	}

	afterEnd := time.Date(2025, 1, 1, 0, 0, 1, 0, time.UTC)

	DescribeTable("after the end date with the target reached",
		func(goalType goal.Type, expected goal.Status) {
			status, ok := goal.ProposeStatus(newGoal(goalType, goal.StatusActive), 100, afterEnd)
			Expect(ok).To(BeTrue())
			Expect(status).To(Equal(expected))
		},
		Entry("saving completes", goal.TypeSaving, goal.StatusCompleted),
		Entry("purchase completes", goal.TypePurchase, goal.StatusCompleted),
		Entry("spending is cancelled", goal.TypeSpending, goal.StatusCancelled),
	)

	It("waits until the end date has passed", func() {
		lastDay := time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)
		_, ok := goal.ProposeStatus(newGoal(goal.TypeSaving, goal.StatusActive), 100, lastDay)
		Expect(ok).To(BeFalse())
	})

	It("does nothing below 100 percent", func() {
		_, ok := goal.ProposeStatus(newGoal(goal.TypeSaving, goal.StatusActive), 99, afterEnd)
		Expect(ok).To(BeFalse())
	})

	It("does nothing without an end date", func() {
		g := newGoal(goal.TypeSaving, goal.StatusActive)
		g.EndDate = nil
		_, ok := goal.ProposeStatus(g, 100, afterEnd)
		Expect(ok).To(BeFalse())
	})

	It("never moves terminal goals", func() {
		for _, status := range []goal.Status{goal.StatusCompleted, goal.StatusCancelled} {
			got, ok := goal.ProposeStatus(newGoal(goal.TypeSaving, status), 100, afterEnd)
			Expect(ok).To(BeFalse())
			Expect(got).To(Equal(status))
		}
	})
})

var _ = Describe("Goal.ApplyStatus", func() {
	It("stamps completed_at on completion and clears it on reactivation", func() {
		g := &goal.Goal{Status: goal.StatusActive}
		at := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

		g.ApplyStatus(goal.StatusCompleted, at)
		Expect(g.Status).To(Equal(goal.StatusCompleted))
		Expect(g.CompletedAt).NotTo(BeNil())
		Expect(*g.CompletedAt).To(Equal(at))

		g.ApplyStatus(goal.StatusCompleted, at.Add(time.Hour))
		Expect(*g.CompletedAt).To(Equal(at))

		g.ApplyStatus(goal.StatusActive, at)
		Expect(g.CompletedAt).To(BeNil())
	})

	It("leaves completed_at empty on cancellation", func() {
		g := &goal.Goal{Status: goal.StatusActive}
		g.ApplyStatus(goal.StatusCancelled, time.Now())
		Expect(g.CompletedAt).To(BeNil())
	})
})
