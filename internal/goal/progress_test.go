package goal_test

import (
	"errors"

	"github.com/frahmantamala/goal-tracker/internal/goal"
	"github.com/frahmantamala/goal-tracker/internal/reserve"
	"github.com/frahmantamala/goal-tracker/internal/transaction"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func income(date, amount string) *transaction.Transaction {
	return &transaction.Transaction{ID: "in-" + date, Date: day(date), Amount: dec(amount), Type: transaction.TypeIncome}
}

func expense(date, amount, category string) *transaction.Transaction {
	return &transaction.Transaction{ID: "ex-" + date, Date: day(date), Amount: dec(amount), Type: transaction.TypeExpense, CategoryID: strPtr(category)}
}

func pledge(goalID, month, amount string) *reserve.Reserve {
	return &reserve.Reserve{ID: goalID + month, GoalID: goalID, Month: month, Amount: dec(amount)}
}

var _ = Describe("CalculateProgress", func() {
	Describe("saving goals", func() {
		var g *goal.Goal

		BeforeEach(func() {
			g = &goal.Goal{
				ID:           "g1",
				Type:         goal.TypeSaving,
				TargetAmount: dec("1000"),
				StartDate:    day("2024-01-01"),
				EndDate:      dayPtr("2024-12-31"),
				Status:       goal.StatusActive,
			}
		})

		It("nets in-period income against expenses", func() {
			txs := []*transaction.Transaction{
				income("2024-03-01", "1200"),
				expense("2024-04-01", "200", "food"),
			}

			p, err := goal.CalculateProgress(g, txs, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Current.Equal(dec("1000"))).To(BeTrue())
			Expect(p.Remaining.IsZero()).To(BeTrue())
			Expect(p.Percent).To(Equal(100))
		})

		It("treats both ends of the window as inclusive", func() {
			txs := []*transaction.Transaction{
				income("2023-12-31", "999"),
				income("2024-01-01", "100"),
				income("2024-12-31", "150"),
				income("2025-01-01", "999"),
			}

			p, err := goal.CalculateProgress(g, txs, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Current.Equal(dec("250"))).To(BeTrue())
			Expect(p.Remaining.Equal(dec("750"))).To(BeTrue())
			Expect(p.Percent).To(Equal(25))
		})

		It("is open-ended without an end date", func() {
			g.EndDate = nil
			txs := []*transaction.Transaction{
				income("2023-12-31", "999"),
				income("2030-06-01", "400"),
			}

			p, err := goal.CalculateProgress(g, txs, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Current.Equal(dec("400"))).To(BeTrue())
		})

		It("clamps a negative net to 0 percent", func() {
			txs := []*transaction.Transaction{expense("2024-02-01", "300", "food")}

			p, err := goal.CalculateProgress(g, txs, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Current.Equal(dec("-300"))).To(BeTrue())
			Expect(p.Percent).To(Equal(0))
			Expect(p.Remaining.Equal(dec("1300"))).To(BeTrue())
		})

		It("gives the same answer twice and leaves its inputs alone", func() {
			txs := []*transaction.Transaction{income("2024-03-01", "333.33")}
			before := *txs[0]

			first, err := goal.CalculateProgress(g, txs, nil)
			Expect(err).NotTo(HaveOccurred())
			second, err := goal.CalculateProgress(g, txs, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(first.Current.Equal(second.Current)).To(BeTrue())
			Expect(first.Remaining.Equal(second.Remaining)).To(BeTrue())
			Expect(first.Percent).To(Equal(second.Percent))
			Expect(*txs[0]).To(Equal(before))
		})
	})

	Describe("spending goals", func() {
		It("sums in-period expenses in the goal's category only", func() {
			g := &goal.Goal{
				ID:           "g2",
				Type:         goal.TypeSpending,
				TargetAmount: dec("500"),
				CategoryID:   strPtr("food"),
				StartDate:    day("2024-01-01"),
				EndDate:      dayPtr("2024-01-31"),
			}
			txs := []*transaction.Transaction{
				expense("2024-01-05", "120", "food"),
				expense("2024-01-06", "80", "travel"),
				expense("2024-02-01", "300", "food"),
				income("2024-01-10", "1000"),
			}

			p, err := goal.CalculateProgress(g, txs, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Current.Equal(dec("120"))).To(BeTrue())
			Expect(p.Remaining.Equal(dec("380"))).To(BeTrue())
			Expect(p.Percent).To(Equal(24))
		})

		It("caps percent at 100 when the limit is blown", func() {
			g := &goal.Goal{
				ID:           "g2",
				Type:         goal.TypeSpending,
				TargetAmount: dec("100"),
				CategoryID:   strPtr("food"),
				StartDate:    day("2024-01-01"),
			}
			p, err := goal.CalculateProgress(g, []*transaction.Transaction{expense("2024-01-05", "250", "food")}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Percent).To(Equal(100))
			Expect(p.Remaining.IsZero()).To(BeTrue())
		})
	})

	Describe("purchase goals", func() {
		It("sums every reserve of the goal regardless of dates", func() {
			g := &goal.Goal{
				ID:           "car",
				Type:         goal.TypePurchase,
				TargetAmount: dec("500"),
				StartDate:    day("2024-06-01"),
				EndDate:      dayPtr("2024-06-30"),
			}
			reserves := []*reserve.Reserve{
				pledge("car", "2024-02", "100"),
				pledge("car", "2024-03", "200"),
				pledge("bike", "2024-03", "900"),
			}

			p, err := goal.CalculateProgress(g, []*transaction.Transaction{income("2024-06-10", "5000")}, reserves)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Current.Equal(dec("300"))).To(BeTrue())
			Expect(p.Remaining.Equal(dec("200"))).To(BeTrue())
			Expect(p.Percent).To(Equal(60))
		})
	})

	It("rejects an unknown type instead of guessing", func() {
		g := &goal.Goal{ID: "x", Type: goal.Type("lottery"), TargetAmount: dec("10")}
		_, err := goal.CalculateProgress(g, nil, nil)
		Expect(errors.Is(err, goal.ErrUnknownGoalType)).To(BeTrue())
	})
})

var _ = DescribeTable("Percent",
	func(current, target string, expected int) {
		Expect(goal.Percent(dec(current), dec(target))).To(Equal(expected))
	},
	Entry("exact", "250", "1000", 25),
	Entry("rounds half away from zero", "1", "200", 1),
	Entry("rounds down below half", "1", "300", 0),
	Entry("rounds up above half", "2", "3", 67),
	Entry("clamps above 100", "1500", "1000", 100),
	Entry("clamps below 0", "-5", "1000", 0),
	Entry("zero target", "100", "0", 0),
	Entry("negative target", "100", "-10", 0),
)
