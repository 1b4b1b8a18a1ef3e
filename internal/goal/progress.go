package goal

import (
	"errors"
	"fmt"

	"github.com/frahmantamala/goal-tracker/internal/reserve"
	"github.com/frahmantamala/goal-tracker/internal/transaction"
	"github.com/shopspring/decimal"
)

var ErrUnknownGoalType = errors.New("unknown goal type")

var hundred = decimal.NewFromInt(100)

type Progress struct {
	Current   decimal.Decimal `json:"current_amount"`
	Remaining decimal.Decimal `json:"remaining_amount"`
	Percent   int             `json:"percent"`
}

// progressRule computes the current amount for one goal type.
type progressRule interface {
	current(g *Goal, transactions []*transaction.Transaction, reserves []*reserve.Reserve) decimal.Decimal
}

type savingRule struct{}

// Net in-period income.
func (savingRule) current(g *Goal, transactions []*transaction.Transaction, _ []*reserve.Reserve) decimal.Decimal {
	net := decimal.Zero
	for _, t := range transactions {
		if !g.InPeriod(t.Date) {
			continue
		}
		switch {
		case t.IsIncome():
			net = net.Add(t.Amount)
		case t.IsExpense():
			net = net.Sub(t.Amount)
		}
	}
	return net
}

type spendingRule struct{}

func (spendingRule) current(g *Goal, transactions []*transaction.Transaction, _ []*reserve.Reserve) decimal.Decimal {
	spent := decimal.Zero
	if g.CategoryID == nil {
		return spent
	}
	for _, t := range transactions {
		if t.IsExpense() && t.InCategory(*g.CategoryID) && g.InPeriod(t.Date) {
			spent = spent.Add(t.Amount)
		}
	}
	return spent
}

type purchaseRule struct{}

// Reserves are goal-scoped already, so no period filter applies.
func (purchaseRule) current(g *Goal, _ []*transaction.Transaction, reserves []*reserve.Reserve) decimal.Decimal {
	return reserve.Total(reserves, g.ID)
}

func ruleFor(t Type) (progressRule, error) {
	switch t {
	case TypeSaving:
		return savingRule{}, nil
	case TypeSpending:
		return spendingRule{}, nil
	case TypePurchase:
		return purchaseRule{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownGoalType, t)
}

// CalculateProgress reports how far g is toward its target given a snapshot
// of the owner's transactions and reserves. It does not modify its inputs.
func CalculateProgress(g *Goal, transactions []*transaction.Transaction, reserves []*reserve.Reserve) (Progress, error) {
	rule, err := ruleFor(g.Type)
	if err != nil {
		return Progress{}, err
	}
	return NewProgress(g.TargetAmount, rule.current(g, transactions, reserves)), nil
}

func NewProgress(target, current decimal.Decimal) Progress {
	remaining := target.Sub(current)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return Progress{
		Current:   current,
		Remaining: remaining,
		Percent:   Percent(current, target),
	}
}

// Percent is round(100*current/target) clamped to [0, 100], rounding half
// away from zero. A non-positive target yields 0.
func Percent(current, target decimal.Decimal) int {
	if !target.IsPositive() {
		return 0
	}
	p := current.Mul(hundred).DivRound(target, 0)
	switch {
	case p.IsNegative():
		return 0
	case p.GreaterThan(hundred):
		return 100
	}
	return int(p.IntPart())
}
