package transaction

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Transaction is a dated income or expense record owned by another part of
// the system. Goals only ever read it.
type Transaction struct {
	ID         string          `json:"id"`
	Date       time.Time       `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	Type       Type            `json:"type"`
	CategoryID *string         `json:"category_id,omitempty"`
}

func (t *Transaction) IsIncome() bool {
	return t.Type == TypeIncome
}

func (t *Transaction) IsExpense() bool {
	return t.Type == TypeExpense
}

// InCategory reports whether the transaction is tagged with categoryID.
func (t *Transaction) InCategory(categoryID string) bool {
	return t.CategoryID != nil && *t.CategoryID == categoryID
}

type Feed interface {
	ListByOwner(ctx context.Context, owner string) ([]*Transaction, error)
}
