package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/frahmantamala/goal-tracker/internal/transaction"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type transactionRow struct {
	ID         string          `db:"id"`
	Date       time.Time       `db:"date"`
	Amount     decimal.Decimal `db:"amount"`
	Type       string          `db:"type"`
	CategoryID sql.NullString  `db:"category_id"`
}

// TransactionFeed reads the owner's transactions straight from the shared
// transactions table.
type TransactionFeed struct {
	db *sqlx.DB
}

func NewTransactionFeed(db *sqlx.DB) transaction.Feed {
	return &TransactionFeed{db: db}
}

func (f *TransactionFeed) ListByOwner(ctx context.Context, owner string) ([]*transaction.Transaction, error) {
	query := f.db.Rebind(`
		SELECT id, date, amount, type, category_id
		FROM transactions
		WHERE user_id = ?
		ORDER BY date ASC, id ASC`)

	var rows []transactionRow
	if err := f.db.SelectContext(ctx, &rows, query, owner); err != nil {
		return nil, err
	}

	result := make([]*transaction.Transaction, 0, len(rows))
	for _, row := range rows {
		tx := &transaction.Transaction{
			ID:     row.ID,
			Date:   row.Date,
			Amount: row.Amount,
			Type:   transaction.Type(row.Type),
		}
		if row.CategoryID.Valid {
			categoryID := row.CategoryID.String
			tx.CategoryID = &categoryID
		}
		result = append(result, tx)
	}
	return result, nil
}
