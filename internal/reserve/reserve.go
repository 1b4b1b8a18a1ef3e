package reserve

import (
	"time"

	reserveDatamodel "github.com/frahmantamala/goal-tracker/internal/core/datamodel/reserve"
	"github.com/shopspring/decimal"
)

// Reserve is a monthly pledge toward a purchase goal. There is at most one per
// goal, owner and month.
type Reserve struct {
	ID        string          `json:"id"`
	GoalID    string          `json:"goal_id"`
	UserID    string          `json:"user_id"`
	Month     string          `json:"month"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func NewReserve(owner, goalID, month string, amount decimal.Decimal) *Reserve {
	return &Reserve{
		GoalID: goalID,
		UserID: owner,
		Month:  month,
		Amount: amount,
	}
}

func ToDataModel(r *Reserve) *reserveDatamodel.GoalReserve {
	return &reserveDatamodel.GoalReserve{
		ID:        r.ID,
		GoalID:    r.GoalID,
		UserID:    r.UserID,
		Month:     r.Month,
		Amount:    r.Amount,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func FromDataModel(r *reserveDatamodel.GoalReserve) *Reserve {
	return &Reserve{
		ID:        r.ID,
		GoalID:    r.GoalID,
		UserID:    r.UserID,
		Month:     r.Month,
		Amount:    r.Amount,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*reserveDatamodel.GoalReserve) []*Reserve {
	result := make([]*Reserve, len(rows))
	for i, r := range rows {
		result[i] = FromDataModel(r)
	}
	return result
}

// Total sums the amounts of reserves that belong to goalID.
func Total(reserves []*Reserve, goalID string) decimal.Decimal {
	total := decimal.Zero
	for _, r := range reserves {
		if r.GoalID == goalID {
			total = total.Add(r.Amount)
		}
	}
	return total
}
