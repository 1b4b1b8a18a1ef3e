package reserve

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoalReserve is one monthly pledge toward a goal. The composite unique index
// is what resolves concurrent writers for the same month.
type GoalReserve struct {
	ID        string          `gorm:"primaryKey;type:varchar(36)"`
	GoalID    string          `gorm:"column:goal_id;not null;uniqueIndex:idx_goal_reserves_goal_user_month,priority:1"`
	UserID    string          `gorm:"column:user_id;not null;uniqueIndex:idx_goal_reserves_goal_user_month,priority:2"`
	Month     string          `gorm:"column:month;type:varchar(7);not null;uniqueIndex:idx_goal_reserves_goal_user_month,priority:3"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (GoalReserve) TableName() string {
	return "goal_reserves"
}
