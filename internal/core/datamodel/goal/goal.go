package goal

import (
	"time"

	"github.com/shopspring/decimal"
)

type Goal struct {
	ID           string          `gorm:"primaryKey;type:varchar(36)"`
	UserID       string          `gorm:"column:user_id;not null;index"`
	Name         string          `gorm:"column:name;not null"`
	Description  *string         `gorm:"column:description"`
	TargetAmount decimal.Decimal `gorm:"column:target_amount;type:numeric(14,2);not null"`
	CategoryID   *string         `gorm:"column:category_id"`
	Type         string          `gorm:"column:type;not null"`
	Recurrence   *string         `gorm:"column:recurrence"`
	StartDate    time.Time       `gorm:"column:start_date;type:date;not null"`
	EndDate      *time.Time      `gorm:"column:end_date;type:date"`
	Status       string          `gorm:"column:status;not null;index"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
	CompletedAt  *time.Time      `gorm:"column:completed_at"`
}

func (Goal) TableName() string {
	return "goals"
}
