package cmd

import (
	"fmt"
	"log"
	"time"

	goalDatamodel "github.com/frahmantamala/goal-tracker/internal/core/datamodel/goal"
	reserveDatamodel "github.com/frahmantamala/goal-tracker/internal/core/datamodel/reserve"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const demoUser = "demo-user"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with demo goals, transactions and reserves for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initGormDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			if err := clearDemoData(db); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared existing data for", demoUser)
		}

		var existing int64
		if err := db.Model(&goalDatamodel.Goal{}).Where("user_id = ?", demoUser).Count(&existing).Error; err != nil {
			log.Fatalf("failed to count goals: %v", err)
		}
		if existing > 0 {
			fmt.Println("demo goals already exist; run with --clear to reseed")
			return
		}

		if err := db.Transaction(seedDemoData); err != nil {
			log.Fatalf("failed to seed data: %v", err)
		}

		fmt.Println("Seeded demo data for", demoUser)
		fmt.Println("Issue a token with: goal-tracker token --user", demoUser)
	},
}

func clearDemoData(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", demoUser).Delete(&reserveDatamodel.GoalReserve{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", demoUser).Delete(&goalDatamodel.Goal{}).Error; err != nil {
			return err
		}
		return tx.Exec("DELETE FROM transactions WHERE user_id = ?", demoUser).Error
	})
}

func seedDemoData(tx *gorm.DB) error {
	now := time.Now().UTC()
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(now.Year(), 12, 31, 0, 0, 0, 0, time.UTC)
	groceries := "groceries"
	description := "New bike for commuting"

	saving := &goalDatamodel.Goal{
		ID:           uuid.NewString(),
		UserID:       demoUser,
		Name:         "Emergency fund",
		TargetAmount: decimal.NewFromInt(5000),
		Type:         "saving",
		StartDate:    yearStart,
		EndDate:      &yearEnd,
		Status:       "active",
	}
	spending := &goalDatamodel.Goal{
		ID:           uuid.NewString(),
		UserID:       demoUser,
		Name:         "Grocery budget",
		TargetAmount: decimal.NewFromInt(1200),
		CategoryID:   &groceries,
		Type:         "spending",
		StartDate:    yearStart,
		EndDate:      &yearEnd,
		Status:       "active",
	}
	purchase := &goalDatamodel.Goal{
		ID:           uuid.NewString(),
		UserID:       demoUser,
		Name:         "Bike",
		Description:  &description,
		TargetAmount: decimal.NewFromInt(800),
		Type:         "purchase",
		StartDate:    yearStart,
		Status:       "active",
	}

	for _, g := range []*goalDatamodel.Goal{saving, spending, purchase} {
		if err := tx.Create(g).Error; err != nil {
			return fmt.Errorf("insert goal %s: %w", g.Name, err)
		}
		fmt.Println("Seeded goal:", g.Name)
	}

	transactions := []struct {
		Date     time.Time
		Amount   int64
		Type     string
		Category *string
	}{
		{yearStart.AddDate(0, 0, 4), 3000, "income", nil},
		{yearStart.AddDate(0, 0, 10), 250, "expense", &groceries},
		{yearStart.AddDate(0, 1, 2), 180, "expense", &groceries},
		{yearStart.AddDate(0, 1, 14), 900, "expense", nil},
	}
	for _, t := range transactions {
		err := tx.Exec(
			"INSERT INTO transactions (id, user_id, date, amount, type, category_id) VALUES (?, ?, ?, ?, ?, ?)",
			uuid.NewString(), demoUser, t.Date, decimal.NewFromInt(t.Amount), t.Type, t.Category,
		).Error
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}
	fmt.Println("Seeded transactions:", len(transactions))

	for i, amount := range []int64{150, 200} {
		reserve := &reserveDatamodel.GoalReserve{
			ID:     uuid.NewString(),
			GoalID: purchase.ID,
			UserID: demoUser,
			Month:  yearStart.AddDate(0, i, 0).Format("2006-01"),
			Amount: decimal.NewFromInt(amount),
		}
		if err := tx.Create(reserve).Error; err != nil {
			return fmt.Errorf("insert reserve %s: %w", reserve.Month, err)
		}
	}
	fmt.Println("Seeded reserves for:", purchase.Name)

	return nil
}
