package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/expense-tracker/internal"
	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-tracker/internal/expense"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample expenses for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		owner := cfg.Auth.AllowedUserID
		if owner == "" {
			owner = internal.DefaultAllowedUserID
		}

		if clearData {
			if err := db.Where("user_id = ?", owner).Delete(&expenseDatamodel.Expense{}).Error; err != nil {
				log.Fatalf("failed to clear expenses: %v", err)
			}
			fmt.Println("Cleared existing expenses for", owner)
		}

		samples := []struct {
			description string
			amount      string
			category    string
			daysAgo     int
		}{
			{"Groceries", "54.20", expense.CategoryFood, 1},
			{"Coffee", "4.50", expense.CategoryFood, 1},
			{"Bus ticket", "2.75", expense.CategoryTransport, 2},
			{"Electricity bill", "89.00", expense.CategoryUtilities, 5},
			{"Cinema", "12.00", expense.CategoryEntertainment, 7},
			{"Pharmacy", "23.10", expense.CategoryHealthcare, 9},
			{"Sneakers", "75.99", expense.CategoryShopping, 14},
		}

		now := time.Now()
		records := make([]*expenseDatamodel.Expense, 0, len(samples))
		for _, s := range samples {
			records = append(records, &expenseDatamodel.Expense{
				UserID:      owner,
				Description: s.description,
				Amount:      decimal.RequireFromString(s.amount),
				Category:    s.category,
				Date:        now.AddDate(0, 0, -s.daysAgo),
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}

		if err := db.Create(&records).Error; err != nil {
			log.Fatalf("failed to seed expenses: %v", err)
		}

		fmt.Printf("Seeded %d expenses for %s\n", len(records), owner)
	},
}
