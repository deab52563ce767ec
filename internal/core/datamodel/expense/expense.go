package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense is the persisted shape of an expense record. The identifier is
// assigned by the repository at creation and never changes afterwards.
type Expense struct {
	ID          string          `json:"id" gorm:"primaryKey"`
	UserID      string          `json:"user_id" gorm:"column:user_id;not null;index:idx_expenses_user_date;index:idx_expenses_user_category"`
	Description string          `json:"description" gorm:"not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(14,2);not null"`
	Category    string          `json:"category" gorm:"not null;index:idx_expenses_user_category"`
	Date        time.Time       `json:"date" gorm:"index:idx_expenses_user_date"`
	CreatedAt   time.Time       `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"column:updated_at"`
}

func (Expense) TableName() string {
	return "expenses"
}

// BeforeCreate assigns the store-side identifier. Identifiers are opaque and
// immutable once assigned.
func (e *Expense) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
