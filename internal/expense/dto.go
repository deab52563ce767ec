package expense

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/expense-tracker/internal"
)

// maxDescriptionLength bounds the free-text description field.
const maxDescriptionLength = 100

// minAmount is the smallest accepted expense amount.
var minAmount = decimal.RequireFromString("0.01")

// ExpenseDTO is the request payload for create and update. Date is optional
// on create and ignored on update; owner is never part of the payload.
type ExpenseDTO struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        *time.Time      `json:"date,omitempty"`
}

// Validate checks the payload field by field and reports the first violated
// rule. It is side-effect free and runs before create and update only.
func (dto ExpenseDTO) Validate() error {
	if strings.TrimSpace(dto.Description) == "" {
		return internal.NewValidationError("description is required", internal.ErrCodeInvalidDescription)
	}
	// Counted in characters, not bytes; multi-byte text stays within the
	// same limit as plain ASCII.
	if utf8.RuneCountInString(dto.Description) > maxDescriptionLength {
		return internal.NewValidationError(
			fmt.Sprintf("description must be less than %d characters", maxDescriptionLength),
			internal.ErrCodeInvalidDescription,
		)
	}
	if !dto.Amount.IsPositive() {
		return internal.NewValidationError("amount must be positive", internal.ErrCodeInvalidAmount)
	}
	if dto.Amount.LessThan(minAmount) {
		return internal.NewValidationError("amount must be at least 0.01", internal.ErrCodeInvalidAmount)
	}
	if !IsValidCategory(dto.Category) {
		return internal.NewValidationError(
			"category must be one of: "+strings.Join(Categories, ", "),
			internal.ErrCodeInvalidCategory,
		)
	}
	return nil
}

// DeleteResponse confirms a completed delete.
type DeleteResponse struct {
	Message string `json:"message"`
}

// ImportResponse reports a completed bulk import.
type ImportResponse struct {
	Message  string     `json:"message"`
	Count    int        `json:"count"`
	Expenses []*Expense `json:"expenses"`
}
