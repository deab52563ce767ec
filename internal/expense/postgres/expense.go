package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/expense-tracker/internal"
	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-tracker/internal/expense"
)

// ExpenseRepository implements expense.RepositoryAPI using GORM.
type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) expense.RepositoryAPI {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(exp *expenseDatamodel.Expense) error {
	return r.db.Create(exp).Error
}

// CreateBatch inserts all records in one statement. Atomicity is whatever
// the underlying store gives a multi-row insert; there is no row-by-row
// compensation.
func (r *ExpenseRepository) CreateBatch(exps []*expenseDatamodel.Expense) error {
	if len(exps) == 0 {
		return nil
	}
	return r.db.Create(&exps).Error
}

func (r *ExpenseRepository) GetByIDAndUser(id, userID string) (*expenseDatamodel.Expense, error) {
	var exp expenseDatamodel.Expense
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&exp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrExpenseNotFound
		}
		return nil, err
	}
	return &exp, nil
}

func (r *ExpenseRepository) GetByUser(userID string) ([]*expenseDatamodel.Expense, error) {
	var expenses []*expenseDatamodel.Expense
	err := r.db.Where("user_id = ?", userID).
		Order("date DESC").
		Find(&expenses).Error
	return expenses, err
}

// GetAll returns every record in the store regardless of owner.
func (r *ExpenseRepository) GetAll() ([]*expenseDatamodel.Expense, error) {
	var expenses []*expenseDatamodel.Expense
	err := r.db.Order("date DESC").Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) Update(exp *expenseDatamodel.Expense) error {
	return r.db.Save(exp).Error
}

func (r *ExpenseRepository) Delete(id, userID string) error {
	res := r.db.Where("id = ? AND user_id = ?", id, userID).
		Delete(&expenseDatamodel.Expense{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrExpenseNotFound
	}
	return nil
}
