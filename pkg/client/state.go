package client

import (
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/expense-tracker/internal/expense"
)

// FilterAll disables category filtering.
const FilterAll = "All"

// State is an immutable snapshot of the client-side view: the mirrored
// record list, the derived summary, the loading flag, the last error and
// the active category filter.
type State struct {
	Expenses []*expense.Expense
	Summary  expense.Summary
	Loading  bool
	Err      string
	Filter   string
}

// NewState returns the initial state.
func NewState() State {
	return State{
		Summary: expense.Summary{
			Total:      decimal.Zero,
			ByCategory: map[string]decimal.Decimal{},
		},
		Filter: FilterAll,
	}
}

// Event is a state transition message. Exactly one transition applies at a
// time; Apply never mutates its input.
type Event interface{ isEvent() }

type ExpensesLoaded struct{ Expenses []*expense.Expense }
type SummaryLoaded struct{ Summary expense.Summary }
type ExpenseAdded struct{ Expense *expense.Expense }
type ExpenseUpdated struct{ Expense *expense.Expense }
type ExpenseDeleted struct{ ID string }
type LoadingSet struct{ Loading bool }
type ErrorSet struct{ Err string }
type FilterSet struct{ Filter string }

func (ExpensesLoaded) isEvent() {}
func (SummaryLoaded) isEvent()  {}
func (ExpenseAdded) isEvent()   {}
func (ExpenseUpdated) isEvent() {}
func (ExpenseDeleted) isEvent() {}
func (LoadingSet) isEvent()     {}
func (ErrorSet) isEvent()       {}
func (FilterSet) isEvent()      {}

// Apply is the pure state transition function: (state, event) -> new state.
func Apply(s State, e Event) State {
	switch ev := e.(type) {
	case ExpensesLoaded:
		s.Expenses = ev.Expenses
		s.Loading = false
	case SummaryLoaded:
		s.Summary = ev.Summary
	case ExpenseAdded:
		expenses := make([]*expense.Expense, 0, len(s.Expenses)+1)
		expenses = append(expenses, ev.Expense)
		expenses = append(expenses, s.Expenses...)
		s.Expenses = expenses
	case ExpenseUpdated:
		expenses := make([]*expense.Expense, len(s.Expenses))
		for i, exp := range s.Expenses {
			if exp.ID == ev.Expense.ID {
				expenses[i] = ev.Expense
			} else {
				expenses[i] = exp
			}
		}
		s.Expenses = expenses
	case ExpenseDeleted:
		expenses := make([]*expense.Expense, 0, len(s.Expenses))
		for _, exp := range s.Expenses {
			if exp.ID != ev.ID {
				expenses = append(expenses, exp)
			}
		}
		s.Expenses = expenses
	case LoadingSet:
		s.Loading = ev.Loading
	case ErrorSet:
		s.Err = ev.Err
		s.Loading = false
	case FilterSet:
		s.Filter = ev.Filter
	}
	return s
}
