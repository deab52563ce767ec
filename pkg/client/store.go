package client

import (
	"context"
	"sync"

	"github.com/frahmantamala/expense-tracker/internal/expense"
)

// Store owns the client state and coordinates API calls with transitions.
// Transitions are serialized: only one applies at a time. After any
// create/update/delete the record list is patched locally and only the
// summary is re-fetched, asynchronously; the list can therefore drift from
// the backend until the next Load if another actor mutates the same owner's
// data.
type Store struct {
	api *Client

	mu    sync.Mutex
	state State

	// wg tracks in-flight summary refreshes so callers can wait for them.
	wg sync.WaitGroup
}

func NewStore(api *Client) *Store {
	return &Store{
		api:   api,
		state: NewState(),
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) dispatch(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Apply(s.state, e)
}

// Load fetches the record list and summary from the backend.
func (s *Store) Load(ctx context.Context) error {
	s.dispatch(LoadingSet{Loading: true})

	expenses, err := s.api.ListExpenses(ctx)
	if err != nil {
		s.dispatch(ErrorSet{Err: err.Error()})
		return err
	}
	s.dispatch(ExpensesLoaded{Expenses: expenses})

	summary, err := s.api.FetchSummary(ctx)
	if err != nil {
		s.dispatch(ErrorSet{Err: err.Error()})
		return err
	}
	s.dispatch(SummaryLoaded{Summary: *summary})
	return nil
}

// Add creates an expense, patches the local list and refreshes the summary
// in the background.
func (s *Store) Add(ctx context.Context, dto expense.ExpenseDTO) (*expense.Expense, error) {
	created, err := s.api.CreateExpense(ctx, dto)
	if err != nil {
		s.dispatch(ErrorSet{Err: err.Error()})
		return nil, err
	}

	s.dispatch(ExpenseAdded{Expense: created})
	s.refreshSummaryAsync(ctx)
	return created, nil
}

// Update updates an expense, patches the local list and refreshes the
// summary in the background.
func (s *Store) Update(ctx context.Context, id string, dto expense.ExpenseDTO) (*expense.Expense, error) {
	updated, err := s.api.UpdateExpense(ctx, id, dto)
	if err != nil {
		s.dispatch(ErrorSet{Err: err.Error()})
		return nil, err
	}

	s.dispatch(ExpenseUpdated{Expense: updated})
	s.refreshSummaryAsync(ctx)
	return updated, nil
}

// Delete removes an expense, patches the local list and refreshes the
// summary in the background.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteExpense(ctx, id); err != nil {
		s.dispatch(ErrorSet{Err: err.Error()})
		return err
	}

	s.dispatch(ExpenseDeleted{ID: id})
	s.refreshSummaryAsync(ctx)
	return nil
}

// SetFilter sets the active category filter.
func (s *Store) SetFilter(filter string) {
	s.dispatch(FilterSet{Filter: filter})
}

// FilteredExpenses returns the record list with the active category filter
// applied.
func (s *Store) FilteredExpenses() []*expense.Expense {
	state := s.State()
	if state.Filter == "" || state.Filter == FilterAll {
		return state.Expenses
	}

	filtered := make([]*expense.Expense, 0, len(state.Expenses))
	for _, exp := range state.Expenses {
		if exp.Category == state.Filter {
			filtered = append(filtered, exp)
		}
	}
	return filtered
}

// Wait blocks until all in-flight summary refreshes are applied.
func (s *Store) Wait() {
	s.wg.Wait()
}

func (s *Store) refreshSummaryAsync(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		summary, err := s.api.FetchSummary(ctx)
		if err != nil {
			// Summary refresh failures are silent; the stale summary stays
			// until the next fetch.
			return
		}
		s.dispatch(SummaryLoaded{Summary: *summary})
	}()
}
