package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/expense-tracker/internal/expense"
	"github.com/frahmantamala/expense-tracker/pkg/client"
)

// fakeAPI is an in-memory stand-in for the expense backend.
type fakeAPI struct {
	mu       sync.Mutex
	expenses []*expense.Expense
}

func (f *fakeAPI) router() *chi.Mux {
	writeJSON := func(w http.ResponseWriter, status int, data any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(data)
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("X-User-ID") != "user-123" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, req)
		})
	})

	r.Get("/api/v1/expenses", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.expenses)
	})

	r.Post("/api/v1/expenses", func(w http.ResponseWriter, req *http.Request) {
		var dto expense.ExpenseDTO
		_ = json.NewDecoder(req.Body).Decode(&dto)

		created := &expense.Expense{
			ID:          uuid.NewString(),
			UserID:      "user-123",
			Description: dto.Description,
			Amount:      dto.Amount,
			Category:    dto.Category,
			Date:        time.Now(),
		}
		f.mu.Lock()
		f.expenses = append(f.expenses, created)
		f.mu.Unlock()

		writeJSON(w, http.StatusCreated, created)
	})

	r.Get("/api/v1/expenses/summary", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		summary := expense.Summary{
			Total:      decimal.Zero,
			ByCategory: map[string]decimal.Decimal{},
		}
		for _, exp := range f.expenses {
			summary.Total = summary.Total.Add(exp.Amount)
			summary.ByCategory[exp.Category] = summary.ByCategory[exp.Category].Add(exp.Amount)
		}
		writeJSON(w, http.StatusOK, summary)
	})

	r.Put("/api/v1/expenses/{id}", func(w http.ResponseWriter, req *http.Request) {
		var dto expense.ExpenseDTO
		_ = json.NewDecoder(req.Body).Decode(&dto)
		id := chi.URLParam(req, "id")

		f.mu.Lock()
		defer f.mu.Unlock()
		for _, exp := range f.expenses {
			if exp.ID == id {
				exp.Description = dto.Description
				exp.Amount = dto.Amount
				exp.Category = dto.Category
				writeJSON(w, http.StatusOK, exp)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "expense not found"})
	})

	r.Delete("/api/v1/expenses/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")

		f.mu.Lock()
		defer f.mu.Unlock()
		for i, exp := range f.expenses {
			if exp.ID == id {
				f.expenses = append(f.expenses[:i], f.expenses[i+1:]...)
				writeJSON(w, http.StatusOK, map[string]string{"message": "expense deleted successfully"})
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "expense not found"})
	})

	return r
}

var _ = Describe("Store", func() {
	var (
		api    *fakeAPI
		server *httptest.Server
		store  *client.Store
		ctx    context.Context
	)

	BeforeEach(func() {
		api = &fakeAPI{}
		server = httptest.NewServer(api.router())
		store = client.NewStore(client.New(server.URL, "user-123"))
		ctx = context.Background()
	})

	AfterEach(func() {
		server.Close()
	})

	newDTO := func(description, amount, category string) expense.ExpenseDTO {
		return expense.ExpenseDTO{
			Description: description,
			Amount:      decimal.RequireFromString(amount),
			Category:    category,
		}
	}

	Describe("Load", func() {
		It("should populate the list and summary", func() {
			api.expenses = []*expense.Expense{
				{ID: "a", UserID: "user-123", Description: "Groceries",
					Amount: decimal.RequireFromString("54.20"), Category: expense.CategoryFood},
			}

			Expect(store.Load(ctx)).To(Succeed())

			state := store.State()
			Expect(state.Expenses).To(HaveLen(1))
			Expect(state.Summary.Total.Equal(decimal.RequireFromString("54.20"))).To(BeTrue())
			Expect(state.Loading).To(BeFalse())
		})

		It("should record the failure when the backend rejects the caller", func() {
			badStore := client.NewStore(client.New(server.URL, "intruder"))

			Expect(badStore.Load(ctx)).To(HaveOccurred())
			Expect(badStore.State().Err).To(ContainSubstring("unauthorized"))
		})
	})

	Describe("Add", func() {
		It("should prepend locally and refresh the summary in the background", func() {
			Expect(store.Load(ctx)).To(Succeed())

			created, err := store.Add(ctx, newDTO("Coffee", "4.50", expense.CategoryFood))
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).NotTo(BeEmpty())

			state := store.State()
			Expect(state.Expenses).To(HaveLen(1))
			Expect(state.Expenses[0].ID).To(Equal(created.ID))

			store.Wait()
			Expect(store.State().Summary.Total.Equal(decimal.RequireFromString("4.50"))).To(BeTrue())
		})

		It("should surface validation-style failures without touching the list", func() {
			server.Close()

			_, err := store.Add(ctx, newDTO("Coffee", "4.50", expense.CategoryFood))
			Expect(err).To(HaveOccurred())
			Expect(store.State().Err).NotTo(BeEmpty())
			Expect(store.State().Expenses).To(BeEmpty())
		})
	})

	Describe("Update", func() {
		It("should patch the matching record in place", func() {
			created, err := store.Add(ctx, newDTO("Coffee", "4.50", expense.CategoryFood))
			Expect(err).NotTo(HaveOccurred())
			store.Wait()

			updated, err := store.Update(ctx, created.ID, newDTO("Espresso", "5.00", expense.CategoryFood))
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Description).To(Equal("Espresso"))

			state := store.State()
			Expect(state.Expenses).To(HaveLen(1))
			Expect(state.Expenses[0].Description).To(Equal("Espresso"))

			store.Wait()
			Expect(store.State().Summary.Total.Equal(decimal.RequireFromString("5.00"))).To(BeTrue())
		})

		It("should surface a not-found failure", func() {
			_, err := store.Update(ctx, "missing", newDTO("Espresso", "5.00", expense.CategoryFood))
			Expect(err).To(HaveOccurred())
			Expect(store.State().Err).To(ContainSubstring("expense not found"))
		})
	})

	Describe("Delete", func() {
		It("should drop the record locally and refresh the summary", func() {
			created, err := store.Add(ctx, newDTO("Coffee", "4.50", expense.CategoryFood))
			Expect(err).NotTo(HaveOccurred())
			store.Wait()

			Expect(store.Delete(ctx, created.ID)).To(Succeed())
			Expect(store.State().Expenses).To(BeEmpty())

			store.Wait()
			Expect(store.State().Summary.Total.IsZero()).To(BeTrue())
		})
	})

	Describe("FilteredExpenses", func() {
		BeforeEach(func() {
			api.expenses = []*expense.Expense{
				{ID: "a", Description: "Groceries", Amount: decimal.RequireFromString("54.20"), Category: expense.CategoryFood},
				{ID: "b", Description: "Bus ticket", Amount: decimal.RequireFromString("2.75"), Category: expense.CategoryTransport},
				{ID: "c", Description: "Coffee", Amount: decimal.RequireFromString("4.50"), Category: expense.CategoryFood},
			}
			Expect(store.Load(ctx)).To(Succeed())
		})

		It("should return everything when the filter is disabled", func() {
			Expect(store.FilteredExpenses()).To(HaveLen(3))
		})

		It("should narrow the list to the selected category", func() {
			store.SetFilter(expense.CategoryFood)

			filtered := store.FilteredExpenses()
			Expect(filtered).To(HaveLen(2))
			for _, exp := range filtered {
				Expect(exp.Category).To(Equal(expense.CategoryFood))
			}
		})

		It("should widen again when reset to the catch-all filter", func() {
			store.SetFilter(expense.CategoryFood)
			store.SetFilter(client.FilterAll)
			Expect(store.FilteredExpenses()).To(HaveLen(3))
		})
	})
})
