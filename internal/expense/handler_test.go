package expense_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/expense-tracker/internal/auth"
	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	expensePostgres "github.com/frahmantamala/expense-tracker/internal/expense/postgres"
	"github.com/frahmantamala/expense-tracker/internal/transport"
)

var _ = Describe("Expense Handler Integration", func() {
	var (
		db      *gorm.DB
		router  *chi.Mux
		slogger *slog.Logger
	)

	const allowedUser = "user-123"

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&expenseDatamodel.Expense{})
		Expect(err).NotTo(HaveOccurred())

		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		repo := expensePostgres.NewExpenseRepository(db)
		service := expense.NewService(repo, slogger)
		handler := expense.NewHandler(transport.NewBaseHandler(slogger), service, GinkgoT().TempDir())
		verifier := auth.NewStaticVerifier(allowedUser)

		router = chi.NewRouter()
		router.Route("/api/v1", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware(verifier, slogger))

				r.Get("/expenses", handler.List)
				r.Post("/expenses", handler.Create)
				r.Get("/expenses/summary", handler.Summary)
				r.Get("/expenses/export/{format}", handler.Export)
				r.Post("/expenses/import", handler.Import)
				r.Put("/expenses/{id}", handler.Update)
				r.Delete("/expenses/{id}", handler.Delete)
			})
		})
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	doRequest := func(method, path, userID string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if userID != "" {
			req.Header.Set(auth.UserIDHeader, userID)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	createExpense := func(description, amount, category string) expense.Expense {
		payload := map[string]any{
			"description": description,
			"amount":      json.Number(amount),
			"category":    category,
		}
		body, err := json.Marshal(payload)
		Expect(err).NotTo(HaveOccurred())

		rec := doRequest(http.MethodPost, "/api/v1/expenses", allowedUser, body)
		Expect(rec.Code).To(Equal(http.StatusCreated))

		var created expense.Expense
		Expect(json.Unmarshal(rec.Body.Bytes(), &created)).To(Succeed())
		return created
	}

	Describe("identity", func() {
		It("should reject requests without the identity header", func() {
			rec := doRequest(http.MethodGet, "/api/v1/expenses", "", nil)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))

			var body map[string]string
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["error"]).To(Equal("unauthorized"))
			Expect(body["details"]).To(Equal("invalid user credentials"))
		})

		It("should reject requests from unknown users", func() {
			rec := doRequest(http.MethodGet, "/api/v1/expenses", "intruder", nil)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("create", func() {
		It("should persist and return the new expense", func() {
			created := createExpense("Groceries", "54.20", expense.CategoryFood)

			Expect(created.ID).NotTo(BeEmpty())
			Expect(created.UserID).To(Equal(allowedUser))
			Expect(created.Description).To(Equal("Groceries"))
			Expect(created.Amount.Equal(mustDecimal("54.20"))).To(BeTrue())
			Expect(created.Category).To(Equal(expense.CategoryFood))
			Expect(created.Date).NotTo(BeZero())
		})

		It("should reject malformed JSON", func() {
			rec := doRequest(http.MethodPost, "/api/v1/expenses", allowedUser, []byte("{not json"))

			Expect(rec.Code).To(Equal(http.StatusBadRequest))

			var body transport.ErrorResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Error).To(Equal("validation error"))
		})

		It("should reject an invalid category with the allowed set in details", func() {
			payload := []byte(`{"description":"Groceries","amount":10,"category":"Snacks"}`)
			rec := doRequest(http.MethodPost, "/api/v1/expenses", allowedUser, payload)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))

			var body transport.ErrorResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Error).To(Equal("validation error"))
			Expect(body.Details).To(ContainSubstring("category must be one of"))
			Expect(body.Details).To(ContainSubstring("Food"))
		})
	})

	Describe("list", func() {
		It("should return the caller's expenses most recent first", func() {
			old := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
			recent := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
			Expect(db.Create(&expenseDatamodel.Expense{
				UserID: allowedUser, Description: "Old", Amount: mustDecimal("1.00"),
				Category: expense.CategoryOther, Date: old,
			}).Error).To(Succeed())
			Expect(db.Create(&expenseDatamodel.Expense{
				UserID: allowedUser, Description: "Recent", Amount: mustDecimal("2.00"),
				Category: expense.CategoryOther, Date: recent,
			}).Error).To(Succeed())
			Expect(db.Create(&expenseDatamodel.Expense{
				UserID: "someone-else", Description: "Foreign", Amount: mustDecimal("3.00"),
				Category: expense.CategoryOther, Date: recent,
			}).Error).To(Succeed())

			rec := doRequest(http.MethodGet, "/api/v1/expenses", allowedUser, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var listed []*expense.Expense
			Expect(json.Unmarshal(rec.Body.Bytes(), &listed)).To(Succeed())
			Expect(listed).To(HaveLen(2))
			Expect(listed[0].Description).To(Equal("Recent"))
			Expect(listed[1].Description).To(Equal("Old"))
		})

		It("should return an empty list when the caller has no expenses", func() {
			rec := doRequest(http.MethodGet, "/api/v1/expenses", allowedUser, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var listed []*expense.Expense
			Expect(json.Unmarshal(rec.Body.Bytes(), &listed)).To(Succeed())
			Expect(listed).To(BeEmpty())
		})
	})

	Describe("update", func() {
		It("should replace the mutable fields", func() {
			created := createExpense("Groceries", "54.20", expense.CategoryFood)

			payload := []byte(`{"description":"Weekly groceries","amount":60,"category":"Shopping"}`)
			rec := doRequest(http.MethodPut, "/api/v1/expenses/"+created.ID, allowedUser, payload)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var updated expense.Expense
			Expect(json.Unmarshal(rec.Body.Bytes(), &updated)).To(Succeed())
			Expect(updated.ID).To(Equal(created.ID))
			Expect(updated.Description).To(Equal("Weekly groceries"))
			Expect(updated.Amount.Equal(mustDecimal("60"))).To(BeTrue())
			Expect(updated.Category).To(Equal(expense.CategoryShopping))
		})

		It("should return 404 for an unknown id", func() {
			payload := []byte(`{"description":"Ghost","amount":5,"category":"Other"}`)
			rec := doRequest(http.MethodPut, "/api/v1/expenses/does-not-exist", allowedUser, payload)

			Expect(rec.Code).To(Equal(http.StatusNotFound))

			var body transport.ErrorResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Error).To(Equal("expense not found"))
		})
	})

	Describe("delete", func() {
		It("should remove the expense and confirm", func() {
			created := createExpense("Groceries", "54.20", expense.CategoryFood)

			rec := doRequest(http.MethodDelete, "/api/v1/expenses/"+created.ID, allowedUser, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var body expense.DeleteResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Message).To(Equal("expense deleted successfully"))

			rec = doRequest(http.MethodGet, "/api/v1/expenses", allowedUser, nil)
			var listed []*expense.Expense
			Expect(json.Unmarshal(rec.Body.Bytes(), &listed)).To(Succeed())
			Expect(listed).To(BeEmpty())
		})

		It("should return 404 for an unknown id", func() {
			rec := doRequest(http.MethodDelete, "/api/v1/expenses/does-not-exist", allowedUser, nil)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("summary", func() {
		It("should report the total and per-category sums", func() {
			createExpense("Groceries", "54.20", expense.CategoryFood)
			createExpense("Coffee", "4.50", expense.CategoryFood)
			createExpense("Bus ticket", "2.75", expense.CategoryTransport)

			rec := doRequest(http.MethodGet, "/api/v1/expenses/summary", allowedUser, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var summary expense.Summary
			Expect(json.Unmarshal(rec.Body.Bytes(), &summary)).To(Succeed())
			Expect(summary.Total.Equal(mustDecimal("61.45"))).To(BeTrue())
			Expect(summary.ByCategory[expense.CategoryFood].Equal(mustDecimal("58.70"))).To(BeTrue())
			Expect(summary.ByCategory[expense.CategoryTransport].Equal(mustDecimal("2.75"))).To(BeTrue())
		})
	})

	Describe("export", func() {
		It("should serve a delimited text download", func() {
			createExpense("Groceries", "54.20", expense.CategoryFood)

			rec := doRequest(http.MethodGet, "/api/v1/expenses/export/csv", allowedUser, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("text/csv"))
			Expect(rec.Header().Get("Content-Disposition")).To(Equal("attachment; filename=expenses.csv"))
			Expect(rec.Body.String()).To(ContainSubstring("Description,Amount,Category,Date"))
			Expect(rec.Body.String()).To(ContainSubstring("Groceries"))
		})

		It("should serve a workbook download", func() {
			createExpense("Groceries", "54.20", expense.CategoryFood)

			rec := doRequest(http.MethodGet, "/api/v1/expenses/export/xlsx", allowedUser, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
			Expect(rec.Header().Get("Content-Disposition")).To(Equal("attachment; filename=expenses.xlsx"))
			Expect(rec.Body.Len()).To(BeNumerically(">", 0))
		})

		It("should reject an unknown format", func() {
			rec := doRequest(http.MethodGet, "/api/v1/expenses/export/pdf", allowedUser, nil)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))

			var body transport.ErrorResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Error).To(Equal("invalid format"))
		})
	})

	Describe("import", func() {
		uploadFile := func(filename, content, userID string) *httptest.ResponseRecorder {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			part, err := mw.CreateFormFile("file", filename)
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write([]byte(content))
			Expect(err).NotTo(HaveOccurred())
			Expect(mw.Close()).To(Succeed())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses/import", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			if userID != "" {
				req.Header.Set(auth.UserIDHeader, userID)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			return rec
		}

		It("should insert every row and report the count", func() {
			content := strings.Join([]string{
				"Description,Amount,Category,Date",
				"Groceries,54.20,Food,2023-01-15",
				"Imported,9.99,Snacks,44927",
			}, "\n")

			rec := uploadFile("upload.csv", content, allowedUser)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var body expense.ImportResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Message).To(Equal("expenses imported successfully"))
			Expect(body.Count).To(Equal(2))
			Expect(body.Expenses).To(HaveLen(2))
			Expect(body.Expenses[1].Category).To(Equal("Snacks"))

			listRec := doRequest(http.MethodGet, "/api/v1/expenses", allowedUser, nil)
			var listed []*expense.Expense
			Expect(json.Unmarshal(listRec.Body.Bytes(), &listed)).To(Succeed())
			Expect(listed).To(HaveLen(2))
		})

		It("should reject a header-only upload", func() {
			rec := uploadFile("empty.csv", "Description,Amount,Category,Date\n", allowedUser)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))

			var body transport.ErrorResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Error).To(Equal("file is empty"))
		})

		It("should reject a request without a file part", func() {
			rec := doRequest(http.MethodPost, "/api/v1/expenses/import", allowedUser, nil)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
