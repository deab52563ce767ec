package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/expense-tracker/internal/auth"
	"github.com/frahmantamala/expense-tracker/internal/category"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	"github.com/frahmantamala/expense-tracker/internal/transport/middleware"
	"github.com/frahmantamala/expense-tracker/internal/transport/swagger"
)

// RegisterAllRoutes wires the full HTTP surface onto the router.
func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	verifier auth.Verifier,
	expenseHandler *expense.Handler,
	categoryHandler *category.Handler,
	allowedOrigins string,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID(logger))
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware(logger))

	// API docs live outside the versioned prefix.
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// The category set is public; nothing sensitive in an enum.
		r.Get("/categories", categoryHandler.GetCategories)

		r.Group(func(pr chi.Router) {
			pr.Use(auth.Middleware(verifier, logger))

			pr.Route("/expenses", func(er chi.Router) {
				er.Get("/", expenseHandler.List)
				er.Post("/", expenseHandler.Create)
				er.Get("/summary", expenseHandler.Summary)
				er.Get("/export/{format}", expenseHandler.Export)
				er.Post("/import", expenseHandler.Import)
				er.Put("/{id}", expenseHandler.Update)
				er.Delete("/{id}", expenseHandler.Delete)
			})
		})
	})
}
