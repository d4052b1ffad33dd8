// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"credikhaata-ledger/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(ledgerHandler *handler.LedgerHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Session lifecycle: the engine is scoped to one signed-in user.
	r.Post("/session", ledgerHandler.CreateSession)
	r.Delete("/session", ledgerHandler.DeleteSession)

	// Customer routes
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", ledgerHandler.ListCustomers)
		r.Post("/", ledgerHandler.CreateCustomer)
		r.Get("/{customerID}", ledgerHandler.GetCustomer)
		r.Patch("/{customerID}", ledgerHandler.UpdateCustomer)
		r.Delete("/{customerID}", ledgerHandler.DeleteCustomer)
		r.Get("/{customerID}/statement", ledgerHandler.GetCustomerStatement)
	})

	// Loan routes
	r.Route("/loans", func(r chi.Router) {
		r.Post("/", ledgerHandler.CreateLoan)
		r.Delete("/{loanID}", ledgerHandler.DeleteLoan)
		r.Post("/{loanID}/repayments", ledgerHandler.CreateRepayment)
	})

	return r
}
