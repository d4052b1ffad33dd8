// internal/api/handler/ledger.go
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"credikhaata-ledger/internal/api/types"
	"credikhaata-ledger/internal/domain"
	"credikhaata-ledger/internal/export"
	"credikhaata-ledger/internal/service"
	"credikhaata-ledger/internal/util" // For custom errors
)

// DefaultTimeout bounds request handling in the router middleware.
const DefaultTimeout = 30 * time.Second

const dateLayout = "2006-01-02"

// LedgerHandler handles HTTP requests against the ledger engine.
type LedgerHandler struct {
	service service.LedgerService
	view    *service.View
	logger  *slog.Logger
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(svc service.LedgerService, view *service.View, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{
		service: svc,
		view:    view,
		logger:  logger,
	}
}

// Helper function to send JSON responses.
func (h *LedgerHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// Helper function to send error responses.
func (h *LedgerHandler) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrNoSession):
		statusCode = http.StatusUnauthorized
		message = "No active session"
	case util.IsError(err, util.ErrCustomerNotFound), util.IsError(err, util.ErrLoanNotFound), util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, map[string]string{"error": message})
}

// parseDate accepts YYYY-MM-DD; an empty value maps to the zero time so
// the service layer can report the missing field.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", util.ErrInvalidInput)
	}
	return t, nil
}

// SessionRequest represents the request body for opening a session.
type SessionRequest struct {
	UserID string `json:"user_id"`
}

// CreateSession binds the engine to a user identity and reloads their
// collections.
// POST /session
func (h *LedgerHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	if req.UserID == "" {
		h.respondWithError(w, fmt.Errorf("%w: user_id is required", util.ErrInvalidInput))
		return
	}

	if err := h.service.Reinitialize(r.Context(), req.UserID); err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Session started",
		"user_id": req.UserID,
	})
}

// DeleteSession ends the active session and clears the in-memory
// collections.
// DELETE /session
func (h *LedgerHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	h.service.Clear()
	h.respondWithJSON(w, http.StatusOK, map[string]string{"message": "Session ended"})
}

// ListCustomers returns the enriched customer list.
// GET /customers
func (h *LedgerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	summaries := h.view.ListCustomers()
	h.respondWithJSON(w, http.StatusOK, types.ListResponse[domain.CustomerSummary]{
		Data:  summaries,
		Count: len(summaries),
	})
}

// CustomerRequest represents the request body for creating a customer.
type CustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CreateCustomer handles the add customer request.
// POST /customers
func (h *LedgerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	customer, err := h.service.AddCustomer(r.Context(), service.CustomerInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, customer)
}

// CustomerPatchRequest represents the request body for updating a
// customer; absent fields are left unchanged.
type CustomerPatchRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// UpdateCustomer handles the update customer request.
// PATCH /customers/{customerID}
func (h *LedgerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")

	var req CustomerPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	customer, err := h.service.UpdateCustomer(r.Context(), customerID, service.CustomerPatch{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, customer)
}

// DeleteCustomer handles the delete customer request. Deleting a customer
// also removes all of their loans.
// DELETE /customers/{customerID}
func (h *LedgerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")

	if err := h.service.DeleteCustomer(r.Context(), customerID); err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]string{"message": "Customer and their loans removed"})
}

// GetCustomer returns the enriched single-customer detail.
// GET /customers/{customerID}
func (h *LedgerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")

	detail, err := h.view.CustomerDetail(customerID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, detail)
}

// GetCustomerStatement streams a CSV statement for one customer.
// GET /customers/{customerID}/statement
func (h *LedgerHandler) GetCustomerStatement(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")

	detail, err := h.view.CustomerDetail(customerID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	filename := fmt.Sprintf("statement-%s-%s.csv", customerID, time.Now().Format(dateLayout))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := export.WriteCustomerStatement(w, detail); err != nil {
		h.logger.Error("Failed to write customer statement", "customer_id", customerID, "error", err)
	}
}

// LoanRequest represents the request body for creating a loan.
type LoanRequest struct {
	CustomerID      string          `json:"customer_id"`
	ItemDescription string          `json:"item_description"`
	Amount          decimal.Decimal `json:"amount"`
	IssueDate       string          `json:"issue_date"`
	Frequency       string          `json:"frequency"`
}

// CreateLoan handles the add loan request.
// POST /loans
func (h *LedgerHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req LoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	loan, err := h.service.AddLoan(r.Context(), service.LoanInput{
		CustomerID:      req.CustomerID,
		ItemDescription: req.ItemDescription,
		Amount:          req.Amount,
		IssueDate:       issueDate,
		Frequency:       domain.Frequency(req.Frequency),
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, loan)
}

// DeleteLoan handles the delete loan request.
// DELETE /loans/{loanID}
func (h *LedgerHandler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "loanID")

	if err := h.service.DeleteLoan(r.Context(), loanID); err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]string{"message": "Loan removed"})
}

// RepaymentRequest represents the request body for recording a repayment.
type RepaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
}

// CreateRepayment handles the record repayment request.
// POST /loans/{loanID}/repayments
func (h *LedgerHandler) CreateRepayment(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "loanID")

	var req RepaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	repayment, err := h.service.AddRepayment(r.Context(), loanID, service.RepaymentInput{
		Amount: req.Amount,
		Date:   date,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, repayment)
}
