// internal/api/handler/investment.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"investpay/internal/api/middleware"
	"investpay/internal/api/types"
	"investpay/internal/service"
	"investpay/internal/util"
)

// DefaultTimeout bounds request handling at the router level.
const DefaultTimeout = 60 * time.Second

// InvestmentHandler handles HTTP requests for the investment flow.
type InvestmentHandler struct {
	service service.InvestmentService
	logger  *slog.Logger
}

// NewInvestmentHandler creates a new InvestmentHandler.
func NewInvestmentHandler(svc service.InvestmentService, logger *slog.Logger) *InvestmentHandler {
	return &InvestmentHandler{
		service: svc,
		logger:  logger,
	}
}

// Helper function to send JSON responses.
func (h *InvestmentHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
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

// Helper function to send error responses with the stable error taxonomy.
func (h *InvestmentHandler) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	code := "INTERNAL_ERROR"

	switch {
	case util.IsError(err, util.ErrInvalidAmount):
		statusCode = http.StatusBadRequest
		code = "INVALID_AMOUNT"
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		code = "INVALID_INPUT"
	case util.IsError(err, util.ErrUnauthenticated):
		statusCode = http.StatusUnauthorized
		code = "UNAUTHENTICATED"
	case util.IsError(err, util.ErrGateway):
		statusCode = http.StatusBadGateway
		code = "GATEWAY_ERROR"
	case util.IsError(err, util.ErrProfileNotFound):
		statusCode = http.StatusNotFound
		code = "PROFILE_NOT_FOUND"
	case util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		code = "NOT_FOUND"
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, types.ErrorResponse{Success: false, Error: code})
}

// CheckoutRequest represents the request body for checkout initiation.
type CheckoutRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	ProjectID *uuid.UUID      `json:"project_id,omitempty"`
}

// InitiateCheckout handles the checkout initiation request.
// POST /investments/checkout
func (h *InvestmentHandler) InitiateCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondWithError(w, util.ErrUnauthenticated)
		return
	}

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		h.respondWithError(w, util.ErrInvalidAmount)
		return
	}

	result, err := h.service.InitiateCheckout(r.Context(), userID, req.Amount, req.Currency, req.ProjectID, r.Header.Get("Origin"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.CheckoutResponse{
		Success:     true,
		CheckoutURL: result.CheckoutURL,
		Reference:   result.Reference,
	})
}

// GetInvestments handles the investment history request.
// GET /investments
func (h *InvestmentHandler) GetInvestments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondWithError(w, util.ErrUnauthenticated)
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	investments, totalCount, err := h.service.GetInvestments(r.Context(), userID, limit, offset)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"data":        investments,
		"limit":       limit,
		"offset":      offset,
		"total_count": totalCount,
	})
}

// GetProfile handles the aggregate totals request.
// GET /profile
func (h *InvestmentHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondWithError(w, util.ErrUnauthenticated)
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":        profile.UserID,
		"total_invested": profile.TotalInvested,
		"total_profit":   profile.TotalProfit,
	})
}
