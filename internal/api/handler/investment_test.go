// internal/api/handler/investment_test.go
package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"investpay/internal/api/middleware"
	"investpay/internal/service"
	"investpay/internal/util"
)

func postCheckout(h *InvestmentHandler, body string, userID *uuid.UUID) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/investments/checkout", bytes.NewBufferString(body))
	if userID != nil {
		req = req.WithContext(middleware.WithUserID(req.Context(), *userID))
	}
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	h.InitiateCheckout(rec, req)
	return rec
}

func TestInitiateCheckoutHandler(t *testing.T) {
	userID := uuid.MustParse("3f1c9a52-7d2e-4b41-9a93-0d51f0a2b6c4")

	t.Run("SuccessfulCheckout", func(t *testing.T) {
		mockService := new(MockInvestmentService)
		h := NewInvestmentHandler(mockService, slog.Default())

		mockService.On("InitiateCheckout", mock.Anything, userID,
			mock.MatchedBy(func(amount decimal.Decimal) bool { return amount.Equal(decimal.NewFromInt(15000000)) }),
			"NGN", (*uuid.UUID)(nil), "https://app.example.com").
			Return(&service.CheckoutResult{
				CheckoutURL: "https://checkout.korapay.com/pay/abc123",
				Reference:   "INV_1700000000000_3f1c9a52",
			}, nil).Once()

		rec := postCheckout(h, `{"amount": 15000000, "currency": "NGN"}`, &userID)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"checkout_url":"https://checkout.korapay.com/pay/abc123","reference":"INV_1700000000000_3f1c9a52"}`, rec.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("UnauthenticatedCaller", func(t *testing.T) {
		mockService := new(MockInvestmentService)
		h := NewInvestmentHandler(mockService, slog.Default())

		rec := postCheckout(h, `{"amount": 5000}`, nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"success":false,"error":"UNAUTHENTICATED"}`, rec.Body.String())
		mockService.AssertNotCalled(t, "InitiateCheckout", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		mockService := new(MockInvestmentService)
		h := NewInvestmentHandler(mockService, slog.Default())

		rec := postCheckout(h, `{"amount": 0, "currency": "NGN"}`, &userID)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"success":false,"error":"INVALID_AMOUNT"}`, rec.Body.String())
		mockService.AssertNotCalled(t, "InitiateCheckout", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("GatewayErrorMapsTo502", func(t *testing.T) {
		mockService := new(MockInvestmentService)
		h := NewInvestmentHandler(mockService, slog.Default())

		mockService.On("InitiateCheckout", mock.Anything, userID, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, util.ErrGateway).Once()

		rec := postCheckout(h, `{"amount": 5000, "currency": "NGN"}`, &userID)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.JSONEq(t, `{"success":false,"error":"GATEWAY_ERROR"}`, rec.Body.String())
		mockService.AssertExpectations(t)
	})
}
