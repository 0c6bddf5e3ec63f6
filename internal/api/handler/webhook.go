// internal/api/handler/webhook.go
package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"investpay/internal/gateway/korapay"
	"investpay/internal/service"
)

// WebhookHandler receives asynchronous payment notifications from the gateway.
type WebhookHandler struct {
	service   service.InvestmentService
	secretKey string
	logger    *slog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(svc service.InvestmentService, secretKey string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		service:   svc,
		secretKey: secretKey,
		logger:    logger,
	}
}

// HandleKorapay processes one webhook delivery.
// POST /webhooks/korapay
//
// Response policy: 400 only for unparsable bodies, 401 only for a bad or
// missing signature, both before any state is touched. Once the payload is
// verified, every outcome except a pre-commit store failure is acknowledged
// with 200 so the gateway does not retry conditions retrying cannot fix.
func (h *WebhookHandler) HandleKorapay(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.respond(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}

	var envelope korapay.WebhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Data) == 0 {
		h.logger.Warn("Malformed webhook body", "error", err)
		h.respond(w, http.StatusBadRequest, map[string]string{"error": "malformed payload"})
		return
	}

	signature := r.Header.Get(korapay.SignatureHeader)
	if !korapay.VerifySignature(h.secretKey, envelope.Data, signature) {
		h.logger.Warn("Invalid webhook signature received", "event", envelope.Event)
		h.respond(w, http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
		return
	}

	var data korapay.ChargeData
	if err := json.Unmarshal(envelope.Data, &data); err != nil || data.Reference == "" {
		h.logger.Warn("Webhook data failed schema validation", "event", envelope.Event, "error", err)
		h.respond(w, http.StatusBadRequest, map[string]string{"error": "malformed payload"})
		return
	}

	outcome, err := h.service.ReconcileCharge(r.Context(), envelope.Event, data, envelope.Data)
	if err != nil {
		// Nothing was committed; a retry from the gateway is safe and useful.
		h.logger.Error("Webhook reconciliation failed before commit", "event", envelope.Event, "reference", data.Reference, "error", err)
		h.respond(w, http.StatusInternalServerError, map[string]string{"error": "processing failed"})
		return
	}

	h.logger.Info("Webhook acknowledged", "event", envelope.Event, "reference", data.Reference, "outcome", string(outcome))
	h.respond(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *WebhookHandler) respond(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
