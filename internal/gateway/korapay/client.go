// internal/gateway/korapay/client.go
package korapay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"investpay/internal/util"
)

// DefaultBaseURL is the production Korapay API host.
const DefaultBaseURL = "https://api.korapay.com"

// Config holds the gateway credentials and endpoints.
type Config struct {
	SecretKey       string        // Shared secret; also keys the webhook HMAC
	BaseURL         string        // Overridable for tests
	NotificationURL string        // Where the gateway posts webhooks
	Timeout         time.Duration // Bound on the outbound checkout call
}

// Customer identifies the paying user to the gateway.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ChargeRequest describes one hosted-checkout session to create.
type ChargeRequest struct {
	Amount      decimal.Decimal
	Currency    string
	Reference   string
	Narration   string
	Customer    Customer
	RedirectURL string
	ProjectID   string // Optional; carried in metadata
}

// CheckoutSession is the gateway's answer to a successful initialization.
type CheckoutSession struct {
	CheckoutURL      string
	KorapayReference string
}

// initializePayload is the wire shape of the charge-initialize request.
type initializePayload struct {
	Amount            decimal.Decimal   `json:"amount"`
	Currency          string            `json:"currency"`
	Reference         string            `json:"reference"`
	Narration         string            `json:"narration"`
	Channels          []string          `json:"channels"`
	Customer          Customer          `json:"customer"`
	NotificationURL   string            `json:"notification_url"`
	RedirectURL       string            `json:"redirect_url"`
	MerchantBearsCost bool              `json:"merchant_bears_cost"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// initializeResponse is the wire shape of the charge-initialize response.
type initializeResponse struct {
	Status bool   `json:"status"`
	Msg    string `json:"message"`
	Data   struct {
		CheckoutURL string `json:"checkout_url"`
		Reference   string `json:"reference"`
	} `json:"data"`
}

// Client talks to the Korapay merchant API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a gateway client. The HTTP client carries the configured
// timeout so a slow gateway cannot hold a request worker indefinitely.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// InitializeCharge creates a hosted checkout session and returns its redirect
// URL plus the gateway's correlation id. Any non-2xx status, unparsable body,
// or missing checkout_url surfaces as util.ErrGateway; the caller must not
// have written anything before this returns.
func (c *Client) InitializeCharge(ctx context.Context, req ChargeRequest) (*CheckoutSession, error) {
	payload := initializePayload{
		Amount:            req.Amount,
		Currency:          req.Currency,
		Reference:         req.Reference,
		Narration:         req.Narration,
		Channels:          []string{"card", "bank_transfer"},
		Customer:          req.Customer,
		NotificationURL:   c.cfg.NotificationURL,
		RedirectURL:       req.RedirectURL,
		MerchantBearsCost: true,
	}
	if req.ProjectID != "" {
		payload.Metadata = map[string]string{"project_id": req.ProjectID}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal charge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/merchant/api/v1/charges/initialize", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: charge initialize call failed: %v", util.ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Korapay charge initialize returned non-2xx", "status", resp.StatusCode, "reference", req.Reference)
		return nil, fmt.Errorf("%w: charge initialize returned status %d", util.ErrGateway, resp.StatusCode)
	}

	var result initializeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode charge initialize response: %v", util.ErrGateway, err)
	}
	if !result.Status || result.Data.CheckoutURL == "" {
		c.logger.Error("Korapay charge initialize response missing checkout_url", "reference", req.Reference, "message", result.Msg)
		return nil, fmt.Errorf("%w: charge initialize response missing checkout_url", util.ErrGateway)
	}

	return &CheckoutSession{
		CheckoutURL:      result.Data.CheckoutURL,
		KorapayReference: result.Data.Reference,
	}, nil
}
