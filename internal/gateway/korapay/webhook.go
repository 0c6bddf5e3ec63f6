// internal/gateway/korapay/webhook.go
package korapay

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// SignatureHeader carries the hex HMAC of the data sub-object.
const SignatureHeader = "X-Korapay-Signature"

// Webhook event types the reconciler acts on. Anything else is acknowledged
// and ignored for forward compatibility.
const (
	EventChargeSuccess = "charge.success"
	EventChargeFailed  = "charge.failed"
)

// WebhookEnvelope is the outer shape of a gateway notification. Data is kept
// raw so the signature is verified over the exact bytes the gateway sent;
// re-serializing a decoded struct could perturb the signed text.
type WebhookEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ChargeData is the signed portion of a charge notification, decoded only
// after the signature has been verified.
type ChargeData struct {
	Reference string          `json:"reference"` // Gateway correlation id (= Investment.korapay_reference)
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Customer  *Customer       `json:"customer,omitempty"`
}
