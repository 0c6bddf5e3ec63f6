// internal/domain/payment_event.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentEventOutcome records how the reconciler disposed of one webhook
// delivery.
type PaymentEventOutcome string

const (
	PaymentEventOutcomeReconciled   PaymentEventOutcome = "RECONCILED"
	PaymentEventOutcomeMarkedFailed PaymentEventOutcome = "MARKED_FAILED"
)

// PaymentEvent is the audit record for one processed gateway notification.
// It is inserted in the same database transaction as the investment status
// flip, so the audit trail and the flip commit or roll back together.
type PaymentEvent struct {
	ID               uuid.UUID           `db:"id" json:"id"`
	EventType        string              `db:"event_type" json:"event_type"` // e.g. "charge.success"
	KorapayReference string              `db:"korapay_reference" json:"korapay_reference"`
	Amount           decimal.Decimal     `db:"amount" json:"amount"`
	Payload          []byte              `db:"payload" json:"-"` // Raw signed data sub-object as received
	Outcome          PaymentEventOutcome `db:"outcome" json:"outcome"`
	ReceivedAt       time.Time           `db:"received_at" json:"received_at"`
}

// NewPaymentEvent creates an audit record for one webhook delivery.
func NewPaymentEvent(eventType, korapayReference string, amount decimal.Decimal, payload []byte, outcome PaymentEventOutcome) *PaymentEvent {
	return &PaymentEvent{
		ID:               uuid.New(),
		EventType:        eventType,
		KorapayReference: korapayReference,
		Amount:           amount,
		Payload:          payload,
		Outcome:          outcome,
		ReceivedAt:       time.Now().UTC(),
	}
}
