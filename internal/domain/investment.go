// internal/domain/investment.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// InvestmentStatus defines the lifecycle state of a funding attempt.
type InvestmentStatus string

const (
	InvestmentStatusPending InvestmentStatus = "pending"
	InvestmentStatusActive  InvestmentStatus = "active"
	InvestmentStatusFailed  InvestmentStatus = "failed"
)

// Investment represents one funding attempt by one user. A row is created in
// status pending once the gateway acknowledges checkout-session creation and
// transitions exactly once to active or failed when the matching webhook
// arrives. Rows are never deleted; they are the audit trail.
type Investment struct {
	ID               int64            `db:"id" json:"id"`
	Reference        string           `db:"reference" json:"reference"`                 // Caller-generated idempotency token, unique
	KorapayReference *string          `db:"korapay_reference" json:"korapay_reference"` // Gateway correlation id, unique, set at session creation
	UserID           uuid.UUID        `db:"user_id" json:"user_id"`
	ProjectID        *uuid.UUID       `db:"project_id" json:"project_id"` // Nil for general (non-project-scoped) investments
	Amount           decimal.Decimal  `db:"amount" json:"amount"`         // NUMERIC(20, 4) in DB
	Currency         string           `db:"currency" json:"currency"`
	Status           InvestmentStatus `db:"status" json:"status"`
	Notes            *string          `db:"notes" json:"notes"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// NewInvestment creates a pending Investment carrying the gateway's
// correlation id.
func NewInvestment(userID uuid.UUID, projectID *uuid.UUID, amount decimal.Decimal, currency, reference, korapayReference string) *Investment {
	now := time.Now().UTC()
	return &Investment{
		Reference:        reference,
		KorapayReference: &korapayReference,
		UserID:           userID,
		ProjectID:        projectID,
		Amount:           amount,
		Currency:         currency,
		Status:           InvestmentStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// NewReference generates a caller-side idempotency token for one checkout
// attempt. The millisecond timestamp plus a user-id fragment makes collisions
// negligible, not impossible; the unique constraint on the reference column
// is the authority.
func NewReference(userID uuid.UUID) string {
	return fmt.Sprintf("INV_%d_%s", time.Now().UnixMilli(), userID.String()[:8])
}
