// internal/domain/profile.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// Profile holds a user's running investment aggregates. TotalInvested equals
// the sum of that user's active Investment amounts and is maintained
// incrementally by the reconciler, never recomputed.
type Profile struct {
	UserID        uuid.UUID       `db:"user_id" json:"user_id"`
	Email         string          `db:"email" json:"email"`
	FullName      *string         `db:"full_name" json:"full_name"`
	TotalInvested decimal.Decimal `db:"total_invested" json:"total_invested"` // NUMERIC(20, 4) in DB
	TotalProfit   decimal.Decimal `db:"total_profit" json:"total_profit"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// NewProfile creates a Profile with zeroed aggregates.
func NewProfile(userID uuid.UUID, email string) *Profile {
	now := time.Now().UTC()
	return &Profile{
		UserID:        userID,
		Email:         email,
		TotalInvested: decimal.Zero,
		TotalProfit:   decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// DisplayName returns the customer-facing name, falling back to the email
// when no full name is on file.
func (p *Profile) DisplayName() string {
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return p.Email
}
