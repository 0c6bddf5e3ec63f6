// internal/repository/profile_repo.go
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"investpay/internal/domain"
)

// ProfileRepository defines the interface for user aggregate operations.
type ProfileRepository interface {
	// GetByUserID retrieves a user's profile using the provided DBExecutor.
	GetByUserID(ctx context.Context, q DBExecutor, userID uuid.UUID) (*domain.Profile, error)
	// IncrementTotalInvested atomically adds amount to the user's running
	// total. The addition happens at the storage layer, not read-modify-write,
	// so concurrent increments for the same user cannot lose updates.
	IncrementTotalInvested(ctx context.Context, q DBExecutor, userID uuid.UUID, amount decimal.Decimal) error
}
