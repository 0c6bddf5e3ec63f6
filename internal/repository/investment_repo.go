// internal/repository/investment_repo.go
package repository

import (
	"context"

	"github.com/google/uuid"

	"investpay/internal/domain"
)

// InvestmentRepository defines the interface for investment data operations.
type InvestmentRepository interface {
	// Create inserts a new investment record using the provided DBExecutor.
	Create(ctx context.Context, q DBExecutor, investment *domain.Investment) error
	// GetByReference retrieves an investment by its caller-side reference.
	GetByReference(ctx context.Context, q DBExecutor, reference string) (*domain.Investment, error)
	// GetByKorapayReference retrieves an investment by the gateway correlation id.
	GetByKorapayReference(ctx context.Context, q DBExecutor, korapayReference string) (*domain.Investment, error)
	// ListByUserID retrieves a page of a user's investments plus the total count.
	ListByUserID(ctx context.Context, q DBExecutor, userID uuid.UUID, limit, offset int) ([]domain.Investment, int64, error)
	// MarkStatus performs a compare-and-swap status transition on the investment
	// identified by korapayReference. It returns true iff exactly one row moved
	// from the expected status to the new one. Two concurrent deliveries of the
	// same event cannot both observe true.
	MarkStatus(ctx context.Context, q DBExecutor, korapayReference string, from, to domain.InvestmentStatus) (bool, error)
}
