// internal/repository/payment_event_repo.go
package repository

import (
	"context"

	"investpay/internal/domain"
)

// PaymentEventRepository defines the interface for webhook audit records.
type PaymentEventRepository interface {
	// Create inserts an audit record using the provided DBExecutor.
	Create(ctx context.Context, q DBExecutor, event *domain.PaymentEvent) error
}
