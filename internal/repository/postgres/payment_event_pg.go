// internal/repository/postgres/payment_event_pg.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"investpay/internal/domain"
	"investpay/internal/repository"
)

// PaymentEventRepository implements repository.PaymentEventRepository for PostgreSQL.
type PaymentEventRepository struct {
}

// NewPaymentEventRepository creates a new PaymentEventRepository.
func NewPaymentEventRepository(db *sqlx.DB) repository.PaymentEventRepository {
	return &PaymentEventRepository{}
}

// Create inserts a webhook audit record using the provided DBExecutor.
func (r *PaymentEventRepository) Create(ctx context.Context, q repository.DBExecutor, event *domain.PaymentEvent) error {
	query := `INSERT INTO payment_events (id, event_type, korapay_reference, amount, payload, outcome, received_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := q.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		event.KorapayReference,
		event.Amount,
		event.Payload,
		event.Outcome,
		event.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment event: %w", err)
	}
	return nil
}
