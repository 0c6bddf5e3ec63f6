// internal/repository/postgres/investment_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"investpay/internal/domain"
	"investpay/internal/repository"
	"investpay/internal/util"
)

// InvestmentRepository implements repository.InvestmentRepository for PostgreSQL.
type InvestmentRepository struct {
	// Methods receive a DBExecutor directly, so no *sqlx.DB is held here.
}

// NewInvestmentRepository creates a new InvestmentRepository.
func NewInvestmentRepository(db *sqlx.DB) repository.InvestmentRepository {
	return &InvestmentRepository{}
}

// Create inserts a new investment record using the provided DBExecutor.
func (r *InvestmentRepository) Create(ctx context.Context, q repository.DBExecutor, investment *domain.Investment) error {
	query := `INSERT INTO investments (reference, korapay_reference, user_id, project_id, amount, currency, status, notes, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		investment.Reference,
		investment.KorapayReference,
		investment.UserID,
		investment.ProjectID,
		investment.Amount,
		investment.Currency,
		investment.Status,
		investment.Notes,
		investment.CreatedAt,
		investment.UpdatedAt,
	).Scan(&investment.ID)
	if err != nil {
		return fmt.Errorf("failed to create investment: %w", err)
	}
	return nil
}

// GetByReference retrieves an investment by its caller-side reference.
func (r *InvestmentRepository) GetByReference(ctx context.Context, q repository.DBExecutor, reference string) (*domain.Investment, error) {
	var investment domain.Investment
	query := `SELECT id, reference, korapay_reference, user_id, project_id, amount, currency, status, notes, created_at, updated_at
              FROM investments WHERE reference = $1`
	err := q.GetContext(ctx, &investment, query, reference)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get investment by reference %s: %w", reference, err)
	}
	return &investment, nil
}

// GetByKorapayReference retrieves an investment by the gateway correlation id.
func (r *InvestmentRepository) GetByKorapayReference(ctx context.Context, q repository.DBExecutor, korapayReference string) (*domain.Investment, error) {
	var investment domain.Investment
	query := `SELECT id, reference, korapay_reference, user_id, project_id, amount, currency, status, notes, created_at, updated_at
              FROM investments WHERE korapay_reference = $1`
	err := q.GetContext(ctx, &investment, query, korapayReference)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get investment by korapay reference %s: %w", korapayReference, err)
	}
	return &investment, nil
}

// ListByUserID retrieves a paginated list of a user's investments.
// It performs two queries: one for the data and one for the total count.
func (r *InvestmentRepository) ListByUserID(ctx context.Context, q repository.DBExecutor, userID uuid.UUID, limit, offset int) ([]domain.Investment, int64, error) {
	investments := []domain.Investment{}

	query := `
		SELECT id, reference, korapay_reference, user_id, project_id, amount, currency, status, notes, created_at, updated_at
		FROM investments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	err := q.SelectContext(ctx, &investments, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch investments for user %s: %w", userID, err)
	}

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM investments WHERE user_id = $1`
	err = q.GetContext(ctx, &totalCount, countQuery, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get total investment count for user %s: %w", userID, err)
	}

	return investments, totalCount, nil
}

// MarkStatus performs the compare-and-swap status transition. The WHERE clause
// guards on the expected current status, so of any number of concurrent calls
// for the same reference exactly one observes rowsAffected == 1.
func (r *InvestmentRepository) MarkStatus(ctx context.Context, q repository.DBExecutor, korapayReference string, from, to domain.InvestmentStatus) (bool, error) {
	query := `UPDATE investments SET status = $1, updated_at = $2 WHERE korapay_reference = $3 AND status = $4`
	result, err := q.ExecContext(ctx, query, to, time.Now().UTC(), korapayReference, from)
	if err != nil {
		return false, fmt.Errorf("failed to mark investment %s %s->%s: %w", korapayReference, from, to, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected marking investment %s: %w", korapayReference, err)
	}
	return rowsAffected == 1, nil
}
