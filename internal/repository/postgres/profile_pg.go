// internal/repository/postgres/profile_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"investpay/internal/domain"
	"investpay/internal/repository"
	"investpay/internal/util"
)

// ProfileRepository implements repository.ProfileRepository for PostgreSQL.
type ProfileRepository struct {
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &ProfileRepository{}
}

// GetByUserID retrieves a user's profile using the provided DBExecutor.
func (r *ProfileRepository) GetByUserID(ctx context.Context, q repository.DBExecutor, userID uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	query := `SELECT user_id, email, full_name, total_invested, total_profit, created_at, updated_at FROM profiles WHERE user_id = $1`
	err := q.GetContext(ctx, &profile, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile for user %s: %w", userID, err)
	}
	return &profile, nil
}

// IncrementTotalInvested atomically adds amount to the user's running total.
// The addition is performed in SQL so concurrent increments serialize on the
// row instead of racing through application code.
func (r *ProfileRepository) IncrementTotalInvested(ctx context.Context, q repository.DBExecutor, userID uuid.UUID, amount decimal.Decimal) error {
	query := `UPDATE profiles SET total_invested = total_invested + $1, updated_at = $2 WHERE user_id = $3`
	result, err := q.ExecContext(ctx, query, amount, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to increment total_invested for user %s: %w", userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected incrementing totals for user %s: %w", userID, err)
	}
	if rowsAffected == 0 {
		return util.ErrProfileNotFound
	}
	return nil
}
