// internal/repository/postgres/session_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"investpay/internal/repository"
	"investpay/internal/util"
)

// SessionRepository implements repository.SessionRepository for PostgreSQL.
type SessionRepository struct {
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &SessionRepository{}
}

// GetUserIDByTokenHash resolves a hashed bearer token to a user id.
func (r *SessionRepository) GetUserIDByTokenHash(ctx context.Context, q repository.DBExecutor, tokenHash string) (uuid.UUID, error) {
	var userID uuid.UUID
	query := `SELECT user_id FROM sessions WHERE token_hash = $1 AND expires_at > NOW()`
	err := q.GetContext(ctx, &userID, query, tokenHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return uuid.Nil, util.ErrUnauthenticated
		}
		return uuid.Nil, fmt.Errorf("failed to resolve session token: %w", err)
	}
	return userID, nil
}
