// internal/repository/session_repo.go
package repository

import (
	"context"

	"github.com/google/uuid"
)

// SessionRepository resolves bearer tokens to user identities. Tokens are
// stored hashed; the middleware hashes the presented token before lookup.
type SessionRepository interface {
	GetUserIDByTokenHash(ctx context.Context, q DBExecutor, tokenHash string) (uuid.UUID, error)
}
