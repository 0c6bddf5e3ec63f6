// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input provided")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrUnauthenticated  = errors.New("caller is not authenticated")
	ErrUnauthorized     = errors.New("webhook signature is missing or invalid")
	ErrGateway          = errors.New("payment gateway error")
	ErrOrphanWebhook    = errors.New("no investment matches the webhook reference")
	ErrProfileNotFound  = errors.New("user profile not found")
	ErrAlreadyProcessed = errors.New("investment already reconciled")
)

// IsError reports whether err wraps target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
