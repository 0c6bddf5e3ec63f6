// internal/api/types/response.go
package types

// PaginatedResponse defines a generic structure for paginated API responses.
// T represents the type of data contained in the 'Data' slice.
type PaginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	TotalCount int64 `json:"total_count"`
}

// CheckoutResponse is the success payload of checkout initiation.
type CheckoutResponse struct {
	Success     bool   `json:"success"`
	CheckoutURL string `json:"checkout_url"`
	Reference   string `json:"reference"`
}

// ErrorResponse is the failure payload for checkout initiation and other
// caller-facing errors. Error carries a stable code, not prose.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
