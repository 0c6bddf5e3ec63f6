// internal/api/middleware/idempotency.go
package middleware

import (
	"bytes"
	"database/sql"
	"log/slog"
	"net/http"

	"investpay/internal/repository"
)

// Idempotency caches the response to a request carrying an Idempotency-Key
// header and replays it verbatim on repeats. Requests without the header pass
// through untouched. The insert uses ON CONFLICT DO NOTHING, so the first
// writer wins when duplicates race.
func Idempotency(q repository.DBExecutor, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Idempotency-Key")
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			var status int
			var body []byte
			err := q.QueryRowContext(r.Context(),
				"SELECT response_status, response_body FROM idempotency_keys WHERE key_id = $1",
				key).Scan(&status, &body)
			if err == nil {
				logger.Info("Idempotency hit, returning cached response", "key", key)
				w.Header().Set("X-Idempotency-Hit", "true")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				_, _ = w.Write(body)
				return
			}
			if err != sql.ErrNoRows {
				logger.Error("Idempotency lookup failed; proceeding without cache", "error", err, "key", key)
			}

			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			_, insertErr := q.ExecContext(r.Context(),
				"INSERT INTO idempotency_keys (key_id, response_status, response_body) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING",
				key, rec.status, rec.body.Bytes())
			if insertErr != nil {
				logger.Error("Failed to save idempotency key", "error", insertErr, "key", key)
			}
		})
	}
}

// responseRecorder tees the response body so it can be cached after the
// handler runs.
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
