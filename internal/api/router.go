// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"investpay/internal/api/handler"
	"investpay/internal/api/middleware"
	"investpay/internal/repository"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(
	investmentHandler *handler.InvestmentHandler,
	webhookHandler *handler.WebhookHandler,
	dbExecutor repository.DBExecutor,
	sessions repository.SessionRepository,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(handler.DefaultTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Gateway callbacks carry their own signature; no session auth here.
	r.Post("/webhooks/korapay", webhookHandler.HandleKorapay)

	// Authenticated API
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticator(dbExecutor, sessions, logger))

		r.Route("/investments", func(r chi.Router) {
			r.With(middleware.Idempotency(dbExecutor, logger)).Post("/checkout", investmentHandler.InitiateCheckout)
			r.Get("/", investmentHandler.GetInvestments)
		})
		r.Get("/profile", investmentHandler.GetProfile)
	})

	return r
}
