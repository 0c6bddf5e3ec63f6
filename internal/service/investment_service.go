// internal/service/investment_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"investpay/internal/domain"
	"investpay/internal/gateway/korapay"
	"investpay/internal/repository"
	"investpay/internal/util"
	"investpay/pkg/db"
)

// CheckoutGateway is the slice of the Korapay client the service depends on.
type CheckoutGateway interface {
	InitializeCharge(ctx context.Context, req korapay.ChargeRequest) (*korapay.CheckoutSession, error)
}

// CheckoutResult is what checkout initiation hands back to the caller.
type CheckoutResult struct {
	CheckoutURL string
	Reference   string
	Investment  *domain.Investment
}

// ReconcileOutcome classifies how one webhook delivery was disposed of. Every
// outcome is acknowledged to the gateway; only a non-nil error (a store
// failure before anything committed) may be surfaced as retryable.
type ReconcileOutcome string

const (
	OutcomeReconciled   ReconcileOutcome = "RECONCILED"     // pending -> active, totals incremented
	OutcomeMarkedFailed ReconcileOutcome = "MARKED_FAILED"  // pending -> failed
	OutcomeReplayed     ReconcileOutcome = "ALREADY_PROCESSED"
	OutcomeOrphaned     ReconcileOutcome = "ORPHAN_WEBHOOK" // no matching investment
	OutcomeIgnored      ReconcileOutcome = "IGNORED"        // unknown or inapplicable event type
)

// InvestmentService defines the interface for the payment-investment flow.
type InvestmentService interface {
	// InitiateCheckout creates a hosted checkout session at the gateway and
	// durably records a pending investment before returning.
	InitiateCheckout(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, currency string, projectID *uuid.UUID, origin string) (*CheckoutResult, error)
	// ReconcileCharge applies one verified webhook event to the matching
	// investment and, on first success, to the owner's aggregate totals.
	ReconcileCharge(ctx context.Context, eventType string, data korapay.ChargeData, rawData []byte) (ReconcileOutcome, error)
	GetInvestments(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Investment, int64, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
}

// investmentService implements the InvestmentService interface.
type investmentService struct {
	dbBeginner     db.DBTxBeginner       // For starting transactions (e.g. *sqlx.DB)
	dbExecutor     repository.DBExecutor // For non-transactional reads/writes (e.g. *sqlx.DB)
	investmentRepo repository.InvestmentRepository
	profileRepo    repository.ProfileRepository
	eventRepo      repository.PaymentEventRepository
	gateway        CheckoutGateway
	beginTx        db.BeginTxFunc
	commitTx       db.CommitTxFunc
	rollbackTx     db.RollbackTxFunc
	logger         *slog.Logger
}

// NewInvestmentService creates a new instance of InvestmentService.
func NewInvestmentService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	investmentRepo repository.InvestmentRepository,
	profileRepo repository.ProfileRepository,
	eventRepo repository.PaymentEventRepository,
	gateway CheckoutGateway,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	logger *slog.Logger,
) InvestmentService {
	return &investmentService{
		dbBeginner:     dbBeginner,
		dbExecutor:     dbExecutor,
		investmentRepo: investmentRepo,
		profileRepo:    profileRepo,
		eventRepo:      eventRepo,
		gateway:        gateway,
		beginTx:        beginTx,
		commitTx:       commitTx,
		rollbackTx:     rollbackTx,
		logger:         logger,
	}
}

// InitiateCheckout validates the request, asks the gateway for a hosted
// checkout session, and only then inserts the pending investment row. A
// gateway failure therefore leaves the store untouched. An insert failure
// after gateway success is an accepted inconsistency: the later webhook will
// miss its lookup and be dropped as an orphan.
func (s *investmentService) InitiateCheckout(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, currency string, projectID *uuid.UUID, origin string) (*CheckoutResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidAmount
	}
	if currency == "" {
		currency = "NGN"
	}

	profile, err := s.profileRepo.GetByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("initiate checkout: failed to load profile for user %s: %w", userID, err)
	}

	reference := domain.NewReference(userID)

	chargeReq := korapay.ChargeRequest{
		Amount:    amount,
		Currency:  currency,
		Reference: reference,
		Narration: fmt.Sprintf("Investment of %s %s", amount.String(), currency),
		Customer: korapay.Customer{
			Name:  profile.DisplayName(),
			Email: profile.Email,
		},
		RedirectURL: origin + "/dashboard?investment=success",
	}
	if projectID != nil {
		chargeReq.ProjectID = projectID.String()
	}

	session, err := s.gateway.InitializeCharge(ctx, chargeReq)
	if err != nil {
		return nil, fmt.Errorf("initiate checkout: %w", err)
	}

	investment := domain.NewInvestment(userID, projectID, amount, currency, reference, session.KorapayReference)
	if err := s.investmentRepo.Create(ctx, s.dbExecutor, investment); err != nil {
		// The gateway session exists but we have no row for it. There is no
		// compensating call; the webhook for this charge will be an orphan.
		s.logger.Error("Failed to record pending investment after gateway session creation",
			"reference", reference, "korapay_reference", session.KorapayReference, "error", err)
		return nil, fmt.Errorf("initiate checkout: failed to record pending investment: %w", err)
	}

	s.logger.Info("Checkout session created",
		"reference", reference, "korapay_reference", session.KorapayReference,
		"user_id", userID, "amount", amount, "currency", currency)

	return &CheckoutResult{
		CheckoutURL: session.CheckoutURL,
		Reference:   reference,
		Investment:  investment,
	}, nil
}

// ReconcileCharge runs the per-investment state machine:
//
//	pending --(charge.success, first delivery)--> active
//	active  --(any further charge.success)-----> active (no-op)
//	pending --(charge.failed)------------------> failed
//
// The status flip is a compare-and-swap guarded on the current status, so of
// any number of concurrent deliveries for one reference exactly one proceeds
// to the totals increment. The flip and the audit record commit in one DB
// transaction; the totals increment runs after commit and is never rolled
// back, because the gateway has genuinely captured the charge.
func (s *investmentService) ReconcileCharge(ctx context.Context, eventType string, data korapay.ChargeData, rawData []byte) (ReconcileOutcome, error) {
	switch eventType {
	case korapay.EventChargeSuccess:
		return s.reconcileSuccess(ctx, eventType, data, rawData)
	case korapay.EventChargeFailed:
		return s.reconcileFailure(ctx, eventType, data, rawData)
	default:
		s.logger.Info("Ignoring unhandled webhook event type", "event", eventType, "reference", data.Reference)
		return OutcomeIgnored, nil
	}
}

func (s *investmentService) reconcileSuccess(ctx context.Context, eventType string, data korapay.ChargeData, rawData []byte) (ReconcileOutcome, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return "", fmt.Errorf("reconcile: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return "", fmt.Errorf("reconcile: transaction controller does not implement DBExecutor")
	}

	flipped, err := s.investmentRepo.MarkStatus(ctx, txExecutor, data.Reference, domain.InvestmentStatusPending, domain.InvestmentStatusActive)
	if err != nil {
		// Nothing committed yet; the handler may answer non-2xx so the
		// gateway retries.
		return "", fmt.Errorf("reconcile: failed to activate investment: %w", err)
	}

	if !flipped {
		return s.classifyMissedFlip(ctx, data.Reference)
	}

	investment, err := s.investmentRepo.GetByKorapayReference(ctx, txExecutor, data.Reference)
	if err != nil {
		return "", fmt.Errorf("reconcile: failed to load activated investment %s: %w", data.Reference, err)
	}

	event := domain.NewPaymentEvent(eventType, data.Reference, data.Amount, rawData, domain.PaymentEventOutcomeReconciled)
	if err := s.eventRepo.Create(ctx, txExecutor, event); err != nil {
		return "", fmt.Errorf("reconcile: failed to record payment event: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return "", fmt.Errorf("reconcile: failed to commit transaction: %w", err)
	}

	// The status flip is the durability anchor. From here on, failures are
	// logged for manual reconciliation rather than undone: the gateway must
	// not be told to retry a charge that was captured.
	if err := s.profileRepo.IncrementTotalInvested(ctx, s.dbExecutor, investment.UserID, investment.Amount); err != nil {
		s.logger.Error("Investment activated but totals increment failed; needs manual reconciliation",
			"korapay_reference", data.Reference, "user_id", investment.UserID,
			"amount", investment.Amount, "error", err)
		return OutcomeReconciled, nil
	}

	s.logger.Info("Investment reconciled",
		"korapay_reference", data.Reference, "user_id", investment.UserID, "amount", investment.Amount)
	return OutcomeReconciled, nil
}

func (s *investmentService) reconcileFailure(ctx context.Context, eventType string, data korapay.ChargeData, rawData []byte) (ReconcileOutcome, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return "", fmt.Errorf("reconcile: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return "", fmt.Errorf("reconcile: transaction controller does not implement DBExecutor")
	}

	flipped, err := s.investmentRepo.MarkStatus(ctx, txExecutor, data.Reference, domain.InvestmentStatusPending, domain.InvestmentStatusFailed)
	if err != nil {
		return "", fmt.Errorf("reconcile: failed to mark investment failed: %w", err)
	}

	if !flipped {
		return s.classifyMissedFlip(ctx, data.Reference)
	}

	event := domain.NewPaymentEvent(eventType, data.Reference, data.Amount, rawData, domain.PaymentEventOutcomeMarkedFailed)
	if err := s.eventRepo.Create(ctx, txExecutor, event); err != nil {
		return "", fmt.Errorf("reconcile: failed to record payment event: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return "", fmt.Errorf("reconcile: failed to commit transaction: %w", err)
	}

	s.logger.Info("Investment marked failed", "korapay_reference", data.Reference)
	return OutcomeMarkedFailed, nil
}

// classifyMissedFlip explains a compare-and-swap that affected no rows: either
// no investment matches the reference (orphan) or one exists in a terminal
// status already (replay). Both are acknowledged to the gateway; retrying
// fixes neither.
func (s *investmentService) classifyMissedFlip(ctx context.Context, korapayReference string) (ReconcileOutcome, error) {
	investment, err := s.investmentRepo.GetByKorapayReference(ctx, s.dbExecutor, korapayReference)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			s.logger.Warn("Webhook references unknown investment; dropping", "korapay_reference", korapayReference)
			return OutcomeOrphaned, nil
		}
		return "", fmt.Errorf("reconcile: failed to classify missed status flip for %s: %w", korapayReference, err)
	}

	if investment.Status == domain.InvestmentStatusActive {
		s.logger.Info("Webhook replay for already-active investment; no-op", "korapay_reference", korapayReference)
		return OutcomeReplayed, nil
	}

	s.logger.Warn("Webhook does not apply to investment in current status; dropping",
		"korapay_reference", korapayReference, "status", investment.Status)
	return OutcomeIgnored, nil
}

// GetInvestments retrieves a page of the user's investments, newest first.
// The dashboard polls this after the gateway redirect to observe
// reconciliation.
func (s *investmentService) GetInvestments(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Investment, int64, error) {
	investments, totalCount, err := s.investmentRepo.ListByUserID(ctx, s.dbExecutor, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve investments: %w", err)
	}
	return investments, totalCount, nil
}

// GetProfile retrieves the user's aggregate totals.
func (s *investmentService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve profile for user %s: %w", userID, err)
	}
	return profile, nil
}
