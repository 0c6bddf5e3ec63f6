// internal/service/investment_service_test.go
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"investpay/internal/domain"
	"investpay/internal/gateway/korapay"
	"investpay/internal/repository"
	"investpay/internal/util"
	"investpay/pkg/db"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockInvestmentRepository is a mock implementation of repository.InvestmentRepository.
type MockInvestmentRepository struct {
	mock.Mock
}

func (m *MockInvestmentRepository) Create(ctx context.Context, q repository.DBExecutor, investment *domain.Investment) error {
	args := m.Called(ctx, q, investment)
	return args.Error(0)
}

func (m *MockInvestmentRepository) GetByReference(ctx context.Context, q repository.DBExecutor, reference string) (*domain.Investment, error) {
	args := m.Called(ctx, q, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) GetByKorapayReference(ctx context.Context, q repository.DBExecutor, korapayReference string) (*domain.Investment, error) {
	args := m.Called(ctx, q, korapayReference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) ListByUserID(ctx context.Context, q repository.DBExecutor, userID uuid.UUID, limit, offset int) ([]domain.Investment, int64, error) {
	args := m.Called(ctx, q, userID, limit, offset)
	return args.Get(0).([]domain.Investment), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvestmentRepository) MarkStatus(ctx context.Context, q repository.DBExecutor, korapayReference string, from, to domain.InvestmentStatus) (bool, error) {
	args := m.Called(ctx, q, korapayReference, from, to)
	return args.Bool(0), args.Error(1)
}

// MockProfileRepository is a mock implementation of repository.ProfileRepository.
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, q repository.DBExecutor, userID uuid.UUID) (*domain.Profile, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepository) IncrementTotalInvested(ctx context.Context, q repository.DBExecutor, userID uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, q, userID, amount)
	return args.Error(0)
}

// MockPaymentEventRepository is a mock implementation of repository.PaymentEventRepository.
type MockPaymentEventRepository struct {
	mock.Mock
}

func (m *MockPaymentEventRepository) Create(ctx context.Context, q repository.DBExecutor, event *domain.PaymentEvent) error {
	args := m.Called(ctx, q, event)
	return args.Error(0)
}

// MockCheckoutGateway is a mock implementation of CheckoutGateway.
type MockCheckoutGateway struct {
	mock.Mock
}

func (m *MockCheckoutGateway) InitializeCharge(ctx context.Context, req korapay.ChargeRequest) (*korapay.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*korapay.CheckoutSession), args.Error(1)
}

// MockDBBeginner is a mock implementation of db.DBTxBeginner.
type MockDBBeginner struct {
	mock.Mock
}

func (m *MockDBBeginner) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	args := m.Called(ctx, opts)
	return &sqlx.Tx{}, args.Error(1)
}

// MockTxController is a mock implementation of db.TxController. Embedding
// MockDBExecutor lets it stand in for the transactional executor too.
type MockTxController struct {
	mock.Mock
	MockDBExecutor
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

type serviceMocks struct {
	investmentRepo *MockInvestmentRepository
	profileRepo    *MockProfileRepository
	eventRepo      *MockPaymentEventRepository
	gateway        *MockCheckoutGateway
	dbBeginner     *MockDBBeginner
	dbExecutor     *MockDBExecutor
	txController   *MockTxController
}

func newServiceUnderTest() (InvestmentService, *serviceMocks) {
	m := &serviceMocks{
		investmentRepo: new(MockInvestmentRepository),
		profileRepo:    new(MockProfileRepository),
		eventRepo:      new(MockPaymentEventRepository),
		gateway:        new(MockCheckoutGateway),
		dbBeginner:     new(MockDBBeginner),
		dbExecutor:     new(MockDBExecutor),
		txController:   new(MockTxController),
	}

	svc := NewInvestmentService(
		m.dbBeginner,
		m.dbExecutor,
		m.investmentRepo,
		m.profileRepo,
		m.eventRepo,
		m.gateway,
		func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
			return m.txController, nil
		},
		func(tx db.TxController) error {
			return m.txController.Commit()
		},
		func(tx db.TxController) {
			_ = m.txController.Rollback()
		},
		slog.Default(),
	)
	return svc, m
}

func (m *serviceMocks) assertAll(t *testing.T) {
	mock.AssertExpectationsForObjects(t, m.investmentRepo, m.profileRepo, m.eventRepo, m.gateway, m.dbBeginner, m.txController)
}

func TestInitiateCheckout(t *testing.T) {
	userID := uuid.MustParse("3f1c9a52-7d2e-4b41-9a93-0d51f0a2b6c4")
	amount := decimal.NewFromInt(15000000)
	currency := "NGN"
	email := "investor@example.com"

	profile := &domain.Profile{UserID: userID, Email: email, TotalInvested: decimal.Zero}

	t.Run("SuccessfulCheckout", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newServiceUnderTest()

		m.profileRepo.On("GetByUserID", ctx, mock.Anything, userID).Return(profile, nil).Once()
		m.gateway.On("InitializeCharge", ctx, mock.MatchedBy(func(req korapay.ChargeRequest) bool {
			return req.Amount.Equal(amount) && req.Currency == currency && req.Customer.Email == email
		})).Return(&korapay.CheckoutSession{
			CheckoutURL:      "https://checkout.korapay.com/pay/abc123",
			KorapayReference: "KPY-REF-001",
		}, nil).Once()
		m.investmentRepo.On("Create", ctx, mock.Anything, mock.AnythingOfType("*domain.Investment")).Return(nil).Once()

		result, err := svc.InitiateCheckout(ctx, userID, amount, currency, nil, "https://app.example.com")

		assert.NoError(t, err)
		assert.Equal(t, "https://checkout.korapay.com/pay/abc123", result.CheckoutURL)
		assert.Contains(t, result.Reference, "INV_")
		assert.Contains(t, result.Reference, userID.String()[:8])
		assert.Equal(t, domain.InvestmentStatusPending, result.Investment.Status)
		assert.Equal(t, "KPY-REF-001", *result.Investment.KorapayReference)
		m.assertAll(t)
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newServiceUnderTest()

		result, err := svc.InitiateCheckout(ctx, userID, decimal.Zero, currency, nil, "")

		assert.ErrorIs(t, err, util.ErrInvalidAmount)
		assert.Nil(t, result)
		m.gateway.AssertNotCalled(t, "InitializeCharge", mock.Anything, mock.Anything)
		m.investmentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("GatewayFailureWritesNothing", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newServiceUnderTest()

		m.profileRepo.On("GetByUserID", ctx, mock.Anything, userID).Return(profile, nil).Once()
		m.gateway.On("InitializeCharge", ctx, mock.Anything).Return(nil, util.ErrGateway).Once()

		result, err := svc.InitiateCheckout(ctx, userID, decimal.NewFromInt(5000), currency, nil, "")

		assert.ErrorIs(t, err, util.ErrGateway)
		assert.Nil(t, result)
		m.investmentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		m.assertAll(t)
	})

	t.Run("InsertFailureAfterGatewaySuccess", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newServiceUnderTest()

		m.profileRepo.On("GetByUserID", ctx, mock.Anything, userID).Return(profile, nil).Once()
		m.gateway.On("InitializeCharge", ctx, mock.Anything).Return(&korapay.CheckoutSession{
			CheckoutURL:      "https://checkout.korapay.com/pay/xyz",
			KorapayReference: "KPY-REF-002",
		}, nil).Once()
		m.investmentRepo.On("Create", ctx, mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()

		result, err := svc.InitiateCheckout(ctx, userID, decimal.NewFromInt(5000), currency, nil, "")

		assert.Error(t, err)
		assert.Nil(t, result)
		m.assertAll(t)
	})

	t.Run("ProjectScopedCheckoutCarriesProjectID", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newServiceUnderTest()
		projectID := uuid.MustParse("9b6d1a0e-2c48-4aa5-8760-12e8c5f1d9aa")

		m.profileRepo.On("GetByUserID", ctx, mock.Anything, userID).Return(profile, nil).Once()
		m.gateway.On("InitializeCharge", ctx, mock.MatchedBy(func(req korapay.ChargeRequest) bool {
			return req.ProjectID == projectID.String()
		})).Return(&korapay.CheckoutSession{
			CheckoutURL:      "https://checkout.korapay.com/pay/prj",
			KorapayReference: "KPY-REF-003",
		}, nil).Once()
		m.investmentRepo.On("Create", ctx, mock.Anything, mock.MatchedBy(func(inv *domain.Investment) bool {
			return inv.ProjectID != nil && *inv.ProjectID == projectID
		})).Return(nil).Once()

		result, err := svc.InitiateCheckout(ctx, userID, decimal.NewFromInt(250000), currency, &projectID, "")

		assert.NoError(t, err)
		assert.NotNil(t, result)
		m.assertAll(t)
	})
}

func TestReconcileCharge(t *testing.T) {
	userID := uuid.MustParse("3f1c9a52-7d2e-4b41-9a93-0d51f0a2b6c4")
	korapayRef := "KPY-REF-001"
	amount := decimal.NewFromInt(15000000)
	rawData := []byte(`{"reference":"KPY-REF-001","amount":15000000}`)
	chargeData := korapay.ChargeData{Reference: korapayRef, Amount: amount}

	activatedInvestment := &domain.Investment{
		ID:        1,
		UserID:    userID,
		Amount:    amount,
		Currency:  "NGN",
		Status:    domain.InvestmentStatusActive,
		Reference: "INV_1_3f1c9a52",
	}

	t.Run("FirstSuccessActivatesAndIncrementsOnce", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newServiceUnderTest()

		m.investmentRepo.On("MarkStatus", ctx, mock.Anything, korapayRef,
			domain.InvestmentStatusPending, domain.InvestmentStatusActive).Return(true, nil).Once()
		m.investmentRepo.On("GetByKorapayReference", ctx, mock.Anything, korapayRef).Return(activatedInvestment, nil).Once()
		m.eventRepo.On("Create", ctx, mock.Anything, mock.MatchedBy(func(e *domain.PaymentEvent) bool {
			return e.EventType == korapay.EventChargeSuccess && e.Outcome == domain.PaymentEventOutcomeReconciled
		})).Return(nil).Once()
		m.txController.On("Commit").Return(nil).Once()
		m.txController.On("Rollback").Return(nil).Maybe()
		m.profileRepo.On("IncrementTotalInvested", ctx, mock.Anything, userID, amount).Return(nil).Once()

		outcome, err := svc.ReconcileCharge(ctx, korapay.EventChargeSuccess, chargeData, rawData)

		assert.NoError(t, err)
		assert.Equal(t, OutcomeReconciled, outcome)
		m.profileRepo.AssertNumberOfCalls(t, "IncrementTotalInvested", 1)
		m.assertAll(t)
	})

	t.Run("ReplayIsIdempotentNoOp", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newServiceUnderTest()

		// The CAS misses because the row is already active; totals must not move.
		m.investmentRepo.On("MarkStatus", ctx, mock.Anything, korapayRef,
			domain.InvestmentStatusPending, domain.InvestmentStatusActive).Return(false, nil).Once()
		m.investmentRepo.On("GetByKorapayReference", ctx, mock.Anything, korapayRef).Return(activatedInvestment, nil).Once()
		m.txController.On("Rollback").Return(nil).Maybe()

		outcome, err := svc.ReconcileCharge(ctx, korapay.EventChargeSuccess, chargeData, rawData)

		assert.NoError(t, err)
		assert.Equal(t, OutcomeReplayed, outcome)
		m.profileRepo.AssertNotCalled(t, "IncrementTotalInvested", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.eventRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		m.txController.AssertNotCalled(t, "Commit")
	})

	t.Run("OrphanWebhookIsAcknowledgedWithoutWrites", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newServiceUnderTest()

		m.investmentRepo.On("MarkStatus", ctx, mock.Anything, "KPY-UNKNOWN",
			domain.InvestmentStatusPending, domain.InvestmentStatusActive).Return(false, nil).Once()
		m.investmentRepo.On("GetByKorapayReference", ctx, mock.Anything, "KPY-UNKNOWN").Return(nil, util.ErrNotFound).Once()
		m.txController.On("Rollback").Return(nil).Maybe()

		outcome, err := svc.ReconcileCharge(ctx, korapay.EventChargeSuccess,
			korapay.ChargeData{Reference: "KPY-UNKNOWN", Amount: amount}, rawData)

		assert.NoError(t, err)
		assert.Equal(t, OutcomeOrphaned, outcome)
		m.profileRepo.AssertNotCalled(t, "IncrementTotalInvested", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.txController.AssertNotCalled(t, "Commit")
	})

	t.Run("UnknownEventTypeIsIgnored", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newServiceUnderTest()

		outcome, err := svc.ReconcileCharge(ctx, "transfer.success", chargeData, rawData)

		assert.NoError(t, err)
		assert.Equal(t, OutcomeIgnored, outcome)
		m.investmentRepo.AssertNotCalled(t, "MarkStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ChargeFailedMarksFailedWithoutTotals", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newServiceUnderTest()

		m.investmentRepo.On("MarkStatus", ctx, mock.Anything, korapayRef,
			domain.InvestmentStatusPending, domain.InvestmentStatusFailed).Return(true, nil).Once()
		m.eventRepo.On("Create", ctx, mock.Anything, mock.MatchedBy(func(e *domain.PaymentEvent) bool {
			return e.Outcome == domain.PaymentEventOutcomeMarkedFailed
		})).Return(nil).Once()
		m.txController.On("Commit").Return(nil).Once()
		m.txController.On("Rollback").Return(nil).Maybe()

		outcome, err := svc.ReconcileCharge(ctx, korapay.EventChargeFailed, chargeData, rawData)

		assert.NoError(t, err)
		assert.Equal(t, OutcomeMarkedFailed, outcome)
		m.profileRepo.AssertNotCalled(t, "IncrementTotalInvested", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.assertAll(t)
	})

	t.Run("TotalsFailureDoesNotRollBackActivation", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newServiceUnderTest()

		m.investmentRepo.On("MarkStatus", ctx, mock.Anything, korapayRef,
			domain.InvestmentStatusPending, domain.InvestmentStatusActive).Return(true, nil).Once()
		m.investmentRepo.On("GetByKorapayReference", ctx, mock.Anything, korapayRef).Return(activatedInvestment, nil).Once()
		m.eventRepo.On("Create", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		m.txController.On("Commit").Return(nil).Once()
		m.txController.On("Rollback").Return(nil).Maybe()
		m.profileRepo.On("IncrementTotalInvested", ctx, mock.Anything, userID, amount).Return(util.ErrProfileNotFound).Once()

		outcome, err := svc.ReconcileCharge(ctx, korapay.EventChargeSuccess, chargeData, rawData)

		// The charge was captured; the gap is logged, not surfaced as retryable.
		assert.NoError(t, err)
		assert.Equal(t, OutcomeReconciled, outcome)
		m.assertAll(t)
	})

	t.Run("PreCommitStoreFailureIsRetryable", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newServiceUnderTest()

		m.investmentRepo.On("MarkStatus", ctx, mock.Anything, korapayRef,
			domain.InvestmentStatusPending, domain.InvestmentStatusActive).Return(false, errors.New("connection reset")).Once()
		m.txController.On("Rollback").Return(nil).Maybe()

		outcome, err := svc.ReconcileCharge(ctx, korapay.EventChargeSuccess, chargeData, rawData)

		assert.Error(t, err)
		assert.Empty(t, outcome)
		m.profileRepo.AssertNotCalled(t, "IncrementTotalInvested", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.txController.AssertNotCalled(t, "Commit")
	})
}

func TestGetInvestments(t *testing.T) {
	userID := uuid.MustParse("3f1c9a52-7d2e-4b41-9a93-0d51f0a2b6c4")

	t.Run("ReturnsPageAndTotal", func(t *testing.T) {
		ctx := context.Background()
		svc, m := newServiceUnderTest()

		page := []domain.Investment{{ID: 2, UserID: userID, Status: domain.InvestmentStatusActive}}
		m.investmentRepo.On("ListByUserID", ctx, mock.Anything, userID, 10, 0).Return(page, int64(7), nil).Once()

		investments, total, err := svc.GetInvestments(ctx, userID, 10, 0)

		assert.NoError(t, err)
		assert.Len(t, investments, 1)
		assert.Equal(t, int64(7), total)
		m.assertAll(t)
	})
}
