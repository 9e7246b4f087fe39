package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/relove/backend/internal/domain/catalog"
	"github.com/relove/backend/internal/domain/escrow"
	"github.com/relove/backend/internal/domain/order"
	"github.com/relove/backend/internal/domain/payment"
	"github.com/relove/backend/internal/domain/shared"
)

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByCode(ctx context.Context, orderCode string) (*order.Order, error) {
	args := m.Called(ctx, orderCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) (*shared.Paginated[order.Order], error) {
	args := m.Called(ctx, buyerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[order.Order]), args.Error(1)
}

func (m *MockOrderRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) (*shared.Paginated[order.Order], error) {
	args := m.Called(ctx, sellerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[order.Order]), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) FindIDsPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockOrderRepository) FindIDsWithEscrowDue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockOrderRepository) FindIDsWithTransferFailed(ctx context.Context, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockStatusHistoryRepository is a mock implementation of order.StatusHistoryRepository
type MockStatusHistoryRepository struct {
	mock.Mock
}

func (m *MockStatusHistoryRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]order.StatusHistory, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.StatusHistory), args.Error(1)
}

func (m *MockStatusHistoryRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]order.StatusHistory, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.StatusHistory), args.Error(1)
}

// MockProductCatalog is a mock implementation of catalog.ProductCatalog
type MockProductCatalog struct {
	mock.Mock
}

func (m *MockProductCatalog) MarkSold(ctx context.Context, productID uuid.UUID) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockProductCatalog) MarkActive(ctx context.Context, productID uuid.UUID) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

// MockSellerDirectory is a mock implementation of catalog.SellerDirectory
type MockSellerDirectory struct {
	mock.Mock
}

func (m *MockSellerDirectory) FeeTier(ctx context.Context, sellerID uuid.UUID) (catalog.FeeTier, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).(catalog.FeeTier), args.Error(1)
}

func (m *MockSellerDirectory) PayoutAccount(ctx context.Context, sellerID uuid.UUID) (string, error) {
	args := m.Called(ctx, sellerID)
	return args.String(0), args.Error(1)
}

// MockGateway is a mock implementation of payment.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePaymentIntent(ctx context.Context, orderCode string, amount decimal.Decimal) (string, error) {
	args := m.Called(ctx, orderCode, amount)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) VerifyPayment(ctx context.Context, intentRef string) (bool, error) {
	args := m.Called(ctx, intentRef)
	return args.Bool(0), args.Error(1)
}

func (m *MockGateway) Refund(ctx context.Context, txnRef string, amount decimal.Decimal, reason string) (string, error) {
	args := m.Called(ctx, txnRef, amount, reason)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) PayoutToSeller(ctx context.Context, sellerAccountRef string, amount decimal.Decimal) (string, error) {
	args := m.Called(ctx, sellerAccountRef, amount)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) ParseWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.WebhookEvent), args.Error(1)
}

// MockReleaseRepository is a mock implementation of escrow.ReleaseRepository
type MockReleaseRepository struct {
	mock.Mock
}

func (m *MockReleaseRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]escrow.Release, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]escrow.Release), args.Error(1)
}
