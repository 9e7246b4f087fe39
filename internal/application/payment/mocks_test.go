package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

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

// memoryIdempotencyStore is a test double backed by a map
type memoryIdempotencyStore struct {
	seen map[string]bool
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{seen: make(map[string]bool)}
}

func (s *memoryIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	if s.seen[eventID] {
		return false, nil
	}
	s.seen[eventID] = true
	return true, nil
}

func (s *memoryIdempotencyStore) Unmark(ctx context.Context, eventID string) error {
	delete(s.seen, eventID)
	return nil
}

func (s *memoryIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	return s.seen[eventID], nil
}

func (s *memoryIdempotencyStore) Close() error {
	return nil
}
