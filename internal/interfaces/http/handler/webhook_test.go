package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	paymentapp "github.com/relove/backend/internal/application/payment"
	"github.com/relove/backend/internal/domain/order"
	"github.com/relove/backend/internal/domain/payment"
	"github.com/relove/backend/internal/domain/shared"
	"github.com/relove/backend/internal/infrastructure/cache"
)

type webhookFixture struct {
	engine  *gin.Engine
	orders  *MockOrderRepository
	gateway *MockGateway
}

func newWebhookFixture() *webhookFixture {
	gin.SetMode(gin.TestMode)

	orders := new(MockOrderRepository)
	gateway := new(MockGateway)
	svc := paymentapp.NewConfirmationService(
		orders,
		gateway,
		cache.NewInMemoryIdempotencyStore(),
		shared.IdempotencyConfig{TTL: time.Hour, Enabled: true},
		zap.NewNop(),
	)

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewWebhookHandler(svc, zap.NewNop()).RegisterRoutes(api)

	return &webhookFixture{engine: engine, orders: orders, gateway: gateway}
}

func (f *webhookFixture) post(t *testing.T, payload, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader([]byte(payload)))
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func pendingOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(uuid.New(), uuid.New(), "card")
	require.NoError(t, err)
	require.NoError(t, o.AddItem(uuid.New(), uuid.New(), "camera", decimal.RequireFromString("250.00"), decimal.NewFromInt(10)))
	return o
}

func TestWebhookHandler_PaidEvent(t *testing.T) {
	f := newWebhookFixture()
	o := pendingOrder(t)

	f.gateway.On("ParseWebhook", []byte(`{"ok":true}`), "sig").Return(&payment.WebhookEvent{
		OrderCode:     o.OrderCode,
		Status:        payment.EventStatusPaid,
		ProviderTxnID: "pi_hook",
		Amount:        o.TotalAmount,
		OccurredAt:    time.Now(),
	}, nil)
	f.orders.On("FindByCode", mock.Anything, o.OrderCode).Return(o, nil)
	f.orders.On("SaveWithLock", mock.Anything, o).Return(nil)

	rec := f.post(t, `{"ok":true}`, "sig")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "received")
	assert.Equal(t, order.OrderStatusProcessing, o.Status)
	f.orders.AssertExpectations(t)
}

func TestWebhookHandler_DuplicateDeliveryAcknowledged(t *testing.T) {
	f := newWebhookFixture()
	o := pendingOrder(t)

	f.gateway.On("ParseWebhook", mock.Anything, "sig").Return(&payment.WebhookEvent{
		OrderCode:     o.OrderCode,
		Status:        payment.EventStatusPaid,
		ProviderTxnID: "pi_dup",
		Amount:        o.TotalAmount,
	}, nil)
	f.orders.On("FindByCode", mock.Anything, o.OrderCode).Return(o, nil).Once()
	f.orders.On("SaveWithLock", mock.Anything, o).Return(nil).Once()

	first := f.post(t, `{}`, "sig")
	second := f.post(t, `{}`, "sig")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	f.orders.AssertNumberOfCalls(t, "SaveWithLock", 1)
}

func TestWebhookHandler_BadSignature(t *testing.T) {
	f := newWebhookFixture()

	f.gateway.On("ParseWebhook", mock.Anything, "bad").Return(nil, payment.ErrInvalidSignature)

	rec := f.post(t, `{}`, "bad")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "BAD_REQUEST")
}

func TestWebhookHandler_MissingSignatureHeader(t *testing.T) {
	f := newWebhookFixture()

	rec := f.post(t, `{}`, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.gateway.AssertNotCalled(t, "ParseWebhook", mock.Anything, mock.Anything)
}

func TestWebhookHandler_TransientFailureAsksForRedelivery(t *testing.T) {
	f := newWebhookFixture()
	o := pendingOrder(t)

	f.gateway.On("ParseWebhook", mock.Anything, "sig").Return(&payment.WebhookEvent{
		OrderCode:     o.OrderCode,
		Status:        payment.EventStatusPaid,
		ProviderTxnID: "pi_retry",
		Amount:        o.TotalAmount,
	}, nil)
	f.orders.On("FindByCode", mock.Anything, o.OrderCode).Return(o, nil)
	f.orders.On("SaveWithLock", mock.Anything, o).Return(shared.ErrConcurrencyConflict)

	rec := f.post(t, `{}`, "sig")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
