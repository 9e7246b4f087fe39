package payment

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"

	domain "github.com/relove/backend/internal/domain/payment"
	"github.com/relove/backend/internal/infrastructure/config"
)

func newTestAdapter(t *testing.T) *StripeAdapter {
	adapter, err := NewStripeAdapter(config.PaymentConfig{
		StripeAPIKey:  "sk_test_123",
		WebhookSecret: "whsec_test",
		Currency:      "usd",
	}, zap.NewNop())
	require.NoError(t, err)
	return adapter
}

func TestNewStripeAdapter(t *testing.T) {
	t.Run("rejects missing api key", func(t *testing.T) {
		_, err := NewStripeAdapter(config.PaymentConfig{Currency: "usd"}, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("rejects missing currency", func(t *testing.T) {
		_, err := NewStripeAdapter(config.PaymentConfig{StripeAPIKey: "sk_test_123"}, zap.NewNop())
		assert.Error(t, err)
	})
}

func TestStripeAdapter_InputValidation(t *testing.T) {
	adapter := newTestAdapter(t)

	t.Run("create intent rejects empty order code", func(t *testing.T) {
		_, err := adapter.CreatePaymentIntent(context.Background(), "", decimal.NewFromInt(100))
		assert.ErrorIs(t, err, domain.ErrInvalidOrderCode)
	})

	t.Run("create intent rejects non-positive amount", func(t *testing.T) {
		_, err := adapter.CreatePaymentIntent(context.Background(), "RLV-1", decimal.Zero)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("verify rejects empty intent ref", func(t *testing.T) {
		_, err := adapter.VerifyPayment(context.Background(), "")
		assert.ErrorIs(t, err, domain.ErrInvalidIntentRef)
	})

	t.Run("refund rejects empty txn ref", func(t *testing.T) {
		_, err := adapter.Refund(context.Background(), "", decimal.NewFromInt(10), "buyer cancelled")
		assert.ErrorIs(t, err, domain.ErrInvalidIntentRef)
	})

	t.Run("payout rejects empty account", func(t *testing.T) {
		_, err := adapter.PayoutToSeller(context.Background(), "", decimal.NewFromInt(10))
		assert.Error(t, err)
		assert.False(t, domain.IsRetryable(err))
	})
}

func TestStripeAdapter_ParseWebhook(t *testing.T) {
	adapter := newTestAdapter(t)

	t.Run("rejects bad signature", func(t *testing.T) {
		event, err := adapter.ParseWebhook([]byte(`{"type":"payment_intent.succeeded"}`), "t=1,v1=bogus")
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
		assert.Nil(t, event)
	})

	t.Run("rejects empty signature", func(t *testing.T) {
		_, err := adapter.ParseWebhook([]byte(`{}`), "")
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	})
}

func TestStripeAdapter_ErrorClassification(t *testing.T) {
	adapter := newTestAdapter(t)

	t.Run("card errors are terminal", func(t *testing.T) {
		err := adapter.wrap("refund", &stripe.Error{Type: stripe.ErrorTypeCard})
		assert.False(t, domain.IsRetryable(err))
	})

	t.Run("api errors are retryable", func(t *testing.T) {
		err := adapter.wrap("refund", &stripe.Error{Type: stripe.ErrorTypeAPI})
		assert.True(t, domain.IsRetryable(err))
	})

	t.Run("rate limits are retryable", func(t *testing.T) {
		err := adapter.wrap("payout", &stripe.Error{HTTPStatusCode: 429})
		assert.True(t, domain.IsRetryable(err))
	})

	t.Run("transport failures are retryable", func(t *testing.T) {
		err := adapter.wrap("verify_payment", assert.AnError)
		assert.True(t, domain.IsRetryable(err))
	})
}

func TestMinorUnitConversion(t *testing.T) {
	assert.Equal(t, int64(12345), toMinorUnits(decimal.RequireFromString("123.45")))
	assert.Equal(t, int64(100), toMinorUnits(decimal.NewFromInt(1)))
	assert.True(t, decimal.RequireFromString("123.45").Equal(fromMinorUnits(12345)))
}
