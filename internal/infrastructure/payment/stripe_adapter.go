package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/refund"
	"github.com/stripe/stripe-go/v81/transfer"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"

	domain "github.com/relove/backend/internal/domain/payment"
	"github.com/relove/backend/internal/infrastructure/config"
)

// StripeAdapter implements the payment gateway port against Stripe. Escrow
// is modeled as a charge to the platform account with a separate transfer to
// the seller's connected account once the hold is released.
type StripeAdapter struct {
	webhookSecret string
	currency      string
	logger        *zap.Logger
}

// NewStripeAdapter creates a new Stripe adapter and sets the global API key
func NewStripeAdapter(cfg config.PaymentConfig, logger *zap.Logger) (*StripeAdapter, error) {
	if cfg.StripeAPIKey == "" {
		return nil, fmt.Errorf("stripe: api key is required")
	}
	if cfg.Currency == "" {
		return nil, fmt.Errorf("stripe: currency is required")
	}

	stripe.Key = cfg.StripeAPIKey

	return &StripeAdapter{
		webhookSecret: cfg.WebhookSecret,
		currency:      cfg.Currency,
		logger:        logger,
	}, nil
}

// CreatePaymentIntent registers a pending payment for an order
func (a *StripeAdapter) CreatePaymentIntent(ctx context.Context, orderCode string, amount decimal.Decimal) (string, error) {
	if orderCode == "" {
		return "", domain.ErrInvalidOrderCode
	}
	if !amount.IsPositive() {
		return "", domain.ErrInvalidAmount
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toMinorUnits(amount)),
		Currency: stripe.String(a.currency),
		Metadata: map[string]string{
			"order_code": orderCode,
		},
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		a.logger.Error("failed to create payment intent",
			zap.String("order_code", orderCode),
			zap.Error(err))
		return "", a.wrap("create_payment_intent", err)
	}

	a.logger.Info("created payment intent",
		zap.String("order_code", orderCode),
		zap.String("intent_ref", pi.ID))
	return pi.ID, nil
}

// VerifyPayment reports whether the intent has been captured at Stripe
func (a *StripeAdapter) VerifyPayment(ctx context.Context, intentRef string) (bool, error) {
	if intentRef == "" {
		return false, domain.ErrInvalidIntentRef
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(intentRef, params)
	if err != nil {
		a.logger.Error("failed to verify payment intent",
			zap.String("intent_ref", intentRef),
			zap.Error(err))
		return false, a.wrap("verify_payment", err)
	}

	return pi.Status == stripe.PaymentIntentStatusSucceeded, nil
}

// Refund reverses a captured payment and returns the Stripe refund ID
func (a *StripeAdapter) Refund(ctx context.Context, txnRef string, amount decimal.Decimal, reason string) (string, error) {
	if txnRef == "" {
		return "", domain.ErrInvalidIntentRef
	}
	if !amount.IsPositive() {
		return "", domain.ErrInvalidAmount
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(txnRef),
		Amount:        stripe.Int64(toMinorUnits(amount)),
	}
	if reason != "" {
		params.Metadata = map[string]string{"reason": reason}
	}
	params.Context = ctx

	re, err := refund.New(params)
	if err != nil {
		a.logger.Error("failed to refund payment",
			zap.String("txn_ref", txnRef),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return "", a.wrap("refund", err)
	}

	a.logger.Info("refunded payment",
		zap.String("txn_ref", txnRef),
		zap.String("refund_ref", re.ID),
		zap.String("amount", amount.String()))
	return re.ID, nil
}

// PayoutToSeller transfers released escrow funds to a connected account
func (a *StripeAdapter) PayoutToSeller(ctx context.Context, sellerAccountRef string, amount decimal.Decimal) (string, error) {
	if sellerAccountRef == "" {
		return "", domain.NewTerminalGatewayError("payout", errors.New("seller account ref is empty"))
	}
	if !amount.IsPositive() {
		return "", domain.ErrInvalidAmount
	}

	params := &stripe.TransferParams{
		Amount:      stripe.Int64(toMinorUnits(amount)),
		Currency:    stripe.String(a.currency),
		Destination: stripe.String(sellerAccountRef),
	}
	params.Context = ctx

	tr, err := transfer.New(params)
	if err != nil {
		a.logger.Error("failed to transfer to seller",
			zap.String("seller_account", sellerAccountRef),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return "", a.wrap("payout", err)
	}

	a.logger.Info("transferred to seller",
		zap.String("seller_account", sellerAccountRef),
		zap.String("payout_ref", tr.ID),
		zap.String("amount", amount.String()))
	return tr.ID, nil
}

// ParseWebhook verifies the Stripe signature and normalizes the event
func (a *StripeAdapter) ParseWebhook(payload []byte, signature string) (*domain.WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, a.webhookSecret)
	if err != nil {
		return nil, domain.ErrInvalidSignature
	}

	var status domain.EventStatus
	switch event.Type {
	case "payment_intent.succeeded":
		status = domain.EventStatusPaid
	case "payment_intent.payment_failed":
		status = domain.EventStatusFailed
	case "payment_intent.canceled":
		status = domain.EventStatusCancelled
	default:
		return nil, fmt.Errorf("%w: unhandled event type %s", domain.ErrInvalidPayload, event.Type)
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, domain.ErrInvalidPayload
	}

	orderCode := pi.Metadata["order_code"]
	if orderCode == "" {
		return nil, fmt.Errorf("%w: missing order_code metadata", domain.ErrInvalidPayload)
	}

	return &domain.WebhookEvent{
		OrderCode:     orderCode,
		Status:        status,
		ProviderTxnID: pi.ID,
		Amount:        fromMinorUnits(pi.Amount),
		OccurredAt:    time.Unix(event.Created, 0),
	}, nil
}

// wrap classifies a Stripe error as retryable or terminal. Rate limits,
// 5xx responses and connection failures are retryable; card declines and
// invalid requests are not.
func (a *StripeAdapter) wrap(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch stripeErr.Type {
		case stripe.ErrorTypeAPI:
			return domain.NewRetryableGatewayError(op, err)
		case stripe.ErrorTypeCard, stripe.ErrorTypeInvalidRequest, stripe.ErrorTypeIdempotency:
			return domain.NewTerminalGatewayError(op, err)
		}
		if stripeErr.HTTPStatusCode == 429 || stripeErr.HTTPStatusCode >= 500 {
			return domain.NewRetryableGatewayError(op, err)
		}
		return domain.NewTerminalGatewayError(op, err)
	}
	// Transport-level failure with no Stripe response
	return domain.NewRetryableGatewayError(op, err)
}

func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func fromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}

// Ensure StripeAdapter implements the gateway port
var _ domain.Gateway = (*StripeAdapter)(nil)
