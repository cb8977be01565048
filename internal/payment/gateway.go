package payment

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"github.com/stripe/stripe-go/v79/refund"
	"go.uber.org/zap"
)

type ChargeRequest struct {
	Amount       float64
	Currency     string
	Reference    string
	Description  string
	PaymentToken string
}

type ChargeResult struct {
	TransactionID string
	Succeeded     bool
	FailureReason string
}

// Gateway charges and refunds money for bookings. Charge reports card
// declines through ChargeResult, not through the error return.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, transactionID string, amount float64) (string, error)
}

type stripeGateway struct {
	log *zap.Logger
}

func NewStripeGateway(secretKey string, log *zap.Logger) Gateway {
	stripe.Key = secretKey
	return &stripeGateway{
		log: log.With(zap.String("gateway", "stripe")),
	}
}

func (g *stripeGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(toCents(req.Amount)),
		Currency:    stripe.String(req.Currency),
		Description: stripe.String(req.Description),
	}
	params.Context = ctx
	// One intent per booking reference, safe to retry.
	params.IdempotencyKey = stripe.String(req.Reference)

	if req.PaymentToken != "" {
		params.PaymentMethod = stripe.String(req.PaymentToken)
		params.Confirm = stripe.Bool(true)
		params.AutomaticPaymentMethods = &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String(string(stripe.PaymentIntentAutomaticPaymentMethodsAllowRedirectsNever)),
		}
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			g.log.Warn("Card declined",
				zap.String("reference", req.Reference),
				zap.String("code", string(stripeErr.Code)))
			return &ChargeResult{
				Succeeded:     false,
				FailureReason: string(stripeErr.Code),
			}, nil
		}
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	result := &ChargeResult{
		TransactionID: pi.ID,
		Succeeded:     pi.Status == stripe.PaymentIntentStatusSucceeded,
	}
	if !result.Succeeded {
		result.FailureReason = string(pi.Status)
	}

	g.log.Info("Payment intent created",
		zap.String("reference", req.Reference),
		zap.String("transaction_id", pi.ID),
		zap.String("status", string(pi.Status)))
	return result, nil
}

func (g *stripeGateway) Refund(ctx context.Context, transactionID string, amount float64) (string, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(transactionID),
		Amount:        stripe.Int64(toCents(amount)),
	}
	params.Context = ctx

	ref, err := refund.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create refund: %w", err)
	}

	g.log.Info("Refund created",
		zap.String("transaction_id", transactionID),
		zap.String("refund_id", ref.ID))
	return ref.ID, nil
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

type mockGateway struct {
	log *zap.Logger
}

// NewMockGateway is used when no Stripe key is configured. Every charge
// succeeds so the booking flow stays usable in local environments.
func NewMockGateway(log *zap.Logger) Gateway {
	return &mockGateway{
		log: log.With(zap.String("gateway", "mock")),
	}
}

func (g *mockGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	txID := "pi_mock_" + uuid.NewString()
	g.log.Info("Mock charge",
		zap.String("reference", req.Reference),
		zap.Float64("amount", req.Amount),
		zap.String("transaction_id", txID))
	return &ChargeResult{TransactionID: txID, Succeeded: true}, nil
}

func (g *mockGateway) Refund(ctx context.Context, transactionID string, amount float64) (string, error) {
	refundID := "re_mock_" + uuid.NewString()
	g.log.Info("Mock refund",
		zap.String("transaction_id", transactionID),
		zap.String("refund_id", refundID))
	return refundID, nil
}
