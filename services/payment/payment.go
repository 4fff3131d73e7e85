package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

// PaymentConfirmer reports whether an external payment reference has been paid.
type PaymentConfirmer interface {
	IsPaid(ctx context.Context, ref string) (bool, error)
}

// StripeConfirmer checks Stripe PaymentIntents.
type StripeConfirmer struct {
	api    *client.API
	logger *zap.Logger
}

func NewStripeConfirmer(secretKey string, logger *zap.Logger) *StripeConfirmer {
	api := &client.API{}
	api.Init(secretKey, nil)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StripeConfirmer{api: api, logger: logger}
}

// IsPaid treats an intent that has succeeded, or is authorized and awaiting capture, as paid.
// An unknown intent id is unpaid rather than an error.
func (s *StripeConfirmer) IsPaid(ctx context.Context, ref string) (bool, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false, nil
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	intent, err := s.api.PaymentIntents.Get(ref, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			s.logger.Info("Payment intent not found", zap.String("paymentRef", ref))
			return false, nil
		}
		return false, err
	}
	return isPaidStatus(intent.Status), nil
}

func isPaidStatus(status stripe.PaymentIntentStatus) bool {
	return status == stripe.PaymentIntentStatusSucceeded ||
		status == stripe.PaymentIntentStatusRequiresCapture
}

// AlwaysPaid accepts every reference; used when payment gating is disabled.
type AlwaysPaid struct{}

func (AlwaysPaid) IsPaid(context.Context, string) (bool, error) { return true, nil }
