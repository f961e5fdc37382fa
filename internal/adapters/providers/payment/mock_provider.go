package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bookbridge/librental/internal/domain/providers"
	apperrors "github.com/bookbridge/librental/pkg/errors"
)

// MockProvider simulates the membership fee gateway: it confirms every
// charge and returns a synthetic payment reference. There is no real
// processor behind the payment boundary.
type MockProvider struct{}

// NewMockProvider creates a new mock payment provider
func NewMockProvider() providers.PaymentProvider {
	return &MockProvider{}
}

// Charge confirms the payment and returns a payment reference
func (p *MockProvider) Charge(ctx context.Context, userID string, amount float64, method string) (string, error) {
	if amount <= 0 {
		return "", apperrors.NewValidationError("payment amount must be positive")
	}
	if method == "" {
		return "", apperrors.NewValidationError("payment method is required")
	}

	reference := "pay-" + uuid.New().String()
	log.Info().Str("user_id", userID).Float64("amount", amount).Str("method", method).
		Str("reference", reference).Msg("simulated payment confirmed")
	return reference, nil
}
