package services

import (
	"context"

	"github.com/bookbridge/librental/internal/domain/entities"
	"github.com/bookbridge/librental/internal/domain/providers"
	"github.com/bookbridge/librental/internal/domain/repositories"
	apperrors "github.com/bookbridge/librental/pkg/errors"
)

// MembershipService handles the one-time security fee payment that unlocks
// borrowing.
type MembershipService struct {
	users    repositories.UserRepository
	payments providers.PaymentProvider
	sessions providers.SessionStore
}

// NewMembershipService creates a new membership service
func NewMembershipService(users repositories.UserRepository, payments providers.PaymentProvider, sessions providers.SessionStore) *MembershipService {
	return &MembershipService{
		users:    users,
		payments: payments,
		sessions: sessions,
	}
}

// Pay charges the membership fee through the payment provider, flips the
// member's paid flag and updates the session. Returns the payment reference.
func (s *MembershipService) Pay(ctx context.Context, session *entities.Session, method string) (string, error) {
	if session == nil || session.User.ID == "" {
		return "", apperrors.NewUnauthorizedError("Please log in to pay the membership fee.")
	}
	if session.User.IsPaid {
		return "", apperrors.NewConflictError("membership fee has already been paid")
	}

	reference, err := s.payments.Charge(ctx, session.User.ID, providers.MembershipFee, method)
	if err != nil {
		return "", err
	}

	if err := s.users.SetPaid(ctx, session.User.ID); err != nil {
		return "", err
	}

	session.User.IsPaid = true
	if err := s.sessions.Save(ctx, session); err != nil {
		return "", err
	}
	return reference, nil
}
