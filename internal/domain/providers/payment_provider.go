package providers

import (
	"context"
)

// MembershipFee is the one-time security fee charged before a member may
// borrow.
const MembershipFee = 1000

// PaymentProvider confirms membership fee payments. The shipped
// implementation is a simulated gateway; a real processor would slot in
// behind the same interface.
type PaymentProvider interface {
	// Charge charges the membership fee and returns a payment reference
	Charge(ctx context.Context, userID string, amount float64, method string) (string, error)
}
