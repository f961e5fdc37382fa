package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanBorrow_NilSession(t *testing.T) {
	var session *Session
	gate := session.CanBorrow()

	assert.False(t, gate.Allowed)
	assert.Equal(t, "Please log in to borrow books.", gate.Reason)
}

func TestCanBorrow_NotLoggedIn(t *testing.T) {
	session := &Session{}
	gate := session.CanBorrow()

	assert.False(t, gate.Allowed)
	assert.Equal(t, "Please log in to borrow books.", gate.Reason)
}

func TestCanBorrow_UnpaidMember(t *testing.T) {
	session := &Session{
		User: User{ID: "u1", IsPaid: false},
	}
	gate := session.CanBorrow()

	assert.False(t, gate.Allowed)
	assert.Equal(t, "Please pay the one-time security fee to borrow books.", gate.Reason)
}

func TestCanBorrow_AtBorrowCap(t *testing.T) {
	session := &Session{
		User: User{ID: "u1", IsPaid: true},
		BorrowedBooks: []BorrowedBookView{
			{BorrowingID: "b1", Status: BorrowingStatusBorrowed},
			{BorrowingID: "b2", Status: BorrowingStatusPending},
		},
	}
	gate := session.CanBorrow()

	assert.False(t, gate.Allowed)
	assert.Equal(t, "You have already borrowed 2 books. Please return a book before borrowing another.", gate.Reason)
}

func TestCanBorrow_Allowed(t *testing.T) {
	session := &Session{
		User: User{ID: "u1", IsPaid: true},
		BorrowedBooks: []BorrowedBookView{
			{BorrowingID: "b1", Status: BorrowingStatusBorrowed},
		},
	}
	gate := session.CanBorrow()

	assert.True(t, gate.Allowed)
	assert.Equal(t, "You can borrow this book.", gate.Reason)
}

func TestCanBorrow_GateOrder(t *testing.T) {
	// An unpaid member at the cap fails the payment gate first
	session := &Session{
		User: User{ID: "u1", IsPaid: false},
		BorrowedBooks: []BorrowedBookView{
			{BorrowingID: "b1"},
			{BorrowingID: "b2"},
		},
	}
	gate := session.CanBorrow()

	assert.Equal(t, "Please pay the one-time security fee to borrow books.", gate.Reason)
}

func TestDueDateFor(t *testing.T) {
	borrowDate := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	due := DueDateFor(borrowDate)

	assert.Equal(t, time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC), due)
}
