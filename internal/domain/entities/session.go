package entities

import (
	"time"
)

// Session is the hydrated "current user": the base user row plus the derived
// borrow/return lists the member screens render. It is an explicit object
// owned by the request, persisted through a SessionStore, never a global.
type Session struct {
	Token         string             `json:"token"`
	User          User               `json:"user"`
	BorrowedBooks []BorrowedBookView `json:"borrowed_books"`
	ReturnedBooks []ReturnedBookView `json:"returned_books"`
	CreatedAt     time.Time          `json:"created_at"`
}

// BorrowGate is the outcome of a CanBorrow check: the first failing gate, or
// success.
type BorrowGate struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// CanBorrow evaluates the three borrow gates in order: logged in, membership
// fee paid, fewer than MaxActiveBorrowings active (pending+borrowed)
// borrowings.
func (s *Session) CanBorrow() BorrowGate {
	if s == nil || s.User.ID == "" {
		return BorrowGate{Allowed: false, Reason: "Please log in to borrow books."}
	}
	if !s.User.IsPaid {
		return BorrowGate{Allowed: false, Reason: "Please pay the one-time security fee to borrow books."}
	}
	if len(s.BorrowedBooks) >= MaxActiveBorrowings {
		return BorrowGate{Allowed: false, Reason: "You have already borrowed 2 books. Please return a book before borrowing another."}
	}
	return BorrowGate{Allowed: true, Reason: "You can borrow this book."}
}
