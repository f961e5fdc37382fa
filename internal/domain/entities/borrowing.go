package entities

import (
	"time"
)

// Borrowing status values
const (
	BorrowingStatusPending  = "pending"
	BorrowingStatusBorrowed = "borrowed"
	BorrowingStatusReturned = "returned"
	BorrowingStatusDamaged  = "damaged"
	BorrowingStatusLost     = "lost"
)

// LoanPeriodDays is the fixed loan period; due dates are always the borrow
// date plus this many days.
const LoanPeriodDays = 14

// MaxActiveBorrowings is the fixed cap on concurrent pending+borrowed
// borrowings per member.
const MaxActiveBorrowings = 2

// DeliveryDetails are the delivery fields captured with a borrow request.
type DeliveryDetails struct {
	FullName    string `json:"full_name" db:"full_name"`
	PhoneNumber string `json:"phone_number" db:"phone_number"`
	Address     string `json:"address" db:"address"`
	City        string `json:"city" db:"city"`
	PostalCode  string `json:"postal_code" db:"postal_code"`
}

// Borrowing records one book lent to one member, with a status lifecycle:
// pending -> borrowed -> returned, with deletion on admin rejection and
// damaged/lost as alternate terminal states.
type Borrowing struct {
	ID              string          `json:"id" db:"id"`
	UserID          string          `json:"user_id" db:"user_id"`
	BookID          string          `json:"book_id" db:"book_id"`
	Status          string          `json:"status" db:"status"`
	BorrowDate      time.Time       `json:"borrow_date" db:"borrow_date"`
	DueDate         time.Time       `json:"due_date" db:"due_date"`
	ReturnDate      *time.Time      `json:"return_date,omitempty" db:"return_date"`
	ReturnRequested bool            `json:"return_requested" db:"return_requested"`
	Delivery        DeliveryDetails `json:"delivery" db:"-"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the borrowing still holds or awaits a copy.
func (b *Borrowing) IsActive() bool {
	return b.Status == BorrowingStatusPending || b.Status == BorrowingStatusBorrowed
}

// IsOverdue reports whether an active borrowing is past its due date.
func (b *Borrowing) IsOverdue(now time.Time) bool {
	return b.Status == BorrowingStatusBorrowed && now.After(b.DueDate)
}

// DueDateFor returns the due date for a borrowing created at borrowDate.
func DueDateFor(borrowDate time.Time) time.Time {
	return borrowDate.AddDate(0, 0, LoanPeriodDays)
}

// BorrowedBookView is a borrowing joined with the book fields the member
// screens display.
type BorrowedBookView struct {
	BorrowingID     string          `json:"borrowing_id"`
	BookID          string          `json:"book_id"`
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	Image           string          `json:"image,omitempty"`
	Status          string          `json:"status"`
	BorrowDate      time.Time       `json:"borrow_date"`
	DueDate         time.Time       `json:"due_date"`
	ReturnRequested bool            `json:"return_requested"`
	Delivery        DeliveryDetails `json:"delivery"`
}

// ReturnedBookView is a returned borrowing joined with book fields.
type ReturnedBookView struct {
	BorrowingID  string     `json:"borrowing_id"`
	BookID       string     `json:"book_id"`
	Title        string     `json:"title"`
	Author       string     `json:"author"`
	BorrowDate   time.Time  `json:"borrow_date"`
	ReturnedDate *time.Time `json:"returned_date,omitempty"`
}

// BorrowingView is a borrowing joined with member and book fields for the
// admin screens.
type BorrowingView struct {
	Borrowing
	MemberName  string `json:"member_name"`
	MemberEmail string `json:"member_email"`
	BookTitle   string `json:"book_title"`
	BookAuthor  string `json:"book_author"`
	BookImage   string `json:"book_image,omitempty"`
}
