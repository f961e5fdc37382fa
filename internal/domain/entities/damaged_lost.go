package entities

import (
	"time"
)

// Condition values for DamagedLost.Condition
const (
	ConditionDamaged = "damaged"
	ConditionLost    = "lost"
)

// DamagedLost records a borrowing terminated as damaged or lost, with the
// fine imposed on the member. Terminal: the only further mutations are
// adjusting or waiving the fine.
type DamagedLost struct {
	ID          string    `json:"id" db:"id"`
	BorrowingID string    `json:"borrowing_id" db:"borrowing_id"`
	Condition   string    `json:"condition" db:"condition"`
	FineAmount  float64   `json:"fine_amount" db:"fine_amount"`
	FineWaived  bool      `json:"fine_waived" db:"fine_waived"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// DamagedLostView joins a record with its borrowing, member and book.
type DamagedLostView struct {
	DamagedLost
	MemberName  string    `json:"member_name"`
	MemberEmail string    `json:"member_email"`
	BookTitle   string    `json:"book_title"`
	BookAuthor  string    `json:"book_author"`
	BorrowDate  time.Time `json:"borrow_date"`
	DueDate     time.Time `json:"due_date"`
}

// DamagedLostStats aggregates the damaged/lost back-office counters.
type DamagedLostStats struct {
	TotalDamaged int     `json:"total_damaged"`
	TotalLost    int     `json:"total_lost"`
	TotalFines   float64 `json:"total_fines"`
}
