package entities

import (
	"time"
)

// Role values for User.Role
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a library member or administrator
type User struct {
	ID                 string    `json:"id" db:"id"`
	Username           string    `json:"username" db:"username"`
	Email              string    `json:"email" db:"email"`
	Password           string    `json:"-" db:"password"`
	FirstName          string    `json:"first_name" db:"first_name"`
	LastName           string    `json:"last_name" db:"last_name"`
	Phone              string    `json:"phone,omitempty" db:"phone"`
	Address            string    `json:"address,omitempty" db:"address"`
	Role               string    `json:"role" db:"role"`
	IsPaid             bool      `json:"is_paid" db:"is_paid"`
	BorrowedBooksCount int       `json:"borrowed_books_count" db:"borrowed_books_count"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
