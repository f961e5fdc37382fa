package entities

import (
	"time"
)

// Homepage section tags for Book.Category
const (
	BookCategoryLatest = "latest"
)

// Book represents a catalog entry. AvailableCopies and Available are
// denormalized; every lifecycle transition that changes how many copies are
// on loan must keep Available == (AvailableCopies > 0).
type Book struct {
	ID              string    `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Author          string    `json:"author" db:"author"`
	Genre           string    `json:"genre" db:"genre"`
	Year            *int      `json:"year,omitempty" db:"year"`
	Pages           *int      `json:"pages,omitempty" db:"pages"`
	Description     string    `json:"description,omitempty" db:"description"`
	Image           string    `json:"image,omitempty" db:"image"`
	TotalCopies     int       `json:"total_copies" db:"total_copies"`
	AvailableCopies int       `json:"available_copies" db:"available_copies"`
	Available       bool      `json:"available" db:"available"`
	Category        string    `json:"category" db:"category"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Category is a name-only genre tag, created lazily when an admin enters a
// genre that does not exist yet.
type Category struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
