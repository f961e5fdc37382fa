package entities

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// CatalogEventType represents the type of catalog mutation event
type CatalogEventType string

const (
	CatalogEventTypeBookAdded      CatalogEventType = "book_added"
	CatalogEventTypeBookUpdated    CatalogEventType = "book_updated"
	CatalogEventTypeBorrowRequest  CatalogEventType = "borrow_request"
	CatalogEventTypeBorrowAccepted CatalogEventType = "borrow_accepted"
	CatalogEventTypeBorrowRejected CatalogEventType = "borrow_rejected"
	CatalogEventTypeReturnAccepted CatalogEventType = "return_accepted"
)

// CatalogEvent is emitted by every write path that mutates a book, so the
// read path can drop its cached catalog instead of serving stale
// availability.
type CatalogEvent struct {
	ID        string           `json:"id"`
	BookID    string           `json:"book_id"`
	EventType CatalogEventType `json:"event_type"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewCatalogEvent creates a new catalog event
func NewCatalogEvent(bookID string, eventType CatalogEventType) *CatalogEvent {
	return &CatalogEvent{
		ID:        generateEventID(),
		BookID:    bookID,
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// generateEventID generates a unique event ID
func generateEventID() string {
	return time.Now().Format("20060102150405") + "-" + randomString(8)
}

// randomString generates a random string of specified length
func randomString(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		return time.Now().Format("150405.000")
	}
	return hex.EncodeToString(bytes)[:length]
}
