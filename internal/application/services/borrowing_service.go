package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bookbridge/librental/internal/domain/entities"
	"github.com/bookbridge/librental/internal/domain/providers"
	"github.com/bookbridge/librental/internal/domain/repositories"
	apperrors "github.com/bookbridge/librental/pkg/errors"
)

// BorrowingService handles the borrowing lifecycle: member requests, the
// admin accept/reject decisions and the return flow.
type BorrowingService struct {
	borrowings repositories.BorrowingRepository
	books      repositories.BookRepository
	users      repositories.UserRepository
	eventBus   providers.EventBus
}

// NewBorrowingService creates a new borrowing service
func NewBorrowingService(borrowings repositories.BorrowingRepository, books repositories.BookRepository, users repositories.UserRepository, eventBus providers.EventBus) *BorrowingService {
	return &BorrowingService{
		borrowings: borrowings,
		books:      books,
		users:      users,
		eventBus:   eventBus,
	}
}

// RequestBorrow files a pending borrow request for the session's member. The
// borrow gates are re-checked server-side against the live borrowing count so
// a stale session cannot slip past the cap.
func (s *BorrowingService) RequestBorrow(ctx context.Context, session *entities.Session, bookID string, delivery entities.DeliveryDetails) (*entities.Borrowing, error) {
	gate := session.CanBorrow()
	if !gate.Allowed {
		if session == nil || session.User.ID == "" {
			return nil, apperrors.NewUnauthorizedError(gate.Reason)
		}
		return nil, apperrors.NewConflictError(gate.Reason)
	}

	active, err := s.borrowings.CountActiveByUser(ctx, session.User.ID)
	if err != nil {
		return nil, err
	}
	if active >= entities.MaxActiveBorrowings {
		return nil, apperrors.NewConflictError("You have already borrowed 2 books. Please return a book before borrowing another.")
	}

	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !book.Available {
		return nil, apperrors.NewConflictError("book is not available for borrowing")
	}

	now := time.Now()
	borrowing := &entities.Borrowing{
		ID:         uuid.New().String(),
		UserID:     session.User.ID,
		BookID:     book.ID,
		Status:     entities.BorrowingStatusPending,
		BorrowDate: now,
		DueDate:    entities.DueDateFor(now),
		Delivery:   delivery,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.borrowings.Create(ctx, borrowing); err != nil {
		return nil, err
	}

	s.publish(ctx, book.ID, entities.CatalogEventTypeBorrowRequest)
	return borrowing, nil
}

// AcceptRequest approves a pending request: the borrowing becomes active, a
// copy is reserved and the member's borrowed count goes up, all in one
// transaction.
func (s *BorrowingService) AcceptRequest(ctx context.Context, id string) error {
	borrowing, err := s.borrowings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.borrowings.AcceptRequest(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, borrowing.BookID, entities.CatalogEventTypeBorrowAccepted)
	return nil
}

// RejectRequest declines a pending request. The request row is deleted; no
// copy was ever reserved, so no counter moves.
func (s *BorrowingService) RejectRequest(ctx context.Context, id string) error {
	borrowing, err := s.borrowings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.borrowings.RejectPending(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, borrowing.BookID, entities.CatalogEventTypeBorrowRejected)
	return nil
}

// RequestReturn flags one of the session member's active borrowings for
// return. Members can only flag their own borrowings.
func (s *BorrowingService) RequestReturn(ctx context.Context, session *entities.Session, id string) error {
	if session == nil || session.User.ID == "" {
		return apperrors.NewUnauthorizedError("Please log in to return books.")
	}

	borrowing, err := s.borrowings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if borrowing.UserID != session.User.ID {
		return apperrors.NewNotFoundError("borrowing not found")
	}

	return s.borrowings.RequestReturn(ctx, id)
}

// AcceptReturn completes a return: the borrowing closes, the copy is released
// and the member's borrowed count goes down, all in one transaction.
func (s *BorrowingService) AcceptReturn(ctx context.Context, id string) error {
	borrowing, err := s.borrowings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.borrowings.AcceptReturn(ctx, id, time.Now()); err != nil {
		return err
	}

	s.publish(ctx, borrowing.BookID, entities.CatalogEventTypeReturnAccepted)
	return nil
}

// RejectReturn declines a return request: the flag clears and the borrowing
// stays active.
func (s *BorrowingService) RejectReturn(ctx context.Context, id string) error {
	return s.borrowings.RejectReturn(ctx, id)
}

// CancelBorrowing removes an active borrowing and releases its copy (admin
// correction flow).
func (s *BorrowingService) CancelBorrowing(ctx context.Context, id string) error {
	borrowing, err := s.borrowings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.borrowings.CancelActive(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, borrowing.BookID, entities.CatalogEventTypeBookUpdated)
	return nil
}

// CreateDirect lends a book over the counter: the admin names a member by
// email and a book by title, and the borrowing starts out active.
func (s *BorrowingService) CreateDirect(ctx context.Context, memberEmail, bookTitle string) (*entities.Borrowing, error) {
	member, err := s.users.GetMemberByEmail(ctx, memberEmail)
	if err != nil {
		return nil, err
	}

	active, err := s.borrowings.CountActiveByUser(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	if active >= entities.MaxActiveBorrowings {
		return nil, apperrors.NewConflictError("member has already borrowed the maximum number of books")
	}

	book, err := s.books.FindAvailableByTitle(ctx, bookTitle)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	borrowing := &entities.Borrowing{
		ID:         uuid.New().String(),
		UserID:     member.ID,
		BookID:     book.ID,
		Status:     entities.BorrowingStatusBorrowed,
		BorrowDate: now,
		DueDate:    entities.DueDateFor(now),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.borrowings.CreateActive(ctx, borrowing); err != nil {
		return nil, err
	}

	s.publish(ctx, book.ID, entities.CatalogEventTypeBorrowAccepted)
	return borrowing, nil
}

// ListPendingRequests retrieves borrow requests awaiting an admin decision
func (s *BorrowingService) ListPendingRequests(ctx context.Context) ([]*entities.BorrowingView, error) {
	return s.borrowings.ListWithDetails(ctx, repositories.BorrowingFilter{
		Statuses:              []string{entities.BorrowingStatusPending},
		OrderByBorrowDateDesc: true,
	})
}

// ListActive retrieves all currently borrowed books
func (s *BorrowingService) ListActive(ctx context.Context) ([]*entities.BorrowingView, error) {
	return s.borrowings.ListWithDetails(ctx, repositories.BorrowingFilter{
		Statuses:              []string{entities.BorrowingStatusBorrowed},
		OrderByBorrowDateDesc: true,
	})
}

// ListReturnRequests retrieves active borrowings flagged for return
func (s *BorrowingService) ListReturnRequests(ctx context.Context) ([]*entities.BorrowingView, error) {
	requested := true
	return s.borrowings.ListWithDetails(ctx, repositories.BorrowingFilter{
		Statuses:              []string{entities.BorrowingStatusBorrowed},
		ReturnRequested:       &requested,
		OrderByBorrowDateDesc: true,
	})
}

// ListForMember retrieves all of one member's borrowings
func (s *BorrowingService) ListForMember(ctx context.Context, userID string) ([]*entities.BorrowingView, error) {
	return s.borrowings.ListWithDetails(ctx, repositories.BorrowingFilter{
		UserID:                userID,
		OrderByBorrowDateDesc: true,
	})
}

func (s *BorrowingService) publish(ctx context.Context, bookID string, eventType entities.CatalogEventType) {
	if s.eventBus == nil {
		return
	}
	event := entities.NewCatalogEvent(bookID, eventType)
	if err := s.eventBus.Publish(ctx, providers.EventChannelCatalogUpdates, event); err != nil {
		log.Warn().Err(err).Str("book_id", bookID).Str("event_type", string(eventType)).Msg("failed to publish catalog event")
	}
}
