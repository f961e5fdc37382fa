package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bookbridge/librental/internal/domain/entities"
	"github.com/bookbridge/librental/internal/domain/providers"
	"github.com/bookbridge/librental/internal/domain/repositories"
	apperrors "github.com/bookbridge/librental/pkg/errors"
)

// AuthService handles registration, login and session hydration
type AuthService struct {
	users      repositories.UserRepository
	borrowings repositories.BorrowingRepository
	sessions   providers.SessionStore
}

// NewAuthService creates a new auth service
func NewAuthService(users repositories.UserRepository, borrowings repositories.BorrowingRepository, sessions providers.SessionStore) *AuthService {
	return &AuthService{
		users:      users,
		borrowings: borrowings,
		sessions:   sessions,
	}
}

// Register creates a new member account. Usernames and emails are unique
// across all accounts; new accounts always start as unpaid members.
func (s *AuthService) Register(ctx context.Context, user *entities.User) error {
	exists, err := s.users.ExistsByUsernameOrEmail(ctx, user.Username, user.Email)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.NewConflictError("username or email is already registered")
	}

	now := time.Now()
	user.ID = uuid.New().String()
	user.Role = entities.RoleUser
	user.IsPaid = false
	user.BorrowedBooksCount = 0
	user.CreatedAt = now
	user.UpdatedAt = now

	return s.users.Create(ctx, user)
}

// Login authenticates by username-or-email plus password and returns a fresh
// hydrated session.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*entities.Session, error) {
	user, err := s.users.GetByCredentials(ctx, identifier, password)
	if err != nil {
		return nil, err
	}

	session := &entities.Session{
		Token:     uuid.New().String(),
		User:      *user,
		CreatedAt: time.Now(),
	}
	if err := s.hydrate(ctx, session); err != nil {
		return nil, err
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Logout deletes the session
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// CurrentSession retrieves the session for a token
func (s *AuthService) CurrentSession(ctx context.Context, token string) (*entities.Session, error) {
	return s.sessions.Get(ctx, token)
}

// Refresh reloads the session's user row and derived book lists from the
// database and saves the result. Called after any operation that changes what
// the member screens should show.
func (s *AuthService) Refresh(ctx context.Context, token string) (*entities.Session, error) {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, session.User.ID)
	if err != nil {
		return nil, err
	}
	session.User = *user

	if err := s.hydrate(ctx, session); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// CanBorrow evaluates the borrow gates for a token. A missing or expired
// session is not an error here; it simply fails the first gate.
func (s *AuthService) CanBorrow(ctx context.Context, token string) (entities.BorrowGate, error) {
	if token == "" {
		return (*entities.Session)(nil).CanBorrow(), nil
	}

	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeUnauthorized) {
			return (*entities.Session)(nil).CanBorrow(), nil
		}
		return entities.BorrowGate{}, err
	}
	return session.CanBorrow(), nil
}

// hydrate fills the session's borrowed and returned book lists from the
// borrowings table.
func (s *AuthService) hydrate(ctx context.Context, session *entities.Session) error {
	active, err := s.borrowings.ListWithDetails(ctx, repositories.BorrowingFilter{
		UserID:                session.User.ID,
		Statuses:              []string{entities.BorrowingStatusPending, entities.BorrowingStatusBorrowed},
		OrderByBorrowDateDesc: true,
	})
	if err != nil {
		return err
	}

	returned, err := s.borrowings.ListWithDetails(ctx, repositories.BorrowingFilter{
		UserID:                session.User.ID,
		Statuses:              []string{entities.BorrowingStatusReturned},
		OrderByBorrowDateDesc: true,
	})
	if err != nil {
		return err
	}

	session.BorrowedBooks = make([]entities.BorrowedBookView, 0, len(active))
	for _, b := range active {
		session.BorrowedBooks = append(session.BorrowedBooks, entities.BorrowedBookView{
			BorrowingID:     b.ID,
			BookID:          b.BookID,
			Title:           b.BookTitle,
			Author:          b.BookAuthor,
			Image:           b.BookImage,
			Status:          b.Status,
			BorrowDate:      b.BorrowDate,
			DueDate:         b.DueDate,
			ReturnRequested: b.ReturnRequested,
			Delivery:        b.Delivery,
		})
	}

	session.ReturnedBooks = make([]entities.ReturnedBookView, 0, len(returned))
	for _, b := range returned {
		session.ReturnedBooks = append(session.ReturnedBooks, entities.ReturnedBookView{
			BorrowingID:  b.ID,
			BookID:       b.BookID,
			Title:        b.BookTitle,
			Author:       b.BookAuthor,
			BorrowDate:   b.BorrowDate,
			ReturnedDate: b.ReturnDate,
		})
	}

	return nil
}
