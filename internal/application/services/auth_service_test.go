package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbridge/librental/internal/domain/entities"
	apperrors "github.com/bookbridge/librental/pkg/errors"
)

func TestRegister_NewMemberStartsUnpaid(t *testing.T) {
	users := &fakeUserRepo{}
	service := NewAuthService(users, &fakeBorrowingRepo{}, newFakeSessionStore())

	user := &entities.User{Username: "jane", Email: "jane@example.com", Password: "secret"}
	err := service.Register(context.Background(), user)

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, entities.RoleUser, user.Role)
	assert.False(t, user.IsPaid)
	assert.Zero(t, user.BorrowedBooksCount)
	require.Len(t, users.users, 1)
}

func TestRegister_DuplicateUsernameIsConflict(t *testing.T) {
	users := &fakeUserRepo{users: []*entities.User{
		{ID: "u1", Username: "jane", Email: "other@example.com"},
	}}
	service := NewAuthService(users, &fakeBorrowingRepo{}, newFakeSessionStore())

	err := service.Register(context.Background(), &entities.User{Username: "jane", Email: "jane@example.com"})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	assert.Len(t, users.users, 1)
}

func TestLogin_HydratesBorrowedAndReturnedLists(t *testing.T) {
	users := &fakeUserRepo{users: []*entities.User{
		{ID: "u1", Username: "jane", Email: "jane@example.com", Password: "secret", IsPaid: true},
	}}
	borrowings := &fakeBorrowingRepo{views: []*entities.BorrowingView{
		{
			Borrowing: entities.Borrowing{ID: "b1", UserID: "u1", BookID: "bk1", Status: entities.BorrowingStatusBorrowed},
			BookTitle: "Borrowed Book",
		},
		{
			Borrowing: entities.Borrowing{ID: "b2", UserID: "u1", BookID: "bk2", Status: entities.BorrowingStatusReturned},
			BookTitle: "Returned Book",
		},
		{
			Borrowing: entities.Borrowing{ID: "b3", UserID: "other", BookID: "bk3", Status: entities.BorrowingStatusBorrowed},
			BookTitle: "Someone Else's Book",
		},
	}}
	sessions := newFakeSessionStore()
	service := NewAuthService(users, borrowings, sessions)

	session, err := service.Login(context.Background(), "jane", "secret")

	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "u1", session.User.ID)
	require.Len(t, session.BorrowedBooks, 1)
	assert.Equal(t, "Borrowed Book", session.BorrowedBooks[0].Title)
	require.Len(t, session.ReturnedBooks, 1)
	assert.Equal(t, "Returned Book", session.ReturnedBooks[0].Title)

	// The session is persisted under its token
	saved, err := sessions.Get(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, saved.User.ID)
}

func TestLogin_EmailIdentifierWorks(t *testing.T) {
	users := &fakeUserRepo{users: []*entities.User{
		{ID: "u1", Username: "jane", Email: "jane@example.com", Password: "secret"},
	}}
	service := NewAuthService(users, &fakeBorrowingRepo{}, newFakeSessionStore())

	session, err := service.Login(context.Background(), "jane@example.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, "u1", session.User.ID)
}

func TestLogin_WrongPasswordIsUnauthorized(t *testing.T) {
	users := &fakeUserRepo{users: []*entities.User{
		{ID: "u1", Username: "jane", Email: "jane@example.com", Password: "secret"},
	}}
	service := NewAuthService(users, &fakeBorrowingRepo{}, newFakeSessionStore())

	_, err := service.Login(context.Background(), "jane", "wrong")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
}

func TestCanBorrow_MissingTokenFailsFirstGate(t *testing.T) {
	service := NewAuthService(&fakeUserRepo{}, &fakeBorrowingRepo{}, newFakeSessionStore())

	gate, err := service.CanBorrow(context.Background(), "")

	require.NoError(t, err)
	assert.False(t, gate.Allowed)
	assert.Equal(t, "Please log in to borrow books.", gate.Reason)
}

func TestCanBorrow_ExpiredSessionFailsFirstGate(t *testing.T) {
	service := NewAuthService(&fakeUserRepo{}, &fakeBorrowingRepo{}, newFakeSessionStore())

	gate, err := service.CanBorrow(context.Background(), "expired-token")

	require.NoError(t, err)
	assert.False(t, gate.Allowed)
}

func TestRefresh_ReloadsUserAndLists(t *testing.T) {
	users := &fakeUserRepo{users: []*entities.User{
		{ID: "u1", Username: "jane", Email: "jane@example.com", Password: "secret", IsPaid: false},
	}}
	borrowings := &fakeBorrowingRepo{}
	sessions := newFakeSessionStore()
	service := NewAuthService(users, borrowings, sessions)

	session, err := service.Login(context.Background(), "jane", "secret")
	require.NoError(t, err)
	assert.False(t, session.User.IsPaid)

	// The membership flag flips in the database behind the session's back
	require.NoError(t, users.SetPaid(context.Background(), "u1"))

	refreshed, err := service.Refresh(context.Background(), session.Token)
	require.NoError(t, err)
	assert.True(t, refreshed.User.IsPaid)
}
