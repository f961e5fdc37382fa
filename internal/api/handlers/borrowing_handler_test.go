package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookbridge/librental/internal/api/middleware"
	"github.com/bookbridge/librental/internal/domain/entities"
	apperrors "github.com/bookbridge/librental/pkg/errors"
)

type stubBorrowingService struct {
	borrowErr   error
	borrowing   *entities.Borrowing
	accepted    []string
	acceptErr   error
	returnedErr error
}

func (s *stubBorrowingService) RequestBorrow(ctx context.Context, session *entities.Session, bookID string, delivery entities.DeliveryDetails) (*entities.Borrowing, error) {
	if s.borrowErr != nil {
		return nil, s.borrowErr
	}
	return s.borrowing, nil
}

func (s *stubBorrowingService) AcceptRequest(ctx context.Context, id string) error {
	if s.acceptErr != nil {
		return s.acceptErr
	}
	s.accepted = append(s.accepted, id)
	return nil
}

func (s *stubBorrowingService) RejectRequest(ctx context.Context, id string) error { return nil }

func (s *stubBorrowingService) RequestReturn(ctx context.Context, session *entities.Session, id string) error {
	return s.returnedErr
}

func (s *stubBorrowingService) AcceptReturn(ctx context.Context, id string) error { return nil }
func (s *stubBorrowingService) RejectReturn(ctx context.Context, id string) error { return nil }
func (s *stubBorrowingService) CancelBorrowing(ctx context.Context, id string) error {
	return nil
}

func (s *stubBorrowingService) CreateDirect(ctx context.Context, memberEmail, bookTitle string) (*entities.Borrowing, error) {
	return s.borrowing, nil
}

func (s *stubBorrowingService) ListPendingRequests(ctx context.Context) ([]*entities.BorrowingView, error) {
	return []*entities.BorrowingView{}, nil
}

func (s *stubBorrowingService) ListActive(ctx context.Context) ([]*entities.BorrowingView, error) {
	return []*entities.BorrowingView{}, nil
}

func (s *stubBorrowingService) ListReturnRequests(ctx context.Context) ([]*entities.BorrowingView, error) {
	return []*entities.BorrowingView{}, nil
}

func withSession(req *http.Request) *http.Request {
	session := &entities.Session{Token: "tok", User: entities.User{ID: "u1", IsPaid: true}}
	return req.WithContext(middleware.ContextWithSession(req.Context(), session))
}

func TestRequestBorrow_Created(t *testing.T) {
	handler := NewBorrowingHandler(&stubBorrowingService{
		borrowing: &entities.Borrowing{ID: "b1", Status: entities.BorrowingStatusPending},
	}, nil)

	body := `{"book_id":"bk1","delivery":{"full_name":"Jane Reader","phone_number":"555-0100","address":"12 Library Lane","city":"Pune","postal_code":"411001"}}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/borrowings", strings.NewReader(body)))
	rec := httptest.NewRecorder()

	handler.RequestBorrow(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRequestBorrow_MissingDeliveryFields(t *testing.T) {
	handler := NewBorrowingHandler(&stubBorrowingService{}, nil)

	body := `{"book_id":"bk1","delivery":{"full_name":"Jane Reader"}}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/borrowings", strings.NewReader(body)))
	rec := httptest.NewRecorder()

	handler.RequestBorrow(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestBorrow_GateFailureIsConflict(t *testing.T) {
	handler := NewBorrowingHandler(&stubBorrowingService{
		borrowErr: apperrors.NewConflictError("You have already borrowed 2 books. Please return a book before borrowing another."),
	}, nil)

	body := `{"book_id":"bk1","delivery":{"full_name":"Jane Reader","phone_number":"555-0100","address":"12 Library Lane","city":"Pune","postal_code":"411001"}}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/borrowings", strings.NewReader(body)))
	rec := httptest.NewRecorder()

	handler.RequestBorrow(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already borrowed 2 books")
}

func TestAcceptRequest_WrongStateIsConflict(t *testing.T) {
	handler := NewBorrowingHandler(&stubBorrowingService{
		acceptErr: apperrors.NewConflictError("borrowing b1 is borrowed, expected pending"),
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/borrowings/b1/accept", nil)
	req.SetPathValue("id", "b1")
	rec := httptest.NewRecorder()

	handler.AcceptRequest(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAcceptRequest_OK(t *testing.T) {
	service := &stubBorrowingService{}
	handler := NewBorrowingHandler(service, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/borrowings/b1/accept", nil)
	req.SetPathValue("id", "b1")
	rec := httptest.NewRecorder()

	handler.AcceptRequest(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"b1"}, service.accepted)
}
