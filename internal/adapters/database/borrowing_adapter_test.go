package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbridge/librental/internal/domain/entities"
	"github.com/bookbridge/librental/internal/domain/repositories"
	"github.com/bookbridge/librental/internal/infrastructure/clients/postgres"
	apperrors "github.com/bookbridge/librental/pkg/errors"
)

func newBorrowingAdapterMock(t *testing.T) (repositories.BorrowingRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewBorrowingAdapter(postgres.NewClientFromDB(db)), mock
}

func borrowingRow(id, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "book_id", "status", "borrow_date", "due_date",
		"return_date", "return_requested", "full_name", "phone_number",
		"address", "city", "postal_code", "created_at", "updated_at",
	}).AddRow(
		id, "u1", "bk1", status, now, now.AddDate(0, 0, 14),
		nil, false, "Jane Reader", "555-0100",
		"12 Library Lane", "Pune", "411001", now, now,
	)
}

func TestAcceptRequest_MovesCountersInOneTransaction(t *testing.T) {
	adapter, mock := newBorrowingAdapterMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)UPDATE borrowings SET status = \$2.*RETURNING book_id, user_id`).
		WithArgs("b1", entities.BorrowingStatusBorrowed, sqlmock.AnyArg(), entities.BorrowingStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"book_id", "user_id"}).AddRow("bk1", "u1"))
	mock.ExpectExec(`(?s)UPDATE books SET.*GREATEST\(available_copies - 1, 0\)`).
		WithArgs("bk1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)UPDATE users SET.*borrowed_books_count \+ 1`).
		WithArgs("u1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := adapter.AcceptRequest(context.Background(), "b1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptRequest_WrongStatusIsConflict(t *testing.T) {
	adapter, mock := newBorrowingAdapterMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)UPDATE borrowings SET status = \$2.*RETURNING book_id, user_id`).
		WillReturnRows(sqlmock.NewRows([]string{"book_id", "user_id"}))
	mock.ExpectQuery(`SELECT .* FROM "borrowings"`).
		WillReturnRows(borrowingRow("b1", entities.BorrowingStatusBorrowed))
	mock.ExpectRollback()

	err := adapter.AcceptRequest(context.Background(), "b1")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	assert.Contains(t, err.Error(), "expected pending")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptRequest_MissingBorrowingIsNotFound(t *testing.T) {
	adapter, mock := newBorrowingAdapterMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)UPDATE borrowings SET status = \$2.*RETURNING book_id, user_id`).
		WillReturnRows(sqlmock.NewRows([]string{"book_id", "user_id"}))
	mock.ExpectQuery(`SELECT .* FROM "borrowings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := adapter.AcceptRequest(context.Background(), "missing")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptReturn_ReleasesCopyAndDecrementsCount(t *testing.T) {
	adapter, mock := newBorrowingAdapterMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)UPDATE borrowings SET status = \$2, return_date = \$3.*RETURNING book_id, user_id`).
		WithArgs("b1", entities.BorrowingStatusReturned, sqlmock.AnyArg(), entities.BorrowingStatusBorrowed).
		WillReturnRows(sqlmock.NewRows([]string{"book_id", "user_id"}).AddRow("bk1", "u1"))
	mock.ExpectExec(`(?s)UPDATE books SET.*LEAST\(available_copies \+ 1, total_copies\)`).
		WithArgs("bk1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)UPDATE users SET.*GREATEST\(borrowed_books_count - 1, 0\)`).
		WithArgs("u1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := adapter.AcceptReturn(context.Background(), "b1", time.Now())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptReturn_PendingBorrowingIsConflict(t *testing.T) {
	adapter, mock := newBorrowingAdapterMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)UPDATE borrowings SET status = \$2, return_date = \$3.*RETURNING book_id, user_id`).
		WillReturnRows(sqlmock.NewRows([]string{"book_id", "user_id"}))
	mock.ExpectQuery(`SELECT .* FROM "borrowings"`).
		WillReturnRows(borrowingRow("b1", entities.BorrowingStatusPending))
	mock.ExpectRollback()

	err := adapter.AcceptReturn(context.Background(), "b1", time.Now())

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	assert.Contains(t, err.Error(), "expected borrowed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectPending_DeletesWithoutTouchingCounters(t *testing.T) {
	adapter, mock := newBorrowingAdapterMock(t)

	mock.ExpectExec(`DELETE FROM borrowings WHERE id = \$1 AND status = \$2`).
		WithArgs("b1", entities.BorrowingStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := adapter.RejectPending(context.Background(), "b1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectPending_AlreadyAcceptedIsConflict(t *testing.T) {
	adapter, mock := newBorrowingAdapterMock(t)

	mock.ExpectExec(`DELETE FROM borrowings WHERE id = \$1 AND status = \$2`).
		WithArgs("b1", entities.BorrowingStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .* FROM "borrowings"`).
		WillReturnRows(borrowingRow("b1", entities.BorrowingStatusBorrowed))

	err := adapter.RejectPending(context.Background(), "b1")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestReturn_OnlyFlagsBorrowedRows(t *testing.T) {
	adapter, mock := newBorrowingAdapterMock(t)

	mock.ExpectExec(`UPDATE borrowings SET return_requested = \$2`).
		WithArgs("b1", true, sqlmock.AnyArg(), entities.BorrowingStatusBorrowed).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := adapter.RequestReturn(context.Background(), "b1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestReturn_PendingRowIsConflict(t *testing.T) {
	adapter, mock := newBorrowingAdapterMock(t)

	mock.ExpectExec(`UPDATE borrowings SET return_requested = \$2`).
		WithArgs("b1", true, sqlmock.AnyArg(), entities.BorrowingStatusBorrowed).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .* FROM "borrowings"`).
		WillReturnRows(borrowingRow("b1", entities.BorrowingStatusPending))

	err := adapter.RequestReturn(context.Background(), "b1")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelActive_ReleasesCopy(t *testing.T) {
	adapter, mock := newBorrowingAdapterMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)DELETE FROM borrowings WHERE id = \$1 AND status = \$2.*RETURNING book_id`).
		WithArgs("b1", entities.BorrowingStatusBorrowed).
		WillReturnRows(sqlmock.NewRows([]string{"book_id"}).AddRow("bk1"))
	mock.ExpectExec(`(?s)UPDATE books SET.*LEAST\(available_copies \+ 1, total_copies\)`).
		WithArgs("bk1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := adapter.CancelActive(context.Background(), "b1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	adapter, mock := newBorrowingAdapterMock(t)

	mock.ExpectQuery(`SELECT .* FROM "borrowings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := adapter.GetByID(context.Background(), "missing")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
