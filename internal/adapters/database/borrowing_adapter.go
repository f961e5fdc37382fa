package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/bookbridge/librental/internal/domain/entities"
	"github.com/bookbridge/librental/internal/domain/repositories"
	"github.com/bookbridge/librental/internal/infrastructure/clients/postgres"
	apperrors "github.com/bookbridge/librental/pkg/errors"
)

var borrowingColumns = []interface{}{
	"id", "user_id", "book_id", "status", "borrow_date", "due_date",
	"return_date", "return_requested", "full_name", "phone_number",
	"address", "city", "postal_code", "created_at", "updated_at",
}

// Counter updates shared by the lifecycle transitions. The book expressions
// recompute the availability flag from the floored/capped copy count, so
// available == (available_copies > 0) holds after every transition.
const (
	reserveCopySQL = `
		UPDATE books SET
			available_copies = GREATEST(available_copies - 1, 0),
			available = GREATEST(available_copies - 1, 0) > 0,
			updated_at = $2
		WHERE id = $1`

	releaseCopySQL = `
		UPDATE books SET
			available_copies = LEAST(available_copies + 1, total_copies),
			available = true,
			updated_at = $2
		WHERE id = $1`

	incrementBorrowedSQL = `
		UPDATE users SET
			borrowed_books_count = borrowed_books_count + 1,
			updated_at = $2
		WHERE id = $1`

	decrementBorrowedSQL = `
		UPDATE users SET
			borrowed_books_count = GREATEST(borrowed_books_count - 1, 0),
			updated_at = $2
		WHERE id = $1`
)

// BorrowingAdapter implements the BorrowingRepository interface. Lifecycle
// transitions run in a single transaction: the status change and the
// denormalized book/user counters commit or roll back together.
type BorrowingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBorrowingAdapter creates a new borrowing adapter
func NewBorrowingAdapter(client *postgres.Client) repositories.BorrowingRepository {
	return &BorrowingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a new pending borrow request. No counters move until
// acceptance.
func (a *BorrowingAdapter) Create(ctx context.Context, borrowing *entities.Borrowing) error {
	query, args, err := a.db.Insert("borrowings").Rows(a.record(borrowing)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create borrowing", err)
	}

	return nil
}

// CreateActive inserts a borrowing directly in borrowed status, reserving a
// copy and bumping the member's borrowed count in the same transaction.
func (a *BorrowingAdapter) CreateActive(ctx context.Context, borrowing *entities.Borrowing) error {
	query, args, err := a.db.Insert("borrowings").Rows(a.record(borrowing)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	now := time.Now()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create borrowing", err)
	}
	if _, err := tx.ExecContext(ctx, reserveCopySQL, borrowing.BookID, now); err != nil {
		return apperrors.NewInternalError("failed to reserve book copy", err)
	}
	if _, err := tx.ExecContext(ctx, incrementBorrowedSQL, borrowing.UserID, now); err != nil {
		return apperrors.NewInternalError("failed to update member borrowed count", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit borrowing", err)
	}
	return nil
}

// GetByID retrieves a borrowing by ID
func (a *BorrowingAdapter) GetByID(ctx context.Context, id string) (*entities.Borrowing, error) {
	query, args, err := a.db.Select(borrowingColumns...).
		From("borrowings").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	borrowing, err := scanBorrowing(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("borrowing with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get borrowing", err)
	}

	return borrowing, nil
}

// ListWithDetails retrieves borrowings joined with member and book rows
func (a *BorrowingAdapter) ListWithDetails(ctx context.Context, filter repositories.BorrowingFilter) ([]*entities.BorrowingView, error) {
	ds := a.db.Select(
		goqu.I("b.id"), goqu.I("b.user_id"), goqu.I("b.book_id"),
		goqu.I("b.status"), goqu.I("b.borrow_date"), goqu.I("b.due_date"),
		goqu.I("b.return_date"), goqu.I("b.return_requested"),
		goqu.I("b.full_name"), goqu.I("b.phone_number"), goqu.I("b.address"),
		goqu.I("b.city"), goqu.I("b.postal_code"),
		goqu.I("b.created_at"), goqu.I("b.updated_at"),
		goqu.I("u.first_name"), goqu.I("u.last_name"), goqu.I("u.email"),
		goqu.I("bk.title"), goqu.I("bk.author"), goqu.I("bk.image"),
	).
		From(goqu.T("borrowings").As("b")).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("b.user_id")))).
		Join(goqu.T("books").As("bk"), goqu.On(goqu.I("bk.id").Eq(goqu.I("b.book_id"))))

	if filter.UserID != "" {
		ds = ds.Where(goqu.I("b.user_id").Eq(filter.UserID))
	}
	if len(filter.Statuses) > 0 {
		ds = ds.Where(goqu.I("b.status").In(filter.Statuses))
	}
	if filter.ReturnRequested != nil {
		ds = ds.Where(goqu.I("b.return_requested").Eq(*filter.ReturnRequested))
	}
	if filter.OrderByBorrowDateDesc {
		ds = ds.Order(goqu.I("b.borrow_date").Desc())
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list borrowings", err)
	}
	defer rows.Close()

	views := []*entities.BorrowingView{}
	for rows.Next() {
		view := &entities.BorrowingView{}
		var returnDate sql.NullTime
		var fullName, phoneNumber, address, city, postalCode sql.NullString
		var firstName, lastName, image sql.NullString

		err := rows.Scan(
			&view.ID, &view.UserID, &view.BookID,
			&view.Status, &view.BorrowDate, &view.DueDate,
			&returnDate, &view.ReturnRequested,
			&fullName, &phoneNumber, &address, &city, &postalCode,
			&view.CreatedAt, &view.UpdatedAt,
			&firstName, &lastName, &view.MemberEmail,
			&view.BookTitle, &view.BookAuthor, &image,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan borrowing", err)
		}

		if returnDate.Valid {
			t := returnDate.Time
			view.ReturnDate = &t
		}
		view.Delivery = entities.DeliveryDetails{
			FullName:    fullName.String,
			PhoneNumber: phoneNumber.String,
			Address:     address.String,
			City:        city.String,
			PostalCode:  postalCode.String,
		}
		view.MemberName = joinName(firstName.String, lastName.String)
		view.BookImage = image.String
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating borrowings", err)
	}

	return views, nil
}

// CountActiveByUser counts a member's pending+borrowed borrowings
func (a *BorrowingAdapter) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	query, args, err := a.db.Select(goqu.COUNT("id")).
		From("borrowings").
		Where(
			goqu.Ex{"user_id": userID},
			goqu.C("status").In(entities.BorrowingStatusPending, entities.BorrowingStatusBorrowed),
		).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count active borrowings", err)
	}

	return count, nil
}

// AcceptRequest moves a pending borrowing to borrowed, reserving a copy and
// bumping the member's borrowed count
func (a *BorrowingAdapter) AcceptRequest(ctx context.Context, id string) error {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	now := time.Now()
	var bookID, userID string
	err = tx.QueryRowContext(ctx, `
		UPDATE borrowings SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4
		RETURNING book_id, user_id`,
		id, entities.BorrowingStatusBorrowed, now, entities.BorrowingStatusPending,
	).Scan(&bookID, &userID)
	if err == sql.ErrNoRows {
		return a.guardError(ctx, id, entities.BorrowingStatusPending)
	}
	if err != nil {
		return apperrors.NewInternalError("failed to accept borrow request", err)
	}

	if _, err := tx.ExecContext(ctx, reserveCopySQL, bookID, now); err != nil {
		return apperrors.NewInternalError("failed to reserve book copy", err)
	}
	if _, err := tx.ExecContext(ctx, incrementBorrowedSQL, userID, now); err != nil {
		return apperrors.NewInternalError("failed to update member borrowed count", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit accept", err)
	}
	return nil
}

// RejectPending deletes a pending borrowing. No counters move: acceptance,
// not creation, is what reserves a copy.
func (a *BorrowingAdapter) RejectPending(ctx context.Context, id string) error {
	result, err := a.client.DB().ExecContext(ctx, `
		DELETE FROM borrowings WHERE id = $1 AND status = $2`,
		id, entities.BorrowingStatusPending,
	)
	if err != nil {
		return apperrors.NewInternalError("failed to reject borrow request", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return a.guardError(ctx, id, entities.BorrowingStatusPending)
	}

	return nil
}

// RequestReturn flags an active borrowing for return
func (a *BorrowingAdapter) RequestReturn(ctx context.Context, id string) error {
	return a.setReturnRequested(ctx, id, true)
}

// RejectReturn clears the return request flag
func (a *BorrowingAdapter) RejectReturn(ctx context.Context, id string) error {
	return a.setReturnRequested(ctx, id, false)
}

func (a *BorrowingAdapter) setReturnRequested(ctx context.Context, id string, requested bool) error {
	result, err := a.client.DB().ExecContext(ctx, `
		UPDATE borrowings SET return_requested = $2, updated_at = $3
		WHERE id = $1 AND status = $4`,
		id, requested, time.Now(), entities.BorrowingStatusBorrowed,
	)
	if err != nil {
		return apperrors.NewInternalError("failed to update return request", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return a.guardError(ctx, id, entities.BorrowingStatusBorrowed)
	}

	return nil
}

// AcceptReturn moves a borrowed borrowing to returned, releasing the copy
// and decrementing the member's borrowed count
func (a *BorrowingAdapter) AcceptReturn(ctx context.Context, id string, returnedAt time.Time) error {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var bookID, userID string
	err = tx.QueryRowContext(ctx, `
		UPDATE borrowings SET status = $2, return_date = $3, return_requested = false, updated_at = $3
		WHERE id = $1 AND status = $4
		RETURNING book_id, user_id`,
		id, entities.BorrowingStatusReturned, returnedAt, entities.BorrowingStatusBorrowed,
	).Scan(&bookID, &userID)
	if err == sql.ErrNoRows {
		return a.guardError(ctx, id, entities.BorrowingStatusBorrowed)
	}
	if err != nil {
		return apperrors.NewInternalError("failed to accept return", err)
	}

	if _, err := tx.ExecContext(ctx, releaseCopySQL, bookID, returnedAt); err != nil {
		return apperrors.NewInternalError("failed to release book copy", err)
	}
	if _, err := tx.ExecContext(ctx, decrementBorrowedSQL, userID, returnedAt); err != nil {
		return apperrors.NewInternalError("failed to update member borrowed count", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit return", err)
	}
	return nil
}

// CancelActive deletes a borrowed borrowing and releases its copy
func (a *BorrowingAdapter) CancelActive(ctx context.Context, id string) error {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var bookID string
	err = tx.QueryRowContext(ctx, `
		DELETE FROM borrowings WHERE id = $1 AND status = $2
		RETURNING book_id`,
		id, entities.BorrowingStatusBorrowed,
	).Scan(&bookID)
	if err == sql.ErrNoRows {
		return a.guardError(ctx, id, entities.BorrowingStatusBorrowed)
	}
	if err != nil {
		return apperrors.NewInternalError("failed to cancel borrowing", err)
	}

	if _, err := tx.ExecContext(ctx, releaseCopySQL, bookID, time.Now()); err != nil {
		return apperrors.NewInternalError("failed to release book copy", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit cancel", err)
	}
	return nil
}

// guardError distinguishes a missing borrowing from one in the wrong state
// after a guarded transition touched zero rows.
func (a *BorrowingAdapter) guardError(ctx context.Context, id, expected string) error {
	borrowing, err := a.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return apperrors.NewConflictError(
		fmt.Sprintf("borrowing %s is %s, expected %s", id, borrowing.Status, expected))
}

func (a *BorrowingAdapter) record(borrowing *entities.Borrowing) goqu.Record {
	return goqu.Record{
		"id":               borrowing.ID,
		"user_id":          borrowing.UserID,
		"book_id":          borrowing.BookID,
		"status":           borrowing.Status,
		"borrow_date":      borrowing.BorrowDate,
		"due_date":         borrowing.DueDate,
		"return_date":      borrowing.ReturnDate,
		"return_requested": borrowing.ReturnRequested,
		"full_name":        borrowing.Delivery.FullName,
		"phone_number":     borrowing.Delivery.PhoneNumber,
		"address":          borrowing.Delivery.Address,
		"city":             borrowing.Delivery.City,
		"postal_code":      borrowing.Delivery.PostalCode,
		"created_at":       borrowing.CreatedAt,
		"updated_at":       borrowing.UpdatedAt,
	}
}

func scanBorrowing(row rowScanner) (*entities.Borrowing, error) {
	borrowing := &entities.Borrowing{}
	var returnDate sql.NullTime
	var fullName, phoneNumber, address, city, postalCode sql.NullString

	err := row.Scan(
		&borrowing.ID,
		&borrowing.UserID,
		&borrowing.BookID,
		&borrowing.Status,
		&borrowing.BorrowDate,
		&borrowing.DueDate,
		&returnDate,
		&borrowing.ReturnRequested,
		&fullName,
		&phoneNumber,
		&address,
		&city,
		&postalCode,
		&borrowing.CreatedAt,
		&borrowing.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if returnDate.Valid {
		t := returnDate.Time
		borrowing.ReturnDate = &t
	}
	borrowing.Delivery = entities.DeliveryDetails{
		FullName:    fullName.String,
		PhoneNumber: phoneNumber.String,
		Address:     address.String,
		City:        city.String,
		PostalCode:  postalCode.String,
	}
	return borrowing, nil
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
