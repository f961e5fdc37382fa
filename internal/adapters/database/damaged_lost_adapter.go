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

// DamagedLostAdapter implements the DamagedLostRepository interface
type DamagedLostAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDamagedLostAdapter creates a new damaged/lost adapter
func NewDamagedLostAdapter(client *postgres.Client) repositories.DamagedLostRepository {
	return &DamagedLostAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Record inserts a damaged/lost record and moves its borrowing to the
// matching terminal status, atomically. The borrowing must still be in
// borrowed status.
func (a *DamagedLostAdapter) Record(ctx context.Context, record *entities.DamagedLost) error {
	query, args, err := a.db.Insert("damaged_lost").Rows(goqu.Record{
		"id":           record.ID,
		"borrowing_id": record.BorrowingID,
		"condition":    record.Condition,
		"fine_amount":  record.FineAmount,
		"fine_waived":  record.FineWaived,
		"created_at":   record.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE borrowings SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4`,
		record.BorrowingID, record.Condition, time.Now(), entities.BorrowingStatusBorrowed,
	)
	if err != nil {
		return apperrors.NewInternalError("failed to update borrowing status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewConflictError(
			fmt.Sprintf("borrowing %s is not active", record.BorrowingID))
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create damaged/lost record", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit damaged/lost record", err)
	}
	return nil
}

// List retrieves all records
func (a *DamagedLostAdapter) List(ctx context.Context) ([]*entities.DamagedLost, error) {
	query, args, err := a.db.Select("id", "borrowing_id", "condition", "fine_amount", "fine_waived", "created_at").
		From("damaged_lost").
		Order(goqu.C("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list damaged/lost records", err)
	}
	defer rows.Close()

	records := []*entities.DamagedLost{}
	for rows.Next() {
		record := &entities.DamagedLost{}
		err := rows.Scan(
			&record.ID,
			&record.BorrowingID,
			&record.Condition,
			&record.FineAmount,
			&record.FineWaived,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan record", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating records", err)
	}

	return records, nil
}

// ListViews retrieves records joined with borrowing, member and book
func (a *DamagedLostAdapter) ListViews(ctx context.Context) ([]*entities.DamagedLostView, error) {
	query, args, err := a.db.Select(
		goqu.I("dl.id"), goqu.I("dl.borrowing_id"), goqu.I("dl.condition"),
		goqu.I("dl.fine_amount"), goqu.I("dl.fine_waived"), goqu.I("dl.created_at"),
		goqu.I("u.first_name"), goqu.I("u.last_name"), goqu.I("u.email"),
		goqu.I("bk.title"), goqu.I("bk.author"),
		goqu.I("b.borrow_date"), goqu.I("b.due_date"),
	).
		From(goqu.T("damaged_lost").As("dl")).
		Join(goqu.T("borrowings").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("dl.borrowing_id")))).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("b.user_id")))).
		Join(goqu.T("books").As("bk"), goqu.On(goqu.I("bk.id").Eq(goqu.I("b.book_id")))).
		Order(goqu.I("dl.created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list damaged/lost views", err)
	}
	defer rows.Close()

	views := []*entities.DamagedLostView{}
	for rows.Next() {
		view := &entities.DamagedLostView{}
		var firstName, lastName sql.NullString

		err := rows.Scan(
			&view.ID, &view.BorrowingID, &view.Condition,
			&view.FineAmount, &view.FineWaived, &view.CreatedAt,
			&firstName, &lastName, &view.MemberEmail,
			&view.BookTitle, &view.BookAuthor,
			&view.BorrowDate, &view.DueDate,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan view", err)
		}

		view.MemberName = joinName(firstName.String, lastName.String)
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating views", err)
	}

	return views, nil
}

// WaiveFine waives the fine on a record. Waiving an already-waived fine is
// a no-op, not an error.
func (a *DamagedLostAdapter) WaiveFine(ctx context.Context, id string) error {
	return a.updateFine(ctx, id, goqu.Record{"fine_waived": true})
}

// ImposeFine sets the fine amount on a record
func (a *DamagedLostAdapter) ImposeFine(ctx context.Context, id string, amount float64) error {
	return a.updateFine(ctx, id, goqu.Record{"fine_amount": amount})
}

func (a *DamagedLostAdapter) updateFine(ctx context.Context, id string, record goqu.Record) error {
	query, args, err := a.db.Update("damaged_lost").
		Set(record).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update fine", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("damaged/lost record %s not found", id))
	}

	return nil
}
