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

func newDamagedLostAdapterMock(t *testing.T) (repositories.DamagedLostRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewDamagedLostAdapter(postgres.NewClientFromDB(db)), mock
}

func TestRecord_TerminatesBorrowingAtomically(t *testing.T) {
	adapter, mock := newDamagedLostAdapterMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE borrowings SET status = \$2`).
		WithArgs("b1", entities.ConditionDamaged, sqlmock.AnyArg(), entities.BorrowingStatusBorrowed).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "damaged_lost"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := adapter.Record(context.Background(), &entities.DamagedLost{
		ID:          "dl1",
		BorrowingID: "b1",
		Condition:   entities.ConditionDamaged,
		FineAmount:  250,
		CreatedAt:   time.Now(),
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_InactiveBorrowingIsConflict(t *testing.T) {
	adapter, mock := newDamagedLostAdapterMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE borrowings SET status = \$2`).
		WithArgs("b1", entities.ConditionLost, sqlmock.AnyArg(), entities.BorrowingStatusBorrowed).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := adapter.Record(context.Background(), &entities.DamagedLost{
		ID:          "dl1",
		BorrowingID: "b1",
		Condition:   entities.ConditionLost,
		FineAmount:  500,
		CreatedAt:   time.Now(),
	})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaiveFine(t *testing.T) {
	adapter, mock := newDamagedLostAdapterMock(t)

	mock.ExpectExec(`UPDATE "damaged_lost" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := adapter.WaiveFine(context.Background(), "dl1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaiveFine_MissingRecordIsNotFound(t *testing.T) {
	adapter, mock := newDamagedLostAdapterMock(t)

	mock.ExpectExec(`UPDATE "damaged_lost" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := adapter.WaiveFine(context.Background(), "missing")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_ScansRecords(t *testing.T) {
	adapter, mock := newDamagedLostAdapterMock(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM "damaged_lost"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "borrowing_id", "condition", "fine_amount", "fine_waived", "created_at",
		}).
			AddRow("dl1", "b1", entities.ConditionDamaged, 250.0, false, now).
			AddRow("dl2", "b2", entities.ConditionLost, 500.0, true, now))

	records, err := adapter.List(context.Background())

	assert.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, entities.ConditionDamaged, records[0].Condition)
	assert.True(t, records[1].FineWaived)
	assert.NoError(t, mock.ExpectationsWereMet())
}
