package uploads

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestPGLedgerAppendEvictsOldest(t *testing.T) {
	t.Parallel()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ledger := &PGLedger{DB: db}
	now := time.Now().UTC()
	newRec := Upload{ID: "r6", UserID: "u1", Filename: "q6.csv", StorageKey: "k6", CreatedAt: now}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM users WHERE id = $1 FOR UPDATE`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u1"))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO uploads`)).
		WithArgs("r6", "u1", "q6.csv", "k6", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM uploads WHERE user_id = $1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))
	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM uploads`)).
		WithArgs("u1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "filename", "storage_key", "created_at"}).
			AddRow("r1", "q1.csv", "k1", now.Add(-time.Hour)))
	mock.ExpectCommit()

	evicted, err := ledger.Append(context.Background(), "u1", newRec)
	require.NoError(t, err)
	require.Len(t, evicted, 1)
	require.Equal(t, "r1", evicted[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGLedgerAppendBelowCapacity(t *testing.T) {
	t.Parallel()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ledger := &PGLedger{DB: db}
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM users WHERE id = $1 FOR UPDATE`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u1"))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO uploads`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM uploads WHERE user_id = $1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()

	evicted, err := ledger.Append(context.Background(), "u1",
		Upload{ID: "r1", UserID: "u1", Filename: "q1.csv", StorageKey: "k1", CreatedAt: now})
	require.NoError(t, err)
	require.Empty(t, evicted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGLedgerAppendMissingOwner(t *testing.T) {
	t.Parallel()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ledger := &PGLedger{DB: db}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM users WHERE id = $1 FOR UPDATE`)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err = ledger.Append(context.Background(), "ghost", rec("r1"))
	require.ErrorIs(t, err, ErrOwnerNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGLedgerRemoveNotFound(t *testing.T) {
	t.Parallel()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ledger := &PGLedger{DB: db}

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM uploads WHERE user_id = $1 AND id = $2`)).
		WithArgs("u1", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = ledger.Remove(context.Background(), "u1", "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
