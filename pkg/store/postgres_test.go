package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-labs/safeindex/pkg/models"
)

func TestPostgresTransactionStore_ByHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresTransactionStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"safe_tx_hash", "safe", "proposer", "executed", "trusted", "created", "modified"}).
		AddRow("0xhash", "0xsafe", "0xproposer", false, true, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT safe_tx_hash, safe, proposer, executed, trusted, created, modified FROM multisig_transactions WHERE safe_tx_hash = $1")).
		WithArgs("0xhash").
		WillReturnRows(rows)

	tx, err := s.ByHash(ctx, "0xhash")
	require.NoError(t, err)
	assert.Equal(t, "0xsafe", tx.Safe)
	assert.True(t, tx.Trusted)
	assert.Equal(t, "0xproposer", tx.Proposer)

	// Not found maps to the sentinel, not an error wrap of sql.ErrNoRows.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT safe_tx_hash")).
		WithArgs("0xmissing").
		WillReturnRows(sqlmock.NewRows([]string{"safe_tx_hash", "safe", "proposer", "executed", "trusted", "created", "modified"}))

	_, err = s.ByHash(ctx, "0xmissing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTransactionStore_MarkTrusted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresTransactionStore(db)
	modified := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE multisig_transactions SET trusted = TRUE, modified = $2 WHERE safe_tx_hash = $1")).
		WithArgs("0xhash", modified).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.MarkTrusted(context.Background(), "0xhash", modified))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresConfirmationStore_BindByHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresConfirmationStore(db)

	// The IS NULL predicate keeps the update conditional; the affected
	// count drives trust promotion.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE multisig_confirmations")).
		WithArgs("0xhash").
		WillReturnResult(sqlmock.NewResult(0, 3))

	updated, err := s.BindByHash(context.Background(), "0xhash")
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE multisig_confirmations")).
		WithArgs("0xother").
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err = s.BindByHash(context.Background(), "0xother")
	require.NoError(t, err)
	assert.Zero(t, updated)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresConfirmationStore_SetTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresConfirmationStore(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE multisig_confirmations SET multisig_transaction_id = $2 WHERE id = $1")).
		WithArgs(int64(7), "0xhash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.SetTransaction(context.Background(), 7, "0xhash"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStatusStore_Append(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStatusStore(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO safe_statuses")).
		WithArgs("0xsafe", int64(1), int64(2), `["0xa","0xb"]`, "0xmc", int64(100), "0xtx", now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	st := &models.SafeStatus{
		Address:     "0xsafe",
		Nonce:       1,
		Threshold:   2,
		Owners:      []string{"0xa", "0xb"},
		MasterCopy:  "0xmc",
		BlockNumber: 100,
		TxHash:      "0xtx",
		Created:     now,
	}
	require.NoError(t, s.Append(context.Background(), st))
	assert.Equal(t, int64(42), st.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStatusStore_SaveLastReportsCreation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStatusStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO safe_last_statuses")).
		WithArgs("0xsafe", int64(1), int64(2), `["0xa"]`, "0xmc", int64(10), "0xtx").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(true))

	created, err := s.SaveLast(context.Background(), &models.SafeLastStatus{
		Address:     "0xsafe",
		Nonce:       1,
		Threshold:   2,
		Owners:      []string{"0xa"},
		MasterCopy:  "0xmc",
		BlockNumber: 10,
		TxHash:      "0xtx",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMasterCopyStore_VersionForAddress(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresMasterCopyStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM master_copies WHERE address = $1")).
		WithArgs("0xmc").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("1.3.0"))

	version, err := s.VersionForAddress(context.Background(), "0xmc")
	require.NoError(t, err)
	assert.Equal(t, "1.3.0", version)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM master_copies WHERE address = $1")).
		WithArgs("0xunknown").
		WillReturnRows(sqlmock.NewRows([]string{"version"}))

	_, err = s.VersionForAddress(context.Background(), "0xunknown")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
