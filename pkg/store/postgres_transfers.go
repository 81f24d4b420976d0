package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/halcyon-labs/safeindex/pkg/models"
)

// PostgresTransferStore implements TransferStore using PostgreSQL.
type PostgresTransferStore struct {
	db *sql.DB
}

func NewPostgresTransferStore(db *sql.DB) *PostgresTransferStore {
	return &PostgresTransferStore{db: db}
}

func (s *PostgresTransferStore) InsertTokenTransfer(ctx context.Context, t *models.TokenTransfer) error {
	query := `
		INSERT INTO token_transfers (tx_hash, token_address, _from, _to, value, block_number, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		t.TxHash, t.TokenAddress, t.From, t.To, t.Value, t.BlockNumber, t.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert token transfer %s: %w", t.TxHash, err)
	}
	return nil
}

func (s *PostgresTransferStore) InsertInternalTx(ctx context.Context, t *models.InternalTx) error {
	query := `
		INSERT INTO internal_txs (tx_hash, _from, _to, value, block_number, ts)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		t.TxHash, t.From, t.To, t.Value, t.BlockNumber, t.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert internal tx %s: %w", t.TxHash, err)
	}
	return nil
}

var (
	_ TransferStore     = (*PostgresTransferStore)(nil)
	_ TransactionStore  = (*PostgresTransactionStore)(nil)
	_ ConfirmationStore = (*PostgresConfirmationStore)(nil)
	_ StatusStore       = (*PostgresStatusStore)(nil)
	_ MasterCopyStore   = (*PostgresMasterCopyStore)(nil)
)
