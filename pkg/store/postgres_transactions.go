package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/halcyon-labs/safeindex/pkg/models"
)

// PostgresTransactionStore implements TransactionStore using PostgreSQL.
type PostgresTransactionStore struct {
	db *sql.DB
}

func NewPostgresTransactionStore(db *sql.DB) *PostgresTransactionStore {
	return &PostgresTransactionStore{db: db}
}

func (s *PostgresTransactionStore) Insert(ctx context.Context, tx *models.MultisigTransaction) error {
	query := `
		INSERT INTO multisig_transactions (safe_tx_hash, safe, proposer, executed, trusted, created, modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		tx.SafeTxHash, tx.Safe, tx.Proposer, tx.Executed, tx.Trusted, tx.Created, tx.Modified,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", tx.SafeTxHash, err)
	}
	return nil
}

func (s *PostgresTransactionStore) ByHash(ctx context.Context, safeTxHash string) (*models.MultisigTransaction, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT safe_tx_hash, safe, proposer, executed, trusted, created, modified FROM multisig_transactions WHERE safe_tx_hash = $1",
		safeTxHash)

	var tx models.MultisigTransaction
	var proposer sql.NullString
	err := row.Scan(&tx.SafeTxHash, &tx.Safe, &proposer, &tx.Executed, &tx.Trusted, &tx.Created, &tx.Modified)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", safeTxHash, err)
	}
	tx.Proposer = proposer.String
	return &tx, nil
}

// MarkTrusted is a targeted update by hash. It never fetches the row first,
// so concurrent trust promotions cannot clobber fields written elsewhere.
func (s *PostgresTransactionStore) MarkTrusted(ctx context.Context, safeTxHash string, modified time.Time) error {
	query := `UPDATE multisig_transactions SET trusted = TRUE, modified = $2 WHERE safe_tx_hash = $1`
	_, err := s.db.ExecContext(ctx, query, safeTxHash, modified)
	if err != nil {
		return fmt.Errorf("failed to mark transaction %s trusted: %w", safeTxHash, err)
	}
	return nil
}

func (s *PostgresTransactionStore) Delete(ctx context.Context, safeTxHash string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM multisig_transactions WHERE safe_tx_hash = $1", safeTxHash)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", safeTxHash, err)
	}
	return nil
}
