package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/halcyon-labs/safeindex/pkg/models"
)

// PostgresConfirmationStore implements ConfirmationStore using PostgreSQL.
type PostgresConfirmationStore struct {
	db *sql.DB
}

func NewPostgresConfirmationStore(db *sql.DB) *PostgresConfirmationStore {
	return &PostgresConfirmationStore{db: db}
}

func (s *PostgresConfirmationStore) Insert(ctx context.Context, c *models.MultisigConfirmation) error {
	query := `
		INSERT INTO multisig_confirmations (multisig_transaction_hash, multisig_transaction_id, owner, signature, created)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		c.MultisigTransactionHash, c.MultisigTransactionID, c.Owner, c.Signature, c.Created,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to insert confirmation for %s: %w", c.MultisigTransactionHash, err)
	}
	return nil
}

// BindByHash binds every unbound confirmation referencing txHash in one
// conditional statement. The IS NULL predicate makes concurrent creations of
// the same transaction bind each confirmation at most once.
func (s *PostgresConfirmationStore) BindByHash(ctx context.Context, txHash string) (int64, error) {
	query := `
		UPDATE multisig_confirmations
		SET multisig_transaction_id = $1
		WHERE multisig_transaction_hash = $1 AND multisig_transaction_id IS NULL
	`
	res, err := s.db.ExecContext(ctx, query, txHash)
	if err != nil {
		return 0, fmt.Errorf("failed to bind confirmations for %s: %w", txHash, err)
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count bound confirmations for %s: %w", txHash, err)
	}
	return updated, nil
}

// SetTransaction persists only the back-reference field.
func (s *PostgresConfirmationStore) SetTransaction(ctx context.Context, confirmationID int64, txHash string) error {
	query := `UPDATE multisig_confirmations SET multisig_transaction_id = $2 WHERE id = $1`
	_, err := s.db.ExecContext(ctx, query, confirmationID, txHash)
	if err != nil {
		return fmt.Errorf("failed to set transaction on confirmation %d: %w", confirmationID, err)
	}
	return nil
}
