package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/halcyon-labs/safeindex/pkg/models"
)

// PostgresStatusStore implements StatusStore using PostgreSQL. The
// safe_statuses table is append-only; nothing in this store updates or
// deletes its rows.
type PostgresStatusStore struct {
	db *sql.DB
}

func NewPostgresStatusStore(db *sql.DB) *PostgresStatusStore {
	return &PostgresStatusStore{db: db}
}

func (s *PostgresStatusStore) SaveLast(ctx context.Context, last *models.SafeLastStatus) (bool, error) {
	owners, err := json.Marshal(last.Owners)
	if err != nil {
		return false, fmt.Errorf("failed to encode owners for %s: %w", last.Address, err)
	}
	// xmax = 0 only for freshly inserted rows, so the writer can tell
	// creation from overwrite.
	query := `
		INSERT INTO safe_last_statuses (address, nonce, threshold, owners, master_copy, block_number, tx_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (address) DO UPDATE SET
			nonce = EXCLUDED.nonce,
			threshold = EXCLUDED.threshold,
			owners = EXCLUDED.owners,
			master_copy = EXCLUDED.master_copy,
			block_number = EXCLUDED.block_number,
			tx_hash = EXCLUDED.tx_hash
		RETURNING (xmax = 0)
	`
	var created bool
	err = s.db.QueryRowContext(ctx, query,
		last.Address, last.Nonce, last.Threshold, string(owners), last.MasterCopy, last.BlockNumber, last.TxHash,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("failed to save last status for %s: %w", last.Address, err)
	}
	return created, nil
}

func (s *PostgresStatusStore) Append(ctx context.Context, st *models.SafeStatus) error {
	owners, err := json.Marshal(st.Owners)
	if err != nil {
		return fmt.Errorf("failed to encode owners for %s: %w", st.Address, err)
	}
	query := `
		INSERT INTO safe_statuses (address, nonce, threshold, owners, master_copy, block_number, tx_hash, created)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err = s.db.QueryRowContext(ctx, query,
		st.Address, st.Nonce, st.Threshold, string(owners), st.MasterCopy, st.BlockNumber, st.TxHash, st.Created,
	).Scan(&st.ID)
	if err != nil {
		return fmt.Errorf("failed to append status for %s: %w", st.Address, err)
	}
	return nil
}

func (s *PostgresStatusStore) History(ctx context.Context, safe string) ([]*models.SafeStatus, error) {
	query := `
		SELECT id, address, nonce, threshold, owners, master_copy, block_number, tx_hash, created
		FROM safe_statuses
		WHERE address = $1
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, safe)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history for %s: %w", safe, err)
	}
	defer func() { _ = rows.Close() }()

	var results []*models.SafeStatus
	for rows.Next() {
		var st models.SafeStatus
		var owners string
		var masterCopy, txHash sql.NullString
		if err := rows.Scan(&st.ID, &st.Address, &st.Nonce, &st.Threshold, &owners, &masterCopy, &st.BlockNumber, &txHash, &st.Created); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(owners), &st.Owners); err != nil {
			return nil, fmt.Errorf("corrupt owners JSON in status %d: %w", st.ID, err)
		}
		st.MasterCopy = masterCopy.String
		st.TxHash = txHash.String
		results = append(results, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
