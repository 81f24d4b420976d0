package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/halcyon-labs/safeindex/pkg/models"
)

// PostgresMasterCopyStore implements MasterCopyStore using PostgreSQL.
type PostgresMasterCopyStore struct {
	db *sql.DB
}

func NewPostgresMasterCopyStore(db *sql.DB) *PostgresMasterCopyStore {
	return &PostgresMasterCopyStore{db: db}
}

func (s *PostgresMasterCopyStore) Save(ctx context.Context, mc *models.MasterCopy) error {
	query := `
		INSERT INTO master_copies (address, version, deployer, last_indexed_block)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address) DO UPDATE SET
			version = EXCLUDED.version,
			deployer = EXCLUDED.deployer,
			last_indexed_block = EXCLUDED.last_indexed_block
	`
	_, err := s.db.ExecContext(ctx, query, mc.Address, mc.Version, mc.Deployer, mc.LastIndexedBlock)
	if err != nil {
		return fmt.Errorf("failed to save master copy %s: %w", mc.Address, err)
	}
	return nil
}

func (s *PostgresMasterCopyStore) VersionForAddress(ctx context.Context, address string) (string, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT version FROM master_copies WHERE address = $1", address)

	var version string
	err := row.Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get master copy version for %s: %w", address, err)
	}
	return version, nil
}
