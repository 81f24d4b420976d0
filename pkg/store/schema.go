package store

import (
	"context"
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS multisig_transactions (
	safe_tx_hash TEXT PRIMARY KEY,
	safe TEXT NOT NULL,
	proposer TEXT,
	executed BOOLEAN NOT NULL DEFAULT FALSE,
	trusted BOOLEAN NOT NULL DEFAULT FALSE,
	created TIMESTAMPTZ NOT NULL,
	modified TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS multisig_confirmations (
	id BIGSERIAL PRIMARY KEY,
	multisig_transaction_hash TEXT NOT NULL,
	multisig_transaction_id TEXT REFERENCES multisig_transactions (safe_tx_hash) ON DELETE CASCADE,
	owner TEXT NOT NULL,
	signature BYTEA,
	created TIMESTAMPTZ NOT NULL,
	UNIQUE (multisig_transaction_hash, owner)
);
CREATE INDEX IF NOT EXISTS idx_confirmations_tx_hash
	ON multisig_confirmations (multisig_transaction_hash);

CREATE TABLE IF NOT EXISTS token_transfers (
	id BIGSERIAL PRIMARY KEY,
	tx_hash TEXT NOT NULL,
	token_address TEXT NOT NULL,
	_from TEXT NOT NULL,
	_to TEXT NOT NULL,
	value TEXT NOT NULL,
	block_number BIGINT NOT NULL,
	ts TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS internal_txs (
	id BIGSERIAL PRIMARY KEY,
	tx_hash TEXT NOT NULL,
	_from TEXT NOT NULL,
	_to TEXT NOT NULL,
	value TEXT NOT NULL,
	block_number BIGINT NOT NULL,
	ts TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS master_copies (
	address TEXT PRIMARY KEY,
	version TEXT NOT NULL,
	deployer TEXT,
	last_indexed_block BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS safe_last_statuses (
	address TEXT PRIMARY KEY,
	nonce BIGINT NOT NULL,
	threshold BIGINT NOT NULL,
	owners TEXT NOT NULL,
	master_copy TEXT,
	block_number BIGINT NOT NULL,
	tx_hash TEXT
);

CREATE TABLE IF NOT EXISTS safe_statuses (
	id BIGSERIAL PRIMARY KEY,
	address TEXT NOT NULL,
	nonce BIGINT NOT NULL,
	threshold BIGINT NOT NULL,
	owners TEXT NOT NULL,
	master_copy TEXT,
	block_number BIGINT NOT NULL,
	tx_hash TEXT,
	created TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_safe_statuses_address
	ON safe_statuses (address, id);
`

// Init creates the index tables if they do not exist.
func Init(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
