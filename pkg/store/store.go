// Package store implements durable storage for the multisig index.
// It supports Postgres via database/sql plus an in-memory variant for tests
// and standalone mode. All binder-facing updates are single conditional
// statements so concurrent writers never race through read-modify-write.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/halcyon-labs/safeindex/pkg/models"
)

var (
	// ErrNotFound abstracts the standard not-found outcome of point lookups.
	ErrNotFound = errors.New("entity not found")
)

// TransactionStore persists proposed multisig transactions.
type TransactionStore interface {
	Insert(ctx context.Context, tx *models.MultisigTransaction) error

	// ByHash is a point lookup by the unique safe transaction hash.
	// Returns ErrNotFound if no row matches.
	ByHash(ctx context.Context, safeTxHash string) (*models.MultisigTransaction, error)

	// MarkTrusted sets trusted and refreshes the modification timestamp on
	// the transaction with the given hash. Only those two fields are
	// written. A missing row is not an error.
	MarkTrusted(ctx context.Context, safeTxHash string, modified time.Time) error

	// Delete removes a transaction row. Used by reorg handling; fires the
	// removal hook from the writer path.
	Delete(ctx context.Context, safeTxHash string) error
}

// ConfirmationStore persists signature confirmations.
type ConfirmationStore interface {
	Insert(ctx context.Context, c *models.MultisigConfirmation) error

	// BindByHash sets the back-reference on every not-yet-bound
	// confirmation whose referenced hash equals txHash, in a single
	// conditional update. Returns the number of rows bound.
	BindByHash(ctx context.Context, txHash string) (int64, error)

	// SetTransaction persists the back-reference on a single confirmation.
	// Only that field is written.
	SetTransaction(ctx context.Context, confirmationID int64, txHash string) error
}

// StatusStore persists the mutable per-safe status row and its append-only
// history.
type StatusStore interface {
	// SaveLast inserts or overwrites the single current-status row for the
	// safe. Returns true when the row was freshly created.
	SaveLast(ctx context.Context, last *models.SafeLastStatus) (bool, error)

	// Append adds an immutable snapshot row and fills in its assigned ID.
	Append(ctx context.Context, s *models.SafeStatus) error

	// History returns snapshots for a safe, oldest first.
	History(ctx context.Context, safe string) ([]*models.SafeStatus, error)
}

// MasterCopyStore persists the versioned master-copy registry.
type MasterCopyStore interface {
	Save(ctx context.Context, mc *models.MasterCopy) error

	// VersionForAddress returns the version string of the master copy
	// deployed at the address. Returns ErrNotFound for unknown addresses.
	VersionForAddress(ctx context.Context, address string) (string, error)
}

// TransferStore persists token and internal transfers. The hook pipeline
// treats both as read-only; writers insert them and fire events.
type TransferStore interface {
	InsertTokenTransfer(ctx context.Context, t *models.TokenTransfer) error
	InsertInternalTx(ctx context.Context, t *models.InternalTx) error
}
