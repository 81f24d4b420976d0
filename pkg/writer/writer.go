// Package writer is the ingestion facade used by the on-chain scanner and
// the API submission path. Every write inserts the row, then fires the
// mutation hooks synchronously; the write is complete only once every hook
// has run.
package writer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/halcyon-labs/safeindex/pkg/hooks"
	"github.com/halcyon-labs/safeindex/pkg/models"
	"github.com/halcyon-labs/safeindex/pkg/store"
)

// Writer couples the durable stores with the hook registry.
type Writer struct {
	txs          store.TransactionStore
	confs        store.ConfirmationStore
	transfers    store.TransferStore
	statuses     store.StatusStore
	masterCopies store.MasterCopyStore
	registry     *hooks.Registry
	log          *slog.Logger
}

func New(
	txs store.TransactionStore,
	confs store.ConfirmationStore,
	transfers store.TransferStore,
	statuses store.StatusStore,
	masterCopies store.MasterCopyStore,
	registry *hooks.Registry,
	log *slog.Logger,
) *Writer {
	return &Writer{
		txs:          txs,
		confs:        confs,
		transfers:    transfers,
		statuses:     statuses,
		masterCopies: masterCopies,
		registry:     registry,
		log:          log,
	}
}

// CreateTransaction indexes a newly proposed multisig transaction.
func (w *Writer) CreateTransaction(ctx context.Context, tx *models.MultisigTransaction) error {
	if err := w.txs.Insert(ctx, tx); err != nil {
		return err
	}
	return w.registry.Saved(ctx, tx, true)
}

// CreateConfirmation indexes a new signature confirmation.
func (w *Writer) CreateConfirmation(ctx context.Context, c *models.MultisigConfirmation) error {
	if err := w.confs.Insert(ctx, c); err != nil {
		return err
	}
	return w.registry.Saved(ctx, c, true)
}

// CreateTokenTransfer indexes a token movement.
func (w *Writer) CreateTokenTransfer(ctx context.Context, t *models.TokenTransfer) error {
	if err := w.transfers.InsertTokenTransfer(ctx, t); err != nil {
		return err
	}
	return w.registry.Saved(ctx, t, true)
}

// CreateInternalTx indexes an internal value movement.
func (w *Writer) CreateInternalTx(ctx context.Context, t *models.InternalTx) error {
	if err := w.transfers.InsertInternalTx(ctx, t); err != nil {
		return err
	}
	return w.registry.Saved(ctx, t, true)
}

// SaveLastStatus writes the current-status row for a safe and fires the
// hooks with the creation flag reported by the store.
func (w *Writer) SaveLastStatus(ctx context.Context, last *models.SafeLastStatus) error {
	created, err := w.statuses.SaveLast(ctx, last)
	if err != nil {
		return err
	}
	return w.registry.Saved(ctx, last, created)
}

// SaveMasterCopy writes a master-copy registry entry.
func (w *Writer) SaveMasterCopy(ctx context.Context, mc *models.MasterCopy) error {
	if err := w.masterCopies.Save(ctx, mc); err != nil {
		return err
	}
	return w.registry.Saved(ctx, mc, false)
}

// DeleteTransaction removes a transaction (reorg handling) and fires the
// removal hooks.
func (w *Writer) DeleteTransaction(ctx context.Context, tx *models.MultisigTransaction) error {
	if err := w.txs.Delete(ctx, tx.SafeTxHash); err != nil {
		return fmt.Errorf("deleting transaction %s: %w", tx.SafeTxHash, err)
	}
	return w.registry.Deleted(ctx, tx)
}
