package hooks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/halcyon-labs/safeindex/pkg/models"
	"github.com/halcyon-labs/safeindex/pkg/store"
)

// Binder reconciles confirmations and transactions created in either order.
// Whichever half arrives second completes the binding and promotes the
// transaction to trusted. All updates are single conditional statements;
// the binder never fetches a row to mutate and re-save it.
type Binder struct {
	txs   store.TransactionStore
	confs store.ConfirmationStore
	log   *slog.Logger
}

func NewBinder(txs store.TransactionStore, confs store.ConfirmationStore, log *slog.Logger) *Binder {
	return &Binder{txs: txs, confs: confs, log: log}
}

// Register subscribes the binder to both halves of the binding.
func (b *Binder) Register(r *Registry) {
	r.Register(models.KindMultisigTransaction, b.Handle)
	r.Register(models.KindMultisigConfirmation, b.Handle)
}

// Handle runs on creation only; updates and removals never rebind.
func (b *Binder) Handle(ctx context.Context, ev Event) error {
	if !ev.Created {
		return nil
	}

	switch v := ev.Entity.(type) {
	case *models.MultisigTransaction:
		return b.transactionCreated(ctx, v)
	case *models.MultisigConfirmation:
		return b.confirmationCreated(ctx, v)
	}
	return nil
}

// transactionCreated binds every confirmation that arrived before its
// transaction. The conditional update returns the affected count, so
// concurrent creations of the same transaction promote trust at most once
// per confirmation.
func (b *Binder) transactionCreated(ctx context.Context, tx *models.MultisigTransaction) error {
	updated, err := b.confs.BindByHash(ctx, tx.SafeTxHash)
	if err != nil {
		return fmt.Errorf("binding confirmations to %s: %w", tx.SafeTxHash, err)
	}
	if updated == 0 {
		return nil
	}

	now := time.Now().UTC()
	if err := b.txs.MarkTrusted(ctx, tx.SafeTxHash, now); err != nil {
		return fmt.Errorf("promoting trust on %s: %w", tx.SafeTxHash, err)
	}
	tx.Trusted = true
	tx.Modified = now

	b.log.DebugContext(ctx, "bound confirmations to new transaction",
		"safe_tx_hash", tx.SafeTxHash,
		"confirmations", updated,
	)
	return nil
}

func (b *Binder) confirmationCreated(ctx context.Context, c *models.MultisigConfirmation) error {
	if c.Bound() {
		// Binding already established; a targeted update by hash promotes
		// trust without a read-modify-write cycle.
		if err := b.txs.MarkTrusted(ctx, c.MultisigTransactionHash, c.Created); err != nil {
			return fmt.Errorf("promoting trust on %s: %w", c.MultisigTransactionHash, err)
		}
		return nil
	}

	if c.MultisigTransactionHash == "" {
		return nil
	}

	tx, err := b.txs.ByHash(ctx, c.MultisigTransactionHash)
	if errors.Is(err, store.ErrNotFound) {
		// The transaction has not been indexed yet. The binding completes
		// when its creation event runs the transaction-side branch.
		b.log.DebugContext(ctx, "confirmation left unbound, transaction not indexed",
			"safe_tx_hash", c.MultisigTransactionHash,
			"owner", c.Owner,
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("looking up transaction %s: %w", c.MultisigTransactionHash, err)
	}

	if err := b.txs.MarkTrusted(ctx, tx.SafeTxHash, c.Created); err != nil {
		return fmt.Errorf("promoting trust on %s: %w", tx.SafeTxHash, err)
	}
	if err := b.confs.SetTransaction(ctx, c.ID, tx.SafeTxHash); err != nil {
		return fmt.Errorf("persisting binding on confirmation %d: %w", c.ID, err)
	}

	tx.Trusted = true
	tx.Modified = c.Created
	c.MultisigTransactionID = &tx.SafeTxHash
	c.Transaction = tx

	b.log.DebugContext(ctx, "bound new confirmation to transaction",
		"safe_tx_hash", tx.SafeTxHash,
		"owner", c.Owner,
	)
	return nil
}
