package hooks

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-labs/safeindex/pkg/models"
	"github.com/halcyon-labs/safeindex/pkg/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestBinder(idx *store.MemoryIndex) *Binder {
	return NewBinder(idx, idx.Confirmations(), testLogger())
}

// Confirmation arrives first: no binding happens until the transaction is
// created, then the transaction-side branch binds it and promotes trust.
func TestBinder_ConfirmationBeforeTransaction(t *testing.T) {
	ctx := context.Background()
	idx := store.NewMemoryIndex()
	b := newTestBinder(idx)

	c := &models.MultisigConfirmation{
		MultisigTransactionHash: "0xhash",
		Owner:                   "0xowner",
		Created:                 time.Now().UTC(),
	}
	require.NoError(t, idx.Confirmations().Insert(ctx, c))
	require.NoError(t, b.Handle(ctx, Event{Entity: c, Created: true}))

	// Still unbound; the transaction has not been indexed.
	stored, ok := idx.Confirmation(c.ID)
	require.True(t, ok)
	assert.False(t, stored.Bound())

	tx := &models.MultisigTransaction{
		SafeTxHash: "0xhash",
		Safe:       "0xsafe",
		Created:    time.Now().UTC(),
		Modified:   time.Now().UTC(),
	}
	require.NoError(t, idx.Insert(ctx, tx))
	require.NoError(t, b.Handle(ctx, Event{Entity: tx, Created: true}))

	stored, ok = idx.Confirmation(c.ID)
	require.True(t, ok)
	require.True(t, stored.Bound())
	assert.Equal(t, "0xhash", *stored.MultisigTransactionID)

	final, err := idx.ByHash(ctx, "0xhash")
	require.NoError(t, err)
	assert.True(t, final.Trusted)
	assert.False(t, final.Modified.Before(tx.Created))
	assert.True(t, tx.Trusted, "in-memory instance reflects the promotion")
}

// Transaction arrives first: the confirmation-side lookup finds it, promotes
// trust with the confirmation's creation time, and persists the binding.
func TestBinder_TransactionBeforeConfirmation(t *testing.T) {
	ctx := context.Background()
	idx := store.NewMemoryIndex()
	b := newTestBinder(idx)

	created := time.Now().UTC().Add(-time.Minute)
	tx := &models.MultisigTransaction{
		SafeTxHash: "0xhash",
		Safe:       "0xsafe",
		Created:    created,
		Modified:   created,
	}
	require.NoError(t, idx.Insert(ctx, tx))
	require.NoError(t, b.Handle(ctx, Event{Entity: tx, Created: true}))

	// No confirmations yet, nothing promoted.
	stored, err := idx.ByHash(ctx, "0xhash")
	require.NoError(t, err)
	assert.False(t, stored.Trusted)

	confCreated := time.Now().UTC()
	c := &models.MultisigConfirmation{
		MultisigTransactionHash: "0xhash",
		Owner:                   "0xowner",
		Created:                 confCreated,
	}
	require.NoError(t, idx.Confirmations().Insert(ctx, c))
	require.NoError(t, b.Handle(ctx, Event{Entity: c, Created: true}))

	stored, err = idx.ByHash(ctx, "0xhash")
	require.NoError(t, err)
	assert.True(t, stored.Trusted)
	assert.Equal(t, confCreated, stored.Modified)

	persisted, ok := idx.Confirmation(c.ID)
	require.True(t, ok)
	require.True(t, persisted.Bound())
	assert.Equal(t, "0xhash", *persisted.MultisigTransactionID)
	require.NotNil(t, c.Transaction)
	assert.Equal(t, "0xsafe", c.Transaction.Safe)
}

// A confirmation with no matching transaction stays unbound silently.
func TestBinder_OrphanConfirmationIsNotAnError(t *testing.T) {
	ctx := context.Background()
	idx := store.NewMemoryIndex()
	b := newTestBinder(idx)

	c := &models.MultisigConfirmation{
		MultisigTransactionHash: "0xmissing",
		Owner:                   "0xowner",
		Created:                 time.Now().UTC(),
	}
	require.NoError(t, idx.Confirmations().Insert(ctx, c))

	err := b.Handle(ctx, Event{Entity: c, Created: true})
	require.NoError(t, err)
	assert.False(t, c.Bound())
}

// An already-bound confirmation promotes trust through a targeted update
// stamped with the confirmation's creation time.
func TestBinder_AlreadyBoundConfirmationPromotesTrust(t *testing.T) {
	ctx := context.Background()
	idx := store.NewMemoryIndex()
	b := newTestBinder(idx)

	tx := &models.MultisigTransaction{SafeTxHash: "0xhash", Safe: "0xsafe"}
	require.NoError(t, idx.Insert(ctx, tx))

	ref := "0xhash"
	confCreated := time.Now().UTC()
	c := &models.MultisigConfirmation{
		MultisigTransactionHash: "0xhash",
		MultisigTransactionID:   &ref,
		Owner:                   "0xowner",
		Created:                 confCreated,
	}
	require.NoError(t, idx.Confirmations().Insert(ctx, c))
	require.NoError(t, b.Handle(ctx, Event{Entity: c, Created: true}))

	stored, err := idx.ByHash(ctx, "0xhash")
	require.NoError(t, err)
	assert.True(t, stored.Trusted)
	assert.Equal(t, confCreated, stored.Modified)
}

// The binder runs on creation only.
func TestBinder_IgnoresUpdates(t *testing.T) {
	ctx := context.Background()
	idx := store.NewMemoryIndex()
	b := newTestBinder(idx)

	tx := &models.MultisigTransaction{SafeTxHash: "0xhash", Safe: "0xsafe"}
	require.NoError(t, idx.Insert(ctx, tx))

	c := &models.MultisigConfirmation{
		MultisigTransactionHash: "0xhash",
		Owner:                   "0xowner",
		Created:                 time.Now().UTC(),
	}
	require.NoError(t, idx.Confirmations().Insert(ctx, c))

	require.NoError(t, b.Handle(ctx, Event{Entity: c, Created: false}))

	stored, err := idx.ByHash(ctx, "0xhash")
	require.NoError(t, err)
	assert.False(t, stored.Trusted)
	assert.False(t, c.Bound())
}

// A transaction creation with no waiting confirmations does not touch the
// trust flag.
func TestBinder_TransactionWithoutConfirmations(t *testing.T) {
	ctx := context.Background()
	idx := store.NewMemoryIndex()
	b := newTestBinder(idx)

	tx := &models.MultisigTransaction{SafeTxHash: "0xhash", Safe: "0xsafe"}
	require.NoError(t, idx.Insert(ctx, tx))
	require.NoError(t, b.Handle(ctx, Event{Entity: tx, Created: true}))

	stored, err := idx.ByHash(ctx, "0xhash")
	require.NoError(t, err)
	assert.False(t, stored.Trusted)
}

// A confirmation with an empty referenced hash cannot be reconciled and is
// skipped without a lookup.
func TestBinder_EmptyHashConfirmation(t *testing.T) {
	ctx := context.Background()
	idx := store.NewMemoryIndex()
	b := newTestBinder(idx)

	c := &models.MultisigConfirmation{Owner: "0xowner", Created: time.Now().UTC()}
	require.NoError(t, idx.Confirmations().Insert(ctx, c))
	require.NoError(t, b.Handle(ctx, Event{Entity: c, Created: true}))
	assert.False(t, c.Bound())
}
