package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-labs/safeindex/pkg/models"
)

func TestDefaultBuilder_TokenTransferNotifiesBothSides(t *testing.T) {
	b := NewDefaultBuilder()
	payloads, err := b.BuildPayloads(context.Background(), &models.TokenTransfer{
		TxHash: "0xtx",
		From:   "0xfrom",
		To:     "0xto",
		Value:  "1000",
	}, false)
	require.NoError(t, err)
	require.Len(t, payloads, 2)

	assert.Equal(t, "0xto", payloads[0].Address)
	assert.Equal(t, EventIncomingToken, payloads[0].Type)
	assert.Equal(t, "0xfrom", payloads[1].Address)
	assert.Equal(t, EventOutgoingToken, payloads[1].Type)
	assert.Equal(t, "0xtx", payloads[0].Data["txHash"])
}

func TestDefaultBuilder_TransactionEventTypes(t *testing.T) {
	b := NewDefaultBuilder()
	ctx := context.Background()

	pending, err := b.BuildPayloads(ctx, &models.MultisigTransaction{SafeTxHash: "0x1", Safe: "0xsafe"}, false)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, EventPendingTransaction, pending[0].Type)
	assert.Equal(t, "0xsafe", pending[0].Address)

	executed, err := b.BuildPayloads(ctx, &models.MultisigTransaction{SafeTxHash: "0x1", Safe: "0xsafe", Executed: true}, false)
	require.NoError(t, err)
	assert.Equal(t, EventExecutedTransaction, executed[0].Type)

	deleted, err := b.BuildPayloads(ctx, &models.MultisigTransaction{SafeTxHash: "0x1", Safe: "0xsafe"}, true)
	require.NoError(t, err)
	assert.Equal(t, EventDeletedTransaction, deleted[0].Type)
}

// An unbound confirmation yields a payload with an empty address; the
// dispatcher drops it rather than the builder guessing a target.
func TestDefaultBuilder_UnboundConfirmationHasNoTarget(t *testing.T) {
	b := NewDefaultBuilder()
	payloads, err := b.BuildPayloads(context.Background(), &models.MultisigConfirmation{
		MultisigTransactionHash: "0xhash",
		Owner:                   "0xowner",
	}, false)
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	assert.Empty(t, payloads[0].Address)
	assert.Equal(t, EventNewConfirmation, payloads[0].Type)
}

func TestDefaultBuilder_BoundConfirmationTargetsSafe(t *testing.T) {
	b := NewDefaultBuilder()
	payloads, err := b.BuildPayloads(context.Background(), &models.MultisigConfirmation{
		MultisigTransactionHash: "0xhash",
		Transaction:             &models.MultisigTransaction{SafeTxHash: "0xhash", Safe: "0xsafe"},
		Owner:                   "0xowner",
	}, false)
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	assert.Equal(t, "0xsafe", payloads[0].Address)
	assert.Equal(t, "0xowner", payloads[0].Data["owner"])
}

// Internal transactions notify the destination only; there is no outgoing
// counterpart, unlike token transfers.
func TestDefaultBuilder_InternalTxNotifiesDestinationOnly(t *testing.T) {
	b := NewDefaultBuilder()
	payloads, err := b.BuildPayloads(context.Background(), &models.InternalTx{
		TxHash: "0xtx",
		From:   "0xfrom",
		To:     "0xto",
		Value:  "1",
	}, false)
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	assert.Equal(t, "0xto", payloads[0].Address)
	assert.Equal(t, EventIncomingEther, payloads[0].Type)
}

func TestDefaultBuilder_UnwatchedKindYieldsNothing(t *testing.T) {
	b := NewDefaultBuilder()
	payloads, err := b.BuildPayloads(context.Background(), &models.MasterCopy{Address: "0xmc"}, false)
	require.NoError(t, err)
	assert.Empty(t, payloads)
}
