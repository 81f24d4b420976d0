package notify

import (
	"context"

	"github.com/halcyon-labs/safeindex/pkg/models"
)

// DefaultBuilder builds payloads from the entity's own fields. Each branch is
// pure; unknown kinds yield no payloads rather than an error. Addresses may
// be empty when the source row carries none; the dispatcher filters those.
type DefaultBuilder struct{}

func NewDefaultBuilder() *DefaultBuilder { return &DefaultBuilder{} }

func (b *DefaultBuilder) BuildPayloads(ctx context.Context, entity models.Entity, deleted bool) ([]Payload, error) {
	switch v := entity.(type) {
	case *models.MultisigTransaction:
		eventType := EventPendingTransaction
		if v.Executed {
			eventType = EventExecutedTransaction
		}
		if deleted {
			eventType = EventDeletedTransaction
		}
		return []Payload{{
			Address: v.Safe,
			Type:    eventType,
			Data: map[string]any{
				"safeTxHash": v.SafeTxHash,
			},
		}}, nil

	case *models.MultisigConfirmation:
		var safe string
		if v.Transaction != nil {
			safe = v.Transaction.Safe
		}
		return []Payload{{
			Address: safe,
			Type:    EventNewConfirmation,
			Data: map[string]any{
				"safeTxHash": v.MultisigTransactionHash,
				"owner":      v.Owner,
			},
		}}, nil

	case *models.TokenTransfer:
		// Both sides of the movement are notified.
		return []Payload{
			{
				Address: v.To,
				Type:    EventIncomingToken,
				Data:    tokenTransferData(v),
			},
			{
				Address: v.From,
				Type:    EventOutgoingToken,
				Data:    tokenTransferData(v),
			},
		}, nil

	case *models.InternalTx:
		return []Payload{{
			Address: v.To,
			Type:    EventIncomingEther,
			Data: map[string]any{
				"txHash": v.TxHash,
				"value":  v.Value,
			},
		}}, nil
	}

	return nil, nil
}

func tokenTransferData(t *models.TokenTransfer) map[string]any {
	return map[string]any{
		"txHash":       t.TxHash,
		"tokenAddress": t.TokenAddress,
		"value":        t.Value,
	}
}

var _ PayloadBuilder = (*DefaultBuilder)(nil)
