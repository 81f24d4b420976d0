package hooks

import "github.com/halcyon-labs/safeindex/pkg/models"

// AddressesInvolved returns the safe addresses affected by a mutated entity,
// in notification order. A confirmation contributes its transaction's safe
// only once bound. Unknown kinds yield an empty list; the resolver is total.
// Entries may be empty strings and must be filtered before use as targets.
func AddressesInvolved(entity models.Entity) []string {
	switch v := entity.(type) {
	case *models.TokenTransfer:
		// Both sides are notified, destination first.
		return []string{v.To, v.From}
	case *models.MultisigTransaction:
		return []string{v.Safe}
	case *models.MultisigConfirmation:
		if v.Transaction != nil {
			return []string{v.Transaction.Safe}
		}
		return nil
	case *models.InternalTx:
		return []string{v.To}
	}
	return nil
}
