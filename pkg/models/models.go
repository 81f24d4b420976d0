// Package models defines the indexed entities the mutation hooks operate on:
// proposed multisig transactions, their signature confirmations, token and
// internal transfers, master-copy registry entries, and safe status rows.
package models

import "time"

// EntityKind identifies the concrete entity carried by a mutation event.
// The set is closed; hooks subscribe per kind.
type EntityKind string

const (
	KindMultisigTransaction  EntityKind = "multisig_transaction"
	KindMultisigConfirmation EntityKind = "multisig_confirmation"
	KindTokenTransfer        EntityKind = "token_transfer"
	KindInternalTx           EntityKind = "internal_tx"
	KindMasterCopy           EntityKind = "master_copy"
	KindSafeLastStatus       EntityKind = "safe_last_status"
	KindSafeStatus           EntityKind = "safe_status"
)

// Entity is implemented by every indexed row type that can fire a mutation
// event. Kind is used for hook routing and payload typing.
type Entity interface {
	Kind() EntityKind
}

// MultisigTransaction is a proposed multisig transaction, keyed by its unique
// safe transaction hash. Trusted is promoted by the binder once at least one
// confirmation is linked and is never revoked here.
type MultisigTransaction struct {
	SafeTxHash string
	Safe       string
	Proposer   string
	Executed   bool
	Trusted    bool
	Created    time.Time
	Modified   time.Time
}

func (*MultisigTransaction) Kind() EntityKind { return KindMultisigTransaction }

// MultisigConfirmation is a single owner's signature over a transaction hash.
// MultisigTransactionID is the nullable back-reference (the bound transaction's
// hash); it is set exactly once by the binder and never cleared. Transaction
// is the in-memory association, populated when the binding is known.
type MultisigConfirmation struct {
	ID                      int64
	MultisigTransactionHash string
	MultisigTransactionID   *string
	Transaction             *MultisigTransaction
	Owner                   string
	Signature               []byte
	Created                 time.Time
}

func (*MultisigConfirmation) Kind() EntityKind { return KindMultisigConfirmation }

// Bound reports whether the confirmation carries a back-reference to its
// transaction.
func (c *MultisigConfirmation) Bound() bool { return c.MultisigTransactionID != nil }

// TokenTransfer is a token movement between two addresses. Read-only to the
// hook pipeline.
type TokenTransfer struct {
	TxHash       string
	TokenAddress string
	From         string
	To           string
	Value        string
	BlockNumber  int64
	Timestamp    time.Time
}

func (*TokenTransfer) Kind() EntityKind { return KindTokenTransfer }

// InternalTx is a value movement produced by contract execution.
type InternalTx struct {
	TxHash      string
	From        string
	To          string
	Value       string
	BlockNumber int64
	Timestamp   time.Time
}

func (*InternalTx) Kind() EntityKind { return KindInternalTx }

// MasterCopy is a versioned registry entry for a deployed master-copy
// contract. Writes to it invalidate the memoized version lookup.
type MasterCopy struct {
	Address          string
	Version          string
	Deployer         string
	LastIndexedBlock int64
}

func (*MasterCopy) Kind() EntityKind { return KindMasterCopy }

// SafeLastStatus is the latest known status of a safe, one row per safe,
// overwritten in place by the indexer.
type SafeLastStatus struct {
	Address     string
	Nonce       int64
	Threshold   int64
	Owners      []string
	MasterCopy  string
	BlockNumber int64
	TxHash      string
}

func (*SafeLastStatus) Kind() EntityKind { return KindSafeLastStatus }

// SafeStatus is an immutable historical snapshot of a SafeLastStatus row at
// the moment it was written. Append-only; never mutated or deleted.
type SafeStatus struct {
	ID          int64
	Address     string
	Nonce       int64
	Threshold   int64
	Owners      []string
	MasterCopy  string
	BlockNumber int64
	TxHash      string
	Created     time.Time
}

func (*SafeStatus) Kind() EntityKind { return KindSafeStatus }

// NewSafeStatus derives an immutable snapshot from a SafeLastStatus row.
// The field set is value-copied; the returned snapshot shares no memory with
// the source.
func NewSafeStatus(last *SafeLastStatus, at time.Time) *SafeStatus {
	owners := make([]string, len(last.Owners))
	copy(owners, last.Owners)
	return &SafeStatus{
		Address:     last.Address,
		Nonce:       last.Nonce,
		Threshold:   last.Threshold,
		Owners:      owners,
		MasterCopy:  last.MasterCopy,
		BlockNumber: last.BlockNumber,
		TxHash:      last.TxHash,
		Created:     at,
	}
}
