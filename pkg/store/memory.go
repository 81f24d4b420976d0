package store

import (
	"context"
	"sync"
	"time"

	"github.com/halcyon-labs/safeindex/pkg/models"
)

// MemoryIndex implements every store interface in memory. Thread-safe via
// RWMutex; the conditional-update semantics mirror the Postgres stores so
// the binder behaves identically against either backend. Used by tests and
// standalone mode.
type MemoryIndex struct {
	mu            sync.RWMutex
	transactions  map[string]*models.MultisigTransaction
	confirmations map[int64]*models.MultisigConfirmation
	lastStatuses  map[string]*models.SafeLastStatus
	statuses      []*models.SafeStatus
	masterCopies  map[string]*models.MasterCopy
	tokenXfers    []*models.TokenTransfer
	internalTxs   []*models.InternalTx
	nextConfID    int64
	nextStatusID  int64
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		transactions:  make(map[string]*models.MultisigTransaction),
		confirmations: make(map[int64]*models.MultisigConfirmation),
		lastStatuses:  make(map[string]*models.SafeLastStatus),
		masterCopies:  make(map[string]*models.MasterCopy),
	}
}

func (m *MemoryIndex) Insert(ctx context.Context, tx *models.MultisigTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	val := *tx
	m.transactions[tx.SafeTxHash] = &val
	return nil
}

func (m *MemoryIndex) ByHash(ctx context.Context, safeTxHash string) (*models.MultisigTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tx, ok := m.transactions[safeTxHash]
	if !ok {
		return nil, ErrNotFound
	}
	// return copy to avoid race on mutation outside lock
	val := *tx
	return &val, nil
}

func (m *MemoryIndex) MarkTrusted(ctx context.Context, safeTxHash string, modified time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx, ok := m.transactions[safeTxHash]; ok {
		tx.Trusted = true
		tx.Modified = modified
	}
	return nil
}

// Delete removes the transaction and its bound confirmations, mirroring the
// ON DELETE CASCADE on multisig_confirmations.
func (m *MemoryIndex) Delete(ctx context.Context, safeTxHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.transactions, safeTxHash)
	for id, c := range m.confirmations {
		if c.MultisigTransactionID != nil && *c.MultisigTransactionID == safeTxHash {
			delete(m.confirmations, id)
		}
	}
	return nil
}

func (m *MemoryIndex) InsertConfirmation(ctx context.Context, c *models.MultisigConfirmation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextConfID++
	c.ID = m.nextConfID
	val := *c
	m.confirmations[c.ID] = &val
	return nil
}

func (m *MemoryIndex) BindByHash(ctx context.Context, txHash string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var updated int64
	for _, c := range m.confirmations {
		if c.MultisigTransactionHash == txHash && c.MultisigTransactionID == nil {
			ref := txHash
			c.MultisigTransactionID = &ref
			updated++
		}
	}
	return updated, nil
}

func (m *MemoryIndex) SetTransaction(ctx context.Context, confirmationID int64, txHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.confirmations[confirmationID]; ok {
		ref := txHash
		c.MultisigTransactionID = &ref
	}
	return nil
}

// Confirmation returns a copy of the stored confirmation row, for tests.
func (m *MemoryIndex) Confirmation(id int64) (*models.MultisigConfirmation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.confirmations[id]
	if !ok {
		return nil, false
	}
	val := *c
	return &val, true
}

func (m *MemoryIndex) SaveLast(ctx context.Context, last *models.SafeLastStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, existed := m.lastStatuses[last.Address]
	val := *last
	val.Owners = append([]string(nil), last.Owners...)
	m.lastStatuses[last.Address] = &val
	return !existed, nil
}

func (m *MemoryIndex) Append(ctx context.Context, st *models.SafeStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextStatusID++
	st.ID = m.nextStatusID
	val := *st
	val.Owners = append([]string(nil), st.Owners...)
	m.statuses = append(m.statuses, &val)
	return nil
}

func (m *MemoryIndex) History(ctx context.Context, safe string) ([]*models.SafeStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var results []*models.SafeStatus
	for _, st := range m.statuses {
		if st.Address == safe {
			val := *st
			val.Owners = append([]string(nil), st.Owners...)
			results = append(results, &val)
		}
	}
	return results, nil
}

func (m *MemoryIndex) Save(ctx context.Context, mc *models.MasterCopy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	val := *mc
	m.masterCopies[mc.Address] = &val
	return nil
}

func (m *MemoryIndex) VersionForAddress(ctx context.Context, address string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mc, ok := m.masterCopies[address]
	if !ok {
		return "", ErrNotFound
	}
	return mc.Version, nil
}

func (m *MemoryIndex) InsertTokenTransfer(ctx context.Context, t *models.TokenTransfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	val := *t
	m.tokenXfers = append(m.tokenXfers, &val)
	return nil
}

func (m *MemoryIndex) InsertInternalTx(ctx context.Context, t *models.InternalTx) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	val := *t
	m.internalTxs = append(m.internalTxs, &val)
	return nil
}

// TokenTransfers returns copies of the stored token transfers, for tests.
func (m *MemoryIndex) TokenTransfers() []*models.TokenTransfer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := make([]*models.TokenTransfer, 0, len(m.tokenXfers))
	for _, t := range m.tokenXfers {
		val := *t
		results = append(results, &val)
	}
	return results
}

// InternalTxs returns copies of the stored internal transactions, for tests.
func (m *MemoryIndex) InternalTxs() []*models.InternalTx {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := make([]*models.InternalTx, 0, len(m.internalTxs))
	for _, t := range m.internalTxs {
		val := *t
		results = append(results, &val)
	}
	return results
}

// Confirmations groups the confirmation methods of MemoryIndex under the
// ConfirmationStore interface; Insert would otherwise collide with the
// transaction Insert.
type memoryConfirmations struct{ *MemoryIndex }

func (m memoryConfirmations) Insert(ctx context.Context, c *models.MultisigConfirmation) error {
	return m.InsertConfirmation(ctx, c)
}

// Confirmations returns the ConfirmationStore view of the index.
func (m *MemoryIndex) Confirmations() ConfirmationStore { return memoryConfirmations{m} }

var (
	_ TransactionStore = (*MemoryIndex)(nil)
	_ StatusStore      = (*MemoryIndex)(nil)
	_ MasterCopyStore  = (*MemoryIndex)(nil)
	_ TransferStore    = (*MemoryIndex)(nil)
)
