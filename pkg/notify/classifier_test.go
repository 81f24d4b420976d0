package notify

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-labs/safeindex/pkg/models"
)

func TestRuleClassifier_DefaultRules(t *testing.T) {
	ctx := context.Background()
	c := NewRuleClassifier(nil)

	tests := []struct {
		name    string
		entity  models.Entity
		created bool
		want    bool
	}{
		{"new transaction", &models.MultisigTransaction{}, true, true},
		{"transaction removal", &models.MultisigTransaction{}, false, true},
		{"new confirmation", &models.MultisigConfirmation{}, true, true},
		{"confirmation update", &models.MultisigConfirmation{}, false, false},
		{"new token transfer", &models.TokenTransfer{}, true, true},
		{"new internal tx", &models.InternalTx{}, true, true},
		{"master copy is never notification-worthy", &models.MasterCopy{}, true, false},
		{"status row is never notification-worthy", &models.SafeLastStatus{}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.IsRelevant(ctx, tt.entity, tt.created)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// A non-created mutation is gated by OnDelete alone; there is no separate
// update flag to contradict it.
func TestRuleClassifier_NonCreatedGatedByDeleteFlag(t *testing.T) {
	ctx := context.Background()
	c := NewRuleClassifier(Rules{
		models.KindMultisigTransaction: {OnCreate: false, OnDelete: true},
		models.KindTokenTransfer:       {OnCreate: true, OnDelete: false},
	})

	got, err := c.IsRelevant(ctx, &models.MultisigTransaction{}, false)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = c.IsRelevant(ctx, &models.TokenTransfer{}, false)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `
multisig_transaction:
  on_create: false
  on_delete: true
token_transfer:
  on_create: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	rules, err := LoadRules(path)
	require.NoError(t, err)

	ctx := context.Background()
	c := NewRuleClassifier(rules)

	got, err := c.IsRelevant(ctx, &models.MultisigTransaction{}, true)
	require.NoError(t, err)
	assert.False(t, got, "creation disabled in file")

	got, err = c.IsRelevant(ctx, &models.TokenTransfer{}, true)
	require.NoError(t, err)
	assert.True(t, got)

	// Kinds absent from the file are never relevant.
	got, err = c.IsRelevant(ctx, &models.MultisigConfirmation{}, true)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestLoadRules_EmptyPathFallsBackToDefaults(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)
}

func TestLoadRules_MissingFileIsAnError(t *testing.T) {
	_, err := LoadRules("/nonexistent/rules.yaml")
	assert.Error(t, err)
}
