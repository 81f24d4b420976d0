package notify

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/halcyon-labs/safeindex/pkg/models"
)

// KindRule controls which mutation kinds of an entity are notification-worthy.
// There is no update flag: watched kinds only ever notify on creation or
// removal, so a non-created mutation is gated by OnDelete alone.
type KindRule struct {
	OnCreate bool `yaml:"on_create" json:"on_create"`
	OnDelete bool `yaml:"on_delete" json:"on_delete"`
}

// Rules maps entity kinds to their notification rules. Kinds without a rule
// are never relevant.
type Rules map[models.EntityKind]KindRule

// DefaultRules mirrors the indexer's stock policy: confirmations and
// transfers notify on creation, transactions on creation and removal.
// Updates stay quiet; they are re-index churn, not user-visible changes.
func DefaultRules() Rules {
	return Rules{
		models.KindMultisigTransaction:  {OnCreate: true, OnDelete: true},
		models.KindMultisigConfirmation: {OnCreate: true},
		models.KindTokenTransfer:        {OnCreate: true},
		models.KindInternalTx:           {OnCreate: true},
	}
}

// LoadRules reads a rules file. Missing path falls back to DefaultRules.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	return rules, nil
}

// RuleClassifier implements RelevanceClassifier over a closed rule set.
type RuleClassifier struct {
	rules Rules
}

func NewRuleClassifier(rules Rules) *RuleClassifier {
	if rules == nil {
		rules = DefaultRules()
	}
	return &RuleClassifier{rules: rules}
}

func (c *RuleClassifier) IsRelevant(ctx context.Context, entity models.Entity, created bool) (bool, error) {
	rule, ok := c.rules[entity.Kind()]
	if !ok {
		return false, nil
	}
	if created {
		return rule.OnCreate, nil
	}
	return rule.OnDelete, nil
}

var _ RelevanceClassifier = (*RuleClassifier)(nil)
