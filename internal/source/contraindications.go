package source

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/faithogundimu/core/pkg/models"
)

// RuleBook holds the drug-safety rule table loaded from YAML. Rules are
// static per deployment; the book is loaded once and read-only afterwards.
type RuleBook struct {
	rules []models.ContraindicationRule
}

// ruleFile mirrors the YAML rule table layout.
type ruleFile struct {
	Rules []struct {
		DrugClass              string   `yaml:"drug_class"`
		OrganFunction          string   `yaml:"organ_function"`
		MinClearanceMLMin      float64  `yaml:"min_clearance_ml_min"`
		MinEjectionFractionPct float64  `yaml:"min_ejection_fraction_pct"`
		Contraindications      []string `yaml:"contraindications"`
		DoseAdjustment         string   `yaml:"dose_adjustment"`
	} `yaml:"rules"`
}

// LoadRuleBook reads and validates the rule table at path.
func LoadRuleBook(path string) (*RuleBook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read contraindication rules: %w", err)
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode contraindication rules: %w", err)
	}

	book := &RuleBook{}
	for i, r := range file.Rules {
		if r.DrugClass == "" {
			return nil, fmt.Errorf("contraindication rule %d has no drug_class", i)
		}
		if r.OrganFunction == "" {
			return nil, fmt.Errorf("contraindication rule %d (%s) has no organ_function", i, r.DrugClass)
		}
		book.rules = append(book.rules, models.ContraindicationRule{
			DrugClass:              r.DrugClass,
			OrganFunction:          r.OrganFunction,
			MinClearanceMLMin:      r.MinClearanceMLMin,
			MinEjectionFractionPct: r.MinEjectionFractionPct,
			Contraindications:      r.Contraindications,
			DoseAdjustment:         r.DoseAdjustment,
		})
	}

	return book, nil
}

// NewRuleBook wraps an in-memory rule set (for tests).
func NewRuleBook(rules []models.ContraindicationRule) *RuleBook {
	return &RuleBook{rules: rules}
}

// Rules returns every rule in the book.
func (b *RuleBook) Rules(ctx context.Context) ([]models.ContraindicationRule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.ContraindicationRule, len(b.rules))
	copy(out, b.rules)
	return out, nil
}

// Lookup returns rules matching a drug class or organ function, matched
// case-insensitively.
func (b *RuleBook) Lookup(ctx context.Context, key string) ([]models.ContraindicationRule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var matched []models.ContraindicationRule
	for _, r := range b.rules {
		if strings.EqualFold(r.DrugClass, key) || strings.EqualFold(r.OrganFunction, key) {
			matched = append(matched, r)
		}
	}
	return matched, nil
}
