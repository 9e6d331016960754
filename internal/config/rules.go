package config

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rgehrsitz/withholding/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed regulatory.yaml
var defaultRules []byte

// cumulativeBaseTolerance is how far a supplied cumulative base may differ
// from the derived one before the table is rejected.
var cumulativeBaseTolerance = decimal.NewFromFloat(0.005)

var jurisdictionCodePattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,3}$`)

// RulesLoader loads and validates withholding rule tables.
type RulesLoader struct {
	now func() time.Time
}

// NewRulesLoader creates a new rules loader
func NewRulesLoader() *RulesLoader {
	return &RulesLoader{now: time.Now}
}

// DefaultRulesYAML returns the embedded default rule table source.
func DefaultRulesYAML() []byte {
	out := make([]byte, len(defaultRules))
	copy(out, defaultRules)
	return out
}

// Load reads the rule table at path, or the embedded defaults when path is
// empty.
func (rl *RulesLoader) Load(path string) (*domain.RuleTable, error) {
	if path == "" {
		return rl.LoadDefault()
	}
	return rl.LoadFromFile(path)
}

// LoadDefault parses the embedded rule table.
func (rl *RulesLoader) LoadDefault() (*domain.RuleTable, error) {
	table, err := rl.Parse(defaultRules)
	if err != nil {
		return nil, fmt.Errorf("embedded rules: %w", err)
	}
	return table, nil
}

// LoadFromFile loads a rule table from a YAML file
func (rl *RulesLoader) LoadFromFile(filename string) (*domain.RuleTable, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", filename, err)
	}
	table, err := rl.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", filename, err)
	}
	return table, nil
}

// Parse decodes, validates and normalises a rule table. Cumulative bracket
// bases are derived during validation.
func (rl *RulesLoader) Parse(data []byte) (*domain.RuleTable, error) {
	var table domain.RuleTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := ValidateRuleTable(&table); err != nil {
		return nil, fmt.Errorf("rule table validation failed: %w", err)
	}
	table.LoadedAt = rl.now().UTC()
	return &table, nil
}

// ValidateRuleTable checks a rule table and fills in derived fields. Map keys
// become the jurisdiction codes, upper-cased.
func ValidateRuleTable(table *domain.RuleTable) error {
	if strings.TrimSpace(table.Metadata.Version) == "" {
		table.Metadata.Version = "unversioned"
	}

	if err := validateFederal(&table.Federal); err != nil {
		return fmt.Errorf("federal: %w", err)
	}
	if err := validateFICA(table.FICA); err != nil {
		return fmt.Errorf("fica: %w", err)
	}

	normalized := make(map[string]domain.JurisdictionTaxRule, len(table.Jurisdictions))
	for key, rule := range table.Jurisdictions {
		code := strings.ToUpper(strings.TrimSpace(key))
		if !jurisdictionCodePattern.MatchString(code) {
			return fmt.Errorf("jurisdiction %q: invalid code", key)
		}
		if _, dup := normalized[code]; dup {
			return fmt.Errorf("jurisdiction %s: defined more than once", code)
		}
		if rule.Code != "" && strings.ToUpper(rule.Code) != code {
			return fmt.Errorf("jurisdiction %s: code field %q does not match key", code, rule.Code)
		}
		rule.Code = code
		if err := validateJurisdiction(&rule); err != nil {
			return fmt.Errorf("jurisdiction %s: %w", code, err)
		}
		normalized[code] = rule
	}
	table.Jurisdictions = normalized
	return nil
}

func validateFederal(f *domain.FederalTaxRule) error {
	if len(f.Brackets) == 0 {
		return fmt.Errorf("at least one bracket is required")
	}
	brackets, err := normalizeBrackets(f.Brackets)
	if err != nil {
		return err
	}
	f.Brackets = brackets

	if _, ok := f.StandardDeductionByFilingStatus[domain.DefaultFilingStatus]; !ok {
		return fmt.Errorf("standard deduction for %q is required", domain.DefaultFilingStatus)
	}
	for status, amount := range f.StandardDeductionByFilingStatus {
		if amount.IsNegative() {
			return fmt.Errorf("standard deduction for %s cannot be negative", status)
		}
	}
	if f.AllowanceCreditAmount.IsNegative() {
		return fmt.Errorf("allowance credit amount cannot be negative")
	}
	return nil
}

func validateFICA(f domain.FICARule) error {
	rates := map[string]decimal.Decimal{
		"social_security_rate": f.SocialSecurityRate,
		"medicare_rate":        f.MedicareRate,
		"medicare_surtax_rate": f.MedicareSurtaxRate,
	}
	for _, name := range sortedKeys(rates) {
		if err := validateRate(rates[name]); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if f.SocialSecurityWageBase.IsNegative() {
		return fmt.Errorf("social security wage base cannot be negative")
	}
	if f.MedicareSurtaxThreshold.IsNegative() {
		return fmt.Errorf("medicare surtax threshold cannot be negative")
	}
	return nil
}

func validateJurisdiction(rule *domain.JurisdictionTaxRule) error {
	if rule.StandardDeduction.IsNegative() {
		return fmt.Errorf("standard deduction cannot be negative")
	}
	for status, amount := range rule.StandardDeductionByFilingStatus {
		if amount.IsNegative() {
			return fmt.Errorf("standard deduction for %s cannot be negative", status)
		}
	}
	if rule.NexusThreshold.IsNegative() {
		return fmt.Errorf("nexus threshold cannot be negative")
	}
	if err := validateRate(rule.FlatRate); err != nil {
		return fmt.Errorf("flat rate: %w", err)
	}

	if len(rule.Brackets) > 0 {
		brackets, err := normalizeBrackets(rule.Brackets)
		if err != nil {
			return err
		}
		rule.Brackets = brackets
	}

	partners := make([]string, 0, len(rule.ReciprocityPartners))
	seen := make(map[string]bool, len(rule.ReciprocityPartners))
	for _, p := range rule.ReciprocityPartners {
		p = strings.ToUpper(strings.TrimSpace(p))
		if !jurisdictionCodePattern.MatchString(p) {
			return fmt.Errorf("reciprocity partner %q: invalid code", p)
		}
		if p == rule.Code {
			return fmt.Errorf("reciprocity partner %s refers to itself", p)
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		partners = append(partners, p)
	}
	rule.ReciprocityPartners = partners
	return nil
}

// normalizeBrackets checks that brackets start at zero, are contiguous and
// ascending, and returns a copy with every CumulativeBase derived from the
// brackets below it.
func normalizeBrackets(in []domain.TaxBracket) ([]domain.TaxBracket, error) {
	out := make([]domain.TaxBracket, len(in))
	copy(out, in)

	if !out[0].Min.IsZero() {
		return nil, fmt.Errorf("first bracket must start at 0, got %s", out[0].Min)
	}

	base := decimal.Zero
	for i := range out {
		b := &out[i]
		if err := validateRate(b.Rate); err != nil {
			return nil, fmt.Errorf("bracket %d: %w", i, err)
		}
		last := i == len(out)-1
		if !last {
			if b.OpenEnded() {
				return nil, fmt.Errorf("bracket %d: only the last bracket may be open-ended", i)
			}
			if !b.Max.GreaterThan(b.Min) {
				return nil, fmt.Errorf("bracket %d: max %s must exceed min %s", i, b.Max, b.Min)
			}
			if next := out[i+1]; !next.Min.Equal(b.Max) {
				return nil, fmt.Errorf("bracket %d: min %s must equal previous max %s", i+1, next.Min, b.Max)
			}
		} else if !b.OpenEnded() && !b.Max.GreaterThan(b.Min) {
			return nil, fmt.Errorf("bracket %d: max %s must exceed min %s", i, b.Max, b.Min)
		}

		// A zero base is treated as omitted.
		if !b.CumulativeBase.IsZero() && b.CumulativeBase.Sub(base).Abs().GreaterThan(cumulativeBaseTolerance) {
			return nil, fmt.Errorf("bracket %d: cumulative base %s does not match derived %s", i, b.CumulativeBase, base)
		}
		b.CumulativeBase = base
		if !last {
			base = base.Add(b.Max.Sub(b.Min).Mul(b.Rate))
		}
	}
	return out, nil
}

func validateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("rate %s must be between 0 and 1", rate)
	}
	return nil
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalRules renders a rule table back to YAML.
func MarshalRules(table *domain.RuleTable) ([]byte, error) {
	data, err := yaml.Marshal(table)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rules: %w", err)
	}
	return data, nil
}
