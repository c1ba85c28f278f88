// Package rules loads and validates the country-specific closing rules
// that drive the dispute-case reconciliation engine.
package rules

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"arclose/internal/logger"
)

// Common rules errors
var (
	// ErrMissingConfiguration is returned when the rules file exists but
	// contains no country entries.
	ErrMissingConfiguration = errors.New("closing rules contain no countries")

	// ErrNoActiveCountry is returned when every country in the rules file
	// is flagged inactive.
	ErrNoActiveCountry = errors.New("no active country found in closing rules")
)

// CountryRules holds the closing parameters of a single country.
type CountryRules struct {
	// CompanyCode selects the ledger records the country owns.
	CompanyCode string

	// BaseThreshold is the default tolerated discrepancy between the
	// summed ledger amount and the disputed amount of a case.
	BaseThreshold decimal.Decimal

	// TaxThresholds overrides BaseThreshold per ledger tax code.
	TaxThresholds map[string]decimal.Decimal

	// CasePattern is the country-specific numbering pattern used to
	// extract case IDs from ledger item texts.
	CasePattern string

	// Active excludes the country from processing when false.
	Active bool
}

// Set maps country names to their closing rules.
type Set map[string]CountryRules

// countryRulesYAML mirrors the on-disk layout. Thresholds arrive as plain
// YAML numbers and are converted to decimals on load.
type countryRulesYAML struct {
	CompanyCode   string             `yaml:"company_code"`
	BaseThreshold float64            `yaml:"base_threshold"`
	TaxThresholds map[string]float64 `yaml:"tax_thresholds"`
	CasePattern   string             `yaml:"case_pattern"`
	Active        bool               `yaml:"active"`
}

// Load reads and parses the closing rules file.
func Load(path string) (Set, error) {
	const op = "Load"
	log := logger.WithComponent("rules")

	log.Info().Str("path", path).Msg("Loading closing rules")

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read closing rules: %w", op, err)
	}

	parsed := map[string]countryRulesYAML{}
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%s: failed to parse closing rules: %w", op, err)
	}

	if len(parsed) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingConfiguration)
	}

	set := make(Set, len(parsed))
	for country, cr := range parsed {
		taxThresholds := make(map[string]decimal.Decimal, len(cr.TaxThresholds))
		for tax, threshold := range cr.TaxThresholds {
			taxThresholds[tax] = decimal.NewFromFloat(threshold)
		}
		set[country] = CountryRules{
			CompanyCode:   cr.CompanyCode,
			BaseThreshold: decimal.NewFromFloat(cr.BaseThreshold),
			TaxThresholds: taxThresholds,
			CasePattern:   cr.CasePattern,
			Active:        cr.Active,
		}
	}

	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info().Int("countries", len(set)).Msg("Closing rules loaded")

	return set, nil
}

// Validate checks every country entry for usable values.
func (s Set) Validate() error {
	if len(s) == 0 {
		return ErrMissingConfiguration
	}

	for country, cr := range s {
		if cr.CompanyCode == "" {
			return fmt.Errorf("country %q: company code is empty", country)
		}
		if cr.BaseThreshold.IsNegative() {
			return fmt.Errorf("country %q: base threshold is negative", country)
		}
		if cr.CasePattern == "" {
			return fmt.Errorf("country %q: case pattern is empty", country)
		}
		if _, err := regexp.Compile(cr.CasePattern); err != nil {
			return fmt.Errorf("country %q: invalid case pattern: %w", country, err)
		}
		for tax, threshold := range cr.TaxThresholds {
			if threshold.IsNegative() {
				return fmt.Errorf("country %q: tax threshold for %q is negative", country, tax)
			}
		}
	}

	return nil
}

// ActiveCountries returns the names of countries flagged active,
// sorted for deterministic processing order.
func (s Set) ActiveCountries() ([]string, error) {
	log := logger.WithComponent("rules")

	var active []string
	for country, cr := range s {
		if !cr.Active {
			log.Warn().Str("country", country).Msg("Country excluded from processing as per closing rules")
			continue
		}
		active = append(active, country)
	}

	if len(active) == 0 {
		return nil, ErrNoActiveCountry
	}
	sort.Strings(active)

	log.Info().Int("count", len(active)).Strs("countries", active).Msg("Countries to process")

	return active, nil
}

// CasePatterns maps company codes to the case numbering patterns of the
// given countries. Used by the ledger preprocessing step.
func (s Set) CasePatterns(countries []string) map[string]string {
	patterns := make(map[string]string, len(countries))
	for _, country := range countries {
		cr, ok := s[country]
		if !ok {
			continue
		}
		patterns[cr.CompanyCode] = cr.CasePattern
	}
	return patterns
}

// CountryByCompanyCode maps company codes back to country names.
func (s Set) CountryByCompanyCode(countries []string) map[string]string {
	mapping := make(map[string]string, len(countries))
	for _, country := range countries {
		cr, ok := s[country]
		if !ok {
			continue
		}
		mapping[cr.CompanyCode] = country
	}
	return mapping
}
