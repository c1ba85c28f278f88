package engine

import (
	"fmt"

	"github.com/rs/zerolog"

	"arclose/internal/logger"
	"arclose/internal/rules"
)

// Engine evaluates merged records country by country. It is stateless and
// safe to reuse across runs.
type Engine struct {
	log zerolog.Logger
}

// New creates a reconciliation engine.
func New() *Engine {
	return &Engine{
		log: logger.WithComponent("engine"),
	}
}

// Evaluate runs the threshold matching and parameter derivation for every
// active country and concatenates the per-country results. Each country
// owns the records of its company code, so the subsets are disjoint. The
// returned dataset covers exactly the records of the active countries.
func (e *Engine) Evaluate(records []MergedRecord, ruleSet rules.Set) ([]MergedRecord, error) {
	const op = "Evaluate"

	if len(records) == 0 {
		return nil, newProcessingError(op, ErrEmptyInput, "")
	}
	if len(ruleSet) == 0 {
		return nil, newProcessingError(op, ErrMissingConfiguration, "")
	}

	countries, err := ruleSet.ActiveCountries()
	if err != nil {
		return nil, newProcessingError(op, err, "")
	}

	e.log.Info().
		Int("records", len(records)).
		Int("countries", len(countries)).
		Msg("Evaluating merged records")

	var evaluated []MergedRecord
	for _, country := range countries {
		countryLog := logger.WithCountry(country)
		countryLog.Info().Msg("Searching cases to process")

		result, err := e.evaluateCountry(records, country, ruleSet[country])
		if err != nil {
			return nil, err
		}
		evaluated = append(evaluated, result...)
	}

	return evaluated, nil
}

// evaluateCountry processes the records of a single company code: open
// items are amount-matched and run through the open-item derivation,
// cleared items through the closed-item derivation. Records without a
// case ID pass through untouched. The result reproduces the exact row
// count of the country's subset.
func (e *Engine) evaluateCountry(records []MergedRecord, country string, countryRules rules.CountryRules) ([]MergedRecord, error) {
	const op = "evaluateCountry"
	countryLog := logger.WithCountry(country)

	var open, closed, noCase []MergedRecord
	for _, record := range records {
		if record.Entry.CompanyCode != countryRules.CompanyCode {
			continue
		}
		record.Country = country

		switch {
		case record.CaseID() == nil:
			noCase = append(noCase, record)
		case record.Entry.Cleared():
			closed = append(closed, record)
		default:
			open = append(open, record)
		}
	}

	total := len(open) + len(closed) + len(noCase)
	if total == 0 {
		countryLog.Warn().
			Str("company_code", countryRules.CompanyCode).
			Msg("Data contains no records for company code")
		return nil, nil
	}

	matchAmounts(open, countryRules)

	for i := range open {
		if open[i].Inconsistent || open[i].Case == nil {
			continue
		}
		deriveOpenParams(&open[i])
	}
	for i := range closed {
		if closed[i].Inconsistent || closed[i].Case == nil {
			continue
		}
		deriveClosedParams(&closed[i])
	}

	result := make([]MergedRecord, 0, total)
	result = append(result, open...)
	result = append(result, closed...)
	result = append(result, noCase...)

	if len(result) != total {
		return nil, newProcessingError(op,
			fmt.Errorf("%w: %d in, %d out", ErrRowCountMismatch, total, len(result)), country)
	}

	countryLog.Info().
		Int("open_items", len(open)).
		Int("closed_items", len(closed)).
		Int("without_case", len(noCase)).
		Msg("Country subset evaluated")

	return result, nil
}
