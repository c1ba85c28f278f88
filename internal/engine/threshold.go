package engine

import (
	"github.com/shopspring/decimal"

	"arclose/internal/rules"
)

// minTolerance substitutes a zero base threshold so that a true offset is
// still recognized despite rounding in the exported amounts.
var minTolerance = decimal.RequireFromString("0.01")

// matchAmounts decides, per case, whether the open ledger amounts offset
// the disputed amount within the country's tolerance. A case may span
// several ledger entries; their signed amounts are summed first. Ledger
// and disputed amounts carry opposite sign conventions, so a genuine
// offset sums toward zero. A case matches when the absolute total stays
// strictly below the tolerance.
func matchAmounts(open []MergedRecord, countryRules rules.CountryRules) {
	baseThreshold := countryRules.BaseThreshold
	if baseThreshold.IsZero() {
		baseThreshold = minTolerance
	}

	sums := make(map[uint64]decimal.Decimal, len(open))
	for i := range open {
		caseID := open[i].CaseID()
		if caseID == nil {
			continue
		}
		sums[*caseID] = sums[*caseID].Add(open[i].Entry.Amount)
	}

	for i := range open {
		record := &open[i]

		threshold := baseThreshold
		if override, ok := countryRules.TaxThresholds[record.Entry.TaxCode]; ok {
			threshold = override
		}
		thresholdCopy := threshold
		record.Threshold = &thresholdCopy

		caseID := record.CaseID()
		if caseID == nil || record.Case == nil {
			continue
		}

		total := sums[*caseID].Add(record.Case.DisputedAmount)
		record.AmountMatch = total.Abs().LessThan(threshold)
	}
}
