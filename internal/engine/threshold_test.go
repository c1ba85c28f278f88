package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arclose/internal/dispute"
	"arclose/internal/ledger"
	"arclose/internal/rules"
)

func openRecord(doc uint64, amount string, caseID uint64, disputed string) MergedRecord {
	return MergedRecord{
		Entry: ledger.Entry{
			DocumentNumber: doc,
			Amount:         dec(amount),
			CaseID:         uintPtr(caseID),
		},
		Case: &dispute.Case{
			ID:             caseID,
			DisputedAmount: dec(disputed),
		},
	}
}

func TestMatchAmounts_ZeroBaseThresholdUsesMinimumTolerance(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		disputed  string
		wantMatch bool
	}{
		{"exact offset matches", "-100.00", "100.00", true},
		{"difference below tolerance matches", "-100.00", "100.009", true},
		{"difference at tolerance does not match", "-99.99", "100.00", false},
		{"difference above tolerance does not match", "-99.98", "100.00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			open := []MergedRecord{openRecord(501234567, tt.amount, 123456, tt.disputed)}

			matchAmounts(open, rules.CountryRules{BaseThreshold: dec("0")})

			assert.Equal(t, tt.wantMatch, open[0].AmountMatch)
			require.NotNil(t, open[0].Threshold)
			assert.True(t, open[0].Threshold.Equal(dec("0.01")),
				"zero base threshold must be replaced by the minimum tolerance")
		})
	}
}

func TestMatchAmounts_TaxThresholdOverridesBase(t *testing.T) {
	open := []MergedRecord{
		openRecord(501000001, "-97.00", 100, "100.00"),
		openRecord(501000002, "-97.00", 200, "100.00"),
	}
	open[0].Entry.TaxCode = "A1"

	matchAmounts(open, rules.CountryRules{
		BaseThreshold: dec("0.50"),
		TaxThresholds: map[string]decimal.Decimal{"A1": dec("5.00")},
	})

	assert.True(t, open[0].AmountMatch, "3.00 difference is within the 5.00 tax tolerance")
	require.NotNil(t, open[0].Threshold)
	assert.True(t, open[0].Threshold.Equal(dec("5.00")))

	assert.False(t, open[1].AmountMatch, "3.00 difference exceeds the 0.50 base tolerance")
	require.NotNil(t, open[1].Threshold)
	assert.True(t, open[1].Threshold.Equal(dec("0.50")))
}

func TestMatchAmounts_SumsEntriesPerCase(t *testing.T) {
	open := []MergedRecord{
		openRecord(501000001, "-60.00", 123456, "100.00"),
		openRecord(501000002, "-40.00", 123456, "100.00"),
	}

	matchAmounts(open, rules.CountryRules{BaseThreshold: dec("0")})

	assert.True(t, open[0].AmountMatch)
	assert.True(t, open[1].AmountMatch)
}

func TestMatchAmounts_RecordWithoutCaseKeepsThresholdOnly(t *testing.T) {
	open := []MergedRecord{
		{Entry: ledger.Entry{DocumentNumber: 501000001, Amount: dec("-10.00")}},
	}

	matchAmounts(open, rules.CountryRules{BaseThreshold: dec("1.00")})

	assert.False(t, open[0].AmountMatch)
	require.NotNil(t, open[0].Threshold)
	assert.True(t, open[0].Threshold.Equal(dec("1.00")))
}
