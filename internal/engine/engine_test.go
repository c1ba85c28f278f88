package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arclose/internal/dispute"
	"arclose/internal/ledger"
	"arclose/internal/rules"
)

func testRuleSet() rules.Set {
	return rules.Set{
		"germany": {
			CompanyCode:   "0001",
			BaseThreshold: dec("0"),
			CasePattern:   `123\d{3}`,
			Active:        true,
		},
		"france": {
			CompanyCode:   "0002",
			BaseThreshold: dec("0"),
			CasePattern:   `223\d{3}`,
			Active:        false,
		},
	}
}

func TestEvaluate_GuardsEmptyInput(t *testing.T) {
	engine := New()

	_, err := engine.Evaluate(nil, testRuleSet())
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = engine.Evaluate([]MergedRecord{{}}, rules.Set{})
	assert.ErrorIs(t, err, ErrMissingConfiguration)
}

func TestEvaluate_NoActiveCountry(t *testing.T) {
	ruleSet := rules.Set{
		"france": {CompanyCode: "0002", Active: false},
	}

	_, err := New().Evaluate([]MergedRecord{{}}, ruleSet)

	assert.ErrorIs(t, err, rules.ErrNoActiveCountry)
}

func TestEvaluate_OpenMatchedCaseIsSolved(t *testing.T) {
	records := CheckConsistency([]MergedRecord{
		{
			Entry: ledger.Entry{
				DocumentNumber: 501234567,
				Amount:         dec("-100.00"),
				Branch:         1000001,
				CompanyCode:    "0001",
				CaseID:         uintPtr(123456),
			},
			Case: &dispute.Case{
				ID:             123456,
				Debtor:         1000001,
				DisputedAmount: dec("100.00"),
				Status:         dispute.StatusOpen,
				RootCause:      dispute.RootCauseUnused,
			},
		},
	})

	evaluated, err := New().Evaluate(records, testRuleSet())

	require.NoError(t, err)
	require.Len(t, evaluated, 1)

	got := evaluated[0]
	assert.Equal(t, "germany", got.Country)
	assert.True(t, got.AmountMatch)
	require.NotNil(t, got.NewStatus)
	assert.Equal(t, dispute.StatusSolved, *got.NewStatus)
	require.NotNil(t, got.NewStatusSales)
	assert.Equal(t, "501234567", *got.NewStatusSales)
	assert.True(t, got.Changed)
	assert.False(t, got.Modified)
	assert.Contains(t, got.Message, msgCaseSolved)
}

func TestEvaluate_OpenUnmatchedCaseStaysOpen(t *testing.T) {
	records := CheckConsistency([]MergedRecord{
		{
			Entry: ledger.Entry{
				DocumentNumber: 501234567,
				Amount:         dec("-99.98"),
				Branch:         1000001,
				CompanyCode:    "0001",
				CaseID:         uintPtr(123456),
			},
			Case: &dispute.Case{
				ID:             123456,
				Debtor:         1000001,
				DisputedAmount: dec("100.00"),
				Status:         dispute.StatusOpen,
				RootCause:      dispute.RootCauseUnused,
			},
		},
	})

	evaluated, err := New().Evaluate(records, testRuleSet())

	require.NoError(t, err)
	require.Len(t, evaluated, 1)

	got := evaluated[0]
	assert.False(t, got.AmountMatch)
	assert.Nil(t, got.NewStatus)
	require.NotNil(t, got.NewStatusSales, "the reference text is aligned even without a match")
	assert.True(t, got.Modified)
	assert.Contains(t, got.Message, msgCaseUnsolved)
}

func TestEvaluate_ClearedSolvedCaseIsClosed(t *testing.T) {
	records := CheckConsistency([]MergedRecord{
		{
			Entry: ledger.Entry{
				DocumentNumber:   501234567,
				Amount:           dec("-100.00"),
				Branch:           1000001,
				CompanyCode:      "0001",
				ClearingDocument: uintPtr(401234567),
				CaseID:           uintPtr(123456),
			},
			Case: &dispute.Case{
				ID:             123456,
				Debtor:         1000001,
				DisputedAmount: dec("100.00"),
				StatusSales:    "cleared by 501234567",
				Status:         dispute.StatusSolved,
				RootCause:      dispute.RootCauseCreditNoteIssued,
			},
		},
	})

	evaluated, err := New().Evaluate(records, testRuleSet())

	require.NoError(t, err)
	require.Len(t, evaluated, 1)

	got := evaluated[0]
	require.NotNil(t, got.NewStatus)
	assert.Equal(t, dispute.StatusClosed, *got.NewStatus)
	assert.Nil(t, got.NewStatusSales, "existing reference stays untouched")
	assert.True(t, got.Changed)
	assert.False(t, got.Modified)
	assert.Contains(t, got.Message, msgClearedCaseClosed)
}

func TestEvaluate_InconsistentRecordIsNotDerived(t *testing.T) {
	records := CheckConsistency([]MergedRecord{
		{
			Entry: ledger.Entry{
				DocumentNumber: 501234567,
				Amount:         dec("-100.00"),
				Branch:         1000001,
				CompanyCode:    "0001",
				CaseID:         uintPtr(123456),
			},
			Case: &dispute.Case{
				ID:             123456,
				Debtor:         1000001,
				DisputedAmount: dec("100.00"),
				StatusSales:    "ref 501234567",
				Status:         dispute.StatusClosed,
				RootCause:      dispute.RootCauseUnjustified,
			},
		},
	})

	evaluated, err := New().Evaluate(records, testRuleSet())

	require.NoError(t, err)
	require.Len(t, evaluated, 1)

	got := evaluated[0]
	assert.True(t, got.Inconsistent)
	assert.Nil(t, got.NewStatus)
	assert.Nil(t, got.NewRootCause)
	assert.Nil(t, got.NewStatusSales)
	assert.False(t, got.Changed)
	assert.False(t, got.Modified)
	assert.Equal(t, msgInvalidCombination, got.Message)
}

func TestEvaluate_CoversActiveCompanyCodesOnly(t *testing.T) {
	records := []MergedRecord{
		{Entry: ledger.Entry{DocumentNumber: 501000001, CompanyCode: "0001"}},
		{Entry: ledger.Entry{DocumentNumber: 501000002, CompanyCode: "0001", CaseID: uintPtr(123456)}},
		{Entry: ledger.Entry{DocumentNumber: 501000003, CompanyCode: "0002"}},
		{Entry: ledger.Entry{DocumentNumber: 501000004, CompanyCode: "9999"}},
	}

	evaluated, err := New().Evaluate(records, testRuleSet())

	require.NoError(t, err)
	require.Len(t, evaluated, 2, "inactive and unknown company codes are excluded")
	for _, record := range evaluated {
		assert.Equal(t, "0001", record.Entry.CompanyCode)
		assert.Equal(t, "germany", record.Country)
	}
}

func TestEvaluate_SkipsCountryWithoutRecords(t *testing.T) {
	ruleSet := rules.Set{
		"germany": {CompanyCode: "0001", BaseThreshold: dec("0"), CasePattern: `123\d{3}`, Active: true},
		"austria": {CompanyCode: "0003", BaseThreshold: dec("0"), CasePattern: `323\d{3}`, Active: true},
	}
	records := CheckConsistency([]MergedRecord{
		{
			Entry: ledger.Entry{
				DocumentNumber: 501234567,
				Amount:         dec("-100.00"),
				Branch:         1000001,
				CompanyCode:    "0001",
				CaseID:         uintPtr(123456),
			},
			Case: &dispute.Case{
				ID:             123456,
				Debtor:         1000001,
				DisputedAmount: dec("100.00"),
				Status:         dispute.StatusOpen,
				RootCause:      dispute.RootCauseUnused,
			},
		},
	})

	evaluated, err := New().Evaluate(records, ruleSet)

	require.NoError(t, err)
	require.Len(t, evaluated, 1, "a country without records contributes nothing")
	assert.Equal(t, "germany", evaluated[0].Country)
	require.NotNil(t, evaluated[0].NewStatus)
	assert.Equal(t, dispute.StatusSolved, *evaluated[0].NewStatus)
}

func TestEvaluate_IsDeterministic(t *testing.T) {
	build := func() []MergedRecord {
		return CheckConsistency([]MergedRecord{
			{
				Entry: ledger.Entry{
					DocumentNumber: 501234567,
					Amount:         dec("-100.00"),
					Branch:         1000001,
					CompanyCode:    "0001",
					CaseID:         uintPtr(123456),
				},
				Case: &dispute.Case{
					ID:             123456,
					Debtor:         1000001,
					DisputedAmount: dec("100.00"),
					Status:         dispute.StatusOpen,
					RootCause:      dispute.RootCauseUnused,
				},
			},
			{Entry: ledger.Entry{DocumentNumber: 501000009, CompanyCode: "0001"}},
		})
	}

	first, err := New().Evaluate(build(), testRuleSet())
	require.NoError(t, err)
	second, err := New().Evaluate(build(), testRuleSet())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
