package report

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"arclose/internal/dispute"
	"arclose/internal/engine"
	"arclose/internal/ledger"
)

func testRecords() []engine.MergedRecord {
	solved := dispute.StatusSolved
	statusSales := "501234567"

	return []engine.MergedRecord{
		{
			Entry: ledger.Entry{
				DocumentNumber: 501234567,
				Amount:         decimal.RequireFromString("-1234.56"),
				Branch:         1000001,
				TaxCode:        "A1",
				CompanyCode:    "0001",
				CaseID:         uintPtr(123456),
			},
			Case: &dispute.Case{
				ID:             123456,
				Debtor:         1000001,
				DisputedAmount: decimal.RequireFromString("1234.56"),
				Status:         dispute.StatusOpen,
				RootCause:      dispute.RootCauseCreditNoteIssued,
			},
			Country:        "germany",
			AmountMatch:    true,
			Changed:        true,
			NewStatus:      &solved,
			NewStatusSales: &statusSales,
			Message:        "Case solved.",
		},
		{
			Entry: ledger.Entry{
				DocumentNumber: 501234568,
				Amount:         decimal.RequireFromString("100.00"),
				Branch:         1000002,
				CompanyCode:    "0001",
			},
			Country:      "germany",
			Inconsistent: true,
			Warnings:     "Case ID not found in text!",
		},
	}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")

	err := Write(testRecords(), path, "Data")
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Data")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per record")

	assert.Equal(t, "Case ID", rows[0][0])
	assert.Equal(t, "Message", rows[0][len(reportColumns)-1])

	caseID, err := f.GetCellValue("Data", "A2")
	require.NoError(t, err)
	assert.Equal(t, "123456", caseID)

	newStatus, err := f.GetCellValue("Data", "Q2")
	require.NoError(t, err)
	assert.Equal(t, "Solved", newStatus)

	caseID, err = f.GetCellValue("Data", "A3")
	require.NoError(t, err)
	assert.Empty(t, caseID, "record without case ID leaves the cell blank")
}

func TestWrite_Guards(t *testing.T) {
	dir := t.TempDir()

	err := Write(testRecords(), filepath.Join(dir, "report.csv"), "Data")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	err = Write(nil, filepath.Join(dir, "report.xlsx"), "Data")
	assert.ErrorIs(t, err, ErrNoRecords)

	err = Write(testRecords(), filepath.Join(dir, "report.xlsx"), "")
	assert.Error(t, err)
}
