package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arclose/internal/dispute"
	"arclose/internal/ledger"
)

func TestBuildInstructions_FiltersRecords(t *testing.T) {
	solved := dispute.StatusSolved
	statusSales := "501234567"

	records := []MergedRecord{
		{
			Entry:          ledger.Entry{CaseID: uintPtr(100)},
			Changed:        true,
			NewStatus:      &solved,
			NewStatusSales: &statusSales,
		},
		{
			Entry:        ledger.Entry{CaseID: uintPtr(200)},
			Inconsistent: true,
			Changed:      true,
			NewStatus:    &solved,
		},
		{
			Entry: ledger.Entry{CaseID: uintPtr(300)},
		},
		{
			Entry:          ledger.Entry{CaseID: uintPtr(400)},
			Changed:        true,
			Modified:       true,
			NewStatusSales: &statusSales,
		},
		{
			Changed:   true,
			NewStatus: &solved,
		},
	}

	instructions, err := BuildInstructions(records)

	require.NoError(t, err)
	require.Len(t, instructions, 2)

	assert.Equal(t, uint64(100), instructions[0].CaseID)
	require.NotNil(t, instructions[0].NewStatus)
	assert.Equal(t, dispute.StatusSolved, *instructions[0].NewStatus)
	require.NotNil(t, instructions[0].NewStatusSales)
	assert.Equal(t, statusSales, *instructions[0].NewStatusSales)
	assert.Nil(t, instructions[0].NewRootCause)

	assert.Equal(t, uint64(400), instructions[1].CaseID)
	assert.Nil(t, instructions[1].NewStatus)
}

func TestBuildInstructions_NoCasesToClose(t *testing.T) {
	records := []MergedRecord{
		{Entry: ledger.Entry{CaseID: uintPtr(100)}},
		{Entry: ledger.Entry{CaseID: uintPtr(200)}, Inconsistent: true, Changed: true},
	}

	instructions, err := BuildInstructions(records)

	require.Error(t, err)
	assert.Nil(t, instructions)
	assert.ErrorIs(t, err, ErrNoCasesToClose)

	var procErr *ProcessingError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, "BuildInstructions", procErr.Op)
}
