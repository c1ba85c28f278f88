package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"arclose/internal/ledger"
)

func TestMarkUpdateFailure(t *testing.T) {
	records := []MergedRecord{
		{Entry: ledger.Entry{DocumentNumber: 501000001, CaseID: uintPtr(100)}, Message: "Case solved."},
		{Entry: ledger.Entry{DocumentNumber: 501000002, CaseID: uintPtr(100)}, Message: "Case solved."},
		{Entry: ledger.Entry{DocumentNumber: 501000003, CaseID: uintPtr(200)}, Message: "Case solved."},
		{Entry: ledger.Entry{DocumentNumber: 501000004}},
	}

	annotated := MarkUpdateFailure(records, 100, errors.New("remote system unavailable"))

	assert.Equal(t, 2, annotated)
	for _, record := range records[:2] {
		assert.True(t, record.IsError)
		assert.Equal(t, "Case unprocessed. Error: remote system unavailable", record.Message)
	}

	assert.False(t, records[2].IsError, "other cases stay untouched")
	assert.Equal(t, "Case solved.", records[2].Message)
	assert.False(t, records[3].IsError)
}
