package engine

import (
	"fmt"
	"sort"

	"arclose/internal/dispute"
	"arclose/internal/ledger"
	"arclose/internal/logger"
)

// Merge left-joins ledger entries to dispute cases on the extracted case
// ID. Every ledger entry survives the join; entries without a case ID, or
// referencing a case missing from the export, keep a nil case. Each record
// receives its own copy of the matched case so later per-country
// evaluation shares no state. The result is sorted by case ID descending,
// entries without a case ID last, for reproducible reporting.
func Merge(entries []ledger.Entry, cases []dispute.Case) ([]MergedRecord, error) {
	const op = "Merge"
	log := logger.WithComponent("engine")

	if len(entries) == 0 {
		return nil, newProcessingError(op, ErrEmptyInput, "")
	}

	byID := make(map[uint64]dispute.Case, len(cases))
	for _, c := range cases {
		byID[c.ID] = c
	}

	records := make([]MergedRecord, 0, len(entries))
	matched := 0
	for _, entry := range entries {
		record := MergedRecord{Entry: entry}
		if entry.CaseID != nil {
			if c, ok := byID[*entry.CaseID]; ok {
				caseCopy := c
				record.Case = &caseCopy
				matched++
			}
		}
		records = append(records, record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].CaseID(), records[j].CaseID()
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})

	if len(records) != len(entries) {
		return nil, newProcessingError(op, fmt.Errorf("%w: %d entries, %d records", ErrRowCountMismatch, len(entries), len(records)), "")
	}

	log.Info().
		Int("ledger_entries", len(entries)).
		Int("dispute_cases", len(cases)).
		Int("matched", matched).
		Msg("Ledger and dispute data merged")

	return records, nil
}
