package engine

import (
	"fmt"
)

// MarkUpdateFailure records a downstream case-update failure on every
// record of the affected case. Failures are isolated per case; the rest
// of the dataset is untouched. Returns the number of records annotated.
func MarkUpdateFailure(records []MergedRecord, caseID uint64, cause error) int {
	annotated := 0
	for i := range records {
		id := records[i].CaseID()
		if id == nil || *id != caseID {
			continue
		}
		records[i].IsError = true
		records[i].Message = fmt.Sprintf("Case unprocessed. Error: %v", cause)
		annotated++
	}
	return annotated
}
