package engine

import (
	"arclose/internal/logger"
)

// BuildInstructions selects every consistent record carrying a proposed
// change and turns it into a closing instruction for the case-update
// collaborator. Returns ErrNoCasesToClose when no record qualifies; that
// is the normal outcome of a run with nothing to do, not a failure.
func BuildInstructions(records []MergedRecord) ([]ClosingInstruction, error) {
	const op = "BuildInstructions"
	log := logger.WithComponent("engine")

	var instructions []ClosingInstruction
	for i := range records {
		record := &records[i]
		if record.Inconsistent || !(record.Changed || record.Modified) {
			continue
		}

		caseID := record.CaseID()
		if caseID == nil {
			continue
		}

		instructions = append(instructions, ClosingInstruction{
			CaseID:         *caseID,
			NewStatus:      record.NewStatus,
			NewRootCause:   record.NewRootCause,
			NewStatusSales: record.NewStatusSales,
		})
	}

	if len(instructions) == 0 {
		log.Warn().Msg("Could not create closing input. Reason: No data to modify found.")
		return nil, newProcessingError(op, ErrNoCasesToClose, "")
	}

	log.Info().Int("cases", len(instructions)).Msg("Closing input compiled")

	return instructions, nil
}
