// Package caseupdate applies closing instructions through the external
// case-management collaborator and feeds per-case failures back into the
// annotated dataset.
package caseupdate

import (
	"context"

	"github.com/rs/zerolog"

	"arclose/internal/engine"
	"arclose/internal/logger"
)

// Updater modifies a single dispute case in the external case-management
// system. The orchestration layer provides the concrete implementation;
// the engine never talks to the case system itself.
//
//go:generate mockgen -destination=mocks/mock_updater.go -source=updater.go Updater
type Updater interface {
	UpdateCase(ctx context.Context, instruction engine.ClosingInstruction) error
}

// Applier walks a closing-instruction list and applies each instruction
// through an Updater.
type Applier struct {
	updater Updater
	log     zerolog.Logger
}

// NewApplier creates an instruction applier.
func NewApplier(updater Updater) *Applier {
	return &Applier{
		updater: updater,
		log:     logger.WithComponent("caseupdate"),
	}
}

// Apply processes every instruction in order. A failing case is recorded
// on the annotated dataset as IsError with the failure message and does
// not stop the remaining cases. Returns the number of failed cases.
func (a *Applier) Apply(ctx context.Context, instructions []engine.ClosingInstruction, records []engine.MergedRecord) int {
	failed := 0

	for i, instruction := range instructions {
		a.log.Info().
			Uint64("case_id", instruction.CaseID).
			Int("current", i+1).
			Int("total", len(instructions)).
			Msg("Processing case")

		if err := a.updater.UpdateCase(ctx, instruction); err != nil {
			engine.MarkUpdateFailure(records, instruction.CaseID, err)
			a.log.Error().
				Err(err).
				Uint64("case_id", instruction.CaseID).
				Msg("Case unprocessed")
			failed++
			continue
		}
	}

	a.log.Info().
		Int("total", len(instructions)).
		Int("failed", failed).
		Msg("Closing instructions applied")

	return failed
}
