// Package engine decides which dispute cases can be closed or solved once
// their credit notes reconcile against the ledger. It is a pure batch
// computation: ledger entries and dispute-case snapshots go in, annotated
// records and closing instructions come out. The engine performs no I/O
// and keeps no state between runs.
package engine

import (
	"github.com/shopspring/decimal"

	"arclose/internal/dispute"
	"arclose/internal/ledger"
)

// MergedRecord is one ledger entry joined with at most one dispute case,
// carrying the decision fields the pipeline fills in. Optional decision
// fields are nil until a value has been decided.
type MergedRecord struct {
	Entry ledger.Entry

	// Case is the matched dispute case, nil when the entry references no
	// case or the referenced case was not found in the export.
	Case *dispute.Case

	// Country owning the record's company code; assigned during
	// per-country evaluation.
	Country string

	// ContainsCreditNoteReference reports whether the case's status-sales
	// text already carries the entry's document number.
	ContainsCreditNoteReference bool

	// Inconsistent excludes the record from instruction generation.
	Inconsistent bool

	// Changed marks records with any proposed parameter change.
	Changed bool

	// Modified marks records whose root cause or status sales changed
	// while the status stays untouched.
	Modified bool

	// IsError records a downstream case-update failure reported back by
	// the update collaborator.
	IsError bool

	// Threshold is the tolerance applied during amount matching.
	Threshold *decimal.Decimal

	// AmountMatch reports whether the summed ledger amounts offset the
	// disputed amount within the tolerance.
	AmountMatch bool

	Warnings string
	Message  string

	NewStatus      *dispute.Status
	NewRootCause   *dispute.RootCause
	NewStatusSales *string
}

// CaseID returns the dispute-case ID referenced by the record's ledger
// entry, or nil when none was extracted.
func (r *MergedRecord) CaseID() *uint64 {
	return r.Entry.CaseID
}

// StatusSales returns the case's status-sales text, or an empty string
// for records without a matched case.
func (r *MergedRecord) StatusSales() string {
	if r.Case == nil {
		return ""
	}
	return r.Case.StatusSales
}

// ClosingInstruction tells the case-update collaborator which parameters
// to change on a single case. A nil field means "leave unchanged".
type ClosingInstruction struct {
	CaseID         uint64
	NewStatus      *dispute.Status
	NewRootCause   *dispute.RootCause
	NewStatusSales *string
}

func (r *MergedRecord) addWarning(warning string) {
	if r.Warnings == "" {
		r.Warnings = warning
		return
	}
	r.Warnings = r.Warnings + " " + warning
}

func (r *MergedRecord) addMessage(message string) {
	if r.Message == "" {
		r.Message = message
		return
	}
	r.Message = r.Message + " " + message
}
