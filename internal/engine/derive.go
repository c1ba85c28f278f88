package engine

import (
	"regexp"
	"strconv"
	"strings"

	"arclose/internal/dispute"
)

// preCreditNoteRx matches a pre-credit-note reference number inside a
// status-sales text: nine digits starting with 50, optionally zero-padded.
var preCreditNoteRx = regexp.MustCompile(`0?50\d{7}`)

// Derivation messages.
const (
	msgCaseAlreadyClosed    = "Case already closed."
	msgCaseAlreadySolved    = "Case already solved."
	msgCaseSolved           = "Case solved."
	msgCaseUnsolved         = "Case unsolved. Reason: Credit note and dispute amounts off threshold."
	msgClearedCaseClosed    = "Credit note cleared, case closed."
	msgClearedAlreadyClosed = "Credit note cleared, case already closed."

	msgStatusSalesUpdated   = "Status sales updated."
	msgStatusSalesUnchanged = "Status sales unchanged."
	msgRootCauseChanged     = "Root cause changed to L06."
	msgRootCauseUnchanged   = "Root cause unchanged."
)

// Root causes that stay untouched during derivation. Anything outside the
// set is replaced by "credit note issued".
var (
	openKeepRootCauses = []dispute.RootCause{
		dispute.RootCauseUnused,
		dispute.RootCauseCreditNoteIssued,
		dispute.RootCausePaymentAgreement,
		dispute.RootCauseBelowThreshold,
	}
	closedKeepRootCauses = []dispute.RootCause{
		dispute.RootCauseUnused,
		dispute.RootCauseCreditNoteIssued,
		dispute.RootCausePaymentAgreement,
		dispute.RootCauseBelowThreshold,
		dispute.RootCauseUnjustified,
	}
)

// deriveOpenParams proposes new case parameters for a consistent record
// whose credit note is still open on the ledger. The case is solved when
// its amounts matched; otherwise only the reference text and root cause
// are aligned.
func deriveOpenParams(r *MergedRecord) {
	switch r.Case.Status {
	case dispute.StatusClosed:
		r.Message = msgCaseAlreadyClosed
	case dispute.StatusSolved:
		r.Message = msgCaseAlreadySolved
	case dispute.StatusOpen:
		if r.AmountMatch {
			status := dispute.StatusSolved
			r.NewStatus = &status
			r.Message = msgCaseSolved
		} else {
			r.Message = msgCaseUnsolved
		}
	}

	deriveStatusSales(r)
	deriveRootCause(r, openKeepRootCauses)
	deriveFlags(r)
}

// deriveClosedParams proposes new case parameters for a consistent record
// whose credit note has been cleared on the ledger. Cleared items are not
// threshold-checked: the case is closed outright.
func deriveClosedParams(r *MergedRecord) {
	switch r.Case.Status {
	case dispute.StatusClosed:
		r.Message = msgClearedAlreadyClosed
	case dispute.StatusOpen, dispute.StatusSolved:
		status := dispute.StatusClosed
		r.NewStatus = &status
		r.Message = msgClearedCaseClosed
	}

	deriveStatusSales(r)
	deriveRootCause(r, closedKeepRootCauses)
	deriveFlags(r)
}

func deriveStatusSales(r *MergedRecord) {
	if r.ContainsCreditNoteReference {
		r.addMessage(msgStatusSalesUnchanged)
		return
	}

	r.NewStatusSales = nextStatusSales(r.Case.StatusSales, r.Entry.DocumentNumber)
	if r.NewStatusSales == nil {
		r.addMessage(msgStatusSalesUnchanged)
		return
	}
	r.addMessage(msgStatusSalesUpdated)
}

func deriveRootCause(r *MergedRecord, keep []dispute.RootCause) {
	for _, rc := range keep {
		if r.Case.RootCause == rc {
			r.addMessage(msgRootCauseUnchanged)
			return
		}
	}

	rootCause := dispute.RootCauseCreditNoteIssued
	r.NewRootCause = &rootCause
	r.addMessage(msgRootCauseChanged)
}

func deriveFlags(r *MergedRecord) {
	r.Changed = r.NewStatus != nil || r.NewRootCause != nil || r.NewStatusSales != nil
	r.Modified = r.NewStatus == nil && (r.NewRootCause != nil || r.NewStatusSales != nil)
}

// nextStatusSales returns the status-sales text carrying the credit-note
// document number: an existing pre-credit-note reference is replaced, the
// number is appended when no reference exists, or used alone when the text
// is empty. Returns nil when the text already contains the number.
func nextStatusSales(current string, documentNumber uint64) *string {
	number := strconv.FormatUint(documentNumber, 10)

	if strings.Contains(current, number) {
		return nil
	}

	var next string
	if preCreditNoteRx.MatchString(current) {
		next = preCreditNoteRx.ReplaceAllString(current, number)
	} else {
		next = strings.TrimSpace(current + " " + number)
	}

	return &next
}
