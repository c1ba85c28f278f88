package engine

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"arclose/internal/dispute"
	"arclose/internal/logger"
)

// maxStatusSalesChars is the hard limit the case system enforces on the
// status-sales field.
const maxStatusSalesChars = 50

// multiReferenceRx matches status-sales texts carrying two or more
// pre-credit-note reference numbers. Such cases are ambiguous: replacing
// the references would overwrite all of them with the same number.
var multiReferenceRx = regexp.MustCompile(`501\d{6}.*?501\d{6}`)

// Consistency messages and warnings.
const (
	msgInvalidCombination = "Case skipped. Reason: Incorrect case parameter combination!"
	msgDevaluated         = "Case skipped. Reason: Devaluated case ID assigned!"
	msgInvalidCaseID      = "Case skipped. Reason: Invalid case ID!"
	msgStatusSalesTooLong = "Case skipped. Reason: Maximum of 50 characters in 'Status sales' exceeded!"
	msgMultiReference     = "Case skipped. Reason: Status sales contains multiple 501* numbers!"

	warnCaseIDNotFound  = "Case ID not found in text!"
	warnDebtorsNotEqual = "Ledger and dispute debtor accounts not equal!"
	warnUnexpectedCause = "Unexpected root cause used!"
)

// CheckConsistency classifies every merged record as consistent or
// inconsistent. Records are only annotated, never dropped: the returned
// slice is the input slice with the classification fields filled in.
//
// The checks run in priority order and the first failing check provides
// the record's message; Inconsistent stays set once any check fails.
// A debtor-account mismatch is informational only and never blocks a case.
func CheckConsistency(records []MergedRecord) []MergedRecord {
	log := logger.WithComponent("engine")

	inconsistent := 0
	warned := 0

	for i := range records {
		checkRecord(&records[i])
		if records[i].Inconsistent {
			inconsistent++
		}
		if records[i].Warnings != "" {
			warned++
		}
	}

	log.Info().
		Int("records", len(records)).
		Int("inconsistent", inconsistent).
		Int("warned", warned).
		Msg("Consistency check completed")

	return records
}

func checkRecord(r *MergedRecord) {
	if r.CaseID() == nil {
		r.addWarning(warnCaseIDNotFound)
		r.Inconsistent = true
		return
	}

	if r.Case == nil {
		// the ledger references a case the export does not contain
		r.Message = msgInvalidCaseID
		r.Inconsistent = true
		return
	}

	r.ContainsCreditNoteReference = strings.Contains(
		r.Case.StatusSales, strconv.FormatUint(r.Entry.DocumentNumber, 10))

	fail := func(message string) {
		if r.Message == "" {
			r.Message = message
		}
		r.Inconsistent = true
	}

	if !validParameterCombination(r) {
		fail(msgInvalidCombination)
	}

	if r.Case.Status == dispute.StatusDevaluated {
		fail(msgDevaluated)
	}

	if statusSalesTooLong(r) {
		fail(msgStatusSalesTooLong)
	}

	if r.Case.Debtor != r.Entry.Branch {
		// informational only, the case can still be processed
		r.addWarning(warnDebtorsNotEqual)
	}

	if !r.Case.RootCause.Recognized() {
		r.addWarning(warnUnexpectedCause)
		r.Inconsistent = true
	}

	if multiReferenceRx.MatchString(r.Case.StatusSales) {
		fail(msgMultiReference)
	}
}

// validParameterCombination reports whether the tuple of (status sales
// already references the credit note, root cause, status) matches one of
// the allowed closing patterns.
func validParameterCombination(r *MergedRecord) bool {
	hasRef := r.ContainsCreditNoteReference
	rc := r.Case.RootCause
	status := r.Case.Status

	switch {
	case hasRef && rc == dispute.RootCauseCreditNoteIssued &&
		statusIn(status, dispute.StatusOpen, dispute.StatusSolved, dispute.StatusClosed):
		return true
	case hasRef && rc == dispute.RootCauseUnjustified &&
		statusIn(status, dispute.StatusOpen, dispute.StatusSolved):
		return true
	case !hasRef && (rc == dispute.RootCauseUnused || rc == dispute.RootCauseCreditNoteIssued) &&
		statusIn(status, dispute.StatusOpen, dispute.StatusSolved, dispute.StatusClosed):
		return true
	case !hasRef && rc == dispute.RootCausePaymentAgreement &&
		status == dispute.StatusSolved:
		return true
	case hasRef && rc == dispute.RootCausePaymentAgreement &&
		statusIn(status, dispute.StatusSolved, dispute.StatusClosed):
		return true
	}
	return false
}

// statusSalesTooLong checks the status-sales text the deriver would
// produce against the case-system field limit.
func statusSalesTooLong(r *MergedRecord) bool {
	if r.ContainsCreditNoteReference {
		return false
	}
	proposed := nextStatusSales(r.Case.StatusSales, r.Entry.DocumentNumber)
	return proposed != nil && utf8.RuneCountInString(*proposed) > maxStatusSalesChars
}

func statusIn(status dispute.Status, candidates ...dispute.Status) bool {
	for _, candidate := range candidates {
		if status == candidate {
			return true
		}
	}
	return false
}
