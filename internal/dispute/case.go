// Package dispute models dispute cases exported from the external
// case-management system and parses their pipe-delimited export format.
package dispute

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the numeric processing status of a dispute case.
type Status uint8

const (
	StatusOpen       Status = 1
	StatusSolved     Status = 2
	StatusClosed     Status = 3
	StatusDevaluated Status = 4
)

// Valid reports whether the status is one of the known status codes.
func (s Status) Valid() bool {
	return s >= StatusOpen && s <= StatusDevaluated
}

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusSolved:
		return "Solved"
	case StatusClosed:
		return "Closed"
	case StatusDevaluated:
		return "Devaluated"
	}
	return "Unknown"
}

// RootCause is the coded reason category of a dispute case. An empty
// value means no root cause has been assigned yet.
type RootCause string

const (
	RootCauseUnused           RootCause = ""
	RootCauseUnjustified      RootCause = "L00"
	RootCausePaymentAgreement RootCause = "L01"
	RootCauseCreditNoteIssued RootCause = "L06"
	RootCauseChargeOff        RootCause = "L08"
	RootCauseBelowThreshold   RootCause = "L14"
)

// Recognized reports whether the root cause belongs to the standard code
// set. Anything else is an unexpected value entered by a case processor.
func (rc RootCause) Recognized() bool {
	switch rc {
	case RootCauseUnused, RootCauseUnjustified, RootCausePaymentAgreement,
		RootCauseCreditNoteIssued, RootCauseChargeOff, RootCauseBelowThreshold:
		return true
	}
	return false
}

// Case is an immutable snapshot of a dispute case at export time.
type Case struct {
	ID             uint64
	HeadOffice     uint64
	Debtor         uint64
	Title          string
	DisputedAmount decimal.Decimal
	StatusSales    string
	Status         Status
	RootCause      RootCause
	Category       string
	CreatedOn      *time.Time
	SolvedOn       *time.Time
}
