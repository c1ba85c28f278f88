// Package ledger models receivable line items exported from the external
// ledger application and parses their pipe-delimited export format.
package ledger

import (
	"github.com/shopspring/decimal"
)

// Entry is an immutable receivable line item. One credit note produces one
// entry; a dispute case may be referenced by several entries.
type Entry struct {
	// DocumentNumber identifies the credit note on the ledger.
	DocumentNumber uint64

	// Amount is the signed open amount of the item.
	Amount decimal.Decimal

	// Branch is the debtor account the item is posted to.
	Branch uint64

	// TaxCode selects a tax-specific tolerance when matching amounts.
	TaxCode string

	// Text is the free-text item description a case ID may be
	// extracted from.
	Text string

	// CompanyCode assigns the item to a country.
	CompanyCode string

	// Assignment is the document assignment reference.
	Assignment string

	// ClearingDocument is set once the item has been settled.
	ClearingDocument *uint64

	// CaseID is the dispute-case ID extracted from Text, if exactly one
	// was found.
	CaseID *uint64
}

// Cleared reports whether the item has been settled on the ledger.
func (e Entry) Cleared() bool {
	return e.ClearingDocument != nil
}
