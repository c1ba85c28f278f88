package dispute

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"arclose/internal/logger"
	"arclose/internal/sapfmt"
)

// itemLineRx matches export lines that carry a case record. Header,
// separator and footer lines of the list output are dropped.
var itemLineRx = regexp.MustCompile(`(?m)^\|\s*\d+\s*\|.*$`)

// Column layout of the dispute-case export.
const (
	colCaseID = iota
	colHeadOffice
	colDebtor
	colExternalReference
	colTitle
	colDisputedAmount
	colStatusSales
	colAssignment
	colStatus
	colCreatedOn
	colStatusDescription
	colCustomerDescription
	colCoordinator
	colProcessor
	colCategoryDescription
	colRootCause
	colCreatedBy
	colCategory
	colSolvedOn

	columnCount
)

// Parser converts raw dispute-case export text into typed case records.
type Parser struct {
	log zerolog.Logger
}

// NewParser creates a dispute-case export parser.
func NewParser() *Parser {
	return &Parser{
		log: logger.WithComponent("dispute-parser"),
	}
}

// Parse extracts all case records contained in the export text.
func (p *Parser) Parse(text string) ([]Case, error) {
	const op = "Parse"

	lines := itemLineRx.FindAllString(text, -1)

	p.log.Info().Int("lines", len(lines)).Msg("Parsing dispute-case export")

	var cases []Case
	for i, line := range lines {
		fields := splitLine(line)
		if len(fields) < columnCount {
			p.log.Warn().
				Int("line", i+1).
				Int("columns", len(fields)).
				Msg("Skipping dispute-case line with insufficient columns")
			continue
		}

		record, err := p.parseCase(fields)
		if err != nil {
			p.log.Warn().
				Err(err).
				Int("line", i+1).
				Msg("Failed to parse dispute case, skipping")
			continue
		}

		cases = append(cases, record)
	}

	p.log.Info().
		Int("total_lines", len(lines)).
		Int("parsed_cases", len(cases)).
		Msg("Dispute-case export parsed")

	return cases, nil
}

func (p *Parser) parseCase(fields []string) (Case, error) {
	id, err := sapfmt.ParseUint(fields[colCaseID])
	if err != nil {
		return Case{}, fmt.Errorf("case ID: %w", err)
	}

	headOffice, err := sapfmt.ParseUint(fields[colHeadOffice])
	if err != nil {
		return Case{}, fmt.Errorf("head office: %w", err)
	}

	debtor, err := sapfmt.ParseUint(fields[colDebtor])
	if err != nil {
		return Case{}, fmt.Errorf("debtor: %w", err)
	}

	// a missing disputed amount means no amount was recorded on the case
	disputedAmount := decimal.Zero
	if fields[colDisputedAmount] != "" {
		disputedAmount, err = sapfmt.ParseAmount(fields[colDisputedAmount])
		if err != nil {
			return Case{}, fmt.Errorf("disputed amount: %w", err)
		}
	}

	statusValue, err := sapfmt.ParseUint(fields[colStatus])
	if err != nil {
		return Case{}, fmt.Errorf("status: %w", err)
	}
	status := Status(statusValue)
	if !status.Valid() {
		return Case{}, fmt.Errorf("unknown status code %d", statusValue)
	}

	createdOn, err := sapfmt.ParseOptionalDate(fields[colCreatedOn])
	if err != nil {
		return Case{}, fmt.Errorf("created on: %w", err)
	}

	solvedOn, err := sapfmt.ParseOptionalDate(fields[colSolvedOn])
	if err != nil {
		return Case{}, fmt.Errorf("solved on: %w", err)
	}

	return Case{
		ID:             id,
		HeadOffice:     headOffice,
		Debtor:         debtor,
		Title:          fields[colTitle],
		DisputedAmount: disputedAmount,
		StatusSales:    fields[colStatusSales],
		Status:         status,
		RootCause:      RootCause(fields[colRootCause]),
		Category:       fields[colCategory],
		CreatedOn:      createdOn,
		SolvedOn:       solvedOn,
	}, nil
}

// splitLine removes the leading and trailing pipes of an export line and
// splits it into trimmed fields.
func splitLine(line string) []string {
	trimmed := strings.TrimPrefix(line, "|")
	trimmed = strings.TrimSuffix(trimmed, "|")

	fields := strings.Split(trimmed, "|")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}
