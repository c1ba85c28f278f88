package ledger

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"arclose/internal/logger"
	"arclose/internal/sapfmt"
)

// Common ledger parsing errors
var (
	// ErrNoExportData is returned when no export text is supplied.
	ErrNoExportData = errors.New("no ledger export data supplied")

	// ErrNoCasePatterns is returned when case extraction is attempted
	// without any country case patterns.
	ErrNoCasePatterns = errors.New("no case patterns supplied")
)

// itemLineRx matches export lines that carry an account item. Document
// numbers are nine digits long.
var itemLineRx = regexp.MustCompile(`(?m)^\|\s*\d{9}.*\|$`)

// nonStandardTax is exported by the ledger for items without a usable
// tax code.
const nonStandardTax = "**"

// Column layout of the receivables export.
const (
	colDocumentNumber = iota
	colAmount
	colBranch
	colTax
	colText
	colCompanyCode
	colAssignment
	colClearingDocument

	columnCount
)

// Parser converts raw receivables export text into typed ledger entries.
type Parser struct {
	log zerolog.Logger
}

// NewParser creates a receivables export parser.
func NewParser() *Parser {
	return &Parser{
		log: logger.WithComponent("ledger-parser"),
	}
}

// Parse extracts all account items contained in the export texts. Open and
// cleared items arrive as separate exports and are parsed together.
func (p *Parser) Parse(texts ...string) ([]Entry, error) {
	const op = "Parse"

	if len(texts) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoExportData)
	}

	combined := strings.Join(texts, "\n")
	combined = strings.ReplaceAll(combined, `"`, "")
	lines := itemLineRx.FindAllString(combined, -1)

	p.log.Info().Int("lines", len(lines)).Msg("Parsing receivables export")

	var entries []Entry
	for i, line := range lines {
		fields := splitLine(line)
		if len(fields) < columnCount {
			p.log.Warn().
				Int("line", i+1).
				Int("columns", len(fields)).
				Msg("Skipping ledger line with insufficient columns")
			continue
		}

		entry, err := p.parseEntry(fields)
		if err != nil {
			p.log.Warn().
				Err(err).
				Int("line", i+1).
				Msg("Failed to parse ledger entry, skipping")
			continue
		}

		entries = append(entries, entry)
	}

	p.log.Info().
		Int("total_lines", len(lines)).
		Int("parsed_entries", len(entries)).
		Msg("Receivables export parsed")

	return entries, nil
}

func (p *Parser) parseEntry(fields []string) (Entry, error) {
	documentNumber, err := sapfmt.ParseUint(fields[colDocumentNumber])
	if err != nil {
		return Entry{}, fmt.Errorf("document number: %w", err)
	}

	amount, err := sapfmt.ParseAmount(fields[colAmount])
	if err != nil {
		return Entry{}, fmt.Errorf("amount: %w", err)
	}

	branch, err := sapfmt.ParseUint(fields[colBranch])
	if err != nil {
		return Entry{}, fmt.Errorf("branch: %w", err)
	}

	clearingDocument, err := sapfmt.ParseOptionalUint(fields[colClearingDocument])
	if err != nil {
		return Entry{}, fmt.Errorf("clearing document: %w", err)
	}

	tax := fields[colTax]
	if tax == nonStandardTax {
		tax = ""
	}

	return Entry{
		DocumentNumber:   documentNumber,
		Amount:           amount,
		Branch:           branch,
		TaxCode:          tax,
		Text:             fields[colText],
		CompanyCode:      fields[colCompanyCode],
		Assignment:       fields[colAssignment],
		ClearingDocument: clearingDocument,
	}, nil
}

// ExtractCaseIDs resolves the dispute-case ID referenced by each entry's
// item text, using the case numbering pattern of the entry's company code.
// Entries whose text carries no reference, or more than one, keep an
// absent case ID. The patterns map company codes to the numbering part of
// the reference; the surrounding "DP-" style prefix is shared.
func ExtractCaseIDs(entries []Entry, patterns map[string]string) error {
	const op = "ExtractCaseIDs"
	log := logger.WithComponent("ledger-parser")

	if len(entries) == 0 {
		return fmt.Errorf("%s: %w", op, ErrNoExportData)
	}
	if len(patterns) == 0 {
		return fmt.Errorf("%s: %w", op, ErrNoCasePatterns)
	}

	matchers := make(map[string]*regexp.Regexp, len(patterns))
	for companyCode, pattern := range patterns {
		rx, err := regexp.Compile(`D[P]?\s*[-_/]?(` + pattern + `)`)
		if err != nil {
			return fmt.Errorf("%s: invalid case pattern for company code %q: %w", op, companyCode, err)
		}
		matchers[companyCode] = rx
	}

	extracted := 0
	ambiguous := 0

	for i := range entries {
		rx, ok := matchers[entries[i].CompanyCode]
		if !ok {
			continue
		}

		matches := rx.FindAllStringSubmatch(entries[i].Text, -1)
		if len(matches) != 1 {
			if len(matches) > 1 {
				ambiguous++
			}
			continue
		}

		caseID, err := sapfmt.ParseUint(matches[0][1])
		if err != nil {
			continue
		}

		entries[i].CaseID = &caseID
		extracted++
	}

	log.Info().
		Int("entries", len(entries)).
		Int("extracted", extracted).
		Int("ambiguous", ambiguous).
		Msg("Case IDs extracted from item texts")

	return nil
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
