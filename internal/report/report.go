// Package report renders the annotated reconciliation output into user
// reports: one xlsx workbook per country and an HTML summary row for the
// notification mail.
package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"arclose/internal/engine"
	"arclose/internal/logger"
)

// Common report errors
var (
	// ErrNoRecords is returned when a report is requested for an empty
	// dataset.
	ErrNoRecords = errors.New("report data contains no records")

	// ErrUnsupportedFormat is returned when the report path does not end
	// in .xlsx.
	ErrUnsupportedFormat = errors.New("unsupported report file format")
)

// Report column layout.
var reportColumns = []string{
	"Case ID",
	"Document Number",
	"Company Code",
	"Country",
	"Branch",
	"Debtor",
	"Tax",
	"Amount",
	"Disputed Amount",
	"Threshold",
	"Clearing Document",
	"Status",
	"Root Cause",
	"Status Sales",
	"Created On",
	"Solved On",
	"New Status",
	"New Root Cause",
	"New Status Sales",
	"Changed",
	"Modified",
	"Inconsistent",
	"Is Error",
	"Warnings",
	"Message",
}

const (
	moneyFormat = "#,##0.00"
	dateFormat  = "mm.dd.yyyy"
)

var moneyColumns = map[string]bool{"Amount": true, "Disputed Amount": true, "Threshold": true}
var dateColumns = map[string]bool{"Created On": true, "Solved On": true}

// Write renders the annotated records of one country into an xlsx report:
// ordered columns, money and date formats, styled frozen header with an
// autofilter, and column widths sized to the content.
func Write(records []engine.MergedRecord, path, sheetName string) error {
	const op = "Write"
	log := logger.WithComponent("report")

	if !strings.HasSuffix(path, ".xlsx") {
		return fmt.Errorf("%s: %w: %s", op, ErrUnsupportedFormat, path)
	}
	if sheetName == "" {
		return fmt.Errorf("%s: sheet name cannot be an empty string", op)
	}
	if len(records) == 0 {
		return fmt.Errorf("%s: %w", op, ErrNoRecords)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("%s: failed to name report sheet: %w", op, err)
	}

	widths := make([]int, len(reportColumns))
	for col, header := range reportColumns {
		widths[col] = len(header)
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("%s: failed to write header: %w", op, err)
		}
	}

	for row, record := range records {
		values := recordValues(&record)
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("%s: failed to write record: %w", op, err)
			}
			if width := valueWidth(value); width > widths[col] {
				widths[col] = width
			}
		}
	}

	if err := applyFormats(f, sheetName, widths); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%s: failed to save report: %w", op, err)
	}

	log.Info().
		Str("path", path).
		Int("records", len(records)).
		Msg("Report created")

	return nil
}

func applyFormats(f *excelize.File, sheetName string, widths []int) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F06B00"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	moneyFmt := moneyFormat
	moneyStyle, err := f.NewStyle(&excelize.Style{
		CustomNumFmt: &moneyFmt,
		Alignment:    &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create money style: %w", err)
	}

	dateFmt := dateFormat
	dateStyle, err := f.NewStyle(&excelize.Style{
		CustomNumFmt: &dateFmt,
		Alignment:    &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}

	generalStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create general style: %w", err)
	}

	for col, header := range reportColumns {
		name, _ := excelize.ColumnNumberToName(col + 1)

		style := generalStyle
		if moneyColumns[header] {
			style = moneyStyle
		} else if dateColumns[header] {
			style = dateStyle
		}
		if err := f.SetColStyle(sheetName, name, style); err != nil {
			return fmt.Errorf("failed to style column %s: %w", name, err)
		}
		if err := f.SetColWidth(sheetName, name, name, float64(widths[col]+2)); err != nil {
			return fmt.Errorf("failed to size column %s: %w", name, err)
		}
	}

	lastCell, _ := excelize.CoordinatesToCellName(len(reportColumns), 1)
	if err := f.SetCellStyle(sheetName, "A1", lastCell, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.AutoFilter(sheetName, "A1:"+lastCell, nil); err != nil {
		return fmt.Errorf("failed to set autofilter: %w", err)
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	return nil
}

func recordValues(r *engine.MergedRecord) []interface{} {
	values := make([]interface{}, len(reportColumns))

	values[0] = optionalUint(r.CaseID())
	values[1] = r.Entry.DocumentNumber
	values[2] = r.Entry.CompanyCode
	values[3] = r.Country
	values[4] = r.Entry.Branch
	values[7] = r.Entry.Amount.InexactFloat64()
	values[6] = r.Entry.TaxCode
	values[10] = optionalUint(r.Entry.ClearingDocument)

	if r.Case != nil {
		values[5] = r.Case.Debtor
		values[8] = r.Case.DisputedAmount.InexactFloat64()
		values[11] = r.Case.Status.String()
		values[12] = string(r.Case.RootCause)
		values[13] = r.Case.StatusSales
		values[14] = optionalDate(r.Case.CreatedOn)
		values[15] = optionalDate(r.Case.SolvedOn)
	} else {
		values[5], values[8] = "", ""
		values[11], values[12], values[13] = "", "", ""
		values[14], values[15] = "", ""
	}

	if r.Threshold != nil {
		values[9] = r.Threshold.InexactFloat64()
	} else {
		values[9] = ""
	}

	if r.NewStatus != nil {
		values[16] = r.NewStatus.String()
	} else {
		values[16] = ""
	}
	if r.NewRootCause != nil {
		values[17] = string(*r.NewRootCause)
	} else {
		values[17] = ""
	}
	if r.NewStatusSales != nil {
		values[18] = *r.NewStatusSales
	} else {
		values[18] = ""
	}

	values[19] = r.Changed
	values[20] = r.Modified
	values[21] = r.Inconsistent
	values[22] = r.IsError
	values[23] = r.Warnings
	values[24] = r.Message

	return values
}

func optionalUint(v *uint64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func optionalDate(v *time.Time) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func valueWidth(value interface{}) int {
	switch v := value.(type) {
	case string:
		return len(v)
	case uint64:
		return len(strconv.FormatUint(v, 10))
	case float64:
		return len(strconv.FormatFloat(v, 'f', 2, 64))
	case bool:
		return 5
	case time.Time:
		return len(dateFormat)
	}
	return 0
}
