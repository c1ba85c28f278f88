// Package sapfmt parses the value formats used by SAP list exports:
// amounts with thousands dots, decimal commas and trailing minus signs,
// day-first dates, and blank-as-absent numeric fields.
package sapfmt

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "02.01.2006"

// ParseAmount converts an amount in the SAP list format ("1.234,56-")
// to a decimal value.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	// trailing minus marks negative amounts
	if strings.HasSuffix(cleaned, "-") {
		cleaned = "-" + strings.TrimSuffix(cleaned, "-")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}

	return amount, nil
}

// ParseDate converts a day-first date ("31.12.2021") to a time value.
func ParseDate(raw string) (time.Time, error) {
	day, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return day, nil
}

// ParseOptionalDate converts a day-first date, treating a blank field as
// absent.
func ParseOptionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	day, err := ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &day, nil
}

// ParseUint converts a numeric field to an unsigned integer.
func ParseUint(raw string) (uint64, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", raw, err)
	}
	return value, nil
}

// ParseOptionalUint converts a numeric field to an unsigned integer,
// treating a blank field as absent.
func ParseOptionalUint(raw string) (*uint64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	value, err := ParseUint(raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
