package report

import (
	"strings"
	"text/template"

	"arclose/internal/dispute"
	"arclose/internal/engine"
)

// Summary aggregates the processing outcome of one country for the
// notification mail.
type Summary struct {
	Country      string
	CompanyCode  string
	Modified     int
	Solved       int
	Closed       int
	Inconsistent int
	TotalOpen    int
	NoCaseID     int
	Warnings     int
	Errors       int
}

var summaryRowTmpl = template.Must(template.New("summaryRow").Parse(strings.TrimSpace(`
<tr>
    <td style="border: purple 2px solid; padding: 5px">{{.Country}}</td>
    <td style="border: purple 2px solid; padding: 5px">{{.CompanyCode}}</td>
    <td style="border: purple 2px solid; padding: 5px">{{.Modified}}</td>
    <td style="border: purple 2px solid; padding: 5px">{{.Solved}}</td>
    <td style="border: purple 2px solid; padding: 5px">{{.Closed}}</td>
    <td style="border: purple 2px solid; padding: 5px">{{.Inconsistent}}</td>
    <td style="border: purple 2px solid; padding: 5px">{{.TotalOpen}}</td>
    <td style="border: purple 2px solid; padding: 5px">{{.NoCaseID}}</td>
    <td style="border: purple 2px solid; padding: 5px">{{.Warnings}}</td>
    <td style="border: purple 2px solid; padding: 5px">{{.Errors}}</td>
</tr>
`)))

// Summarize aggregates the records of one country. Solved and closed
// counts are unique case counts of successfully applied status changes;
// the remaining counters are record counts.
func Summarize(records []engine.MergedRecord, companyCode, country string) Summary {
	summary := Summary{
		Country:     country,
		CompanyCode: companyCode,
	}

	solvedCases := map[uint64]bool{}
	closedCases := map[uint64]bool{}

	for i := range records {
		r := &records[i]

		if r.NewStatus != nil && r.Changed && !r.IsError && r.CaseID() != nil {
			switch *r.NewStatus {
			case dispute.StatusSolved:
				solvedCases[*r.CaseID()] = true
			case dispute.StatusClosed:
				closedCases[*r.CaseID()] = true
			}
		}

		if !r.Entry.Cleared() {
			summary.TotalOpen++
		}
		if r.Inconsistent {
			summary.Inconsistent++
		}
		if r.Modified {
			summary.Modified++
		}
		if r.Warnings != "" {
			summary.Warnings++
		}
		if r.IsError {
			summary.Errors++
		}
		if r.CaseID() == nil {
			summary.NoCaseID++
		}
	}

	summary.Solved = len(solvedCases)
	summary.Closed = len(closedCases)

	return summary
}

// HTMLRow renders the summary as a table row for the notification body.
func (s Summary) HTMLRow() (string, error) {
	var sb strings.Builder
	if err := summaryRowTmpl.Execute(&sb, s); err != nil {
		return "", err
	}
	return sb.String(), nil
}
