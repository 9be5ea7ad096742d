// internal/metrics/compare.go
package metrics

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mwiater/syncbench/benchmark"
)

// ReportRow is the per-report line of a comparison.
type ReportRow struct {
	Label    string
	Endpoint string
	OK       int
	Total    int
	Summary  *benchmark.Summary
}

// Comparison lines several runs up against each other.
type Comparison struct {
	Rows    []ReportRow
	CaseIDs []string
	// CaseMedians[i][j] is the median total of CaseIDs[i] in report j, nil without data.
	CaseMedians [][]*float64
}

// Compare summarizes each report again and collects per-case medians. Case ids
// keep the order in which they are first seen.
func Compare(reports []benchmark.Report) Comparison {
	var cmp Comparison
	caseIndex := map[string]int{}
	perReport := make([]map[string][]float64, len(reports))

	for j, r := range reports {
		totals := r.SuccessfulTotals()
		cmp.Rows = append(cmp.Rows, ReportRow{
			Label:    r.Label,
			Endpoint: r.EndpointLabel,
			OK:       len(totals),
			Total:    len(r.Results),
			Summary:  SummaryOrNil(totals),
		})

		perReport[j] = map[string][]float64{}
		for _, o := range r.Results {
			if _, seen := caseIndex[o.CaseID]; !seen {
				caseIndex[o.CaseID] = len(cmp.CaseIDs)
				cmp.CaseIDs = append(cmp.CaseIDs, o.CaseID)
			}
			if o.OK() {
				perReport[j][o.CaseID] = append(perReport[j][o.CaseID], o.TotalMs)
			}
		}
	}

	cmp.CaseMedians = make([][]*float64, len(cmp.CaseIDs))
	for i, id := range cmp.CaseIDs {
		cmp.CaseMedians[i] = make([]*float64, len(reports))
		for j := range reports {
			if s := SummaryOrNil(perReport[j][id]); s != nil {
				median := s.Median
				cmp.CaseMedians[i][j] = &median
			}
		}
	}
	return cmp
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
)

// Render draws the summary table followed by the per-case median table.
func (c Comparison) Render() string {
	summary := newTable().Headers("LABEL", "ENDPOINT", "OK", "MEAN", "MEDIAN", "P90", "P95")
	for _, row := range c.Rows {
		cells := []string{row.Label, row.Endpoint, fmt.Sprintf("%d/%d", row.OK, row.Total)}
		if row.Summary == nil {
			cells = append(cells, "-", "-", "-", "-")
		} else {
			s := row.Summary
			cells = append(cells, formatMs(&s.Mean), formatMs(&s.Median), formatMs(&s.P90), formatMs(&s.P95))
		}
		summary.Row(cells...)
	}

	headers := []string{"CASE"}
	for _, row := range c.Rows {
		headers = append(headers, row.Label)
	}
	perCase := newTable().Headers(headers...)
	for i, id := range c.CaseIDs {
		cells := []string{id}
		for _, v := range c.CaseMedians[i] {
			cells = append(cells, formatMs(v))
		}
		perCase.Row(cells...)
	}

	var b strings.Builder
	b.WriteString("Summary (totalMs)\n")
	b.WriteString(summary.String())
	b.WriteString("\n\nMedian totalMs per case\n")
	b.WriteString(perCase.String())
	b.WriteString("\n")
	return b.String()
}

func newTable() *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func formatMs(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.0fms", *v)
}
