package probe

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// maxReportedFailures caps the failure table.
const maxReportedFailures = 20

// WriteReport prints the run statistics and up to maxReportedFailures
// failed checks as tables.
func WriteReport(w io.Writer, stats *Stats) {
	total := stats.ChecksPassed + stats.ChecksFailed
	var passRate, requestsPerSecond float64
	if total > 0 {
		passRate = float64(stats.ChecksPassed) / float64(total) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.Requests) / stats.Duration.Seconds()
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle("Probe results")
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	t.AppendRow(table.Row{"Requests", stats.Requests})
	t.AppendRow(table.Row{"Checks passed", stats.ChecksPassed})
	t.AppendRow(table.Row{"Checks failed", stats.ChecksFailed})
	t.AppendRow(table.Row{"Pass rate", fmt.Sprintf("%.1f%%", passRate)})
	t.AppendRow(table.Row{"Duration", stats.Duration.Round(time.Millisecond).String()})
	t.AppendRow(table.Row{"Requests/s", fmt.Sprintf("%.1f", requestsPerSecond)})
	fmt.Fprintln(w, t.Render())

	if len(stats.Failures) == 0 {
		return
	}

	f := table.NewWriter()
	f.SetStyle(table.StyleLight)
	f.SetTitle("Failed checks")
	f.AppendHeader(table.Row{"Check", "Site", "Request ID", "Detail"})
	f.SetColumnConfigs([]table.ColumnConfig{{Number: 4, WidthMax: 60}})
	for i, fail := range stats.Failures {
		if i == maxReportedFailures {
			break
		}
		f.AppendRow(table.Row{fail.Check, fail.Site, fail.RequestID, fail.Detail})
	}
	if n := len(stats.Failures); n > maxReportedFailures {
		f.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d more not shown", n-maxReportedFailures)})
	}
	fmt.Fprintln(w, f.Render())
}
