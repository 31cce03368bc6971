package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/hsouza/tickerpulse/internal/domain/models"
	"github.com/hsouza/tickerpulse/internal/service"
)

// batchSize is how many tickers go into one rendered table. Purely a
// readability choice for terminal output.
const batchSize = 7

// RenderSummary writes the store-wide summary block.
func RenderSummary(w io.Writer, sum *models.StoreSummary) {
	rule := strings.Repeat("=", 80)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "DATABASE SUMMARY")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total Records: %d\n", sum.TotalRecords)
	fmt.Fprintf(w, "Total Tickers: %d\n", sum.TickerCount)
	fmt.Fprintf(w, "Date Range: %s to %s\n", sum.MinDate, sum.MaxDate)
	fmt.Fprintln(w, rule)
}

// RenderCoverage writes the full coverage report: the summary block followed
// by per-ticker tables in batches of 7. Each batch gets two tables, one for
// coverage figures and one for recent-window counts and price statistics.
func RenderCoverage(w io.Writer, rep *service.CoverageReport) {
	RenderSummary(w, &rep.Summary)

	total := len(rep.Coverages)
	batches := (total + batchSize - 1) / batchSize
	for i := 0; i < total; i += batchSize {
		end := i + batchSize
		if end > total {
			end = total
		}
		batch := rep.Coverages[i:end]
		n := i/batchSize + 1

		fmt.Fprintf(w, "\nTICKER DATA SUMMARY (BATCH %d/%d)\n", n, batches)
		fmt.Fprintln(w, strings.Repeat("-", 80))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Ticker\tFirst Date\tLast Date\tDays\tYears\tRecords\tCompleteness")
		for _, c := range batch {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.1f\t%d\t%s\n",
				c.Ticker, c.FirstDate, c.LastDate, c.SpanDays,
				float64(c.SpanDays)/365.0, c.RecordCount, formatPercent(c.Completeness))
		}
		_ = tw.Flush()

		fmt.Fprintf(w, "\nTICKER RECENT DATA & PRICE STATISTICS (BATCH %d/%d)\n", n, batches)
		fmt.Fprintln(w, strings.Repeat("-", 80))
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Ticker\t3yr Records\tYTD Records\tAvg Close\tHigh\tLow\tAvg Volume")
		for _, c := range batch {
			fmt.Fprintf(tw, "%s\t%d\t%d\t$%.2f\t$%.2f\t$%.2f\t%.0f\n",
				c.Ticker, c.RecentCount, c.YTDCount, c.AvgClose, c.MaxHigh, c.MinLow, c.AvgVolume)
		}
		_ = tw.Flush()

		if end < total {
			fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 80))
		}
	}
}

// RenderIntegrity writes the incomplete-record listing, or a clean-state
// message when there is nothing to report.
func RenderIntegrity(w io.Writer, incomplete []models.IncompleteRecord) {
	if len(incomplete) == 0 {
		fmt.Fprintln(w, "No NULL values found in the database.")
		return
	}
	fmt.Fprintln(w, "Found NULL values in the following records:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Ticker\tDate\tCount")
	for _, rec := range incomplete {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", rec.Ticker, rec.Date, rec.Count)
	}
	_ = tw.Flush()
}

func formatPercent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}
