// Package report renders analysis output for the terminal.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/harborview-partners/dealflow-cli/internal/benchmark"
	"github.com/harborview-partners/dealflow-cli/internal/proforma"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Currency formats a dollar amount with grouping; nil renders as N/A.
func Currency(v *float64) string {
	if v == nil {
		return "N/A"
	}
	if *v < 0 {
		return printer.Sprintf("-$%.0f", -*v)
	}
	return printer.Sprintf("$%.0f", *v)
}

// Percent formats a percentage to one decimal; nil renders as N/A.
func Percent(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", *v)
}

// Value formats a line-item figure in its native unit.
func Value(v *float64, unit benchmark.Unit) string {
	if v == nil {
		return "N/A"
	}
	if unit == benchmark.UnitDollars {
		return printer.Sprintf("$%.2f", *v)
	}
	return fmt.Sprintf("%.1f%%", *v)
}

// RenderAnalysis writes the line-item table followed by a summary.
func RenderAnalysis(w io.Writer, result proforma.AnalysisResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tACTUAL\tBENCHMARK\tVARIANCE\tSTATUS\tOPPORTUNITY")
	for _, line := range result.Lines {
		bench := line.Benchmark
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			line.Category,
			Value(line.Actual, line.Unit),
			Value(&bench, line.Unit),
			Percent(line.PctVariance),
			line.Status,
			Currency(line.Opportunity),
		)
	}
	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintln(w, Summary(result))
}

// Summary is the one-line takeaway for a deal.
func Summary(result proforma.AnalysisResult) string {
	total := result.TotalOpportunity
	return fmt.Sprintf("Total opportunity %s | Stabilized EBITDA %s | Stabilized EBITDAR %s | %d issue(s)",
		Currency(&total),
		Currency(result.StabilizedEBITDA),
		Currency(result.StabilizedEBITDAR),
		len(result.Issues),
	)
}

// RenderWaterfall writes the EBITDA bridge segments in chart order.
func RenderWaterfall(w io.Writer, segments []proforma.WaterfallSegment) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEGMENT\tVALUE\tRUNNING TOTAL")
	for _, seg := range segments {
		v, rt := seg.DisplayValue, seg.RunningTotal
		fmt.Fprintf(tw, "%s\t%s\t%s\n", seg.Label, Currency(&v), Currency(&rt))
	}
	tw.Flush()
}

// RenderBenchmarks writes the effective benchmark table in canonical
// order, marking overridden values.
func RenderBenchmarks(w io.Writer, cfg benchmark.Config) {
	overrides := cfg.Diff()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tCATEGORY\tVALUE\tSOURCE")
	for _, d := range benchmark.Definitions() {
		v, _ := cfg.Value(d.Key)
		source := "default"
		if _, ok := overrides[string(d.Key)]; ok {
			source = "override"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Key, d.Category, Value(&v, d.Unit), source)
	}
	tw.Flush()
}
