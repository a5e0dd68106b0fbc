// Package renderer turns computed reports into markdown. Rendering is pure:
// all numbers were already computed by the profitbot package.
package renderer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	md "github.com/nao1215/markdown"
	"github.com/ulanbek/profitbot"
)

// Formatting convention: money values carry two decimal places everywhere,
// margins one. The source observed mixed 0 and 2 decimal places for revenue;
// this normalizes to one convention.

// ReportMarkdown renders the full report: the line-level detail table
// followed by the per-model summary table.
func ReportMarkdown(r *profitbot.Report) string {
	return DetailMarkdown(r) + "\n" + SummaryMarkdown(r)
}

// DetailMarkdown renders the line-level detail table, one row per entry in
// input order, with a totals trailer row.
func DetailMarkdown(r *profitbot.Report) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Sales Detail\n\n")
	fmt.Fprintf(&b, "Rate: 1 %s = %s %s\n\n", r.SourceCurrency, r.Rate.String(), r.TargetCurrency)

	fmt.Fprintf(&b, "| Model | Qty | Revenue | Cost (%s) | Cost (%s) | Line cost | Profit | Margin |\n",
		r.SourceCurrency, r.TargetCurrency)
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|---:|---:|")

	for _, line := range r.Lines {
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s | %s | %s |\n",
			line.Model,
			line.Quantity,
			line.Revenue.Fixed(),
			line.UnitCostSource.Fixed(),
			line.UnitCostTarget.Fixed(),
			line.LineCost.Fixed(),
			line.Profit.Fixed(),
			line.Margin,
		)
	}
	fmt.Fprintf(&b, "| **Total** | **%d** | **%s** | | | **%s** | **%s** | **%s** |\n",
		r.Totals.Quantity,
		r.Totals.Revenue.Fixed(),
		r.Totals.Cost.Fixed(),
		r.Totals.Profit.Fixed(),
		r.Totals.Margin,
	)

	return b.String()
}

// SummaryMarkdown renders the per-model summary table, one row per distinct
// model in lexicographic order, with a totals trailer row.
func SummaryMarkdown(r *profitbot.Report) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Summary by Model")

	rows := make([][]string, 0, len(r.Summary)+1)
	for _, s := range r.Summary {
		rows = append(rows, []string{
			s.Model,
			strconv.Itoa(s.Quantity),
			s.Revenue.Fixed(),
			s.Cost.Fixed(),
			s.Profit.Fixed(),
			s.Margin.String(),
		})
	}
	rows = append(rows, []string{
		"Total",
		strconv.Itoa(r.Totals.Quantity),
		r.Totals.Revenue.Fixed(),
		r.Totals.Cost.Fixed(),
		r.Totals.Profit.Fixed(),
		r.Totals.Margin.String(),
	})

	table := md.TableSet{
		Header: []string{
			"Model",
			"Qty",
			"Revenue",
			fmt.Sprintf("Cost (%s)", r.TargetCurrency),
			"Profit",
			"Margin",
		},
		Rows: rows,
	}
	doc.Table(table)

	return doc.String()
}

// BaseMarkdown renders the product base as a markdown list sorted by model.
func BaseMarkdown(base *profitbot.ProductBase, sourceCurrency string) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Product Base\n\n")
	if base.Len() == 0 {
		fmt.Fprint(&b, "The product base is empty.\n")
		return b.String()
	}
	for _, p := range base.All() {
		fmt.Fprintf(&b, "- %s: %s\n", p.Model, profitbot.M(p.Cost, sourceCurrency))
	}
	return b.String()
}
