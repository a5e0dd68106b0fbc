package profitbot

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MissingModelsError is returned when a report references models absent from
// the product base. It is deterministic and retryable: register the missing
// models and finalize again.
type MissingModelsError struct {
	Models []string // distinct, sorted
}

func (e *MissingModelsError) Error() string {
	return fmt.Sprintf("models not found in the product base: %s", strings.Join(e.Models, ", "))
}

// ReportLine is the computed economics of a single sale entry.
type ReportLine struct {
	Model          string
	Quantity       int
	Revenue        Money // target currency
	UnitCostSource Money // source currency
	UnitCostTarget Money // source cost converted at the report rate
	LineCost       Money // unit cost (target) times quantity
	Profit         Money // revenue minus line cost
	Margin         Percent
}

// ModelSummary aggregates all entries of a single model.
type ModelSummary struct {
	Model    string
	Quantity int
	Revenue  Money
	Cost     Money // target currency
	Profit   Money
	Margin   Percent
}

// ReportTotals holds the grand totals of a report.
type ReportTotals struct {
	Quantity int
	Revenue  Money
	Cost     Money
	Profit   Money
	Margin   Percent
}

// Report is the finalized profit/margin breakdown for a batch of sale
// entries. It is a pure value: building a report has no side effects.
type Report struct {
	Rate           decimal.Decimal
	SourceCurrency string
	TargetCurrency string
	Entries        []SaleEntry
	Lines          []ReportLine   // one per entry, in input order
	Summary        []ModelSummary // one per distinct model, sorted
	Totals         ReportTotals
}

// Economics computes the report line for one entry given the model's unit
// cost in the source currency and the exchange rate.
func Economics(e SaleEntry, unitCost, rate decimal.Decimal, source, target string) ReportLine {
	revenue := M(e.Revenue, target)
	costSource := M(unitCost, source)
	costTarget := costSource.Convert(rate, target)
	lineCost := costTarget.MulInt(e.Quantity)
	profit := revenue.Sub(lineCost)

	return ReportLine{
		Model:          e.Model,
		Quantity:       e.Quantity,
		Revenue:        revenue,
		UnitCostSource: costSource,
		UnitCostTarget: costTarget,
		LineCost:       lineCost,
		Profit:         profit,
		Margin:         MarginOf(profit, revenue),
	}
}

// BuildReport validates the entries against the base and computes the
// per-line detail, the per-model summary and the grand totals.
//
// If any entry references a model absent from the base it fails with a
// MissingModelsError and produces no partial report.
func BuildReport(entries []SaleEntry, base *ProductBase, rate decimal.Decimal, source, target string) (*Report, error) {
	if missing := base.MissingFrom(entries); len(missing) > 0 {
		return nil, &MissingModelsError{Models: missing}
	}

	report := &Report{
		Rate:           rate,
		SourceCurrency: source,
		TargetCurrency: target,
		Entries:        append([]SaleEntry(nil), entries...),
	}

	// Per-model accumulators. Cost is accumulated in the source currency and
	// converted once at the end, so the rate is applied a single time per
	// model instead of once per line.
	type acc struct {
		quantity   int
		revenue    Money
		costSource Money
	}
	summary := make(map[string]*acc)

	totalQuantity := 0
	totalRevenue := M(0, target)
	totalCost := M(0, target)

	for _, e := range entries {
		unitCost, _ := base.Cost(e.Model) // validated above
		line := Economics(e, unitCost, rate, source, target)
		report.Lines = append(report.Lines, line)

		a := summary[e.Model]
		if a == nil {
			a = &acc{revenue: M(0, target), costSource: M(0, source)}
			summary[e.Model] = a
		}
		a.quantity += e.Quantity
		a.revenue = a.revenue.Add(line.Revenue)
		a.costSource = a.costSource.Add(line.UnitCostSource.MulInt(e.Quantity))

		totalQuantity += e.Quantity
		totalRevenue = totalRevenue.Add(line.Revenue)
		totalCost = totalCost.Add(line.LineCost)
	}

	models := make([]string, 0, len(summary))
	for model := range summary {
		models = append(models, model)
	}
	sort.Strings(models)

	for _, model := range models {
		a := summary[model]
		cost := a.costSource.Convert(rate, target)
		profit := a.revenue.Sub(cost)
		report.Summary = append(report.Summary, ModelSummary{
			Model:    model,
			Quantity: a.quantity,
			Revenue:  a.revenue,
			Cost:     cost,
			Profit:   profit,
			Margin:   MarginOf(profit, a.revenue),
		})
	}

	totalProfit := totalRevenue.Sub(totalCost)
	report.Totals = ReportTotals{
		Quantity: totalQuantity,
		Revenue:  totalRevenue,
		Cost:     totalCost,
		Profit:   totalProfit,
		Margin:   MarginOf(totalProfit, totalRevenue),
	}

	return report, nil
}

// ReportSnapshot is the persisted form of a finalized report. It is written
// as a single JSON document, overwriting the previous snapshot.
type ReportSnapshot struct {
	Timestamp      time.Time                  `json:"timestamp"`
	Rate           decimal.Decimal            `json:"rate"`
	SourceCurrency string                     `json:"source_currency"`
	TargetCurrency string                     `json:"target_currency"`
	Entries        []SaleEntry                `json:"entries"`
	Details        []SnapshotLine             `json:"details"`
	Summary        map[string]SnapshotSummary `json:"summary"`
	Totals         SnapshotTotals             `json:"totals"`
}

// SnapshotLine is the persisted form of a ReportLine. Amounts are plain
// numbers; the currencies are recorded once at the snapshot level.
type SnapshotLine struct {
	Model          string          `json:"model"`
	Quantity       int             `json:"quantity"`
	Revenue        decimal.Decimal `json:"revenue"`
	UnitCostSource decimal.Decimal `json:"unit_cost_source"`
	UnitCostTarget decimal.Decimal `json:"unit_cost_target"`
	LineCost       decimal.Decimal `json:"line_cost"`
	Profit         decimal.Decimal `json:"profit"`
	Margin         float64         `json:"margin"`
}

// SnapshotSummary is the persisted form of a ModelSummary.
type SnapshotSummary struct {
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
	Cost     decimal.Decimal `json:"cost"`
	Profit   decimal.Decimal `json:"profit"`
	Margin   float64         `json:"margin"`
}

// SnapshotTotals is the persisted form of ReportTotals.
type SnapshotTotals struct {
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
	Cost     decimal.Decimal `json:"cost"`
	Profit   decimal.Decimal `json:"profit"`
	Margin   float64         `json:"margin"`
}

// Snapshot copies the report into its persisted form, stamped with now.
func (r *Report) Snapshot(now time.Time) *ReportSnapshot {
	snap := &ReportSnapshot{
		Timestamp:      now,
		Rate:           r.Rate,
		SourceCurrency: r.SourceCurrency,
		TargetCurrency: r.TargetCurrency,
		Entries:        append([]SaleEntry(nil), r.Entries...),
		Summary:        make(map[string]SnapshotSummary, len(r.Summary)),
	}
	for _, line := range r.Lines {
		snap.Details = append(snap.Details, SnapshotLine{
			Model:          line.Model,
			Quantity:       line.Quantity,
			Revenue:        line.Revenue.Decimal(),
			UnitCostSource: line.UnitCostSource.Decimal(),
			UnitCostTarget: line.UnitCostTarget.Decimal(),
			LineCost:       line.LineCost.Decimal(),
			Profit:         line.Profit.Decimal(),
			Margin:         float64(line.Margin),
		})
	}
	for _, s := range r.Summary {
		snap.Summary[s.Model] = SnapshotSummary{
			Quantity: s.Quantity,
			Revenue:  s.Revenue.Decimal(),
			Cost:     s.Cost.Decimal(),
			Profit:   s.Profit.Decimal(),
			Margin:   float64(s.Margin),
		}
	}
	snap.Totals = SnapshotTotals{
		Quantity: r.Totals.Quantity,
		Revenue:  r.Totals.Revenue.Decimal(),
		Cost:     r.Totals.Cost.Decimal(),
		Profit:   r.Totals.Profit.Decimal(),
		Margin:   float64(r.Totals.Margin),
	}
	return snap
}
