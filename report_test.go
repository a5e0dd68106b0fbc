package profitbot

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testBase(products ...Product) *ProductBase {
	base := NewProductBase()
	for _, p := range products {
		base.Upsert(p.Model, p.Cost)
	}
	return base
}

func TestBuildReport_SingleEntry(t *testing.T) {
	// base {"махрп#": 5.50}, rate 88, one sale of 2 units for 800:
	// unit cost 484, line cost 968, profit -168, margin -21%.
	base := testBase(Product{Model: "махрп#", Cost: d("5.50")})
	entries := []SaleEntry{{Revenue: d("800"), Quantity: 2, Model: "махрп#"}}

	report, err := BuildReport(entries, base, d("88.0"), "USD", "KGS")
	if err != nil {
		t.Fatalf("BuildReport() error = %v", err)
	}

	if len(report.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(report.Lines))
	}
	line := report.Lines[0]
	if !line.UnitCostTarget.Equal(M(d("484"), "KGS")) {
		t.Errorf("unit cost = %s, want 484.00", line.UnitCostTarget.Fixed())
	}
	if !line.LineCost.Equal(M(d("968"), "KGS")) {
		t.Errorf("line cost = %s, want 968.00", line.LineCost.Fixed())
	}
	if !line.Profit.Equal(M(d("-168"), "KGS")) {
		t.Errorf("profit = %s, want -168.00", line.Profit.Fixed())
	}
	if !line.Margin.Equal(-21.0) {
		t.Errorf("margin = %s, want -21.0%%", line.Margin)
	}

	if !report.Totals.Revenue.Equal(M(d("800"), "KGS")) {
		t.Errorf("total revenue = %s, want 800.00", report.Totals.Revenue.Fixed())
	}
	if !report.Totals.Profit.Equal(M(d("-168"), "KGS")) {
		t.Errorf("total profit = %s, want -168.00", report.Totals.Profit.Fixed())
	}
	if !report.Totals.Margin.Equal(-21.0) {
		t.Errorf("total margin = %s, want -21.0%%", report.Totals.Margin)
	}
}

func TestBuildReport_PositiveMargin(t *testing.T) {
	// base {"врн#": 3.0}, rate 90, one sale for 550: cost 270, profit 280,
	// margin ~50.9%.
	base := testBase(Product{Model: "врн#", Cost: d("3.0")})
	entries := []SaleEntry{{Revenue: d("550"), Quantity: 1, Model: "врн#"}}

	report, err := BuildReport(entries, base, d("90"), "USD", "KGS")
	if err != nil {
		t.Fatalf("BuildReport() error = %v", err)
	}

	line := report.Lines[0]
	if !line.LineCost.Equal(M(d("270"), "KGS")) {
		t.Errorf("line cost = %s, want 270.00", line.LineCost.Fixed())
	}
	if !line.Profit.Equal(M(d("280"), "KGS")) {
		t.Errorf("profit = %s, want 280.00", line.Profit.Fixed())
	}
	if !line.Margin.Equal(Percent(280.0 / 550.0 * 100)) {
		t.Errorf("margin = %s, want ~50.9%%", line.Margin)
	}
}

func TestBuildReport_ZeroRevenueMargin(t *testing.T) {
	base := testBase(Product{Model: "врн#", Cost: d("3.0")})
	entries := []SaleEntry{{Revenue: decimal.Zero, Quantity: 1, Model: "врн#"}}

	report, err := BuildReport(entries, base, d("90"), "USD", "KGS")
	if err != nil {
		t.Fatalf("BuildReport() error = %v", err)
	}
	if !report.Lines[0].Margin.Equal(0) {
		t.Errorf("margin = %s, want 0.0%% on zero revenue", report.Lines[0].Margin)
	}
	if !report.Totals.Margin.Equal(0) {
		t.Errorf("total margin = %s, want 0.0%% on zero revenue", report.Totals.Margin)
	}
}

func TestBuildReport_MissingModels(t *testing.T) {
	base := testBase(Product{Model: "врн#", Cost: d("3.0")})
	entries := []SaleEntry{
		{Revenue: d("100"), Quantity: 1, Model: "unknown#"},
		{Revenue: d("200"), Quantity: 1, Model: "врн#"},
		{Revenue: d("300"), Quantity: 1, Model: "another#"},
		{Revenue: d("400"), Quantity: 1, Model: "unknown#"}, // duplicate
	}

	report, err := BuildReport(entries, base, d("90"), "USD", "KGS")
	if report != nil {
		t.Fatalf("BuildReport() = %v, want no partial report", report)
	}

	var missing *MissingModelsError
	if !errors.As(err, &missing) {
		t.Fatalf("BuildReport() error = %T, want *MissingModelsError", err)
	}
	want := []string{"another#", "unknown#"}
	if !reflect.DeepEqual(missing.Models, want) {
		t.Errorf("missing models = %v, want %v (distinct, sorted)", missing.Models, want)
	}
}

func TestBuildReport_SummaryAndTotals(t *testing.T) {
	base := testBase(
		Product{Model: "махрп#", Cost: d("5.50")},
		Product{Model: "врн#", Cost: d("3.0")},
	)
	entries := []SaleEntry{
		{Revenue: d("800"), Quantity: 2, Model: "махрп#"},
		{Revenue: d("550"), Quantity: 1, Model: "врн#"},
		{Revenue: d("900"), Quantity: 1, Model: "махрп#"},
	}

	report, err := BuildReport(entries, base, d("88"), "USD", "KGS")
	if err != nil {
		t.Fatalf("BuildReport() error = %v", err)
	}

	// summary is sorted lexicographically: врн# < махрп# in Cyrillic order.
	if len(report.Summary) != 2 {
		t.Fatalf("summary rows = %d, want 2", len(report.Summary))
	}
	if report.Summary[0].Model != "врн#" || report.Summary[1].Model != "махрп#" {
		t.Errorf("summary order = %q, %q; want врн#, махрп#", report.Summary[0].Model, report.Summary[1].Model)
	}

	mahrp := report.Summary[1]
	if mahrp.Quantity != 3 {
		t.Errorf("махрп# quantity = %d, want 3", mahrp.Quantity)
	}
	if !mahrp.Revenue.Equal(M(d("1700"), "KGS")) {
		t.Errorf("махрп# revenue = %s, want 1700.00", mahrp.Revenue.Fixed())
	}
	// cost accumulated in USD (5.50*3) and converted once: 16.50*88 = 1452.
	if !mahrp.Cost.Equal(M(d("1452"), "KGS")) {
		t.Errorf("махрп# cost = %s, want 1452.00", mahrp.Cost.Fixed())
	}

	// totals: revenue is the plain sum, profit = revenue - cost.
	if !report.Totals.Revenue.Equal(M(d("2250"), "KGS")) {
		t.Errorf("total revenue = %s, want 2250.00", report.Totals.Revenue.Fixed())
	}
	wantProfit := report.Totals.Revenue.Sub(report.Totals.Cost)
	if !report.Totals.Profit.Equal(wantProfit) {
		t.Errorf("total profit = %s, want %s", report.Totals.Profit.Fixed(), wantProfit.Fixed())
	}
	if report.Totals.Quantity != 4 {
		t.Errorf("total quantity = %d, want 4", report.Totals.Quantity)
	}
}

func TestBuildReport_Deterministic(t *testing.T) {
	base := testBase(
		Product{Model: "махрп#", Cost: d("5.50")},
		Product{Model: "врн#", Cost: d("3.0")},
	)
	entries := []SaleEntry{
		{Revenue: d("800"), Quantity: 2, Model: "махрп#"},
		{Revenue: d("550"), Quantity: 1, Model: "врн#"},
	}

	first, err := BuildReport(entries, base, d("88"), "USD", "KGS")
	if err != nil {
		t.Fatalf("BuildReport() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := BuildReport(entries, base, d("88"), "USD", "KGS")
		if err != nil {
			t.Fatalf("BuildReport() error = %v", err)
		}
		if !again.Totals.Profit.Equal(first.Totals.Profit) ||
			!again.Totals.Revenue.Equal(first.Totals.Revenue) ||
			!again.Totals.Margin.Equal(first.Totals.Margin) {
			t.Fatalf("run %d: totals differ: %+v vs %+v", i, again.Totals, first.Totals)
		}
	}
}

func TestReportSnapshot(t *testing.T) {
	base := testBase(Product{Model: "махрп#", Cost: d("5.50")})
	entries := []SaleEntry{{Revenue: d("800"), Quantity: 2, Model: "махрп#"}}

	report, err := BuildReport(entries, base, d("88"), "USD", "KGS")
	if err != nil {
		t.Fatalf("BuildReport() error = %v", err)
	}

	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	snap := report.Snapshot(now)

	if !snap.Timestamp.Equal(now) {
		t.Errorf("timestamp = %s, want %s", snap.Timestamp, now)
	}
	if !snap.Rate.Equal(d("88")) {
		t.Errorf("rate = %s, want 88", snap.Rate)
	}
	if len(snap.Entries) != 1 || len(snap.Details) != 1 {
		t.Fatalf("entries = %d, details = %d; want 1 and 1", len(snap.Entries), len(snap.Details))
	}
	if !snap.Details[0].Profit.Equal(d("-168")) {
		t.Errorf("detail profit = %s, want -168", snap.Details[0].Profit)
	}
	s, ok := snap.Summary["махрп#"]
	if !ok {
		t.Fatalf("summary is missing махрп#")
	}
	if s.Quantity != 2 {
		t.Errorf("summary quantity = %d, want 2", s.Quantity)
	}
}
