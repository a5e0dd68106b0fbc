package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ulanbek/profitbot"
	"github.com/ulanbek/profitbot/renderer"
)

// Controller routes incoming chat input through the per-user session state
// machine and composes the replies to send back. It is transport agnostic:
// every method returns the reply texts, one string per message.
type Controller struct {
	store    *profitbot.Store
	sessions *profitbot.Sessions
	source   string
	target   string
}

// NewController creates a controller over a store. Empty currencies fall
// back to the defaults (USD costs, KGS revenue).
func NewController(store *profitbot.Store, source, target string) *Controller {
	if source == "" {
		source = profitbot.DefaultSourceCurrency
	}
	if target == "" {
		target = profitbot.DefaultTargetCurrency
	}
	return &Controller{
		store:    store,
		sessions: profitbot.NewSessions(),
		source:   source,
		target:   target,
	}
}

// Help returns the static /start help text. No side effects.
func (c *Controller) Help() string {
	return "Welcome! I help you compute sale profits.\n\n" +
		"Commands:\n" +
		"/base - show the product base\n" +
		"/rate - show or set the exchange rate\n" +
		"/start_report - begin a new report\n" +
		"/end_report - finalize the report and get the tables\n\n" +
		"Sale line format: revenue [quantity] model#\n" +
		"Example: 800 2 махрп#\n\n" +
		"Product definition format: model#:cost\n" +
		"Example: махрп#:5.50"
}

// Base lists the product base sorted by model.
func (c *Controller) Base() []string {
	base, err := c.store.Base()
	if err != nil {
		return storageError(err)
	}
	if base.Len() == 0 {
		return []string{"The product base is empty.\n\n" +
			"Add products as: model#:cost\n" +
			"Example: махрп#:5.50"}
	}

	var b strings.Builder
	b.WriteString("Product base:\n\n")
	for _, p := range base.All() {
		fmt.Fprintf(&b, "%s - %s\n", p.Model, profitbot.M(p.Cost, c.source))
	}
	b.WriteString("\nAdd or overwrite products as: model#:cost")
	return []string{b.String()}
}

// Rate shows the current exchange rate, or sets it when arg is non-empty.
func (c *Controller) Rate(arg string) []string {
	if arg == "" {
		rate, err := c.store.Rate()
		if err != nil {
			return storageError(err)
		}
		return []string{fmt.Sprintf("Current rate: 1 %s = %s %s\n\nTo change it send: /rate <number>",
			c.source, rate.String(), c.target)}
	}

	rate, err := decimal.NewFromString(arg)
	if err != nil {
		return []string{"❌ The rate must be a number, e.g. /rate 88.5"}
	}
	if err := c.store.SetRate(rate); err != nil {
		if errors.Is(err, profitbot.ErrNonPositiveRate) {
			return []string{"❌ The rate must be a positive number."}
		}
		return storageError(err)
	}
	return []string{fmt.Sprintf("✅ Rate updated: 1 %s = %s %s", c.source, rate.String(), c.target)}
}

// StartReport begins a new report for the user, discarding collected
// entries.
func (c *Controller) StartReport(userID int64) []string {
	c.sessions.Get(userID).StartReport()
	return []string{"✅ Report started!\n\n" +
		"Send entries as: revenue [quantity] model#\n" +
		"Several lines per message are fine.\n\n" +
		"Finish with /end_report"}
}

// EndReport finalizes the user's report: renders both tables and persists
// the snapshot. On missing models the report stays open so the user can add
// the products and retry.
func (c *Controller) EndReport(userID int64, now time.Time) []string {
	base, err := c.store.Base()
	if err != nil {
		return storageError(err)
	}
	rate, err := c.store.Rate()
	if err != nil {
		return storageError(err)
	}

	report, err := c.sessions.Get(userID).Finalize(base, rate, c.source, c.target)
	var missing *profitbot.MissingModelsError
	switch {
	case errors.Is(err, profitbot.ErrNoActiveReport):
		return []string{"❌ No report in progress. Use /start_report first."}
	case errors.Is(err, profitbot.ErrEmptyReport):
		return []string{"❌ The report has no entries."}
	case errors.As(err, &missing):
		return []string{"❌ Models not found in the product base:\n" +
			strings.Join(missing.Models, "\n") +
			"\n\nAdd them as model#:cost and run /end_report again. Your entries are kept."}
	case err != nil:
		return storageError(err)
	}

	replies := []string{
		mono(renderer.DetailMarkdown(report)),
		mono(renderer.SummaryMarkdown(report)),
	}
	if err := c.store.SaveSnapshot(report.Snapshot(now)); err != nil {
		return append(replies, fmt.Sprintf("⚠️ The report could not be saved: %v", err))
	}
	return append(replies, "✅ Report finalized and saved.")
}

// Text routes a non-command message. Product definitions are recognized by
// shape in any state; sale lines are only collected while a report is
// active.
func (c *Controller) Text(userID int64, text string) []string {
	if profitbot.LooksLikeProductDefinition(text) {
		return c.addProducts(text)
	}

	session := c.sessions.Get(userID)
	if !session.Active() {
		return []string{"❌ No report in progress. Use /start_report to begin one,\n" +
			"or send product definitions as model#:cost"}
	}

	entries, failures := profitbot.ParseSaleLines(text)
	if len(entries) == 0 {
		return []string{"❌ Could not parse any entry.\n\n" +
			"Format: revenue [quantity] model#\n" +
			"Example: 800 2 махрп#"}
	}
	// Collected entries survive parse failures on sibling lines.
	session.Append(entries...)

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Added %d entries.\n", len(entries))
	c.feedback(&b, entries)
	for _, f := range failures {
		fmt.Fprintf(&b, "❌ skipped %q\n", f.Line)
	}
	return []string{b.String()}
}

// feedback appends the immediate per-line economics, computed against the
// current base and rate. Entries with unknown models are still collected;
// validation proper happens at finalize time.
func (c *Controller) feedback(b *strings.Builder, entries []profitbot.SaleEntry) {
	base, err := c.store.Base()
	if err != nil {
		return
	}
	rate, err := c.store.Rate()
	if err != nil {
		return
	}

	for _, e := range entries {
		cost, ok := base.Cost(e.Model)
		if !ok {
			fmt.Fprintf(b, "%s: not in the base yet, add it as %s:cost before /end_report\n", e.Model, e.Model)
			continue
		}
		line := profitbot.Economics(e, cost, rate, c.source, c.target)
		fmt.Fprintf(b, "%s x%d: cost %s, profit %s, margin %s\n",
			e.Model, e.Quantity, line.LineCost.Fixed(), line.Profit.Fixed(), line.Margin)
	}
}

// addProducts upserts product definitions and reports what was added and
// what failed to parse.
func (c *Controller) addProducts(text string) []string {
	products, failures := profitbot.ParseProductDefinitions(text)

	var b strings.Builder
	if len(products) > 0 {
		if err := c.store.UpsertProducts(products...); err != nil {
			return storageError(err)
		}
		b.WriteString("✅ Added:\n")
		for _, p := range products {
			fmt.Fprintf(&b, "%s - %s\n", p.Model, profitbot.M(p.Cost, c.source))
		}
	}
	if len(failures) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("❌ Could not parse:\n")
		for _, f := range failures {
			fmt.Fprintf(&b, "%s\n", f.Line)
		}
	}
	return []string{b.String()}
}

// mono wraps markdown in a fenced block so the transport renders it
// monospace, keeping the table columns aligned.
func mono(markdown string) string {
	return "```\n" + markdown + "```"
}

func storageError(err error) []string {
	return []string{fmt.Sprintf("⚠️ Storage error: %v", err)}
}
