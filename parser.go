package profitbot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ModelTerminator marks the end of a model identifier. Model names may
// contain spaces, so the terminator is what disambiguates them from the
// surrounding numeric tokens.
const ModelTerminator = "#"

// SaleEntry is one recorded transaction awaiting inclusion in a report.
// Revenue is expressed in the target (reporting) currency.
type SaleEntry struct {
	Revenue  decimal.Decimal `json:"revenue"`
	Quantity int             `json:"quantity"`
	Model    string          `json:"model"`
}

// ParseError reports an input line that does not match the expected grammar.
// It is always recoverable: the caller reports it or skips the line.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Line, e.Reason)
}

// LineFailure pairs a rejected input line with the reason it was rejected.
type LineFailure struct {
	Line string
	Err  error
}

// saleLineRe matches "<revenue> [<quantity>] <model#>".
// Revenue is a non-negative decimal, quantity an optional integer, and the
// model is everything up to the trailing terminator.
var saleLineRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s+(?:(\d+)\s+)?(.+?` + ModelTerminator + `)$`)

// productRe matches "<model#>:<cost>" with a non-negative decimal cost.
var productRe = regexp.MustCompile(`^(.+?` + ModelTerminator + `):(\d+(?:\.\d+)?)$`)

// ParseSaleLine parses a single free-text line into a SaleEntry.
//
// Grammar: a non-negative decimal revenue, an optional integer quantity
// (default 1), and the model identifier ending with the terminator.
func ParseSaleLine(text string) (SaleEntry, error) {
	line := strings.TrimSpace(text)
	if line == "" {
		return SaleEntry{}, &ParseError{Line: text, Reason: "empty line"}
	}

	m := saleLineRe.FindStringSubmatch(line)
	if m == nil {
		return SaleEntry{}, &ParseError{Line: line, Reason: "expected: revenue [quantity] model" + ModelTerminator}
	}

	revenue, err := decimal.NewFromString(m[1])
	if err != nil {
		return SaleEntry{}, &ParseError{Line: line, Reason: "revenue is not a number"}
	}

	quantity := 1
	if m[2] != "" {
		quantity, err = strconv.Atoi(m[2])
		if err != nil {
			return SaleEntry{}, &ParseError{Line: line, Reason: "quantity is not an integer"}
		}
	}
	if quantity < 1 {
		return SaleEntry{}, &ParseError{Line: line, Reason: "quantity must be at least 1"}
	}

	return SaleEntry{
		Revenue:  revenue,
		Quantity: quantity,
		Model:    strings.TrimSpace(m[3]),
	}, nil
}

// ParseSaleLines parses a multi-line text in batch mode: blank lines are
// skipped, and a failure on one line does not abort the remaining ones.
func ParseSaleLines(text string) (entries []SaleEntry, failures []LineFailure) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		entry, err := ParseSaleLine(line)
		if err != nil {
			failures = append(failures, LineFailure{Line: line, Err: err})
			continue
		}
		entries = append(entries, entry)
	}
	return entries, failures
}

// ParseProductDefinition parses a "<model#>:<cost>" line into a product.
// Exactly one separator is allowed; any other shape is a failure.
func ParseProductDefinition(text string) (Product, error) {
	line := strings.TrimSpace(text)
	if strings.Count(line, ":") != 1 {
		return Product{}, &ParseError{Line: line, Reason: "expected exactly one ':' separator"}
	}

	m := productRe.FindStringSubmatch(line)
	if m == nil {
		return Product{}, &ParseError{Line: line, Reason: "expected: model" + ModelTerminator + ":cost"}
	}

	cost, err := decimal.NewFromString(m[2])
	if err != nil {
		return Product{}, &ParseError{Line: line, Reason: "cost is not a number"}
	}

	return Product{Model: strings.TrimSpace(m[1]), Cost: cost}, nil
}

// ParseProductDefinitions parses a multi-line text of product definitions in
// batch mode, mirroring ParseSaleLines.
func ParseProductDefinitions(text string) (products []Product, failures []LineFailure) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		p, err := ParseProductDefinition(line)
		if err != nil {
			failures = append(failures, LineFailure{Line: line, Err: err})
			continue
		}
		products = append(products, p)
	}
	return products, failures
}

// LooksLikeProductDefinition reports whether a message should be routed to
// the product-definition parser rather than the sale-line parser.
//
// The discriminator is purely shape based: the first non-blank line contains
// exactly one ':' separator with a terminated model on its left. Sale lines
// never contain the separator, so the two grammars cannot be confused.
func LooksLikeProductDefinition(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Count(line, ":") != 1 {
			return false
		}
		model, _, _ := strings.Cut(line, ":")
		return strings.HasSuffix(strings.TrimSpace(model), ModelTerminator)
	}
	return false
}
