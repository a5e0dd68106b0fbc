package profitbot

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Product associates a model identifier with its unit cost in the source
// currency.
type Product struct {
	Model string
	Cost  decimal.Decimal
}

// ProductBase maps model identifiers to unit costs in the source currency.
//
// There is no delete operation: a cost can only be overwritten by a new
// definition.
type ProductBase struct {
	costs map[string]decimal.Decimal
}

// NewProductBase creates an empty product base.
func NewProductBase() *ProductBase {
	return &ProductBase{costs: make(map[string]decimal.Decimal)}
}

// Cost returns the unit cost for a model, and whether the model is known.
func (b *ProductBase) Cost(model string) (decimal.Decimal, bool) {
	cost, ok := b.costs[model]
	return cost, ok
}

// Upsert sets the unit cost for a model, silently overwriting any previous
// value.
func (b *ProductBase) Upsert(model string, cost decimal.Decimal) {
	b.costs[model] = cost
}

// Len returns the number of known models.
func (b *ProductBase) Len() int { return len(b.costs) }

// All returns every product sorted by model identifier.
func (b *ProductBase) All() []Product {
	products := make([]Product, 0, len(b.costs))
	for model, cost := range b.costs {
		products = append(products, Product{Model: model, Cost: cost})
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Model < products[j].Model })
	return products
}

// MissingFrom returns the distinct models referenced by entries that are
// absent from the base, sorted lexicographically.
func (b *ProductBase) MissingFrom(entries []SaleEntry) []string {
	seen := make(map[string]bool)
	var missing []string
	for _, e := range entries {
		if _, ok := b.costs[e.Model]; ok || seen[e.Model] {
			continue
		}
		seen[e.Model] = true
		missing = append(missing, e.Model)
	}
	sort.Strings(missing)
	return missing
}
