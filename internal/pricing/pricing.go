// Package pricing computes a cart's payable total and per-item discount
// attribution. Everything here is pure; callers re-run it whenever they need
// a figure instead of storing results.
package pricing

import (
	"sort"

	"github.com/bookfairhq/pos-backend/internal/cart"
)

// FreeReason is the display label attached to items freed by the bundle
// promotion.
const FreeReason = "3 за 2"

// Attribution marks one specific item instance as free and why.
type Attribution struct {
	Index  int
	Item   cart.Item
	Reason string
}

// Quote is the result of pricing a set of items.
type Quote struct {
	Total int
	Free  []Attribution

	freeIndexes map[int]bool
}

// IsFree reports whether the item at index i (into the priced slice) is the
// free member of a bundle triple.
func (q Quote) IsFree(i int) bool {
	return q.freeIndexes[i]
}

// Savings is the sum freed by the promotion.
func (q Quote) Savings() int {
	var total int
	for _, attribution := range q.Free {
		total += attribution.Item.EffectivePrice
	}
	return total
}

type indexedItem struct {
	index int
	item  cart.Item
}

// PriceCart partitions items into lottery, bundle-eligible and regular
// groups, applies the 3-for-2 math to the bundle group and sums the rest by
// effective price. Lottery precedence is absolute: a lottery item never
// enters bundle grouping regardless of its promotion tag.
//
// Callers invoke PriceCart over the whole cart for display and again over a
// single vendor's subset at checkout. The two computations may pick
// different free items; they are deliberately not reconciled.
func PriceCart(items []cart.Item) Quote {
	quote := Quote{freeIndexes: make(map[int]bool)}
	if len(items) == 0 {
		return quote
	}

	var bundle []indexedItem
	for i, item := range items {
		if item.BundleEligible() {
			bundle = append(bundle, indexedItem{index: i, item: item})
			continue
		}
		// Lottery and regular items price directly; manual discounts are
		// already baked into EffectivePrice.
		quote.Total += item.EffectivePrice
	}

	if len(bundle) == 0 {
		return quote
	}

	// Descending by price; stable keeps original relative order for ties, so
	// the free slot lands on the later-added of two equally cheap items.
	sort.SliceStable(bundle, func(a, b int) bool {
		return bundle[a].item.EffectivePrice > bundle[b].item.EffectivePrice
	})

	for start := 0; start < len(bundle); start += 3 {
		group := bundle[start:min(start+3, len(bundle))]
		if len(group) < 3 {
			// Partial group: charged in full, no discount.
			for _, entry := range group {
				quote.Total += entry.item.EffectivePrice
			}
			continue
		}
		quote.Total += group[0].item.EffectivePrice + group[1].item.EffectivePrice
		free := group[2]
		quote.Free = append(quote.Free, Attribution{
			Index:  free.index,
			Item:   free.item,
			Reason: FreeReason,
		})
		quote.freeIndexes[free.index] = true
	}
	return quote
}
