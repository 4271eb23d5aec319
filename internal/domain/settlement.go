package domain

import (
	"fmt"
	"sort"
)

// fragmentSeparator joins breakdown fragments for one participant
// across items in the posted settlement text.
const fragmentSeparator = "、"

// SettlementEntry is one participant's share of a closed order.
type SettlementEntry struct {
	Participant Participant
	TotalDue    int64
	Breakdown   string
}

// Settle aggregates every item of a closing order into a flat
// per-participant ledger. Items are processed lexicographically by
// name and participants in each item's roster order, so the output is
// reproducible for the same item state. Entries appear in first-seen
// order across the processed items. Platform and freeform identities
// share the ledger; only the renderer formats them differently.
func Settle(items Items) []SettlementEntry {
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)

	totals := make(map[Participant]int64)
	breakdowns := make(map[Participant]string)
	var seen []Participant

	for _, name := range names {
		it := items[name]
		for _, p := range it.roster {
			qty := it.Quantities[p]
			if _, ok := totals[p]; !ok {
				seen = append(seen, p)
			}
			totals[p] += it.Price * qty
			fragment := fmt.Sprintf("%s($%d)*%d", name, it.Price, qty)
			if breakdowns[p] != "" {
				breakdowns[p] += fragmentSeparator + fragment
			} else {
				breakdowns[p] = fragment
			}
		}
	}

	entries := make([]SettlementEntry, 0, len(seen))
	for _, p := range seen {
		entries = append(entries, SettlementEntry{
			Participant: p,
			TotalDue:    totals[p],
			Breakdown:   breakdowns[p],
		})
	}
	return entries
}
