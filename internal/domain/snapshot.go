package domain

import "sort"

// Snapshot is the durable serialization of one order and its items.
// The gateway carries it on every event that references the order and
// persists it after every applied mutation; the in-process maps are
// only a write-through cache over it.
type Snapshot struct {
	OrderName    string                  `json:"order_name"`
	OrderCreator string                  `json:"order_creator"`
	OrderInfo    string                  `json:"order_info"`
	OrderImg     string                  `json:"order_img"`
	OrderState   OrderState              `json:"order_state"`
	OrderDetails map[string]SnapshotItem `json:"order_details"`
}

// SnapshotItem is the wire form of one item. The participant maps are
// split by identity kind; amount equals the sum of both maps and no
// persisted entry is ever zero.
type SnapshotItem struct {
	Price                int64            `json:"price"`
	Amount               int64            `json:"amount"`
	PlatformParticipants map[string]int64 `json:"platform_participants"`
	FreeformParticipants map[string]int64 `json:"freeform_participants"`
}

// CaptureSnapshot projects resident state into its durable form.
func CaptureSnapshot(o *Order, items Items) *Snapshot {
	snap := &Snapshot{
		OrderName:    o.Name,
		OrderCreator: o.Creator,
		OrderInfo:    o.Info,
		OrderImg:     o.ImageURL,
		OrderState:   o.State,
		OrderDetails: make(map[string]SnapshotItem, len(items)),
	}
	for name, it := range items {
		si := SnapshotItem{
			Price:                it.Price,
			Amount:               it.Amount,
			PlatformParticipants: make(map[string]int64),
			FreeformParticipants: make(map[string]int64),
		}
		for p, qty := range it.Quantities {
			switch p.Kind {
			case KindPlatform:
				si.PlatformParticipants[p.ID] = qty
			case KindFreeform:
				si.FreeformParticipants[p.ID] = qty
			}
		}
		snap.OrderDetails[name] = si
	}
	return snap
}

// Restore rebuilds resident state from a snapshot. The wire format
// does not carry per-item roster order, so it is rebuilt
// deterministically: platform ids sorted first, then freeform names
// sorted. Settlement output stays reproducible across restarts.
func (s *Snapshot) Restore(id OrderID) (*Order, Items) {
	order := &Order{
		ID:       id,
		Name:     s.OrderName,
		Creator:  s.OrderCreator,
		Info:     s.OrderInfo,
		ImageURL: s.OrderImg,
		State:    s.OrderState,
	}
	items := make(Items, len(s.OrderDetails))
	for name, si := range s.OrderDetails {
		it := &OrderItem{
			Name:       name,
			Price:      si.Price,
			Quantities: make(map[Participant]int64, len(si.PlatformParticipants)+len(si.FreeformParticipants)),
		}
		for _, id := range sortedKeys(si.PlatformParticipants) {
			p := PlatformParticipant(id)
			it.Quantities[p] = si.PlatformParticipants[id]
			it.roster = append(it.roster, p)
		}
		for _, name := range sortedKeys(si.FreeformParticipants) {
			p := FreeformParticipant(name)
			it.Quantities[p] = si.FreeformParticipants[name]
			it.roster = append(it.roster, p)
		}
		for _, qty := range it.Quantities {
			it.Amount += qty
		}
		items[name] = it
	}
	return order, items
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
