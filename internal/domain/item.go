package domain

// OrderItem is one purchasable line of an order.
// Amount is derived: it always equals the sum of Quantities and is
// recomputed after every mutation. An item whose amount reaches zero
// is removed from its collection, never stored empty.
type OrderItem struct {
	Name       string
	Price      int64
	Amount     int64
	Quantities map[Participant]int64

	// roster records first-add order per participant. Go maps do not
	// keep insertion order, and settlement output must be reproducible.
	roster []Participant
}

// Roster returns the item's participants in first-add order.
func (it *OrderItem) Roster() []Participant {
	out := make([]Participant, len(it.roster))
	copy(out, it.roster)
	return out
}

// Items is the item collection of one order, keyed by item name.
type Items map[string]*OrderItem

// Upsert applies one batch of participant quantity edits to a single
// item, creating it if absent. Per participant the last write wins:
// a positive quantity overwrites any prior value, zero removes the
// entry, and participants not named in edits are untouched. When the
// recomputed amount is zero the item is deleted and removed=true is
// returned with a nil item.
//
// Validation is all-or-nothing: a non-positive price or a negative
// quantity rejects the whole call before any edit is applied. A call
// that would create a new item must name at least one participant.
func (m Items) Upsert(name string, price int64, edits map[Participant]int64) (item *OrderItem, removed bool, err error) {
	if price <= 0 {
		return nil, false, &ValidationError{Field: "price", Rule: "must be a positive integer"}
	}
	for _, qty := range edits {
		if qty < 0 {
			return nil, false, &ValidationError{Field: "quantity", Rule: "must be a natural number"}
		}
	}

	it, exists := m[name]
	if !exists {
		if len(edits) == 0 {
			return nil, false, &ValidationError{Field: "participants", Rule: "at least one participant is required"}
		}
		it = &OrderItem{Name: name, Quantities: make(map[Participant]int64)}
	}
	it.Price = price

	for p, qty := range edits {
		if qty == 0 {
			it.remove(p)
			continue
		}
		if _, known := it.Quantities[p]; !known {
			it.roster = append(it.roster, p)
		}
		it.Quantities[p] = qty
	}

	it.Amount = 0
	for _, qty := range it.Quantities {
		it.Amount += qty
	}

	if it.Amount == 0 {
		delete(m, name)
		return nil, true, nil
	}
	m[name] = it
	return it, false, nil
}

func (it *OrderItem) remove(p Participant) {
	if _, known := it.Quantities[p]; !known {
		return
	}
	delete(it.Quantities, p)
	for i, r := range it.roster {
		if r == p {
			it.roster = append(it.roster[:i], it.roster[i+1:]...)
			break
		}
	}
}

// SetPrice overwrites the price of an existing item. Participant
// quantities and the derived amount are untouched.
func (m Items) SetPrice(name string, price int64) error {
	if price <= 0 {
		return &ValidationError{Field: "price", Rule: "must be a positive integer"}
	}
	it, ok := m[name]
	if !ok {
		return &NotFoundError{Item: name}
	}
	it.Price = price
	return nil
}

// TotalPrice sums price*amount over all items. Always recomputed from
// the live collection, never cached.
func (m Items) TotalPrice() int64 {
	var total int64
	for _, it := range m {
		total += it.Price * it.Amount
	}
	return total
}

// TotalAmount sums the derived amount over all items.
func (m Items) TotalAmount() int64 {
	var total int64
	for _, it := range m {
		total += it.Amount
	}
	return total
}
