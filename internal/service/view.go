package service

import "order_bot/internal/domain"

// ParticipantShare is one participant's quantity on an item, in the
// item's first-add display order.
type ParticipantShare struct {
	Participant domain.Participant
	Quantity    int64
}

// ItemView is the renderer-facing projection of one item.
type ItemView struct {
	Name   string
	Price  int64
	Amount int64
	Shares []ParticipantShare
}

// OrderView is everything the gateway needs to redraw the order
// message and persist the durable record: the order, its items sorted
// by name, the derived totals, and the snapshot capturing exactly
// this state.
type OrderView struct {
	Order       domain.Order
	Items       []ItemView
	TotalPrice  int64
	TotalAmount int64
	Snapshot    *domain.Snapshot
}

// UpsertResult reports a committed quantity edit. Removed is true when
// the batch drove the item's amount to zero and the item was deleted.
type UpsertResult struct {
	View     *OrderView
	ItemName string
	Removed  bool
}

// EditResult reports a committed info edit, flagging creator handover
// so the gateway can post a notice.
type EditResult struct {
	View            *OrderView
	CreatorChanged  bool
	PreviousCreator string
}

// CloseResult is the outcome of a successful settlement.
type CloseResult struct {
	View       *OrderView
	Entries    []domain.SettlementEntry
	Snapshot   *domain.Snapshot
	TotalPrice int64
}
