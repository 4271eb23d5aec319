package event

import "order_bot/internal/domain"

// Op names one core operation requested by a gateway event.
type Op string

const (
	OpOpenOrder  Op = "open_order"
	OpShowOrder  Op = "show_order"
	OpUpsertItem Op = "upsert_item"
	OpSetPrice   Op = "set_price"
	OpEditInfo   Op = "edit_info"
	OpCloseOrder Op = "close_order"
)

// Command is one decoded gateway event. OrderID names the target
// order and Snapshot carries its last-applied durable state, so the
// core can rehydrate after a restart. Amount fields stay raw strings
// here: validation belongs to the core, and rejects must come back as
// typed errors, not gateway decode failures.
type Command struct {
	Op        Op
	OrderID   domain.OrderID
	ChannelID string
	Actor     string // platform user id of the acting participant
	Snapshot  *domain.Snapshot

	// open_order / edit_info payload
	OrderName  string
	OrderInfo  string
	OrderImg   string
	NewCreator string
	OrderState domain.OrderState

	// upsert_item / set_price payload
	ItemName      string
	Price         string
	Quantity      string
	PlatformUsers []string
	FreeformUsers []string
}

// Reset zeroes the command for pooling.
func (c *Command) Reset() {
	*c = Command{}
}
