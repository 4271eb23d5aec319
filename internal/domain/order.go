package domain

// OrderID is the opaque identifier of the chat message an order is
// attached to. It is assigned by the platform and is the only
// correlation key between an order and its item collection.
type OrderID string

// OrderState tracks the order lifecycle.
type OrderState string

const (
	OrderStateOpen   OrderState = "Open"
	OrderStateClosed OrderState = "Closed"
)

// ParticipantKind separates platform-identified users from freeform
// display names typed into the item form.
type ParticipantKind string

const (
	KindPlatform ParticipantKind = "platform"
	KindFreeform ParticipantKind = "freeform"
)

// Participant identifies one person recorded against an item. Two
// participants match only if both kind and id match; a platform user
// and a freeform name are never merged even when textually equal.
type Participant struct {
	Kind ParticipantKind `json:"kind"`
	ID   string          `json:"id"`
}

// PlatformParticipant wraps a stable platform user id.
func PlatformParticipant(id string) Participant {
	return Participant{Kind: KindPlatform, ID: id}
}

// FreeformParticipant wraps a display name with no platform identity.
func FreeformParticipant(name string) Participant {
	return Participant{Kind: KindFreeform, ID: name}
}

// Order is one collaborative purchase session.
// The creator is always a platform user id: freeform participants have
// no identity the gateway can authenticate actions against.
type Order struct {
	ID       OrderID    `json:"id"`
	Name     string     `json:"name"`
	Creator  string     `json:"creator"`
	Info     string     `json:"info"`
	ImageURL string     `json:"image_url"`
	State    OrderState `json:"state"`
}

// IsOpen checks whether the order still accepts everyone's edits.
func (o *Order) IsOpen() bool {
	return o.State == OrderStateOpen
}
