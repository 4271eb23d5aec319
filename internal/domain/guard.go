package domain

// Stateless authorization policy. Both rules read only the order's
// lifecycle state and creator id.

// CanMutateItems reports whether actor may add or edit item lines.
// Anyone may while the order is open; once closed, only the creator
// can still correct lines.
func CanMutateItems(o *Order, actor string) bool {
	return o.State == OrderStateOpen || actor == o.Creator
}

// CanAdminister reports whether actor may edit order info, transfer
// the creator role, change state, or close the order.
func CanAdminister(o *Order, actor string) bool {
	return actor == o.Creator
}

// AuthorizeMutation wraps CanMutateItems with the typed rejection the
// gateway renders as a notice.
func AuthorizeMutation(o *Order, actor, action string) error {
	if CanMutateItems(o, actor) {
		return nil
	}
	return &NotAuthorizedError{Actor: actor, Creator: o.Creator, Action: action}
}

// AuthorizeAdmin wraps CanAdminister.
func AuthorizeAdmin(o *Order, actor, action string) error {
	if CanAdminister(o, actor) {
		return nil
	}
	return &NotAuthorizedError{Actor: actor, Creator: o.Creator, Action: action}
}
