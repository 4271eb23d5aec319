package domain

import (
	"errors"
	"fmt"
)

// UserFacingError marks failures the gateway should render back to the
// channel as a notice instead of logging as a fault.
type UserFacingError interface {
	error
	UserFacing() bool
}

// IsUserFacing checks if an error should be shown to the participant.
func IsUserFacing(err error) bool {
	if errors.Is(err, ErrEmptyOrder) {
		return true
	}
	var ue UserFacingError
	if errors.As(err, &ue) {
		return ue.UserFacing()
	}
	return false
}

// ValidationError reports a rejected user-supplied value. Nothing is
// applied when one is returned.
type ValidationError struct {
	Field string
	Value string
	Rule  string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Rule)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Rule)
}

func (e *ValidationError) UserFacing() bool { return true }

// NotAuthorizedError is returned when an actor fails a guard rule.
// It carries the creator id so the gateway can tell the actor who to
// contact; it is never escalated to a fatal error.
type NotAuthorizedError struct {
	Actor   string
	Creator string
	Action  string
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("%s: user %s is not the order creator (%s)", e.Action, e.Actor, e.Creator)
}

func (e *NotAuthorizedError) UserFacing() bool { return true }

// NotFoundError reports an order or item that is absent and cannot be
// rehydrated. Every event that references an order carries its last
// snapshot, so hitting this means corrupted data, not a retryable
// condition.
type NotFoundError struct {
	OrderID OrderID
	Item    string
}

func (e *NotFoundError) Error() string {
	if e.Item != "" {
		return fmt.Sprintf("order %s: item %q not found", e.OrderID, e.Item)
	}
	return fmt.Sprintf("order %s not found and no snapshot supplied", e.OrderID)
}

// ConflictError is returned on a create for an already-resident id.
type ConflictError struct {
	OrderID OrderID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("order %s already exists", e.OrderID)
}

// ErrEmptyOrder rejects closing an order with no line items.
var ErrEmptyOrder = errors.New("order has no items to settle")

// IsNotAuthorized checks if an error is a guard rejection.
func IsNotAuthorized(err error) bool {
	var na *NotAuthorizedError
	return errors.As(err, &na)
}

// IsNotFound checks if an error is an unrecoverable missing reference.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation checks if an error is a rejected input value.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
