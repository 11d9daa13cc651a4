package planner

import (
	"errors"
	"fmt"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var (
	// ErrSlotConstraint matches any *SlotConstraintViolation.
	ErrSlotConstraint = errors.New("activity is not available for this time slot")
	ErrInvalidSlot    = errors.New("invalid slot key")
	ErrUnknownField   = errors.New("unknown activity field")
)

// SlotConstraintViolation is returned when a placement would put an activity into a slot its
// catalog entry forbids. The store is left unchanged.
type SlotConstraintViolation struct {
	Title   string
	Slot    types.SlotKey
	Allowed []types.SlotKey
}

func (e *SlotConstraintViolation) Error() string {
	return fmt.Sprintf("%q is not available in the %s slot (allowed: %v)", e.Title, e.Slot, e.Allowed)
}

func (e *SlotConstraintViolation) Is(target error) bool {
	return target == ErrSlotConstraint
}

func checkSlot(slot types.SlotKey) error {
	if !slot.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	return nil
}
