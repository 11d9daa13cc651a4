package planner

import (
	"fmt"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// Normalize resolves every day to the slotted shape. Slotted days keep their content;
// legacy days get their flat items moved into the morning slot and the default city.
// Missing slot keys are added as empty sequences and keys outside the canonical five are dropped.
// Normalize is idempotent.
func Normalize(days types.Store) types.Store {
	return NormalizeIn(days, DefaultCity())
}

// NormalizeIn is Normalize with city given to legacy days that have none.
func NormalizeIn(days types.Store, city string) types.Store {
	if days == nil {
		return types.Store{}
	}
	if city == "" {
		city = DefaultCity()
	}
	out := make(types.Store, len(days))
	for i, d := range days {
		out[i] = normalizeDay(d, city)
	}
	return out
}

func normalizeDay(d types.Day, city string) types.Day {
	if d.Shape() == types.DayShapeSlotted {
		return fillSlotKeys(d)
	}

	n := d.Clone()
	if n.City == "" {
		n.City = city
	}
	if n.Slots == nil {
		n.Slots = types.EmptySlots()
		if len(n.Items) > 0 {
			n.Slots[types.SlotMorning] = n.Items
		}
	}
	n.Items = nil
	return fillSlotKeys(n)
}

// fillSlotKeys returns d unchanged when it holds exactly the five canonical slots, otherwise a
// copy with the missing ones added and unknown keys removed.
func fillSlotKeys(d types.Day) types.Day {
	complete := len(d.Slots) == len(types.SlotOrder)
	for _, k := range types.SlotOrder {
		if d.Slots[k] == nil {
			complete = false
			break
		}
	}
	if complete {
		return d
	}
	slots := d.Slots.Clone()
	if slots == nil {
		slots = make(types.Slots, len(types.SlotOrder))
	}
	for k := range slots {
		if !k.Valid() {
			delete(slots, k)
		}
	}
	for _, k := range types.SlotOrder {
		if slots[k] == nil {
			slots[k] = []types.ScheduledActivity{}
		}
	}
	d.Slots = slots
	return d
}

// ValidateSlots reports the first slot key outside the canonical five. Imported stores are
// checked with it before Normalize would discard the offending entries.
func ValidateSlots(days types.Store) error {
	for i, d := range days {
		for k := range d.Slots {
			if !k.Valid() {
				return fmt.Errorf("%w: day %d has slot %q", ErrInvalidSlot, i, k)
			}
		}
	}
	return nil
}
