package planner

import "github.com/FACorreiaa/go-trip-planner/internal/types"

// MoveActivity moves one activity from src to dst, which may be in another day or slot.
// A nil dst is a cancelled drop and returns the store unchanged. If the activity's catalog
// entry in the destination day's city forbids dst.Slot, a *SlotConstraintViolation is
// returned and nothing moves. Activity count across the store is conserved.
func MoveActivity(store types.Store, catalog Catalog, src types.SlotPosition, dst *types.SlotPosition) (types.Store, error) {
	if dst == nil {
		return store, nil
	}
	if err := checkSlot(src.Slot); err != nil {
		return store, err
	}
	if err := checkSlot(dst.Slot); err != nil {
		return store, err
	}
	if !validItem(store, src.DayIdx, src.Slot, src.Index) {
		return store, nil
	}
	if dst.DayIdx < 0 || dst.DayIdx >= len(store) {
		return store, nil
	}

	moved := store[src.DayIdx].Slots[src.Slot][src.Index]
	if act, ok := findActivity(catalog, store[dst.DayIdx].City, moved.Title); ok && !act.Allows(dst.Slot) {
		return store, &SlotConstraintViolation{Title: moved.Title, Slot: dst.Slot, Allowed: act.ValidSlots}
	}

	out := make(types.Store, len(store))
	copy(out, store)

	srcDay := out[src.DayIdx].Clone()
	srcItems := srcDay.Slots[src.Slot]
	srcDay.Slots[src.Slot] = append(srcItems[:src.Index:src.Index], srcItems[src.Index+1:]...)
	out[src.DayIdx] = srcDay

	dstDay := out[dst.DayIdx]
	if dst.DayIdx != src.DayIdx {
		dstDay = dstDay.Clone()
	}
	dstDay = ensureSlots(dstDay)
	dstDay.Slots[dst.Slot] = insertAt(dstDay.Slots[dst.Slot], dst.Index, moved)
	out[dst.DayIdx] = dstDay
	return out, nil
}

// insertAt returns a new slice with item at index, clamped to [0, len(items)].
func insertAt(items []types.ScheduledActivity, index int, item types.ScheduledActivity) []types.ScheduledActivity {
	if index < 0 {
		index = 0
	}
	if index > len(items) {
		index = len(items)
	}
	out := make([]types.ScheduledActivity, 0, len(items)+1)
	out = append(out, items[:index]...)
	out = append(out, item)
	return append(out, items[index:]...)
}
