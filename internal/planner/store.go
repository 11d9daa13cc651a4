package planner

import "github.com/FACorreiaa/go-trip-planner/internal/types"

// withDay returns a new store whose day at idx is replaced by fn's result. The input store is
// never written to. Out-of-range indices return the store unchanged.
func withDay(store types.Store, idx int, fn func(types.Day) (types.Day, error)) (types.Store, error) {
	if idx < 0 || idx >= len(store) {
		return store, nil
	}
	day, err := fn(store[idx].Clone())
	if err != nil {
		return store, err
	}
	out := make(types.Store, len(store))
	copy(out, store)
	out[idx] = day
	return out, nil
}

// slotItems returns a fresh copy of the sequence at slot so callers may modify it.
func slotItems(d types.Day, slot types.SlotKey) []types.ScheduledActivity {
	src := d.Slots[slot]
	cp := make([]types.ScheduledActivity, len(src))
	copy(cp, src)
	return cp
}

func ensureSlots(d types.Day) types.Day {
	if d.Slots == nil {
		d.Slots = types.EmptySlots()
	}
	return d
}
