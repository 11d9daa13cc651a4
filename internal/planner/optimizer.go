package planner

import "github.com/FACorreiaa/go-trip-planner/internal/types"

type candidate struct {
	item  types.ScheduledActivity
	entry *types.Activity
}

func (c candidate) allows(slot types.SlotKey) bool {
	return c.entry == nil || c.entry.Allows(slot)
}

// point falls back to the catalog coordinates when the scheduled copy has none.
func (c candidate) point() *types.Point {
	if p := c.item.Point(); p != nil {
		return p
	}
	if c.entry != nil {
		return c.entry.Point()
	}
	return nil
}

// OptimizeDay re-sequences the day at dayIdx with a greedy nearest-neighbour pass over the slots
// in canonical order, placing at most one activity per slot. Slots left empty are back-filled
// from the day's city catalog. Activities that violate their slot constraint, or that did not
// win a slot, are returned as dropped. Other days are unchanged.
func OptimizeDay(store types.Store, dayIdx int, catalog Catalog) (types.Store, []types.ScheduledActivity) {
	if dayIdx < 0 || dayIdx >= len(store) {
		return store, nil
	}
	day := store[dayIdx]

	var pool []candidate
	var dropped []types.ScheduledActivity
	for _, slot := range types.SlotOrder {
		for _, it := range day.Slots[slot] {
			c := candidate{item: it}
			if act, ok := findActivity(catalog, day.City, it.Title); ok {
				c.entry = &act
			}
			if !c.allows(slot) {
				dropped = append(dropped, it.Clone())
				continue
			}
			pool = append(pool, c)
		}
	}

	used := make(map[string]bool)
	placed := make(map[types.SlotKey]candidate)
	var prev *candidate
	for _, slot := range types.SlotOrder {
		var eligible []candidate
		for _, c := range pool {
			if !used[c.item.Title] && c.allows(slot) {
				eligible = append(eligible, c)
			}
		}
		if len(eligible) == 0 {
			continue
		}
		next := eligible[0]
		if prev != nil {
			from := prev.point()
			best := DistanceKm(from, next.point())
			for _, c := range eligible[1:] {
				if d := DistanceKm(from, c.point()); d < best {
					best, next = d, c
				}
			}
		}
		used[next.item.Title] = true
		placed[slot] = next
		prev = &next
	}

	for _, c := range pool {
		if !used[c.item.Title] {
			dropped = append(dropped, c.item.Clone())
		}
	}

	slots := types.EmptySlots()
	for _, slot := range types.SlotOrder {
		if c, ok := placed[slot]; ok {
			slots[slot] = []types.ScheduledActivity{c.item.Clone()}
			continue
		}
		if catalog == nil {
			continue
		}
		for _, act := range catalog.Activities(day.City) {
			if !used[act.Title] && act.Allows(slot) {
				slots[slot] = []types.ScheduledActivity{act.ToScheduled()}
				used[act.Title] = true
				break
			}
		}
	}

	out := make(types.Store, len(store))
	copy(out, store)
	d := day.Clone()
	d.Slots = slots
	out[dayIdx] = d
	return out, dropped
}
