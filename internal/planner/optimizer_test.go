package planner

import (
	"testing"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimizeDay(t *testing.T) {
	t.Run("lisbon gap fill", func(t *testing.T) {
		cat := lisbonCatalog()
		store := types.Store{dayWith("Lisbon", map[types.SlotKey][]types.ScheduledActivity{
			types.SlotMorning: {sched("Belém Tower", 38.6916, -9.2160)},
		})}

		got, dropped := OptimizeDay(store, 0, cat)

		assert.Empty(t, dropped)
		assert.Equal(t, []string{"Belém Tower"}, titles(got[0].Slots[types.SlotMorning]))
		assert.Equal(t, []string{"Jerónimos Monastery"}, titles(got[0].Slots[types.SlotAfternoon]))
		assert.Equal(t, []string{"Time Out Market"}, titles(got[0].Slots[types.SlotLunch]))
		assert.Len(t, store[0].Slots[types.SlotAfternoon], 0)
	})

	t.Run("nearest neighbour ordering", func(t *testing.T) {
		store := types.Store{dayWith("Nowhere", map[types.SlotKey][]types.ScheduledActivity{
			types.SlotMorning:   {sched("A", 0, 0)},
			types.SlotLunch:     {sched("Far", 10, 10)},
			types.SlotAfternoon: {sched("Near", 0.1, 0.1)},
		})}

		got, dropped := OptimizeDay(store, 0, nil)

		assert.Empty(t, dropped)
		assert.Equal(t, []string{"A"}, titles(got[0].Slots[types.SlotMorning]))
		assert.Equal(t, []string{"Near"}, titles(got[0].Slots[types.SlotLunch]))
		assert.Equal(t, []string{"Far"}, titles(got[0].Slots[types.SlotAfternoon]))
		assert.Empty(t, got[0].Slots[types.SlotDinner])
		assert.Empty(t, got[0].Slots[types.SlotEvening])
	})

	t.Run("respects slot constraints", func(t *testing.T) {
		cat := lisbonCatalog()
		store := types.Store{dayWith("Lisbon", map[types.SlotKey][]types.ScheduledActivity{
			types.SlotMorning: {sched("Jerónimos Monastery", 38.6979, -9.2065), sched("Bairro Alto", 38.7133, -9.1446)},
			types.SlotDinner:  {sched("Fado in Alfama", 38.7110, -9.1300)},
			types.SlotEvening: {sched("Time Out Market", 38.7069, -9.1459)},
		})}

		got, dropped := OptimizeDay(store, 0, cat)

		assert.ElementsMatch(t, []string{"Jerónimos Monastery", "Bairro Alto", "Time Out Market"}, titles(dropped))
		for _, slot := range types.SlotOrder {
			for _, it := range got[0].Slots[slot] {
				entry, ok := FindActivity(cat, "Lisbon", it.Title)
				if ok {
					assert.True(t, entry.Allows(slot), "%s in %s", it.Title, slot)
				}
			}
		}
	})

	t.Run("extra activities are reported as dropped", func(t *testing.T) {
		items := []types.ScheduledActivity{}
		for _, n := range []string{"a", "b", "c", "d", "e", "f"} {
			items = append(items, sched(n, 0, 0))
		}
		store := types.Store{dayWith("Nowhere", map[types.SlotKey][]types.ScheduledActivity{types.SlotMorning: items})}

		got, dropped := OptimizeDay(store, 0, nil)

		require.Len(t, dropped, 1)
		assert.Equal(t, "f", dropped[0].Title)
		assert.Equal(t, 5, got[0].Slots.Count())
	})

	t.Run("custom activity without a catalog entry is kept", func(t *testing.T) {
		store := types.Store{dayWith("Lisbon", map[types.SlotKey][]types.ScheduledActivity{
			types.SlotEvening: {sched("Dinner at Tia Rosa's", 38.7110, -9.1300)},
		})}

		got, dropped := OptimizeDay(store, 0, lisbonCatalog())

		assert.Empty(t, dropped)
		var all []string
		for _, slot := range types.SlotOrder {
			all = append(all, titles(got[0].Slots[slot])...)
		}
		assert.Contains(t, all, "Dinner at Tia Rosa's")
	})

	t.Run("activities under an unknown slot are not lost after normalize", func(t *testing.T) {
		d := dayWith("Nowhere", map[types.SlotKey][]types.ScheduledActivity{types.SlotMorning: {sched("A", 0, 0)}})
		d.Slots["night"] = []types.ScheduledActivity{sched("B", 0.1, 0.1)}
		store := Normalize(types.Store{d})
		before := store[0].Slots.Count()

		got, dropped := OptimizeDay(store, 0, nil)

		assert.Equal(t, before, got[0].Slots.Count()+len(dropped))
	})

	t.Run("other days untouched and out of range is a no-op", func(t *testing.T) {
		other := dayWith("Porto", map[types.SlotKey][]types.ScheduledActivity{types.SlotEvening: {sched("P", 0, 0)}})
		store := types.Store{dayWith("Lisbon", nil), other}

		got, _ := OptimizeDay(store, 0, lisbonCatalog())
		assert.Equal(t, other, got[1])

		same, dropped := OptimizeDay(store, 7, lisbonCatalog())
		assert.Nil(t, dropped)
		assert.Equal(t, store, same)
	})
}
