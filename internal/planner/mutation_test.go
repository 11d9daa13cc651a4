package planner

import (
	"errors"
	"testing"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddActivity(t *testing.T) {
	store := types.Store{dayWith("Lisbon", map[types.SlotKey][]types.ScheduledActivity{types.SlotMorning: {sched("A", 1, 1)}})}

	t.Run("appends to slot", func(t *testing.T) {
		got, err := AddActivity(store, 0, types.SlotMorning, sched("B", 2, 2))
		require.NoError(t, err)
		require.Len(t, got[0].Slots[types.SlotMorning], 2)
		assert.Equal(t, "B", got[0].Slots[types.SlotMorning][1].Title)
		assert.Len(t, store[0].Slots[types.SlotMorning], 1)
	})

	t.Run("out of range day is a no-op", func(t *testing.T) {
		got, err := AddActivity(store, 3, types.SlotMorning, sched("B", 2, 2))
		require.NoError(t, err)
		assert.Equal(t, store, got)
	})

	t.Run("invalid slot", func(t *testing.T) {
		_, err := AddActivity(store, 0, types.SlotKey("brunch"), sched("B", 2, 2))
		assert.ErrorIs(t, err, ErrInvalidSlot)
	})
}

func TestRemoveActivity(t *testing.T) {
	store := types.Store{dayWith("Lisbon", map[types.SlotKey][]types.ScheduledActivity{
		types.SlotMorning: {sched("A", 1, 1), sched("A", 1, 1), sched("C", 3, 3)},
	})}

	got, err := RemoveActivity(store, 0, types.SlotMorning, 1)
	require.NoError(t, err)
	titles := []string{}
	for _, it := range got[0].Slots[types.SlotMorning] {
		titles = append(titles, it.Title)
	}
	assert.Equal(t, []string{"A", "C"}, titles)
	assert.Len(t, store[0].Slots[types.SlotMorning], 3)

	same, err := RemoveActivity(store, 0, types.SlotMorning, 9)
	require.NoError(t, err)
	assert.Equal(t, store, same)
}

func TestUpdateActivityField(t *testing.T) {
	store := types.Store{dayWith("Lisbon", map[types.SlotKey][]types.ScheduledActivity{
		types.SlotLunch: {{Title: "Lunch", Description: "old", Notes: "keep"}},
	})}

	got, err := UpdateActivityField(store, 0, types.SlotLunch, 0, FieldDescription, "new")
	require.NoError(t, err)
	it := got[0].Slots[types.SlotLunch][0]
	assert.Equal(t, "new", it.Description)
	assert.Equal(t, "keep", it.Notes)
	assert.Equal(t, "old", store[0].Slots[types.SlotLunch][0].Description)

	_, err = UpdateActivityField(store, 0, types.SlotLunch, 0, ActivityField("price"), "1")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestSelectCatalogActivity(t *testing.T) {
	store := types.Store{dayWith("Lisbon", map[types.SlotKey][]types.ScheduledActivity{
		types.SlotMorning: {{Title: "placeholder", Notes: "n"}},
	})}
	cat := lisbonCatalog()

	t.Run("copies catalog fields", func(t *testing.T) {
		belem, ok := FindActivity(cat, "Lisbon", "Belém Tower")
		require.True(t, ok)

		got, err := SelectCatalogActivity(store, 0, types.SlotMorning, 0, belem)
		require.NoError(t, err)
		it := got[0].Slots[types.SlotMorning][0]
		assert.Equal(t, "Belém Tower", it.Title)
		assert.Equal(t, "n", it.Notes)
		require.NotNil(t, it.Lat)
		assert.Equal(t, 38.6916, *it.Lat)
	})

	t.Run("rejects forbidden slot", func(t *testing.T) {
		jeronimos, _ := FindActivity(cat, "Lisbon", "Jerónimos Monastery")

		got, err := SelectCatalogActivity(store, 0, types.SlotMorning, 0, jeronimos)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrSlotConstraint))
		var v *SlotConstraintViolation
		require.ErrorAs(t, err, &v)
		assert.Equal(t, types.SlotMorning, v.Slot)
		assert.Equal(t, store, got)
	})
}
