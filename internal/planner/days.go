package planner

import (
	"fmt"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// DayLabel is the default label for the day at idx.
func DayLabel(idx int) string {
	return fmt.Sprintf("Day %d", idx+1)
}

// AddDay appends an empty day. An empty label becomes "Day N", an empty city the default city.
func AddDay(store types.Store, label, city string) types.Store {
	if label == "" {
		label = DayLabel(len(store))
	}
	if city == "" {
		city = DefaultCity()
	}
	out := make(types.Store, len(store), len(store)+1)
	copy(out, store)
	return append(out, types.Day{Label: label, City: city, Slots: types.EmptySlots()})
}

// RemoveDay splices out the day at idx; later days shift down by one.
func RemoveDay(store types.Store, idx int) types.Store {
	if idx < 0 || idx >= len(store) {
		return store
	}
	out := make(types.Store, 0, len(store)-1)
	out = append(out, store[:idx]...)
	return append(out, store[idx+1:]...)
}

// DayUpdate carries optional day header changes.
type DayUpdate struct {
	Label *string
	City  *string
	Date  *string
}

// UpdateDay applies header changes to the day at idx. Slots are untouched.
func UpdateDay(store types.Store, idx int, u DayUpdate) types.Store {
	out, _ := withDay(store, idx, func(d types.Day) (types.Day, error) {
		if u.Label != nil {
			d.Label = *u.Label
		}
		if u.City != nil {
			d.City = *u.City
		}
		if u.Date != nil {
			d.Date = *u.Date
		}
		return d, nil
	})
	return out
}

// AppendTemplateDays adds one day per template, labelled sequentially after the existing days.
func AppendTemplateDays(store types.Store, city string, templates []types.DayTemplate) types.Store {
	if len(templates) == 0 {
		return store
	}
	out := make(types.Store, len(store), len(store)+len(templates))
	copy(out, store)
	for _, t := range templates {
		out = append(out, fillSlotKeys(types.Day{
			Label: DayLabel(len(out)),
			City:  city,
			Slots: t.Slots.Clone(),
		}))
	}
	return out
}

// ApplyTemplate replaces the slots of the day at idx with a copy of the template's slots.
func ApplyTemplate(store types.Store, idx int, template types.DayTemplate) types.Store {
	out, _ := withDay(store, idx, func(d types.Day) (types.Day, error) {
		d.Slots = template.Slots.Clone()
		if d.Slots == nil {
			d.Slots = types.EmptySlots()
		}
		return fillSlotKeys(d), nil
	})
	return out
}
