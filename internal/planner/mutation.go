package planner

import (
	"fmt"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// ActivityField names an editable ScheduledActivity field.
type ActivityField string

const (
	FieldTitle       ActivityField = "title"
	FieldDescription ActivityField = "desc"
	FieldImage       ActivityField = "image"
	FieldTime        ActivityField = "time"
	FieldNotes       ActivityField = "notes"
)

// AddActivity appends activity to the end of the slot. Slot validity is not checked here.
func AddActivity(store types.Store, dayIdx int, slot types.SlotKey, activity types.ScheduledActivity) (types.Store, error) {
	if err := checkSlot(slot); err != nil {
		return store, err
	}
	return withDay(store, dayIdx, func(d types.Day) (types.Day, error) {
		d = ensureSlots(d)
		d.Slots[slot] = append(slotItems(d, slot), activity.Clone())
		return d, nil
	})
}

// RemoveActivity drops the item at index. Out-of-range indices leave the slot as it was.
func RemoveActivity(store types.Store, dayIdx int, slot types.SlotKey, index int) (types.Store, error) {
	if err := checkSlot(slot); err != nil {
		return store, err
	}
	if !validItem(store, dayIdx, slot, index) {
		return store, nil
	}
	return withDay(store, dayIdx, func(d types.Day) (types.Day, error) {
		items := d.Slots[slot]
		kept := make([]types.ScheduledActivity, 0, len(items)-1)
		for i, it := range items {
			if i != index {
				kept = append(kept, it)
			}
		}
		d.Slots[slot] = kept
		return d, nil
	})
}

// UpdateActivityField replaces one field of the activity at index, preserving the others.
func UpdateActivityField(store types.Store, dayIdx int, slot types.SlotKey, index int, field ActivityField, value string) (types.Store, error) {
	if err := checkSlot(slot); err != nil {
		return store, err
	}
	switch field {
	case FieldTitle, FieldDescription, FieldImage, FieldTime, FieldNotes:
	default:
		return store, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if !validItem(store, dayIdx, slot, index) {
		return store, nil
	}
	return withDay(store, dayIdx, func(d types.Day) (types.Day, error) {
		items := slotItems(d, slot)
		it := items[index]
		switch field {
		case FieldTitle:
			it.Title = value
		case FieldDescription:
			it.Description = value
		case FieldImage:
			it.Image = value
		case FieldTime:
			it.Time = value
		case FieldNotes:
			it.Notes = value
		}
		items[index] = it
		d.Slots[slot] = items
		return d, nil
	})
}

// SelectCatalogActivity overwrites title, description and coordinates at index from a catalog
// entry. It fails with a *SlotConstraintViolation when the entry forbids the slot.
func SelectCatalogActivity(store types.Store, dayIdx int, slot types.SlotKey, index int, activity types.Activity) (types.Store, error) {
	if err := checkSlot(slot); err != nil {
		return store, err
	}
	if !activity.Allows(slot) {
		return store, &SlotConstraintViolation{Title: activity.Title, Slot: slot, Allowed: activity.ValidSlots}
	}
	if !validItem(store, dayIdx, slot, index) {
		return store, nil
	}
	return withDay(store, dayIdx, func(d types.Day) (types.Day, error) {
		items := slotItems(d, slot)
		picked := activity.ToScheduled()
		it := items[index]
		it.Title = picked.Title
		it.Description = picked.Description
		it.Lat = picked.Lat
		it.Lng = picked.Lng
		items[index] = it
		d.Slots[slot] = items
		return d, nil
	})
}

func validItem(store types.Store, dayIdx int, slot types.SlotKey, index int) bool {
	if dayIdx < 0 || dayIdx >= len(store) {
		return false
	}
	return index >= 0 && index < len(store[dayIdx].Slots[slot])
}
