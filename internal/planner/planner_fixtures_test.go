package planner

import "github.com/FACorreiaa/go-trip-planner/internal/types"

func f(v float64) *float64 { return &v }

func act(title string, lat, lng float64, slots ...types.SlotKey) types.Activity {
	a := types.Activity{City: "Lisbon", Title: title, Description: title + " desc", Lat: f(lat), Lng: f(lng)}
	if len(slots) > 0 {
		a.ValidSlots = slots
	}
	return a
}

func sched(title string, lat, lng float64) types.ScheduledActivity {
	return types.ScheduledActivity{Title: title, Lat: f(lat), Lng: f(lng)}
}

func lisbonCatalog() StaticCatalog {
	return StaticCatalog{
		"Lisbon": {
			act("Belém Tower", 38.6916, -9.2160, types.SlotMorning, types.SlotAfternoon),
			act("Time Out Market", 38.7069, -9.1459, types.SlotLunch, types.SlotDinner),
			act("Jerónimos Monastery", 38.6979, -9.2065, types.SlotAfternoon),
			act("Fado in Alfama", 38.7110, -9.1300, types.SlotDinner, types.SlotEvening),
			act("Bairro Alto", 38.7133, -9.1446, types.SlotEvening),
		},
	}
}

func dayWith(city string, fill map[types.SlotKey][]types.ScheduledActivity) types.Day {
	d := types.Day{Label: "Day", City: city, Slots: types.EmptySlots()}
	for k, v := range fill {
		d.Slots[k] = v
	}
	return d
}
