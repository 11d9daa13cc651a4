package planner

import (
	"math"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// Stops returns the day's activities that carry coordinates, in slot order.
func Stops(day types.Day) []types.ScheduledActivity {
	var stops []types.ScheduledActivity
	for _, slot := range types.SlotOrder {
		for _, it := range day.Slots[slot] {
			if it.Point() != nil {
				stops = append(stops, it)
			}
		}
	}
	return stops
}

// SummarizeDay builds straight-line legs between consecutive stops and estimates travel time for mode.
func SummarizeDay(day types.Day, dayIdx int, mode types.TransportMode) types.RouteSummary {
	summary := types.RouteSummary{DayIdx: dayIdx, Mode: mode, Legs: make([]types.RouteLeg, 0)}
	stops := Stops(day)
	for i := 1; i < len(stops); i++ {
		km := round2(DistanceKm(stops[i-1].Point(), stops[i].Point()))
		summary.Legs = append(summary.Legs, types.RouteLeg{From: stops[i-1].Title, To: stops[i].Title, DistanceKm: km})
		summary.DistanceKm += km
	}
	summary.DistanceKm = round2(summary.DistanceKm)
	summary.TravelMinutes = TravelMinutes(summary.DistanceKm, mode)
	return summary
}

// SummarizeStore totals days, activities and walking distance across the store.
func SummarizeStore(store types.Store) types.ItinerarySummary {
	s := types.ItinerarySummary{Days: len(store), Activities: store.ActivityCount()}
	for i, d := range store {
		s.DistanceKm += SummarizeDay(d, i, types.TransportWalking).DistanceKm
	}
	s.DistanceKm = round2(s.DistanceKm)
	s.WalkingMinutes = TravelMinutes(s.DistanceKm, types.TransportWalking)
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
