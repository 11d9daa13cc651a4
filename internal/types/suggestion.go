package types

// SuggestionKind tags a Suggestion variant.
type SuggestionKind string

const (
	SuggestionFillGap     SuggestionKind = "fill"
	SuggestionConflict    SuggestionKind = "conflict"
	SuggestionAlternative SuggestionKind = "alternative"
)

// Suggestion is an advisory hint derived from a day. Which fields are set depends on Kind:
// fill sets Candidate; conflict sets Activity; alternative sets Activity and Alternatives.
type Suggestion struct {
	Kind         SuggestionKind     `json:"type"`
	Slot         SlotKey            `json:"slot"`
	Candidate    *Activity          `json:"candidate,omitempty"`
	Activity     *ScheduledActivity `json:"activity,omitempty"`
	Alternatives []Activity         `json:"alternatives,omitempty"`
}

// TransportMode selects the speed used for travel estimates.
type TransportMode string

const (
	TransportWalking   TransportMode = "walking"
	TransportBicycling TransportMode = "bicycling"
	TransportTransit   TransportMode = "transit"
	TransportDriving   TransportMode = "driving"
)

// RouteLeg is the straight-line hop between two consecutive scheduled activities.
type RouteLeg struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	DistanceKm float64 `json:"distance_km"`
}

// RouteSummary describes travel for one day.
type RouteSummary struct {
	DayIdx        int           `json:"day"`
	Mode          TransportMode `json:"mode"`
	Legs          []RouteLeg    `json:"legs"`
	DistanceKm    float64       `json:"distance_km"`
	TravelMinutes int           `json:"travel_minutes"`
}

// ItinerarySummary aggregates the whole store.
type ItinerarySummary struct {
	Days           int     `json:"days"`
	Activities     int     `json:"activities"`
	DistanceKm     float64 `json:"distance_km"`
	WalkingMinutes int     `json:"walking_minutes"`
}
