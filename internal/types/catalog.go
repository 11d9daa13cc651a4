package types

import "github.com/google/uuid"

// Activity is a read-only catalog entry for a city.
type Activity struct {
	ID          uuid.UUID `json:"id"`
	City        string    `json:"city"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Lat         *float64  `json:"lat,omitempty"`
	Lng         *float64  `json:"lng,omitempty"`
	// ValidSlots restricts placement. Nil means the activity is valid in every slot.
	ValidSlots []SlotKey `json:"valid_slots,omitempty"`
	ImageURL   string    `json:"image_url,omitempty"`
	Website    string    `json:"website,omitempty"`
	Rating     *float64  `json:"rating,omitempty"`
	Category   string    `json:"category,omitempty"`
}

// Allows reports whether the activity may occupy slot.
func (a Activity) Allows(slot SlotKey) bool {
	if a.ValidSlots == nil {
		return true
	}
	for _, s := range a.ValidSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// Point returns the catalog location, or nil when incomplete.
func (a Activity) Point() *Point {
	if a.Lat == nil || a.Lng == nil {
		return nil
	}
	return &Point{Lat: *a.Lat, Lng: *a.Lng}
}

// ToScheduled copies the fields an itinerary keeps from a catalog entry.
func (a Activity) ToScheduled() ScheduledActivity {
	return ScheduledActivity{
		Title:       a.Title,
		Description: a.Description,
		Lat:         copyFloat(a.Lat),
		Lng:         copyFloat(a.Lng),
		Image:       a.ImageURL,
	}
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// City is one of the supported destinations.
type City struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// DayTemplate is a predefined slot assignment for a city.
type DayTemplate struct {
	ID    uuid.UUID `json:"id"`
	City  string    `json:"city"`
	Label string    `json:"label"`
	Slots Slots     `json:"slots"`
}

// ActivitySearch filters the discover listing.
type ActivitySearch struct {
	City      string   `json:"city,omitempty"`
	Query     string   `json:"q,omitempty"`
	MinRating *float64 `json:"min_rating,omitempty"`
}
