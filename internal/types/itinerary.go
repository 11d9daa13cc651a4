package types

import (
	"time"

	"github.com/google/uuid"
)

// SlotKey names one of the five fixed daily time periods.
type SlotKey string

const (
	SlotMorning   SlotKey = "morning"
	SlotLunch     SlotKey = "lunch"
	SlotAfternoon SlotKey = "afternoon"
	SlotDinner    SlotKey = "dinner"
	SlotEvening   SlotKey = "evening"
)

// SlotOrder is the chronological slot sequence. Anything order-sensitive iterates it.
var SlotOrder = []SlotKey{SlotMorning, SlotLunch, SlotAfternoon, SlotDinner, SlotEvening}

// Valid reports whether k is one of the canonical slots.
func (k SlotKey) Valid() bool {
	for _, s := range SlotOrder {
		if s == k {
			return true
		}
	}
	return false
}

// Index returns the chronological position of k, or -1.
func (k SlotKey) Index() int {
	for i, s := range SlotOrder {
		if s == k {
			return i
		}
	}
	return -1
}

// ParseSlotKey validates a raw slot name.
func ParseSlotKey(raw string) (SlotKey, bool) {
	k := SlotKey(raw)
	return k, k.Valid()
}

// Point is a WGS-84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ScheduledActivity is a copy of catalog fields placed at a (day, slot) position.
type ScheduledActivity struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"desc"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	Image       string   `json:"image,omitempty"`
	Time        string   `json:"time,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// Point returns the activity location, or nil when either coordinate is missing.
func (a ScheduledActivity) Point() *Point {
	if a.Lat == nil || a.Lng == nil {
		return nil
	}
	return &Point{Lat: *a.Lat, Lng: *a.Lng}
}

// Clone returns a copy that shares no pointers with a.
func (a ScheduledActivity) Clone() ScheduledActivity {
	c := a
	if a.Lat != nil {
		lat := *a.Lat
		c.Lat = &lat
	}
	if a.Lng != nil {
		lng := *a.Lng
		c.Lng = &lng
	}
	return c
}

// Slots maps every SlotKey to its ordered activities.
type Slots map[SlotKey][]ScheduledActivity

// EmptySlots returns a Slots value with all five keys present and empty.
func EmptySlots() Slots {
	s := make(Slots, len(SlotOrder))
	for _, k := range SlotOrder {
		s[k] = []ScheduledActivity{}
	}
	return s
}

// Clone deep-copies the slot map and every sequence in it.
func (s Slots) Clone() Slots {
	if s == nil {
		return nil
	}
	out := make(Slots, len(s))
	for k, items := range s {
		cp := make([]ScheduledActivity, len(items))
		for i, it := range items {
			cp[i] = it.Clone()
		}
		out[k] = cp
	}
	return out
}

// Count returns the number of scheduled activities across all slots.
func (s Slots) Count() int {
	n := 0
	for _, items := range s {
		n += len(items)
	}
	return n
}

// DayShape tags the persisted layout of a Day.
type DayShape int

const (
	// DayShapeLegacy is the flat `items` layout, or any day missing slots or city.
	DayShapeLegacy DayShape = iota
	// DayShapeSlotted is the current slots-keyed layout.
	DayShapeSlotted
)

// Day is one column of the itinerary.
type Day struct {
	Label string `json:"label"`
	City  string `json:"city,omitempty"`
	Date  string `json:"date,omitempty"`
	Slots Slots  `json:"slots,omitempty"`
	// Items holds the legacy flat list. Normalization folds it into the morning slot.
	Items []ScheduledActivity `json:"items,omitempty"`
}

// Shape reports which persisted layout d uses.
func (d Day) Shape() DayShape {
	if d.Slots != nil && d.City != "" {
		return DayShapeSlotted
	}
	return DayShapeLegacy
}

// Clone deep-copies d.
func (d Day) Clone() Day {
	c := d
	c.Slots = d.Slots.Clone()
	if d.Items != nil {
		c.Items = make([]ScheduledActivity, len(d.Items))
		for i, it := range d.Items {
			c.Items[i] = it.Clone()
		}
	}
	return c
}

// Store is the ordered sequence of days. The index is the day number.
type Store []Day

// Clone deep-copies the whole store.
func (s Store) Clone() Store {
	if s == nil {
		return nil
	}
	out := make(Store, len(s))
	for i, d := range s {
		out[i] = d.Clone()
	}
	return out
}

// ActivityCount returns the number of scheduled activities across every day.
func (s Store) ActivityCount() int {
	n := 0
	for _, d := range s {
		n += d.Slots.Count() + len(d.Items)
	}
	return n
}

// Itinerary is a persisted, user-owned Store.
type Itinerary struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Name      string     `json:"name"`
	StartDate *time.Time `json:"start_date,omitempty"`
	Days      Store      `json:"days"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// SlotPosition addresses one activity in the store.
type SlotPosition struct {
	DayIdx int     `json:"day"`
	Slot   SlotKey `json:"slot"`
	Index  int     `json:"index"`
}

// MoveIntent is a drag result. A nil Destination means the drop was cancelled.
type MoveIntent struct {
	Source      SlotPosition  `json:"source"`
	Destination *SlotPosition `json:"destination"`
}

type CreateItineraryRequest struct {
	Name      string     `json:"name" validate:"required,max=200"`
	StartDate *time.Time `json:"start_date,omitempty"`
	Days      Store      `json:"days,omitempty"`
}

type ReplaceDaysRequest struct {
	Days Store `json:"days" validate:"required"`
}

type AddDayRequest struct {
	Label string `json:"label,omitempty" validate:"max=100"`
	City  string `json:"city" validate:"max=100"`
}

type UpdateDayRequest struct {
	Label *string `json:"label,omitempty"`
	City  *string `json:"city,omitempty"`
	Date  *string `json:"date,omitempty"`
}

type AddActivityRequest struct {
	Activity ScheduledActivity `json:"activity" validate:"required"`
}

type UpdateActivityFieldRequest struct {
	Field string `json:"field" validate:"required,oneof=title desc image time notes"`
	Value string `json:"value"`
}

type SelectCatalogActivityRequest struct {
	Title string `json:"title" validate:"required"`
}

type AppendTemplateDaysRequest struct {
	City string `json:"city" validate:"required"`
}

type ApplyTemplateRequest struct {
	TemplateIndex int `json:"template_index" validate:"min=0"`
}

// OptimizeDayResponse carries the optimized itinerary and any activities the greedy pass dropped.
type OptimizeDayResponse struct {
	Itinerary *Itinerary          `json:"itinerary"`
	Dropped   []ScheduledActivity `json:"dropped"`
}
