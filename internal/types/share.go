package types

import (
	"time"

	"github.com/google/uuid"
)

// ShareLink is a signed, expiring read-only link to an itinerary.
type ShareLink struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SharedItinerary is the public view of an itinerary. It omits the owner.
type SharedItinerary struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	StartDate *time.Time       `json:"start_date,omitempty"`
	Days      Store            `json:"days"`
	Summary   ItinerarySummary `json:"summary"`
}
