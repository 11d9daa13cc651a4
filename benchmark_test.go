package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/go-trip-planner/app/cache"
	appMiddleware "github.com/FACorreiaa/go-trip-planner/app/middleware"
	"github.com/FACorreiaa/go-trip-planner/internal/api/catalog"
	"github.com/FACorreiaa/go-trip-planner/internal/api/itinerary"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// benchmarkEditor wires the itinerary editor over in-memory storage with one seeded itinerary.
func benchmarkEditor(b *testing.B) (http.Handler, uuid.UUID, uuid.UUID) {
	b.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	its := &memItineraries{items: map[uuid.UUID]types.Itinerary{}, clock: time.Now()}
	catalogService := catalog.NewServiceImpl(staticCatalog{}, c, logger)
	h := itinerary.NewHandler(itinerary.NewServiceImpl(its, catalogService, c, "Lisbon", logger), logger)

	userID := uuid.New()
	day := types.Day{Label: "Day 1", City: "Lisbon", Slots: types.EmptySlots()}
	day.Slots[types.SlotMorning] = []types.ScheduledActivity{
		{Title: "Belém Tower", Lat: fp(38.6916), Lng: fp(-9.2160)},
		{Title: "Custom stop", Lat: fp(38.70), Lng: fp(-9.18)},
	}
	day.Slots[types.SlotDinner] = []types.ScheduledActivity{{Title: "Time Out Market", Lat: fp(38.7069), Lng: fp(-9.1459)}}
	created, err := its.Create(b.Context(), &types.Itinerary{UserID: userID, Name: "Bench", Days: types.Store{day, day.Clone()}})
	if err != nil {
		b.Fatal(err)
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(appMiddleware.WithUserID(req.Context(), userID)))
		})
	})
	r.Route("/api/v1/itineraries", func(r chi.Router) { h.Routes(r) })
	return r, userID, created.ID
}

func BenchmarkMoveActivity(b *testing.B) {
	router, _, id := benchmarkEditor(b)
	path := "/api/v1/itineraries/" + id.String() + "/moves"
	// Swapping the two morning items back and forth keeps the store shape stable.
	body, _ := json.Marshal(types.MoveIntent{
		Source:      types.SlotPosition{DayIdx: 0, Slot: types.SlotMorning, Index: 0},
		Destination: &types.SlotPosition{DayIdx: 0, Slot: types.SlotMorning, Index: 1},
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body)))
		if rr.Code != http.StatusOK {
			b.Fatalf("unexpected status %d: %s", rr.Code, rr.Body.String())
		}
	}
}

func BenchmarkRouteCached(b *testing.B) {
	router, _, id := benchmarkEditor(b)
	path := "/api/v1/itineraries/" + id.String() + "/days/0/route?mode=walking"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rr.Code)
		}
	}
}

func BenchmarkSuggestions(b *testing.B) {
	router, _, id := benchmarkEditor(b)
	path := "/api/v1/itineraries/" + id.String() + "/days/1/suggestions"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rr.Code)
		}
	}
}
