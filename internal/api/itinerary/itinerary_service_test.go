package itinerary

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-planner/app/cache"
	"github.com/FACorreiaa/go-trip-planner/internal/planner"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, it *types.Itinerary) (*types.Itinerary, error) {
	args := m.Called(ctx, it)
	if fn, ok := args.Get(0).(func(*types.Itinerary) *types.Itinerary); ok {
		return fn(it), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Itinerary), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, userID, id uuid.UUID) (*types.Itinerary, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Itinerary), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*types.Itinerary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Itinerary), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, userID uuid.UUID) ([]types.Itinerary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Itinerary), args.Error(1)
}

// UpdateDays echoes the written days back unless the expectation returns something else.
func (m *MockRepository) UpdateDays(ctx context.Context, userID, id uuid.UUID, days types.Store, expected time.Time) (*types.Itinerary, error) {
	args := m.Called(ctx, userID, id, days, expected)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	if it, ok := args.Get(0).(*types.Itinerary); ok {
		return it, nil
	}
	return &types.Itinerary{ID: id, UserID: userID, Days: days, UpdatedAt: expected.Add(time.Second)}, nil
}

func (m *MockRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Snapshot(ctx context.Context, cities []string) (planner.StaticCatalog, error) {
	args := m.Called(ctx, cities)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(planner.StaticCatalog), args.Error(1)
}

func (m *MockCatalog) Templates(ctx context.Context, city string) ([]types.DayTemplate, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.DayTemplate), args.Error(1)
}

func fp(v float64) *float64 { return &v }

func lisbon() planner.StaticCatalog {
	return planner.StaticCatalog{
		"Lisbon": {
			{City: "Lisbon", Title: "Belém Tower", Lat: fp(38.6916), Lng: fp(-9.2160)},
			{City: "Lisbon", Title: "Time Out Market", Lat: fp(38.7069), Lng: fp(-9.1459), ValidSlots: []types.SlotKey{types.SlotLunch, types.SlotDinner}},
			{City: "Lisbon", Title: "Jerónimos Monastery", Lat: fp(38.6979), Lng: fp(-9.2065), ValidSlots: []types.SlotKey{types.SlotAfternoon}},
		},
	}
}

func lisbonDay(label string) types.Day {
	return types.Day{Label: label, City: "Lisbon", Slots: types.EmptySlots()}
}

type serviceFixture struct {
	service *ServiceImpl
	repo    *MockRepository
	catalog *MockCatalog
	cache   *cache.MemoryCache
	userID  uuid.UUID
	id      uuid.UUID
	stamp   time.Time
}

func setupItineraryServiceTest() *serviceFixture {
	repo := new(MockRepository)
	cat := new(MockCatalog)
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	return &serviceFixture{
		service: NewServiceImpl(repo, cat, c, "Lisbon", slog.Default()),
		repo:    repo,
		catalog: cat,
		cache:   c,
		userID:  uuid.New(),
		id:      uuid.New(),
		stamp:   time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (f *serviceFixture) stored(days types.Store) *types.Itinerary {
	return &types.Itinerary{ID: f.id, UserID: f.userID, Name: "Portugal", Days: days, UpdatedAt: f.stamp}
}

func TestServiceCreate(t *testing.T) {
	t.Run("Seeds one day in the default city", func(t *testing.T) {
		f := setupItineraryServiceTest()
		f.repo.On("Create", mock.Anything, mock.MatchedBy(func(it *types.Itinerary) bool {
			return it.Name == "Summer" && len(it.Days) == 1 && it.Days[0].City == "Lisbon" && it.Days[0].Label == "Day 1"
		})).Return(func(it *types.Itinerary) *types.Itinerary { it.ID = f.id; return it }, nil).Once()

		it, err := f.service.Create(context.Background(), f.userID, types.CreateItineraryRequest{Name: "  Summer "})

		require.NoError(t, err)
		assert.Equal(t, f.id, it.ID)
		assert.Len(t, it.Days[0].Slots, len(types.SlotOrder))
		f.repo.AssertExpectations(t)
	})

	t.Run("Normalizes legacy days", func(t *testing.T) {
		f := setupItineraryServiceTest()
		legacy := types.Store{{Label: "Old", Items: []types.ScheduledActivity{{Title: "Belém Tower"}}}}
		f.repo.On("Create", mock.Anything, mock.MatchedBy(func(it *types.Itinerary) bool {
			d := it.Days[0]
			return d.Shape() == types.DayShapeSlotted && d.Items == nil && len(d.Slots[types.SlotMorning]) == 1
		})).Return(func(it *types.Itinerary) *types.Itinerary { return it }, nil).Once()

		_, err := f.service.Create(context.Background(), f.userID, types.CreateItineraryRequest{Name: "Trip", Days: legacy})

		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})

	t.Run("Unknown slot key", func(t *testing.T) {
		f := setupItineraryServiceTest()
		days := types.Store{{City: "Lisbon", Slots: types.Slots{"night": {{Title: "Bairro Alto"}}}}}
		_, err := f.service.Create(context.Background(), f.userID, types.CreateItineraryRequest{Name: "Trip", Days: days})
		assert.ErrorIs(t, err, planner.ErrInvalidSlot)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Blank name", func(t *testing.T) {
		f := setupItineraryServiceTest()
		_, err := f.service.Create(context.Background(), f.userID, types.CreateItineraryRequest{Name: "  "})
		assert.ErrorIs(t, err, types.ErrInvalidInput)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestServiceMoveActivity(t *testing.T) {
	t.Run("Moves across days", func(t *testing.T) {
		f := setupItineraryServiceTest()
		d1, d2 := lisbonDay("Day 1"), lisbonDay("Day 2")
		d1.Slots[types.SlotMorning] = []types.ScheduledActivity{{Title: "Belém Tower"}}
		f.repo.On("Get", mock.Anything, f.userID, f.id).Return(f.stored(types.Store{d1, d2}), nil).Once()
		f.catalog.On("Snapshot", mock.Anything, []string{"Lisbon", "Lisbon"}).Return(lisbon(), nil).Once()
		f.repo.On("UpdateDays", mock.Anything, f.userID, f.id, mock.MatchedBy(func(days types.Store) bool {
			return len(days[0].Slots[types.SlotMorning]) == 0 &&
				len(days[1].Slots[types.SlotLunch]) == 1 &&
				days[1].Slots[types.SlotLunch][0].Title == "Belém Tower"
		}), f.stamp).Return(nil, nil).Once()

		it, err := f.service.MoveActivity(context.Background(), f.userID, f.id, types.MoveIntent{
			Source:      types.SlotPosition{DayIdx: 0, Slot: types.SlotMorning, Index: 0},
			Destination: &types.SlotPosition{DayIdx: 1, Slot: types.SlotLunch, Index: 0},
		})

		require.NoError(t, err)
		assert.Equal(t, "Belém Tower", it.Days[1].Slots[types.SlotLunch][0].Title)
		f.repo.AssertExpectations(t)
		f.catalog.AssertExpectations(t)
	})

	t.Run("Veto leaves the itinerary unsaved", func(t *testing.T) {
		f := setupItineraryServiceTest()
		d1 := lisbonDay("Day 1")
		d1.Slots[types.SlotAfternoon] = []types.ScheduledActivity{{Title: "Jerónimos Monastery"}}
		f.repo.On("Get", mock.Anything, f.userID, f.id).Return(f.stored(types.Store{d1}), nil).Once()
		f.catalog.On("Snapshot", mock.Anything, mock.Anything).Return(lisbon(), nil).Once()

		_, err := f.service.MoveActivity(context.Background(), f.userID, f.id, types.MoveIntent{
			Source:      types.SlotPosition{DayIdx: 0, Slot: types.SlotAfternoon, Index: 0},
			Destination: &types.SlotPosition{DayIdx: 0, Slot: types.SlotMorning, Index: 0},
		})

		var violation *planner.SlotConstraintViolation
		require.ErrorAs(t, err, &violation)
		assert.Equal(t, types.SlotMorning, violation.Slot)
		assert.ErrorIs(t, err, planner.ErrSlotConstraint)
		f.repo.AssertNotCalled(t, "UpdateDays", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Concurrent update surfaces", func(t *testing.T) {
		f := setupItineraryServiceTest()
		d1 := lisbonDay("Day 1")
		d1.Slots[types.SlotMorning] = []types.ScheduledActivity{{Title: "A"}, {Title: "B"}}
		f.repo.On("Get", mock.Anything, f.userID, f.id).Return(f.stored(types.Store{d1}), nil).Once()
		f.catalog.On("Snapshot", mock.Anything, mock.Anything).Return(lisbon(), nil).Once()
		f.repo.On("UpdateDays", mock.Anything, f.userID, f.id, mock.Anything, f.stamp).Return(nil, types.ErrConcurrentUpdate).Once()

		_, err := f.service.MoveActivity(context.Background(), f.userID, f.id, types.MoveIntent{
			Source:      types.SlotPosition{DayIdx: 0, Slot: types.SlotMorning, Index: 0},
			Destination: &types.SlotPosition{DayIdx: 0, Slot: types.SlotMorning, Index: 1},
		})

		assert.ErrorIs(t, err, types.ErrConcurrentUpdate)
	})
}

func TestServiceSelectCatalogActivity(t *testing.T) {
	t.Run("Unknown title", func(t *testing.T) {
		f := setupItineraryServiceTest()
		d1 := lisbonDay("Day 1")
		d1.Slots[types.SlotMorning] = []types.ScheduledActivity{{Title: "Custom"}}
		f.repo.On("Get", mock.Anything, f.userID, f.id).Return(f.stored(types.Store{d1}), nil).Once()
		f.catalog.On("Snapshot", mock.Anything, mock.Anything).Return(lisbon(), nil).Once()

		_, err := f.service.SelectCatalogActivity(context.Background(), f.userID, f.id, 0, types.SlotMorning, 0, "Eiffel Tower")

		assert.ErrorIs(t, err, types.ErrActivityNotFound)
	})

	t.Run("Copies catalog fields", func(t *testing.T) {
		f := setupItineraryServiceTest()
		d1 := lisbonDay("Day 1")
		d1.Slots[types.SlotLunch] = []types.ScheduledActivity{{Title: "Custom", Notes: "keep"}}
		f.repo.On("Get", mock.Anything, f.userID, f.id).Return(f.stored(types.Store{d1}), nil).Once()
		f.catalog.On("Snapshot", mock.Anything, mock.Anything).Return(lisbon(), nil).Once()
		f.repo.On("UpdateDays", mock.Anything, f.userID, f.id, mock.Anything, f.stamp).Return(nil, nil).Once()

		it, err := f.service.SelectCatalogActivity(context.Background(), f.userID, f.id, 0, types.SlotLunch, 0, "Time Out Market")

		require.NoError(t, err)
		got := it.Days[0].Slots[types.SlotLunch][0]
		assert.Equal(t, "Time Out Market", got.Title)
		require.NotNil(t, got.Lat)
		assert.InDelta(t, 38.7069, *got.Lat, 1e-9)
	})
}

func TestServiceOptimizeDay(t *testing.T) {
	f := setupItineraryServiceTest()
	d1 := lisbonDay("Day 1")
	d1.Slots[types.SlotMorning] = []types.ScheduledActivity{{Title: "Belém Tower", Lat: fp(38.6916), Lng: fp(-9.2160)}}
	f.repo.On("Get", mock.Anything, f.userID, f.id).Return(f.stored(types.Store{d1}), nil).Once()
	f.catalog.On("Snapshot", mock.Anything, []string{"Lisbon"}).Return(lisbon(), nil).Once()
	f.repo.On("UpdateDays", mock.Anything, f.userID, f.id, mock.Anything, f.stamp).Return(nil, nil).Once()

	resp, err := f.service.OptimizeDay(context.Background(), f.userID, f.id, 0)

	require.NoError(t, err)
	slots := resp.Itinerary.Days[0].Slots
	assert.Equal(t, "Belém Tower", slots[types.SlotMorning][0].Title)
	assert.Equal(t, "Jerónimos Monastery", slots[types.SlotAfternoon][0].Title)
	assert.NotNil(t, resp.Dropped)
	assert.Empty(t, resp.Dropped)
}

func TestServiceTemplates(t *testing.T) {
	tpl := types.DayTemplate{City: "Lisbon", Label: "Classic", Slots: types.Slots{
		types.SlotMorning: {{Title: "Belém Tower"}},
	}}

	t.Run("Append labels days sequentially", func(t *testing.T) {
		f := setupItineraryServiceTest()
		f.catalog.On("Templates", mock.Anything, "Lisbon").Return([]types.DayTemplate{tpl, tpl}, nil).Once()
		f.repo.On("Get", mock.Anything, f.userID, f.id).Return(f.stored(types.Store{lisbonDay("Day 1")}), nil).Once()
		f.repo.On("UpdateDays", mock.Anything, f.userID, f.id, mock.Anything, f.stamp).Return(nil, nil).Once()

		it, err := f.service.AppendTemplateDays(context.Background(), f.userID, f.id, "Lisbon")

		require.NoError(t, err)
		require.Len(t, it.Days, 3)
		assert.Equal(t, "Day 2", it.Days[1].Label)
		assert.Equal(t, "Day 3", it.Days[2].Label)
	})

	t.Run("City without templates", func(t *testing.T) {
		f := setupItineraryServiceTest()
		f.catalog.On("Templates", mock.Anything, "Faro").Return([]types.DayTemplate{}, nil).Once()

		_, err := f.service.AppendTemplateDays(context.Background(), f.userID, f.id, "Faro")

		assert.ErrorIs(t, err, types.ErrTemplateNotFound)
	})

	t.Run("Apply unknown template index", func(t *testing.T) {
		f := setupItineraryServiceTest()
		f.repo.On("Get", mock.Anything, f.userID, f.id).Return(f.stored(types.Store{lisbonDay("Day 1")}), nil).Once()
		f.catalog.On("Templates", mock.Anything, "Lisbon").Return([]types.DayTemplate{tpl}, nil).Once()

		_, err := f.service.ApplyTemplate(context.Background(), f.userID, f.id, 0, 3)

		assert.ErrorIs(t, err, types.ErrTemplateNotFound)
	})
}

func TestServiceRouteCache(t *testing.T) {
	f := setupItineraryServiceTest()
	ctx := context.Background()
	d1 := lisbonDay("Day 1")
	d1.Slots[types.SlotMorning] = []types.ScheduledActivity{{Title: "Belém Tower", Lat: fp(38.6916), Lng: fp(-9.2160)}}
	d1.Slots[types.SlotAfternoon] = []types.ScheduledActivity{{Title: "Jerónimos Monastery", Lat: fp(38.6979), Lng: fp(-9.2065)}}
	f.repo.On("Get", mock.Anything, f.userID, f.id).Return(f.stored(types.Store{d1}), nil)

	route, err := f.service.Route(ctx, f.userID, f.id, 0, types.TransportWalking)
	require.NoError(t, err)
	require.Len(t, route.Legs, 1)
	assert.Greater(t, route.DistanceKm, 0.0)

	var cached types.RouteSummary
	require.NoError(t, f.cache.Get(ctx, routeKey(f.id, 0, types.TransportWalking, f.stamp), &cached))
	assert.Equal(t, *route, cached)

	f.repo.On("UpdateDays", mock.Anything, f.userID, f.id, mock.Anything, f.stamp).Return(nil, nil).Once()
	_, err = f.service.RemoveActivity(ctx, f.userID, f.id, 0, types.SlotAfternoon, 0)
	require.NoError(t, err)

	err = f.cache.Get(ctx, routeKey(f.id, 0, types.TransportWalking, f.stamp), &cached)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestServiceRouteIgnoresSupersededEntry(t *testing.T) {
	f := setupItineraryServiceTest()
	ctx := context.Background()
	d1 := lisbonDay("Day 1")
	d1.Slots[types.SlotMorning] = []types.ScheduledActivity{{Title: "Belém Tower", Lat: fp(38.6916), Lng: fp(-9.2160)}}
	d1.Slots[types.SlotAfternoon] = []types.ScheduledActivity{{Title: "Jerónimos Monastery", Lat: fp(38.6979), Lng: fp(-9.2065)}}

	// A summary written by a reader that loaded the row before the latest save.
	stale := types.RouteSummary{Mode: types.TransportWalking, DistanceKm: 999}
	require.NoError(t, f.cache.Set(ctx, routeKey(f.id, 0, types.TransportWalking, f.stamp.Add(-time.Second)), stale, 0))
	f.repo.On("Get", mock.Anything, f.userID, f.id).Return(f.stored(types.Store{d1}), nil)

	route, err := f.service.Route(ctx, f.userID, f.id, 0, types.TransportWalking)

	require.NoError(t, err)
	assert.NotEqual(t, 999.0, route.DistanceKm)
	require.Len(t, route.Legs, 1)
}

func TestServiceReplaceDays(t *testing.T) {
	t.Run("Unknown slot key is rejected", func(t *testing.T) {
		f := setupItineraryServiceTest()
		days := types.Store{{City: "Lisbon", Slots: types.Slots{
			types.SlotMorning: {{Title: "Belém Tower"}},
			"night":           {{Title: "Bairro Alto"}},
		}}}

		_, err := f.service.ReplaceDays(context.Background(), f.userID, f.id, days)

		assert.ErrorIs(t, err, planner.ErrInvalidSlot)
		f.repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
		f.repo.AssertNotCalled(t, "UpdateDays", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Legacy days take the configured city", func(t *testing.T) {
		f := setupItineraryServiceTest()
		f.service = NewServiceImpl(f.repo, f.catalog, f.cache, "Porto", slog.Default())
		f.repo.On("Get", mock.Anything, f.userID, f.id).Return(f.stored(types.Store{lisbonDay("Day 1")}), nil).Once()
		f.repo.On("UpdateDays", mock.Anything, f.userID, f.id, mock.Anything, f.stamp).Return(nil, nil).Once()

		it, err := f.service.ReplaceDays(context.Background(), f.userID, f.id, types.Store{{Label: "Imported"}})

		require.NoError(t, err)
		assert.Equal(t, "Porto", it.Days[0].City)
	})
}

func TestServiceReadsUseConfiguredCity(t *testing.T) {
	f := setupItineraryServiceTest()
	f.service = NewServiceImpl(f.repo, f.catalog, f.cache, "Porto", slog.Default())
	legacy := types.Store{{Label: "Old", Items: []types.ScheduledActivity{{Title: "Livraria Lello"}}}}
	f.repo.On("Get", mock.Anything, f.userID, f.id).Return(f.stored(legacy), nil)
	f.repo.On("List", mock.Anything, f.userID).Return([]types.Itinerary{*f.stored(legacy)}, nil).Once()
	f.repo.On("UpdateDays", mock.Anything, f.userID, f.id, mock.MatchedBy(func(days types.Store) bool {
		return len(days) == 2 && days[0].City == "Porto"
	}), f.stamp).Return(nil, nil).Once()

	it, err := f.service.Get(context.Background(), f.userID, f.id)
	require.NoError(t, err)
	assert.Equal(t, "Porto", it.Days[0].City)
	assert.Empty(t, legacy[0].City, "stored row must not be modified")

	list, err := f.service.List(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, "Porto", list[0].Days[0].City)

	_, err = f.service.AddDay(context.Background(), f.userID, f.id, types.AddDayRequest{Label: "Day 2"})
	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestServiceSuggestions(t *testing.T) {
	f := setupItineraryServiceTest()
	d1 := lisbonDay("Day 1")
	d1.Slots[types.SlotMorning] = []types.ScheduledActivity{{Title: "Belém Tower"}}
	f.repo.On("Get", mock.Anything, f.userID, f.id).Return(f.stored(types.Store{d1}), nil)
	f.catalog.On("Snapshot", mock.Anything, []string{"Lisbon"}).Return(lisbon(), nil)

	first, err := f.service.Suggestions(context.Background(), f.userID, f.id, 0)
	require.NoError(t, err)
	second, err := f.service.Suggestions(context.Background(), f.userID, f.id, 0)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.NotEmpty(t, first)
	assert.Equal(t, types.SuggestionFillGap, first[0].Kind)

	_, err = f.service.Suggestions(context.Background(), f.userID, f.id, 5)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestServiceOutOfRangeDayIsNoop(t *testing.T) {
	f := setupItineraryServiceTest()
	store := types.Store{lisbonDay("Day 1")}
	f.repo.On("Get", mock.Anything, f.userID, f.id).Return(f.stored(store), nil).Once()
	f.repo.On("UpdateDays", mock.Anything, f.userID, f.id, store, f.stamp).Return(nil, nil).Once()

	it, err := f.service.RemoveActivity(context.Background(), f.userID, f.id, 7, types.SlotMorning, 0)

	require.NoError(t, err)
	assert.Equal(t, store, it.Days)
	f.repo.AssertExpectations(t)
}
