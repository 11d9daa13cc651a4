package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner/app/cache"
	"github.com/FACorreiaa/go-trip-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-planner/internal/planner"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Catalog is the part of the catalog service the itinerary editor needs.
type Catalog interface {
	Snapshot(ctx context.Context, cities []string) (planner.StaticCatalog, error)
	Templates(ctx context.Context, city string) ([]types.DayTemplate, error)
}

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req types.CreateItineraryRequest) (*types.Itinerary, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*types.Itinerary, error)
	List(ctx context.Context, userID uuid.UUID) ([]types.Itinerary, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	ReplaceDays(ctx context.Context, userID, id uuid.UUID, days types.Store) (*types.Itinerary, error)
	Summary(ctx context.Context, userID, id uuid.UUID) (*types.ItinerarySummary, error)

	AddDay(ctx context.Context, userID, id uuid.UUID, req types.AddDayRequest) (*types.Itinerary, error)
	RemoveDay(ctx context.Context, userID, id uuid.UUID, dayIdx int) (*types.Itinerary, error)
	UpdateDay(ctx context.Context, userID, id uuid.UUID, dayIdx int, req types.UpdateDayRequest) (*types.Itinerary, error)
	AppendTemplateDays(ctx context.Context, userID, id uuid.UUID, city string) (*types.Itinerary, error)
	ApplyTemplate(ctx context.Context, userID, id uuid.UUID, dayIdx, templateIdx int) (*types.Itinerary, error)

	AddActivity(ctx context.Context, userID, id uuid.UUID, dayIdx int, slot types.SlotKey, activity types.ScheduledActivity) (*types.Itinerary, error)
	RemoveActivity(ctx context.Context, userID, id uuid.UUID, dayIdx int, slot types.SlotKey, index int) (*types.Itinerary, error)
	UpdateActivityField(ctx context.Context, userID, id uuid.UUID, dayIdx int, slot types.SlotKey, index int, field, value string) (*types.Itinerary, error)
	SelectCatalogActivity(ctx context.Context, userID, id uuid.UUID, dayIdx int, slot types.SlotKey, index int, title string) (*types.Itinerary, error)
	MoveActivity(ctx context.Context, userID, id uuid.UUID, intent types.MoveIntent) (*types.Itinerary, error)

	OptimizeDay(ctx context.Context, userID, id uuid.UUID, dayIdx int) (*types.OptimizeDayResponse, error)
	Suggestions(ctx context.Context, userID, id uuid.UUID, dayIdx int) ([]types.Suggestion, error)
	Route(ctx context.Context, userID, id uuid.UUID, dayIdx int, mode types.TransportMode) (*types.RouteSummary, error)
}

type ServiceImpl struct {
	logger      *slog.Logger
	repo        Repository
	catalog     Catalog
	cache       cache.Cache
	defaultCity string
}

func NewServiceImpl(repo Repository, catalog Catalog, c cache.Cache, defaultCity string, logger *slog.Logger) *ServiceImpl {
	if defaultCity == "" {
		defaultCity = planner.DefaultCity()
	}
	return &ServiceImpl{
		logger:      logger,
		repo:        repo,
		catalog:     catalog,
		cache:       c,
		defaultCity: defaultCity,
	}
}

// allDays marks a mutation that can shift day indices.
var allDays []int

// editFunc transforms a store. cat is nil unless the caller asked for the catalog.
type editFunc func(store types.Store, cat planner.Catalog) (types.Store, error)

// mutate loads the itinerary, applies fn, persists the result and drops cached routes of the
// touched days. A nil touched slice drops every cached route of the itinerary.
func (s *ServiceImpl) mutate(ctx context.Context, op string, userID, id uuid.UUID, withCatalog bool, touched func(types.Store) []int, fn editFunc) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, op, trace.WithAttributes(
		attribute.String("itinerary.id", id.String()),
		attribute.String("user.id", userID.String()),
	))
	defer span.End()
	l := s.logger.With(slog.String("method", op), slog.String("itineraryID", id.String()))

	it, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return nil, err
	}
	store := s.normalize(it.Days)

	var cat planner.Catalog
	if withCatalog {
		snap, err := s.catalog.Snapshot(ctx, citiesOf(store))
		if err != nil {
			l.ErrorContext(ctx, "Failed to load catalog", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "catalog failed")
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		cat = snap
	}

	next, err := fn(store, cat)
	if err != nil {
		var violation *planner.SlotConstraintViolation
		if errors.As(err, &violation) {
			metrics.Get().SlotConstraintViolationsTotal.Add(ctx, 1, metric.WithAttributes(
				attribute.String("slot", string(violation.Slot)),
			))
			l.InfoContext(ctx, "Placement vetoed", slog.String("title", violation.Title), slog.String("slot", string(violation.Slot)))
		} else {
			l.WarnContext(ctx, "Edit rejected", slog.Any("error", err))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "edit rejected")
		return nil, err
	}

	var days []int
	if touched != nil {
		days = touched(store)
	}

	saved, err := s.repo.UpdateDays(ctx, userID, id, next, it.UpdatedAt)
	if err != nil {
		l.ErrorContext(ctx, "Failed to save itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return nil, err
	}

	s.invalidateRoutes(ctx, id, days)
	metrics.Get().ItineraryMutationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
	l.DebugContext(ctx, "Itinerary updated", slog.Int("days", len(saved.Days)))
	span.SetStatus(codes.Ok, "updated")
	return saved, nil
}

func only(days ...int) func(types.Store) []int {
	return func(types.Store) []int { return days }
}

func citiesOf(store types.Store) []string {
	out := make([]string, 0, len(store))
	for _, d := range store {
		out = append(out, d.City)
	}
	return out
}

func routeKeyPrefix(id uuid.UUID) string {
	return fmt.Sprintf("route:%s:", id)
}

// routeKey includes the itinerary version so a summary computed from a superseded load is
// never served once the row has moved on.
func routeKey(id uuid.UUID, dayIdx int, mode types.TransportMode, version time.Time) string {
	return fmt.Sprintf("route:%s:%d:%s:%d", id, dayIdx, mode, version.UnixNano())
}

func (s *ServiceImpl) invalidateRoutes(ctx context.Context, id uuid.UUID, days []int) {
	var err error
	if days == nil {
		err = s.cache.DeletePrefix(ctx, routeKeyPrefix(id))
	} else {
		for _, d := range days {
			if e := s.cache.DeletePrefix(ctx, fmt.Sprintf("%s%d:", routeKeyPrefix(id), d)); e != nil {
				err = e
			}
		}
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to invalidate route cache", slog.String("itineraryID", id.String()), slog.Any("error", err))
	}
}

func (s *ServiceImpl) Create(ctx context.Context, userID uuid.UUID, req types.CreateItineraryRequest) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Create", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", types.ErrInvalidInput)
	}
	if err := planner.ValidateSlots(req.Days); err != nil {
		span.RecordError(err)
		return nil, err
	}
	days := s.normalize(req.Days)
	if len(days) == 0 {
		days = planner.AddDay(days, "", s.defaultCity)
	}

	created, err := s.repo.Create(ctx, &types.Itinerary{
		UserID:    userID,
		Name:      name,
		StartDate: req.StartDate,
		Days:      days,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return nil, err
	}
	s.logger.InfoContext(ctx, "Itinerary created", slog.String("itineraryID", created.ID.String()))
	span.SetStatus(codes.Ok, "created")
	return created, nil
}

// normalize resolves legacy days with the configured default city.
func (s *ServiceImpl) normalize(days types.Store) types.Store {
	return planner.NormalizeIn(days, s.defaultCity)
}

func (s *ServiceImpl) Get(ctx context.Context, userID, id uuid.UUID) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Get", trace.WithAttributes(
		attribute.String("itinerary.id", id.String()),
	))
	defer span.End()

	it, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	it.Days = s.normalize(it.Days)
	return it, nil
}

func (s *ServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "List", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	list, err := s.repo.List(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	for i := range list {
		list[i].Days = s.normalize(list[i].Days)
	}
	span.SetAttributes(attribute.Int("itineraries.count", len(list)))
	return list, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, userID, id uuid.UUID) error {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Delete", trace.WithAttributes(
		attribute.String("itinerary.id", id.String()),
	))
	defer span.End()

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		span.RecordError(err)
		return err
	}
	s.invalidateRoutes(ctx, id, allDays)
	return nil
}

func (s *ServiceImpl) ReplaceDays(ctx context.Context, userID, id uuid.UUID, days types.Store) (*types.Itinerary, error) {
	if err := planner.ValidateSlots(days); err != nil {
		s.logger.WarnContext(ctx, "Rejected imported days", slog.String("itineraryID", id.String()), slog.Any("error", err))
		return nil, err
	}
	return s.mutate(ctx, "ReplaceDays", userID, id, false, nil, func(types.Store, planner.Catalog) (types.Store, error) {
		return s.normalize(days), nil
	})
}

func (s *ServiceImpl) Summary(ctx context.Context, userID, id uuid.UUID) (*types.ItinerarySummary, error) {
	it, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	summary := planner.SummarizeStore(it.Days)
	return &summary, nil
}

func (s *ServiceImpl) AddDay(ctx context.Context, userID, id uuid.UUID, req types.AddDayRequest) (*types.Itinerary, error) {
	city := req.City
	if city == "" {
		city = s.defaultCity
	}
	return s.mutate(ctx, "AddDay", userID, id, false, func(store types.Store) []int { return []int{len(store)} },
		func(store types.Store, _ planner.Catalog) (types.Store, error) {
			return planner.AddDay(store, req.Label, city), nil
		})
}

func (s *ServiceImpl) RemoveDay(ctx context.Context, userID, id uuid.UUID, dayIdx int) (*types.Itinerary, error) {
	return s.mutate(ctx, "RemoveDay", userID, id, false, nil, func(store types.Store, _ planner.Catalog) (types.Store, error) {
		return planner.RemoveDay(store, dayIdx), nil
	})
}

func (s *ServiceImpl) UpdateDay(ctx context.Context, userID, id uuid.UUID, dayIdx int, req types.UpdateDayRequest) (*types.Itinerary, error) {
	return s.mutate(ctx, "UpdateDay", userID, id, false, only(dayIdx), func(store types.Store, _ planner.Catalog) (types.Store, error) {
		return planner.UpdateDay(store, dayIdx, planner.DayUpdate{Label: req.Label, City: req.City, Date: req.Date}), nil
	})
}

func (s *ServiceImpl) AppendTemplateDays(ctx context.Context, userID, id uuid.UUID, city string) (*types.Itinerary, error) {
	templates, err := s.catalog.Templates(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("%w: no templates for %s", types.ErrTemplateNotFound, city)
	}
	return s.mutate(ctx, "AppendTemplateDays", userID, id, false, nil, func(store types.Store, _ planner.Catalog) (types.Store, error) {
		return planner.AppendTemplateDays(store, city, templates), nil
	})
}

func (s *ServiceImpl) ApplyTemplate(ctx context.Context, userID, id uuid.UUID, dayIdx, templateIdx int) (*types.Itinerary, error) {
	it, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if dayIdx < 0 || dayIdx >= len(it.Days) {
		return it, nil
	}
	city := it.Days[dayIdx].City
	templates, err := s.catalog.Templates(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	if templateIdx < 0 || templateIdx >= len(templates) {
		return nil, fmt.Errorf("%w: %s has no template %d", types.ErrTemplateNotFound, city, templateIdx)
	}
	tpl := templates[templateIdx]
	return s.mutate(ctx, "ApplyTemplate", userID, id, false, only(dayIdx), func(store types.Store, _ planner.Catalog) (types.Store, error) {
		return planner.ApplyTemplate(store, dayIdx, tpl), nil
	})
}

func (s *ServiceImpl) AddActivity(ctx context.Context, userID, id uuid.UUID, dayIdx int, slot types.SlotKey, activity types.ScheduledActivity) (*types.Itinerary, error) {
	return s.mutate(ctx, "AddActivity", userID, id, false, only(dayIdx), func(store types.Store, _ planner.Catalog) (types.Store, error) {
		return planner.AddActivity(store, dayIdx, slot, activity)
	})
}

func (s *ServiceImpl) RemoveActivity(ctx context.Context, userID, id uuid.UUID, dayIdx int, slot types.SlotKey, index int) (*types.Itinerary, error) {
	return s.mutate(ctx, "RemoveActivity", userID, id, false, only(dayIdx), func(store types.Store, _ planner.Catalog) (types.Store, error) {
		return planner.RemoveActivity(store, dayIdx, slot, index)
	})
}

func (s *ServiceImpl) UpdateActivityField(ctx context.Context, userID, id uuid.UUID, dayIdx int, slot types.SlotKey, index int, field, value string) (*types.Itinerary, error) {
	return s.mutate(ctx, "UpdateActivityField", userID, id, false, only(dayIdx), func(store types.Store, _ planner.Catalog) (types.Store, error) {
		return planner.UpdateActivityField(store, dayIdx, slot, index, planner.ActivityField(field), value)
	})
}

func (s *ServiceImpl) SelectCatalogActivity(ctx context.Context, userID, id uuid.UUID, dayIdx int, slot types.SlotKey, index int, title string) (*types.Itinerary, error) {
	return s.mutate(ctx, "SelectCatalogActivity", userID, id, true, only(dayIdx), func(store types.Store, cat planner.Catalog) (types.Store, error) {
		if dayIdx < 0 || dayIdx >= len(store) {
			return store, nil
		}
		act, ok := planner.FindActivity(cat, store[dayIdx].City, title)
		if !ok {
			return store, fmt.Errorf("%w: %q in %s", types.ErrActivityNotFound, title, store[dayIdx].City)
		}
		return planner.SelectCatalogActivity(store, dayIdx, slot, index, act)
	})
}

func (s *ServiceImpl) MoveActivity(ctx context.Context, userID, id uuid.UUID, intent types.MoveIntent) (*types.Itinerary, error) {
	touched := only(intent.Source.DayIdx)
	if intent.Destination != nil {
		touched = only(intent.Source.DayIdx, intent.Destination.DayIdx)
	}
	return s.mutate(ctx, "MoveActivity", userID, id, true, touched, func(store types.Store, cat planner.Catalog) (types.Store, error) {
		return planner.MoveActivity(store, cat, intent.Source, intent.Destination)
	})
}

func (s *ServiceImpl) OptimizeDay(ctx context.Context, userID, id uuid.UUID, dayIdx int) (*types.OptimizeDayResponse, error) {
	var dropped []types.ScheduledActivity
	start := time.Now()
	it, err := s.mutate(ctx, "OptimizeDay", userID, id, true, only(dayIdx), func(store types.Store, cat planner.Catalog) (types.Store, error) {
		var next types.Store
		next, dropped = planner.OptimizeDay(store, dayIdx, cat)
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	metrics.Get().DayOptimizeDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if len(dropped) > 0 {
		s.logger.InfoContext(ctx, "Optimizer dropped activities",
			slog.String("itineraryID", id.String()), slog.Int("day", dayIdx), slog.Int("dropped", len(dropped)))
	}
	if dropped == nil {
		dropped = []types.ScheduledActivity{}
	}
	return &types.OptimizeDayResponse{Itinerary: it, Dropped: dropped}, nil
}

func (s *ServiceImpl) Suggestions(ctx context.Context, userID, id uuid.UUID, dayIdx int) ([]types.Suggestion, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Suggestions", trace.WithAttributes(
		attribute.String("itinerary.id", id.String()),
		attribute.Int("day", dayIdx),
	))
	defer span.End()

	it, err := s.Get(ctx, userID, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if dayIdx < 0 || dayIdx >= len(it.Days) {
		return nil, fmt.Errorf("%w: day %d", types.ErrNotFound, dayIdx)
	}
	day := it.Days[dayIdx]
	cat, err := s.catalog.Snapshot(ctx, []string{day.City})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	suggestions := planner.Suggest(day, cat)
	span.SetAttributes(attribute.Int("suggestions.count", len(suggestions)))
	return suggestions, nil
}

func (s *ServiceImpl) Route(ctx context.Context, userID, id uuid.UUID, dayIdx int, mode types.TransportMode) (*types.RouteSummary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Route", trace.WithAttributes(
		attribute.String("itinerary.id", id.String()),
		attribute.Int("day", dayIdx),
		attribute.String("mode", string(mode)),
	))
	defer span.End()

	it, err := s.Get(ctx, userID, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if dayIdx < 0 || dayIdx >= len(it.Days) {
		return nil, fmt.Errorf("%w: day %d", types.ErrNotFound, dayIdx)
	}

	key := routeKey(id, dayIdx, mode, it.UpdatedAt)
	var summary types.RouteSummary
	if err := s.cache.Get(ctx, key, &summary); err == nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return &summary, nil
	}

	summary = planner.SummarizeDay(it.Days[dayIdx], dayIdx, mode)
	if err := s.cache.Set(ctx, key, summary, 0); err != nil {
		s.logger.WarnContext(ctx, "Failed to cache route", slog.String("key", key), slog.Any("error", err))
	}
	return &summary, nil
}
