package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-trip-planner/app/cache"
	"github.com/FACorreiaa/go-trip-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-planner/internal/planner"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the read side of the activity catalog.
type Service interface {
	Cities(ctx context.Context) ([]types.City, error)
	Activities(ctx context.Context, city string) ([]types.Activity, error)
	Templates(ctx context.Context, city string) ([]types.DayTemplate, error)
	Search(ctx context.Context, search types.ActivitySearch) ([]types.Activity, error)
	// Snapshot loads the catalogs of every given city concurrently into a planner.Catalog.
	Snapshot(ctx context.Context, cities []string) (planner.StaticCatalog, error)
	// Warm preloads every city's activities and templates into the cache.
	Warm(ctx context.Context) error
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	cache  cache.Cache
}

func NewServiceImpl(repo Repository, c cache.Cache, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		cache:  c,
	}
}

const (
	citiesKey          = "catalog:cities"
	activitiesKeyFmt   = "catalog:activities:%s"
	templatesKeyFmt    = "catalog:templates:%s"
	maxParallelLookups = 4
)

// cached reads key from the cache, falling back to load and storing its result.
func cached[T any](ctx context.Context, s *ServiceImpl, key string, load func(context.Context) (T, error)) (T, error) {
	var out T
	err := s.cache.Get(ctx, key, &out)
	if err == nil {
		metrics.Get().CatalogCacheHitsTotal.Add(ctx, 1)
		return out, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.WarnContext(ctx, "Catalog cache read failed", slog.String("key", key), slog.Any("error", err))
	}
	metrics.Get().CatalogCacheMissesTotal.Add(ctx, 1)

	out, err = load(ctx)
	if err != nil {
		return out, err
	}
	if err := s.cache.Set(ctx, key, out, 0); err != nil {
		s.logger.WarnContext(ctx, "Catalog cache write failed", slog.String("key", key), slog.Any("error", err))
	}
	return out, nil
}

func (s *ServiceImpl) Cities(ctx context.Context) ([]types.City, error) {
	ctx, span := otel.Tracer("CatalogService").Start(ctx, "Cities")
	defer span.End()

	cities, err := cached(ctx, s, citiesKey, s.repo.ListCities)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list cities failed")
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	if len(cities) == 0 {
		cities = planner.Cities
	}
	span.SetStatus(codes.Ok, "cities listed")
	return cities, nil
}

func (s *ServiceImpl) Activities(ctx context.Context, city string) ([]types.Activity, error) {
	ctx, span := otel.Tracer("CatalogService").Start(ctx, "Activities", trace.WithAttributes(
		attribute.String("city", city),
	))
	defer span.End()

	acts, err := cached(ctx, s, fmt.Sprintf(activitiesKeyFmt, city), func(ctx context.Context) ([]types.Activity, error) {
		return s.repo.ActivitiesByCity(ctx, city)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load activities", slog.String("city", city), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "load activities failed")
		return nil, fmt.Errorf("failed to load activities for %s: %w", city, err)
	}
	span.SetAttributes(attribute.Int("activities.count", len(acts)))
	return acts, nil
}

func (s *ServiceImpl) Templates(ctx context.Context, city string) ([]types.DayTemplate, error) {
	ctx, span := otel.Tracer("CatalogService").Start(ctx, "Templates", trace.WithAttributes(
		attribute.String("city", city),
	))
	defer span.End()

	templates, err := cached(ctx, s, fmt.Sprintf(templatesKeyFmt, city), func(ctx context.Context) ([]types.DayTemplate, error) {
		return s.repo.TemplatesByCity(ctx, city)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load templates failed")
		return nil, fmt.Errorf("failed to load templates for %s: %w", city, err)
	}
	return templates, nil
}

func (s *ServiceImpl) Search(ctx context.Context, search types.ActivitySearch) ([]types.Activity, error) {
	ctx, span := otel.Tracer("CatalogService").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("city", search.City),
		attribute.String("query", search.Query),
	))
	defer span.End()

	acts, err := s.repo.SearchActivities(ctx, search)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, fmt.Errorf("failed to search activities: %w", err)
	}
	return acts, nil
}

func (s *ServiceImpl) Snapshot(ctx context.Context, cities []string) (planner.StaticCatalog, error) {
	ctx, span := otel.Tracer("CatalogService").Start(ctx, "Snapshot", trace.WithAttributes(
		attribute.StringSlice("cities", cities),
	))
	defer span.End()

	var mu sync.Mutex
	snap := make(planner.StaticCatalog, len(cities))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLookups)
	for _, city := range uniqueCities(cities) {
		g.Go(func() error {
			acts, err := s.Activities(gctx, city)
			if err != nil {
				return err
			}
			mu.Lock()
			snap[city] = acts
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot failed")
		return nil, err
	}
	return snap, nil
}

func (s *ServiceImpl) Warm(ctx context.Context) error {
	cities, err := s.Cities(ctx)
	if err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLookups)
	for _, c := range cities {
		g.Go(func() error {
			if _, err := s.Activities(gctx, c.Name); err != nil {
				return err
			}
			_, err := s.Templates(gctx, c.Name)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to warm catalog cache: %w", err)
	}
	s.logger.InfoContext(ctx, "Catalog cache warmed", slog.Int("cities", len(cities)))
	return nil
}

func uniqueCities(cities []string) []string {
	seen := make(map[string]bool, len(cities))
	out := make([]string, 0, len(cities))
	for _, c := range cities {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
