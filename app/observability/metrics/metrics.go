package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	ItineraryMutationsTotal       metric.Int64Counter
	SlotConstraintViolationsTotal metric.Int64Counter
	DayOptimizeDurationSeconds    metric.Float64Histogram
	CatalogCacheHitsTotal         metric.Int64Counter
	CatalogCacheMissesTotal       metric.Int64Counter
	DbQueryDurationSeconds        metric.Float64Histogram
	DbQueryErrorsTotal            metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments once, from the global MeterProvider. When no provider
// was installed the otel no-op meter is used, which keeps tests free of setup.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("go-trip-planner")
		var err error
		m := &AppMetrics{}

		m.ItineraryMutationsTotal, err = meter.Int64Counter(
			"itinerary_mutations_total",
			metric.WithDescription("Total number of applied itinerary mutations"),
			metric.WithUnit("{mutation}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_mutations_total: %v", err)
		}

		m.SlotConstraintViolationsTotal, err = meter.Int64Counter(
			"slot_constraint_violations_total",
			metric.WithDescription("Total number of rejected placements into a forbidden slot"),
			metric.WithUnit("{violation}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create slot_constraint_violations_total: %v", err)
		}

		m.DayOptimizeDurationSeconds, err = meter.Float64Histogram(
			"day_optimize_duration_seconds",
			metric.WithDescription("Duration of day optimization in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create day_optimize_duration_seconds: %v", err)
		}

		m.CatalogCacheHitsTotal, err = meter.Int64Counter(
			"catalog_cache_hits_total",
			metric.WithDescription("Catalog lookups served from cache"),
			metric.WithUnit("{hit}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create catalog_cache_hits_total: %v", err)
		}

		m.CatalogCacheMissesTotal, err = meter.Int64Counter(
			"catalog_cache_misses_total",
			metric.WithDescription("Catalog lookups that went to the database"),
			metric.WithUnit("{miss}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create catalog_cache_misses_total: %v", err)
		}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the global instruments, initialising them on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
