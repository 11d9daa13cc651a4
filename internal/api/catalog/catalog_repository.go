package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	database "github.com/FACorreiaa/go-trip-planner/app/db"
	"github.com/FACorreiaa/go-trip-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	ListCities(ctx context.Context) ([]types.City, error)
	ActivitiesByCity(ctx context.Context, city string) ([]types.Activity, error)
	TemplatesByCity(ctx context.Context, city string) ([]types.DayTemplate, error)
	SearchActivities(ctx context.Context, search types.ActivitySearch) ([]types.Activity, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool database.DBTX
}

func NewRepositoryImpl(pgpool database.DBTX, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

const activityColumns = `id, city, title, description, latitude, longitude, valid_slots, image_url, website, rating, category`

func observe(ctx context.Context, query string, start time.Time, err error) {
	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("query", query))
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		m.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}

func (r *RepositoryImpl) ListCities(ctx context.Context) (cities []types.City, err error) {
	defer func(start time.Time) { observe(ctx, "list_cities", start, err) }(time.Now())

	rows, err := r.pgpool.Query(ctx, `SELECT name, latitude, longitude FROM cities ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c types.City
		if err = rows.Scan(&c.Name, &c.Lat, &c.Lng); err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		cities = append(cities, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cities: %w", err)
	}
	return cities, nil
}

func (r *RepositoryImpl) ActivitiesByCity(ctx context.Context, city string) (acts []types.Activity, err error) {
	defer func(start time.Time) { observe(ctx, "activities_by_city", start, err) }(time.Now())

	rows, err := r.pgpool.Query(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE city = $1 ORDER BY position, title`, city)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities for %s: %w", city, err)
	}
	defer rows.Close()

	acts, err = scanActivities(rows)
	if err != nil {
		return nil, err
	}
	r.logger.DebugContext(ctx, "Loaded activities", slog.String("city", city), slog.Int("count", len(acts)))
	return acts, nil
}

func (r *RepositoryImpl) TemplatesByCity(ctx context.Context, city string) (templates []types.DayTemplate, err error) {
	defer func(start time.Time) { observe(ctx, "templates_by_city", start, err) }(time.Now())

	rows, err := r.pgpool.Query(ctx,
		`SELECT id, city, label, slots FROM day_templates WHERE city = $1 ORDER BY position, label`, city)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates for %s: %w", city, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t   types.DayTemplate
			raw []byte
		)
		if err = rows.Scan(&t.ID, &t.City, &t.Label, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		if err = json.Unmarshal(raw, &t.Slots); err != nil {
			return nil, fmt.Errorf("failed to decode slots of template %q: %w", t.Label, err)
		}
		templates = append(templates, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating templates: %w", err)
	}
	return templates, nil
}

func (r *RepositoryImpl) SearchActivities(ctx context.Context, search types.ActivitySearch) (acts []types.Activity, err error) {
	defer func(start time.Time) { observe(ctx, "search_activities", start, err) }(time.Now())

	var (
		conds []string
		args  []any
	)
	if search.City != "" {
		args = append(args, search.City)
		conds = append(conds, fmt.Sprintf("city = $%d", len(args)))
	}
	if q := strings.TrimSpace(search.Query); q != "" {
		args = append(args, "%"+q+"%")
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if search.MinRating != nil {
		args = append(args, *search.MinRating)
		conds = append(conds, fmt.Sprintf("rating >= $%d", len(args)))
	}

	query := `SELECT ` + activityColumns + ` FROM activities`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY city, position, title LIMIT 100`

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search activities: %w", err)
	}
	defer rows.Close()
	return scanActivities(rows)
}

func scanActivities(rows pgx.Rows) ([]types.Activity, error) {
	var acts []types.Activity
	for rows.Next() {
		var (
			a     types.Activity
			slots []string
		)
		if err := rows.Scan(&a.ID, &a.City, &a.Title, &a.Description, &a.Lat, &a.Lng, &slots,
			&a.ImageURL, &a.Website, &a.Rating, &a.Category); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		if slots != nil {
			a.ValidSlots = make([]types.SlotKey, 0, len(slots))
			for _, s := range slots {
				a.ValidSlots = append(a.ValidSlots, types.SlotKey(s))
			}
		}
		acts = append(acts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}
	return acts, nil
}
