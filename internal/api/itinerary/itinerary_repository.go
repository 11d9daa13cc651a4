package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	database "github.com/FACorreiaa/go-trip-planner/app/db"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	Create(ctx context.Context, it *types.Itinerary) (*types.Itinerary, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*types.Itinerary, error)
	// GetByID skips the ownership check; it serves shared read-only links.
	GetByID(ctx context.Context, id uuid.UUID) (*types.Itinerary, error)
	List(ctx context.Context, userID uuid.UUID) ([]types.Itinerary, error)
	// UpdateDays writes days only if the row still carries expectedUpdatedAt.
	UpdateDays(ctx context.Context, userID, id uuid.UUID, days types.Store, expectedUpdatedAt time.Time) (*types.Itinerary, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
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

const itineraryColumns = `id, user_id, name, start_date, days, created_at, updated_at`

func scanItinerary(row pgx.Row) (*types.Itinerary, error) {
	var (
		it  types.Itinerary
		raw []byte
	)
	if err := row.Scan(&it.ID, &it.UserID, &it.Name, &it.StartDate, &raw, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &it.Days); err != nil {
			return nil, fmt.Errorf("failed to decode days of itinerary %s: %w", it.ID, err)
		}
	}
	if it.Days == nil {
		it.Days = types.Store{}
	}
	return &it, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, it *types.Itinerary) (*types.Itinerary, error) {
	days, err := json.Marshal(it.Days)
	if err != nil {
		return nil, fmt.Errorf("failed to encode days: %w", err)
	}
	created, err := scanItinerary(r.pgpool.QueryRow(ctx, `
		INSERT INTO itineraries (user_id, name, start_date, days)
		VALUES ($1, $2, $3, $4)
		RETURNING `+itineraryColumns,
		it.UserID, it.Name, it.StartDate, days,
	))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert itinerary", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create itinerary: %w", err)
	}
	return created, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, userID, id uuid.UUID) (*types.Itinerary, error) {
	it, err := scanItinerary(r.pgpool.QueryRow(ctx,
		`SELECT `+itineraryColumns+` FROM itineraries WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}
	return it, nil
}

func (r *RepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*types.Itinerary, error) {
	it, err := scanItinerary(r.pgpool.QueryRow(ctx,
		`SELECT `+itineraryColumns+` FROM itineraries WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}
	return it, nil
}

func (r *RepositoryImpl) List(ctx context.Context, userID uuid.UUID) ([]types.Itinerary, error) {
	rows, err := r.pgpool.Query(ctx,
		`SELECT `+itineraryColumns+` FROM itineraries WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	defer rows.Close()

	out := []types.Itinerary{}
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan itinerary: %w", err)
		}
		out = append(out, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating itineraries: %w", err)
	}
	return out, nil
}

func (r *RepositoryImpl) UpdateDays(ctx context.Context, userID, id uuid.UUID, days types.Store, expectedUpdatedAt time.Time) (*types.Itinerary, error) {
	raw, err := json.Marshal(days)
	if err != nil {
		return nil, fmt.Errorf("failed to encode days: %w", err)
	}
	it, err := scanItinerary(r.pgpool.QueryRow(ctx, `
		UPDATE itineraries SET days = $1, updated_at = now()
		WHERE id = $2 AND user_id = $3 AND updated_at = $4
		RETURNING `+itineraryColumns,
		raw, id, userID, expectedUpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrConcurrentUpdate
		}
		r.logger.ErrorContext(ctx, "Failed to update itinerary days", slog.String("itineraryID", id.String()), slog.Any("error", err))
		return nil, fmt.Errorf("failed to update itinerary: %w", err)
	}
	return it, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM itineraries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
