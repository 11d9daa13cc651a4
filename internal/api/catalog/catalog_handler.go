package catalog

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner/internal/api"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func cityParam(r *http.Request) string {
	raw := chi.URLParam(r, "city")
	if city, err := url.PathUnescape(raw); err == nil {
		return city
	}
	return raw
}

func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CatalogHandler").Start(r.Context(), "ListCities", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/cities"),
	))
	defer span.End()

	cities, err := h.service.Cities(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list cities", slog.Any("error", err))
		status, msg := api.StatusForError(err)
		api.ErrorResponse(w, r, status, msg)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, cities)
}

func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	city := cityParam(r)
	ctx, span := otel.Tracer("CatalogHandler").Start(r.Context(), "ListActivities", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/cities/{city}/activities"),
		attribute.String("city", city),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ListActivities"), slog.String("city", city))

	acts, err := h.service.Activities(ctx, city)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list activities", slog.Any("error", err))
		status, msg := api.StatusForError(err)
		api.ErrorResponse(w, r, status, msg)
		return
	}
	if acts == nil {
		acts = []types.Activity{}
	}
	api.WriteJSONResponse(w, r, http.StatusOK, acts)
}

func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	city := cityParam(r)
	ctx, span := otel.Tracer("CatalogHandler").Start(r.Context(), "ListTemplates", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/cities/{city}/templates"),
		attribute.String("city", city),
	))
	defer span.End()

	templates, err := h.service.Templates(ctx, city)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list templates", slog.String("city", city), slog.Any("error", err))
		status, msg := api.StatusForError(err)
		api.ErrorResponse(w, r, status, msg)
		return
	}
	if templates == nil {
		templates = []types.DayTemplate{}
	}
	api.WriteJSONResponse(w, r, http.StatusOK, templates)
}

func (h *Handler) SearchActivities(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CatalogHandler").Start(r.Context(), "SearchActivities", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/activities/search"),
	))
	defer span.End()

	q := r.URL.Query()
	search := types.ActivitySearch{City: q.Get("city"), Query: q.Get("q")}
	if raw := q.Get("min_rating"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, "min_rating must be a number")
			return
		}
		search.MinRating = &v
	}

	acts, err := h.service.Search(ctx, search)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to search activities", slog.Any("error", err))
		status, msg := api.StatusForError(err)
		api.ErrorResponse(w, r, status, msg)
		return
	}
	if acts == nil {
		acts = []types.Activity{}
	}
	api.WriteJSONResponse(w, r, http.StatusOK, acts)
}
