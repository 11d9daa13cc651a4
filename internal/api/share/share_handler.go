package share

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	appMiddleware "github.com/FACorreiaa/go-trip-planner/app/middleware"
	"github.com/FACorreiaa/go-trip-planner/internal/api"
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

func ownedItinerary(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := appMiddleware.GetUserIDFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID format")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}

func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ShareHandler").Start(r.Context(), "CreateLink", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/itineraries/{id}/share"),
	))
	defer span.End()

	userID, id, ok := ownedItinerary(w, r)
	if !ok {
		return
	}
	l := h.logger.With(slog.String("handler", "CreateLink"), slog.String("itineraryID", id.String()))

	link, err := h.service.CreateLink(ctx, userID, id)
	if err != nil {
		status, msg := api.StatusForError(err)
		l.ErrorContext(ctx, "Failed to create share link", slog.Any("error", err), slog.Int("status", status))
		span.RecordError(err)
		api.ErrorResponse(w, r, status, msg)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, link)
}

func (h *Handler) QRCode(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ShareHandler").Start(r.Context(), "QRCode", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/itineraries/{id}/share/qr"),
	))
	defer span.End()

	userID, id, ok := ownedItinerary(w, r)
	if !ok {
		return
	}
	l := h.logger.With(slog.String("handler", "QRCode"), slog.String("itineraryID", id.String()))

	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	png, err := h.service.QRCode(ctx, userID, id, size)
	if err != nil {
		status, msg := api.StatusForError(err)
		l.ErrorContext(ctx, "Failed to render share QR code", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, status, msg)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		l.WarnContext(ctx, "Failed to write QR code", slog.Any("error", err))
	}
}

func (h *Handler) GetShared(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ShareHandler").Start(r.Context(), "GetShared", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/shared/{token}"),
	))
	defer span.End()

	shared, err := h.service.Resolve(ctx, chi.URLParam(r, "token"))
	if err != nil {
		status, msg := api.StatusForError(err)
		if status >= http.StatusInternalServerError {
			h.logger.ErrorContext(ctx, "Failed to resolve share token", slog.Any("error", err))
		}
		span.SetStatus(codes.Error, msg)
		api.ErrorResponse(w, r, status, msg)
		return
	}
	span.SetAttributes(attribute.String("itinerary.id", shared.ID.String()))
	api.WriteJSONResponse(w, r, http.StatusOK, shared)
}
