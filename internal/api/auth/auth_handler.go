package auth

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
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

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Register", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/auth/register"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Register"))
	l.DebugContext(ctx, "Register handler invoked")

	var req types.RegisterRequest
	if err := api.DecodeAndValidate(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid register request", slog.Any("error", err))
		span.SetStatus(codes.Error, "invalid request")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Register(ctx, req)
	if err != nil {
		status, msg := api.StatusForError(err)
		l.ErrorContext(ctx, "Registration failed", slog.Any("error", err), slog.Int("status", status))
		span.RecordError(err)
		api.ErrorResponse(w, r, status, msg)
		return
	}

	l.InfoContext(ctx, "User registered")
	api.WriteJSONResponse(w, r, http.StatusCreated, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Login", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/auth/login"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Login"))
	l.DebugContext(ctx, "Login handler invoked")

	var req types.LoginRequest
	if err := api.DecodeAndValidate(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid login request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Login(ctx, req)
	if err != nil {
		status, msg := api.StatusForError(err)
		if status == http.StatusInternalServerError {
			l.ErrorContext(ctx, "Login failed", slog.Any("error", err))
		}
		span.RecordError(err)
		api.ErrorResponse(w, r, status, msg)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
