package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	appMiddleware "github.com/FACorreiaa/go-trip-planner/app/middleware"
	"github.com/FACorreiaa/go-trip-planner/internal/api"
	"github.com/FACorreiaa/go-trip-planner/internal/planner"
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

// request carries what every itinerary handler resolves before calling the service.
type request struct {
	ctx    context.Context
	span   trace.Span
	l      *slog.Logger
	userID uuid.UUID
	id     uuid.UUID
}

// begin starts the span, resolves the caller and, unless route is the collection, the itinerary id.
// On failure it writes the response and returns false.
func (h *Handler) begin(w http.ResponseWriter, r *http.Request, name, route string, withID bool) (*request, bool) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), name, trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(route),
	))
	req := &request{ctx: ctx, span: span, l: h.logger.With(slog.String("handler", name))}
	req.l.DebugContext(ctx, name+" handler invoked")

	userID, ok := appMiddleware.GetUserIDFromContext(ctx)
	if !ok {
		span.SetStatus(codes.Error, "unauthenticated")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return req, false
	}
	req.userID = userID
	span.SetAttributes(attribute.String("user.id", userID.String()))

	if withID {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			span.SetStatus(codes.Error, "invalid id")
			api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID format")
			return req, false
		}
		req.id = id
		req.l = req.l.With(slog.String("itineraryID", id.String()))
		span.SetAttributes(attribute.String("itinerary.id", id.String()))
	}
	return req, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, req *request, err error) {
	status, msg := api.StatusForError(err)
	if status >= http.StatusInternalServerError {
		req.l.ErrorContext(req.ctx, "Request failed", slog.Any("error", err))
	} else {
		req.l.InfoContext(req.ctx, "Request rejected", slog.Any("error", err), slog.Int("status", status))
	}
	req.span.RecordError(err)
	req.span.SetStatus(codes.Error, msg)
	api.ErrorResponse(w, r, status, msg)
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, req *request, err error) {
	req.l.WarnContext(req.ctx, "Invalid request", slog.Any("error", err))
	req.span.SetStatus(codes.Error, "invalid request")
	api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, req *request, status int, out any, err error) {
	if err != nil {
		h.fail(w, r, req, err)
		return
	}
	req.span.SetStatus(codes.Ok, "")
	api.WriteJSONResponse(w, r, status, out)
}

func dayParam(r *http.Request) (int, error) {
	return api.IntURLParam(r, "day")
}

func slotParam(r *http.Request) (types.SlotKey, error) {
	raw := chi.URLParam(r, "slot")
	slot, ok := types.ParseSlotKey(raw)
	if !ok {
		return "", fmt.Errorf("%w: %q", planner.ErrInvalidSlot, raw)
	}
	return slot, nil
}

// positionParams reads {day}, {slot} and optionally {index}.
func positionParams(r *http.Request, withIndex bool) (int, types.SlotKey, int, error) {
	day, err := dayParam(r)
	if err != nil {
		return 0, "", 0, err
	}
	slot, err := slotParam(r)
	if err != nil {
		return 0, "", 0, err
	}
	if !withIndex {
		return day, slot, 0, nil
	}
	index, err := api.IntURLParam(r, "index")
	if err != nil {
		return 0, "", 0, err
	}
	return day, slot, index, nil
}

func (h *Handler) CreateItinerary(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r, "CreateItinerary", "/api/v1/itineraries", false)
	defer req.span.End()
	if !ok {
		return
	}

	var body types.CreateItineraryRequest
	if err := api.DecodeAndValidate(w, r, &body); err != nil {
		h.badRequest(w, r, req, err)
		return
	}
	if err := planner.ValidateSlots(body.Days); err != nil {
		h.badRequest(w, r, req, err)
		return
	}
	it, err := h.service.Create(req.ctx, req.userID, body)
	h.respond(w, r, req, http.StatusCreated, it, err)
}

func (h *Handler) ListItineraries(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r, "ListItineraries", "/api/v1/itineraries", false)
	defer req.span.End()
	if !ok {
		return
	}

	list, err := h.service.List(req.ctx, req.userID)
	if list == nil {
		list = []types.Itinerary{}
	}
	h.respond(w, r, req, http.StatusOK, list, err)
}

func (h *Handler) GetItinerary(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r, "GetItinerary", "/api/v1/itineraries/{id}", true)
	defer req.span.End()
	if !ok {
		return
	}

	it, err := h.service.Get(req.ctx, req.userID, req.id)
	h.respond(w, r, req, http.StatusOK, it, err)
}

func (h *Handler) DeleteItinerary(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r, "DeleteItinerary", "/api/v1/itineraries/{id}", true)
	defer req.span.End()
	if !ok {
		return
	}

	err := h.service.Delete(req.ctx, req.userID, req.id)
	h.respond(w, r, req, http.StatusNoContent, nil, err)
}

func (h *Handler) ReplaceDays(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r, "ReplaceDays", "/api/v1/itineraries/{id}/days", true)
	defer req.span.End()
	if !ok {
		return
	}

	var body types.ReplaceDaysRequest
	if err := api.DecodeAndValidate(w, r, &body); err != nil {
		h.badRequest(w, r, req, err)
		return
	}
	if err := planner.ValidateSlots(body.Days); err != nil {
		h.badRequest(w, r, req, err)
		return
	}
	it, err := h.service.ReplaceDays(req.ctx, req.userID, req.id, body.Days)
	h.respond(w, r, req, http.StatusOK, it, err)
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r, "GetSummary", "/api/v1/itineraries/{id}/summary", true)
	defer req.span.End()
	if !ok {
		return
	}

	summary, err := h.service.Summary(req.ctx, req.userID, req.id)
	h.respond(w, r, req, http.StatusOK, summary, err)
}

func (h *Handler) AddDay(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r, "AddDay", "/api/v1/itineraries/{id}/days", true)
	defer req.span.End()
	if !ok {
		return
	}

	var body types.AddDayRequest
	if err := api.DecodeAndValidate(w, r, &body); err != nil {
		h.badRequest(w, r, req, err)
		return
	}
	it, err := h.service.AddDay(req.ctx, req.userID, req.id, body)
	h.respond(w, r, req, http.StatusCreated, it, err)
}

func (h *Handler) RemoveDay(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r, "RemoveDay", "/api/v1/itineraries/{id}/days/{day}", true)
	defer req.span.End()
	if !ok {
		return
	}

	day, err := dayParam(r)
	if err != nil {
		h.badRequest(w, r, req, err)
		return
	}
	it, err := h.service.RemoveDay(req.ctx, req.userID, req.id, day)
	h.respond(w, r, req, http.StatusOK, it, err)
}

func (h *Handler) UpdateDay(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r, "UpdateDay", "/api/v1/itineraries/{id}/days/{day}", true)
	defer req.span.End()
	if !ok {
		return
	}

	day, err := dayParam(r)
	if err != nil {
		h.badRequest(w, r, req, err)
		return
	}
	var body types.UpdateDayRequest
	if err := api.DecodeAndValidate(w, r, &body); err != nil {
		h.badRequest(w, r, req, err)
		return
	}
	it, err := h.service.UpdateDay(req.ctx, req.userID, req.id, day, body)
	h.respond(w, r, req, http.StatusOK, it, err)
}

func (h *Handler) AppendTemplateDays(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r, "AppendTemplateDays", "/api/v1/itineraries/{id}/templates", true)
	defer req.span.End()
	if !ok {
		return
	}

	var body types.AppendTemplateDaysRequest
	if err := api.DecodeAndValidate(w, r, &body); err != nil {
		h.badRequest(w, r, req, err)
		return
	}
	it, err := h.service.AppendTemplateDays(req.ctx, req.userID, req.id, body.City)
	h.respond(w, r, req, http.StatusOK, it, err)
}

func (h *Handler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r, "ApplyTemplate", "/api/v1/itineraries/{id}/days/{day}/template", true)
	defer req.span.End()
	if !ok {
		return
	}

	day, err := dayParam(r)
	if err != nil {
		h.badRequest(w, r, req, err)
		return
	}
	var body types.ApplyTemplateRequest
	if err := api.DecodeAndValidate(w, r, &body); err != nil {
		h.badRequest(w, r, req, err)
		return
	}
	it, err := h.service.ApplyTemplate(req.ctx, req.userID, req.id, day, body.TemplateIndex)
	h.respond(w, r, req, http.StatusOK, it, err)
}

func (h *Handler) AddActivity(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r, "AddActivity", "/api/v1/itineraries/{id}/days/{day}/slots/{slot}/activities", true)
	defer req.span.End()
	if !ok {
		return
	}

	day, slot, _, err := positionParams(r, false)
	if err != nil {
		h.badRequest(w, r, req, err)
		return
	}
	var body types.AddActivityRequest
	if err := api.DecodeAndValidate(w, r, &body); err != nil {
		h.badRequest(w, r, req, err)
		return
	}
	req.span.SetAttributes(attribute.Int("day", day), attribute.String("slot", string(slot)))
	it, err := h.service.AddActivity(req.ctx, req.userID, req.id, day, slot, body.Activity)
	h.respond(w, r, req, http.StatusCreated, it, err)
}

func (h *Handler) RemoveActivity(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r, "RemoveActivity", "/api/v1/itineraries/{id}/days/{day}/slots/{slot}/activities/{index}", true)
	defer req.span.End()
	if !ok {
		return
	}

	day, slot, index, err := positionParams(r, true)
	if err != nil {
		h.badRequest(w, r, req, err)
		return
	}
	req.span.SetAttributes(attribute.Int("day", day), attribute.String("slot", string(slot)), attribute.Int("index", index))
	it, err := h.service.RemoveActivity(req.ctx, req.userID, req.id, day, slot, index)
	h.respond(w, r, req, http.StatusOK, it, err)
}

func (h *Handler) UpdateActivityField(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r, "UpdateActivityField", "/api/v1/itineraries/{id}/days/{day}/slots/{slot}/activities/{index}", true)
	defer req.span.End()
	if !ok {
		return
	}

	day, slot, index, err := positionParams(r, true)
	if err != nil {
		h.badRequest(w, r, req, err)
		return
	}
	var body types.UpdateActivityFieldRequest
	if err := api.DecodeAndValidate(w, r, &body); err != nil {
		h.badRequest(w, r, req, err)
		return
	}
	it, err := h.service.UpdateActivityField(req.ctx, req.userID, req.id, day, slot, index, body.Field, body.Value)
	h.respond(w, r, req, http.StatusOK, it, err)
}

func (h *Handler) SelectCatalogActivity(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r, "SelectCatalogActivity", "/api/v1/itineraries/{id}/days/{day}/slots/{slot}/activities/{index}/catalog", true)
	defer req.span.End()
	if !ok {
		return
	}

	day, slot, index, err := positionParams(r, true)
	if err != nil {
		h.badRequest(w, r, req, err)
		return
	}
	var body types.SelectCatalogActivityRequest
	if err := api.DecodeAndValidate(w, r, &body); err != nil {
		h.badRequest(w, r, req, err)
		return
	}
	req.span.SetAttributes(attribute.String("activity.title", body.Title))
	it, err := h.service.SelectCatalogActivity(req.ctx, req.userID, req.id, day, slot, index, body.Title)
	h.respond(w, r, req, http.StatusOK, it, err)
}

func (h *Handler) MoveActivity(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r, "MoveActivity", "/api/v1/itineraries/{id}/moves", true)
	defer req.span.End()
	if !ok {
		return
	}

	var intent types.MoveIntent
	if err := api.DecodeJSONBody(w, r, &intent); err != nil {
		h.badRequest(w, r, req, err)
		return
	}
	it, err := h.service.MoveActivity(req.ctx, req.userID, req.id, intent)
	h.respond(w, r, req, http.StatusOK, it, err)
}

func (h *Handler) OptimizeDay(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r, "OptimizeDay", "/api/v1/itineraries/{id}/days/{day}/optimize", true)
	defer req.span.End()
	if !ok {
		return
	}

	day, err := dayParam(r)
	if err != nil {
		h.badRequest(w, r, req, err)
		return
	}
	resp, err := h.service.OptimizeDay(req.ctx, req.userID, req.id, day)
	h.respond(w, r, req, http.StatusOK, resp, err)
}

func (h *Handler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r, "GetSuggestions", "/api/v1/itineraries/{id}/days/{day}/suggestions", true)
	defer req.span.End()
	if !ok {
		return
	}

	day, err := dayParam(r)
	if err != nil {
		h.badRequest(w, r, req, err)
		return
	}
	suggestions, err := h.service.Suggestions(req.ctx, req.userID, req.id, day)
	if suggestions == nil {
		suggestions = []types.Suggestion{}
	}
	h.respond(w, r, req, http.StatusOK, suggestions, err)
}

func (h *Handler) GetRoute(w http.ResponseWriter, r *http.Request) {
	req, ok := h.begin(w, r, "GetRoute", "/api/v1/itineraries/{id}/days/{day}/route", true)
	defer req.span.End()
	if !ok {
		return
	}

	day, err := dayParam(r)
	if err != nil {
		h.badRequest(w, r, req, err)
		return
	}
	mode := planner.ParseTransportMode(r.URL.Query().Get("mode"))
	route, err := h.service.Route(req.ctx, req.userID, req.id, day, mode)
	h.respond(w, r, req, http.StatusOK, route, err)
}

// Routes registers the itinerary editor under an /itineraries subrouter. Each perItinerary
// function registers extra routes under /{id}.
func (h *Handler) Routes(r chi.Router, perItinerary ...func(chi.Router)) {
	r.Post("/", h.CreateItinerary)
	r.Get("/", h.ListItineraries)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetItinerary)
		r.Delete("/", h.DeleteItinerary)
		r.Get("/summary", h.GetSummary)
		r.Put("/days", h.ReplaceDays)
		r.Post("/days", h.AddDay)
		r.Post("/templates", h.AppendTemplateDays)
		r.Post("/moves", h.MoveActivity)
		for _, fn := range perItinerary {
			fn(r)
		}
		r.Route("/days/{day}", func(r chi.Router) {
			r.Delete("/", h.RemoveDay)
			r.Patch("/", h.UpdateDay)
			r.Post("/template", h.ApplyTemplate)
			r.Post("/optimize", h.OptimizeDay)
			r.Get("/suggestions", h.GetSuggestions)
			r.Get("/route", h.GetRoute)
			r.Post("/slots/{slot}/activities", h.AddActivity)
			r.Delete("/slots/{slot}/activities/{index}", h.RemoveActivity)
			r.Patch("/slots/{slot}/activities/{index}", h.UpdateActivityField)
			r.Put("/slots/{slot}/activities/{index}/catalog", h.SelectCatalogActivity)
		})
	})
}
