package handlers

import (
	"context"
	"net/http"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/auth"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/events"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/ids"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/patch"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/media"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/metrics"
)

// EventService is the part of events.Service the HTTP layer calls.
type EventService interface {
	List(ctx context.Context) ([]events.Event, error)
	Get(ctx context.Context, id string) (*events.Event, error)
	Create(ctx context.Context, actor auth.Actor, params events.CreateParams) (*events.Event, error)
	Update(ctx context.Context, actor auth.Actor, id string, params events.UpdateParams) (*events.Event, error)
	Delete(ctx context.Context, actor auth.Actor, id string) error
	Attend(ctx context.Context, actor auth.Actor, id string) (*events.Event, error)
	Unattend(ctx context.Context, actor auth.Actor, id string) (*events.Event, error)
}

type EventsHandler struct {
	Service EventService
	Media   media.Store
	BaseURL string
}

func NewEventsHandler(service EventService, store media.Store, baseURL string) *EventsHandler {
	return &EventsHandler{Service: service, Media: store, BaseURL: baseURL}
}

type eventResponse struct {
	Message string        `json:"message"`
	Event   *events.Event `json:"event"`
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := ULIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	event, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	params, err := h.createParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	event, err := h.Service.Create(r.Context(), caller, params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	metrics.EventOperations.WithLabelValues("create").Inc()

	if location, err := ids.ResourceURL(h.BaseURL, "api/v1/events", event.ID); err == nil {
		w.Header().Set("Location", location)
	}
	writeJSON(w, http.StatusCreated, eventResponse{Message: "event created", Event: event})
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := ULIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	params, err := h.updateParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	event, err := h.Service.Update(r.Context(), caller, id, params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	metrics.EventOperations.WithLabelValues("update").Inc()
	writeJSON(w, http.StatusOK, eventResponse{Message: "event updated", Event: event})
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := ULIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Service.Delete(r.Context(), caller, id); err != nil {
		writeError(w, r, err)
		return
	}
	metrics.EventOperations.WithLabelValues("delete").Inc()
	writeJSON(w, http.StatusOK, messageResponse{Message: "event deleted"})
}

func (h *EventsHandler) Attend(w http.ResponseWriter, r *http.Request) {
	h.changeAttendance(w, r, "attend", h.Service.Attend, "you are attending this event")
}

func (h *EventsHandler) Unattend(w http.ResponseWriter, r *http.Request) {
	h.changeAttendance(w, r, "unattend", h.Service.Unattend, "you are no longer attending this event")
}

type attendanceFunc func(ctx context.Context, actor auth.Actor, id string) (*events.Event, error)

func (h *EventsHandler) changeAttendance(w http.ResponseWriter, r *http.Request, action string, change attendanceFunc, message string) {
	caller, err := actor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := ULIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	event, err := change(r.Context(), caller, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	metrics.AttendanceChanges.WithLabelValues(action).Inc()
	writeJSON(w, http.StatusOK, eventResponse{Message: message, Event: event})
}

// createParams reads a JSON body, or a multipart form with an optional
// "image" file.
func (h *EventsHandler) createParams(r *http.Request) (events.CreateParams, error) {
	var params events.CreateParams
	if !isMultipart(r) {
		return params, decodeJSON(r, &params)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return params, multipartError(err)
	}
	params.Title, _ = formValue(r, "title")
	params.Description, _ = formValue(r, "description")
	params.Date, _ = formValue(r, "date")
	params.Time, _ = formValue(r, "time")
	params.Location, _ = formValue(r, "location")

	url, ok, err := saveUpload(r, h.Media, "image")
	if err != nil {
		return params, err
	}
	if ok {
		params.ImageURL = url
	}
	return params, nil
}

// updateParams only sets the fields the request carried. Without a new
// image the stored one is kept.
func (h *EventsHandler) updateParams(r *http.Request) (events.UpdateParams, error) {
	var params events.UpdateParams
	if !isMultipart(r) {
		return params, decodeJSON(r, &params)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return params, multipartError(err)
	}
	params.Title = formField(r, "title")
	params.Description = formField(r, "description")
	params.Date = formField(r, "date")
	params.Time = formField(r, "time")
	params.Location = formField(r, "location")

	url, ok, err := saveUpload(r, h.Media, "image")
	if err != nil {
		return params, err
	}
	if ok {
		params.ImageURL = patch.Some(url)
	}
	return params, nil
}
