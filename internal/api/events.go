package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/hsetracker/internal/model"
	"github.com/erazemk/hsetracker/internal/store"
)

// EventsHandler handles calendar event endpoints.
type EventsHandler struct {
	DB *sql.DB
}

type eventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// List handles GET /api/events. Optional ?from=YYYY-MM-DD hides earlier events.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	if from != "" {
		if _, err := time.Parse(time.DateOnly, from); err != nil {
			jsonError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
	}

	events, err := store.ListEvents(r.Context(), h.DB, from)
	if err != nil {
		slog.Error("failed to list events", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	jsonResponse(w, http.StatusOK, events)
}

// Create handles POST /api/events and returns the stored event.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e := model.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Date:        strings.TrimSpace(req.Date),
		Time:        strings.TrimSpace(req.Time),
		CreatedBy:   GetClaims(r.Context()).UserID,
	}
	if err := model.ValidateEvent(e); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := store.CreateEvent(r.Context(), h.DB, e)
	if err != nil {
		slog.Error("failed to create event", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	slog.Info("event created", "user", actor(r), "event_id", created.ID, "date", created.Date)
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/events/{id}.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	e, err := store.GetEvent(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get event", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get event")
		return
	}
	if e == nil {
		jsonError(w, http.StatusNotFound, "event not found")
		return
	}
	jsonResponse(w, http.StatusOK, e)
}

// Delete handles DELETE /api/events/{id}.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	if err := store.DeleteEvent(r.Context(), h.DB, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "event not found")
			return
		}
		slog.Error("failed to delete event", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}

	slog.Info("event deleted", "user", actor(r), "event_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "event deleted"})
}
