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

// IncidentsHandler handles incident log endpoints.
type IncidentsHandler struct {
	DB       *sql.DB
	Location *time.Location
	Now      func() time.Time
}

type incidentRequest struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Severity    string `json:"severity"`
	Status      string `json:"status"`
	Actions     string `json:"actions"`
	Date        string `json:"date"`
}

// incident builds the model, defaulting a new report to status "new",
// medium severity and today's date.
func (h *IncidentsHandler) incident(req incidentRequest) model.Incident {
	i := model.Incident{
		Type:        strings.TrimSpace(req.Type),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		Severity:    strings.TrimSpace(req.Severity),
		Status:      strings.TrimSpace(req.Status),
		Actions:     strings.TrimSpace(req.Actions),
		Date:        strings.TrimSpace(req.Date),
	}
	if i.Severity == "" {
		i.Severity = model.SeverityMedium
	}
	if i.Status == "" {
		i.Status = model.IncidentNew
	}
	if i.Date == "" {
		i.Date = h.Now().In(h.Location).Format(time.DateOnly)
	}
	return i
}

// List handles GET /api/incidents. Optional ?type=, ?status= and ?q= filters.
func (h *IncidentsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	incidents, err := store.ListIncidents(r.Context(), h.DB, store.IncidentFilter{
		Type:   q.Get("type"),
		Status: q.Get("status"),
		Search: q.Get("q"),
	})
	if err != nil {
		slog.Error("failed to list incidents", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list incidents")
		return
	}
	if incidents == nil {
		incidents = []model.Incident{}
	}
	jsonResponse(w, http.StatusOK, incidents)
}

// Create handles POST /api/incidents. Any authenticated user may report.
func (h *IncidentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req incidentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inc := h.incident(req)
	if err := model.ValidateIncident(inc); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	inc.ReportedBy = GetClaims(r.Context()).UserID

	created, err := store.CreateIncident(r.Context(), h.DB, inc)
	if err != nil {
		slog.Error("failed to create incident", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create incident")
		return
	}

	slog.Info("incident reported", "user", actor(r), "incident_id", created.ID, "type", created.Type, "severity", created.Severity)
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/incidents/{id}.
func (h *IncidentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid incident id")
		return
	}

	inc, err := store.GetIncident(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get incident", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get incident")
		return
	}
	if inc == nil {
		jsonError(w, http.StatusNotFound, "incident not found")
		return
	}
	jsonResponse(w, http.StatusOK, inc)
}

// Update handles PUT /api/incidents/{id}.
func (h *IncidentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid incident id")
		return
	}

	var req incidentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inc := h.incident(req)
	inc.ID = id
	if err := model.ValidateIncident(inc); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.UpdateIncident(r.Context(), h.DB, inc); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "incident not found")
			return
		}
		slog.Error("failed to update incident", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update incident")
		return
	}

	updated, err := store.GetIncident(r.Context(), h.DB, id)
	if err != nil || updated == nil {
		jsonError(w, http.StatusInternalServerError, "failed to load incident")
		return
	}
	slog.Info("incident updated", "user", actor(r), "incident_id", id, "status", updated.Status)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/incidents/{id}.
func (h *IncidentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid incident id")
		return
	}

	if err := store.DeleteIncident(r.Context(), h.DB, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "incident not found")
			return
		}
		slog.Error("failed to delete incident", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete incident")
		return
	}

	slog.Info("incident deleted", "user", actor(r), "incident_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "incident deleted"})
}
