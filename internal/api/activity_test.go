package api

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/erazemk/hsetracker/internal/auth"
	"github.com/erazemk/hsetracker/internal/model"
	"github.com/erazemk/hsetracker/internal/store"
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

// asTechnician returns an env that talks to the same server as a technician.
func (e *testEnv) asTechnician(t *testing.T) *testEnv {
	t.Helper()
	hash, _ := auth.HashPassword("technician")
	tech, err := store.CreateUser(context.Background(), e.db, "tech", hash, model.RoleTechnician)
	if err != nil {
		t.Fatal(err)
	}
	token, err := auth.GenerateToken(testJWTSecret, tech.ID, "tech", model.RoleTechnician)
	if err != nil {
		t.Fatal(err)
	}
	return &testEnv{server: e.server, db: e.db, token: token}
}

func TestEventsAPIFlow(t *testing.T) {
	env := setupTestServer(t)

	var event model.Event
	env.do(t, "POST", "/api/events", map[string]string{
		"title": "Fire drill", "description": "Building A", "date": "2024-03-01", "time": "14:00",
	}, http.StatusCreated, &event)
	if event.ID == 0 || event.Title != "Fire drill" || event.Time != "14:00" || event.CreatedBy == 0 {
		t.Errorf("unexpected event: %+v", event)
	}

	env.do(t, "POST", "/api/events", map[string]string{"title": "Audit", "date": "2024-02-01", "time": "09:00"}, http.StatusCreated, nil)
	env.do(t, "POST", "/api/events", map[string]string{"title": "No time", "date": "2024-03-01"}, http.StatusBadRequest, nil)

	var events []model.Event
	env.do(t, "GET", "/api/events?from=2024-02-15", nil, http.StatusOK, &events)
	if len(events) != 1 || events[0].ID != event.ID {
		t.Errorf("expected only the March event, got %+v", events)
	}
	env.do(t, "GET", "/api/events?from=soon", nil, http.StatusBadRequest, nil)

	tech := env.asTechnician(t)
	tech.do(t, "GET", "/api/events", nil, http.StatusOK, &events)
	if len(events) != 2 {
		t.Errorf("expected 2 events, got %d", len(events))
	}
	tech.do(t, "POST", "/api/events", map[string]string{"title": "X", "date": "2024-03-01", "time": "10:00"}, http.StatusForbidden, nil)

	env.do(t, "DELETE", "/api/events/"+itoa(event.ID), nil, http.StatusOK, nil)
	env.do(t, "GET", "/api/events/"+itoa(event.ID), nil, http.StatusNotFound, nil)
}

func TestIncidentsAPIFlow(t *testing.T) {
	env := setupTestServer(t)
	tech := env.asTechnician(t)

	// Technicians report; defaults fill status, severity and date.
	var inc model.Incident
	tech.do(t, "POST", "/api/incidents", map[string]string{
		"type": "accident", "title": "Slipped on oil", "location": "Hall B",
	}, http.StatusCreated, &inc)
	if inc.Status != model.IncidentNew || inc.Severity != model.SeverityMedium || inc.Date != date(today()) {
		t.Errorf("defaults not applied: %+v", inc)
	}
	if inc.ReporterName != "tech" {
		t.Errorf("reporter = %q, want tech", inc.ReporterName)
	}

	tech.do(t, "POST", "/api/incidents", map[string]string{"type": "flood", "title": "Water"}, http.StatusBadRequest, nil)
	tech.do(t, "PUT", "/api/incidents/"+itoa(inc.ID), map[string]string{
		"type": "accident", "title": "Slipped on oil", "status": "resolved",
	}, http.StatusForbidden, nil)

	var updated model.Incident
	env.do(t, "PUT", "/api/incidents/"+itoa(inc.ID), map[string]string{
		"type": "accident", "title": "Slipped on oil", "severity": "low",
		"status": "resolved", "actions": "Floor cleaned", "date": inc.Date,
	}, http.StatusOK, &updated)
	if updated.Status != model.IncidentResolved || updated.Actions != "Floor cleaned" || updated.ReporterName != "tech" {
		t.Errorf("unexpected update: %+v", updated)
	}

	var list []model.Incident
	env.do(t, "GET", "/api/incidents?status=new", nil, http.StatusOK, &list)
	if len(list) != 0 {
		t.Errorf("expected no new incidents, got %+v", list)
	}
	env.do(t, "GET", "/api/incidents?q=oil", nil, http.StatusOK, &list)
	if len(list) != 1 {
		t.Errorf("expected 1 match, got %d", len(list))
	}

	env.do(t, "DELETE", "/api/incidents/"+itoa(inc.ID), nil, http.StatusOK, nil)
	env.do(t, "DELETE", "/api/incidents/"+itoa(inc.ID), nil, http.StatusNotFound, nil)
}

func TestTrainingsAPIFlow(t *testing.T) {
	env := setupTestServer(t)

	var ana, bor model.Worker
	env.do(t, "POST", "/api/workers", map[string]any{"name": "Ana"}, http.StatusCreated, &ana)
	env.do(t, "POST", "/api/workers", map[string]any{"name": "Bor"}, http.StatusCreated, &bor)

	var tr model.Training
	env.do(t, "POST", "/api/trainings", map[string]any{
		"title": "First aid", "type": "safety", "date": "2024-02-15", "duration": 480,
		"max_participants": 1, "instructor": "Dr. Novak", "certification": true,
	}, http.StatusCreated, &tr)
	if tr.Status != model.TrainingPlanned || !tr.Certification {
		t.Errorf("unexpected training: %+v", tr)
	}
	env.do(t, "POST", "/api/trainings", map[string]any{"title": "Bad", "date": "2024-02-15"}, http.StatusBadRequest, nil)

	path := "/api/trainings/" + itoa(tr.ID)
	env.do(t, "POST", path+"/participants", map[string]any{"worker_id": ana.ID}, http.StatusOK, &tr)
	if len(tr.Participants) != 1 || tr.Participants[0] != ana.ID {
		t.Errorf("participants = %v", tr.Participants)
	}
	env.do(t, "POST", path+"/participants", map[string]any{"worker_id": bor.ID}, http.StatusConflict, nil)
	env.do(t, "POST", path+"/participants", map[string]any{"worker_id": 999}, http.StatusNotFound, nil)

	env.do(t, "DELETE", path+"/participants/"+itoa(ana.ID), nil, http.StatusOK, &tr)
	if len(tr.Participants) != 0 {
		t.Errorf("participants after withdraw = %v", tr.Participants)
	}
	env.do(t, "DELETE", path+"/participants/"+itoa(ana.ID), nil, http.StatusNotFound, nil)

	env.do(t, "PUT", path, map[string]any{
		"title": "First aid", "date": "2024-02-15", "duration": 480, "max_participants": 12, "status": "completed",
	}, http.StatusOK, &tr)
	if tr.Status != model.TrainingCompleted || tr.MaxParticipants != 12 {
		t.Errorf("unexpected update: %+v", tr)
	}

	tech := env.asTechnician(t)
	var list []model.Training
	tech.do(t, "GET", "/api/trainings", nil, http.StatusOK, &list)
	if len(list) != 1 {
		t.Errorf("expected 1 training, got %d", len(list))
	}
	tech.do(t, "DELETE", path, nil, http.StatusForbidden, nil)

	env.do(t, "DELETE", path, nil, http.StatusOK, nil)
	env.do(t, "GET", path, nil, http.StatusNotFound, nil)
}
