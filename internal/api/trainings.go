package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/hsetracker/internal/model"
	"github.com/erazemk/hsetracker/internal/store"
)

// TrainingsHandler handles training session endpoints.
type TrainingsHandler struct {
	DB *sql.DB
}

type trainingRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Type            string `json:"type"`
	Date            string `json:"date"`
	Duration        int    `json:"duration"`
	MaxParticipants int    `json:"max_participants"`
	Instructor      string `json:"instructor"`
	Location        string `json:"location"`
	Certification   bool   `json:"certification"`
	Status          string `json:"status"`
}

func (req trainingRequest) training(id int64) model.Training {
	t := model.Training{
		ID:              id,
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		Type:            strings.TrimSpace(req.Type),
		Date:            strings.TrimSpace(req.Date),
		Duration:        req.Duration,
		MaxParticipants: req.MaxParticipants,
		Instructor:      strings.TrimSpace(req.Instructor),
		Location:        strings.TrimSpace(req.Location),
		Certification:   req.Certification,
		Status:          strings.TrimSpace(req.Status),
	}
	if t.Status == "" {
		t.Status = model.TrainingPlanned
	}
	return t
}

// List handles GET /api/trainings. Optional ?q= searches title and description.
func (h *TrainingsHandler) List(w http.ResponseWriter, r *http.Request) {
	trainings, err := store.ListTrainings(r.Context(), h.DB, r.URL.Query().Get("q"))
	if err != nil {
		slog.Error("failed to list trainings", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list trainings")
		return
	}
	if trainings == nil {
		trainings = []model.Training{}
	}
	jsonResponse(w, http.StatusOK, trainings)
}

// Create handles POST /api/trainings.
func (h *TrainingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req trainingRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t := req.training(0)
	if err := model.ValidateTraining(t); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := store.CreateTraining(r.Context(), h.DB, t)
	if err != nil {
		slog.Error("failed to create training", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create training")
		return
	}

	slog.Info("training created", "user", actor(r), "training_id", created.ID, "date", created.Date)
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/trainings/{id}.
func (h *TrainingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid training id")
		return
	}

	t, err := store.GetTraining(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get training", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get training")
		return
	}
	if t == nil {
		jsonError(w, http.StatusNotFound, "training not found")
		return
	}
	jsonResponse(w, http.StatusOK, t)
}

// Update handles PUT /api/trainings/{id}.
func (h *TrainingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid training id")
		return
	}

	var req trainingRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t := req.training(id)
	if err := model.ValidateTraining(t); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.UpdateTraining(r.Context(), h.DB, t); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "training not found")
			return
		}
		slog.Error("failed to update training", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update training")
		return
	}

	updated, err := store.GetTraining(r.Context(), h.DB, id)
	if err != nil || updated == nil {
		jsonError(w, http.StatusInternalServerError, "failed to load training")
		return
	}
	slog.Info("training updated", "user", actor(r), "training_id", id, "status", updated.Status)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/trainings/{id}.
func (h *TrainingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid training id")
		return
	}

	if err := store.DeleteTraining(r.Context(), h.DB, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "training not found")
			return
		}
		slog.Error("failed to delete training", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete training")
		return
	}

	slog.Info("training deleted", "user", actor(r), "training_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "training deleted"})
}

// Enroll handles POST /api/trainings/{id}/participants with {"worker_id": N}.
func (h *TrainingsHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid training id")
		return
	}

	var req struct {
		WorkerID int64 `json:"worker_id"`
	}
	if err := decodeJSON(r, &req); err != nil || req.WorkerID <= 0 {
		jsonError(w, http.StatusBadRequest, "worker_id required")
		return
	}

	if err := store.AddParticipant(r.Context(), h.DB, id, req.WorkerID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			jsonError(w, http.StatusNotFound, "training or worker not found")
		case errors.Is(err, store.ErrTrainingFull):
			jsonError(w, http.StatusConflict, "training is full")
		default:
			slog.Error("failed to enroll worker", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to enroll worker")
		}
		return
	}

	h.respondTraining(w, r, id)
	slog.Info("worker enrolled", "user", actor(r), "training_id", id, "worker_id", req.WorkerID)
}

// Withdraw handles DELETE /api/trainings/{id}/participants/{worker}.
func (h *TrainingsHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid training id")
		return
	}
	workerID, err := strconv.ParseInt(r.PathValue("worker"), 10, 64)
	if err != nil || workerID <= 0 {
		jsonError(w, http.StatusBadRequest, "invalid worker id")
		return
	}

	if err := store.RemoveParticipant(r.Context(), h.DB, id, workerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "participant not found")
			return
		}
		slog.Error("failed to withdraw worker", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to withdraw worker")
		return
	}

	h.respondTraining(w, r, id)
	slog.Info("worker withdrawn", "user", actor(r), "training_id", id, "worker_id", workerID)
}

func (h *TrainingsHandler) respondTraining(w http.ResponseWriter, r *http.Request, id int64) {
	t, err := store.GetTraining(r.Context(), h.DB, id)
	if err != nil || t == nil {
		jsonError(w, http.StatusInternalServerError, "failed to load training")
		return
	}
	jsonResponse(w, http.StatusOK, t)
}
