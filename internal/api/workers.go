package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/hsetracker/internal/model"
	"github.com/erazemk/hsetracker/internal/store"
)

// WorkersHandler handles worker endpoints.
type WorkersHandler struct {
	DB             *sql.DB
	Monitor        Monitor
	EquipmentTypes []string
}

type workerRequest struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	ShoeSize int    `json:"shoe_size"`
}

func (req *workerRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	req.Position = strings.TrimSpace(req.Position)
	if req.Name == "" {
		return "name required"
	}
	if req.ShoeSize < 0 || req.ShoeSize > 60 {
		return "invalid shoe size"
	}
	return ""
}

// List handles GET /api/workers. Optional ?q= filters by name or position.
func (h *WorkersHandler) List(w http.ResponseWriter, r *http.Request) {
	workers, err := store.ListWorkers(r.Context(), h.DB, r.URL.Query().Get("q"))
	if err != nil {
		slog.Error("failed to list workers", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list workers")
		return
	}
	if workers == nil {
		workers = []model.Worker{}
	}
	jsonResponse(w, http.StatusOK, workers)
}

// Create handles POST /api/workers. The worker starts with an empty slot for
// every configured equipment type.
func (h *WorkersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req workerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	worker, err := store.CreateWorker(r.Context(), h.DB, req.Name, req.Position, req.ShoeSize, h.EquipmentTypes)
	if err != nil {
		slog.Error("failed to create worker", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create worker")
		return
	}

	h.reload(r, worker.ID)
	slog.Info("worker created", "user", actor(r), "worker", worker.Name)
	jsonResponse(w, http.StatusCreated, worker)
}

// Get handles GET /api/workers/{id}.
func (h *WorkersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid worker id")
		return
	}

	worker, err := store.GetWorker(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get worker", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get worker")
		return
	}
	if worker == nil || worker.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "worker not found")
		return
	}
	jsonResponse(w, http.StatusOK, worker)
}

// Update handles PUT /api/workers/{id}.
func (h *WorkersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid worker id")
		return
	}

	var req workerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	if err := store.UpdateWorker(r.Context(), h.DB, id, req.Name, req.Position, req.ShoeSize); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "worker not found")
			return
		}
		slog.Error("failed to update worker", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update worker")
		return
	}

	h.reload(r, id)
	worker, err := store.GetWorker(r.Context(), h.DB, id)
	if err != nil || worker == nil {
		jsonError(w, http.StatusInternalServerError, "failed to load worker")
		return
	}
	jsonResponse(w, http.StatusOK, worker)
}

// Delete handles DELETE /api/workers/{id}.
func (h *WorkersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid worker id")
		return
	}

	if err := store.DeleteWorker(r.Context(), h.DB, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "worker not found")
			return
		}
		slog.Error("failed to delete worker", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete worker")
		return
	}

	if h.Monitor != nil {
		h.Monitor.Forget(id)
	}
	slog.Info("worker deleted", "user", actor(r), "worker_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "worker deleted"})
}

func (h *WorkersHandler) reload(r *http.Request, id int64) {
	reloadWorker(r, h.Monitor, id)
}

// reloadWorker refreshes the monitor after a write. Failures are logged only;
// the write itself already succeeded.
func reloadWorker(r *http.Request, m Monitor, id int64) {
	if m == nil {
		return
	}
	if err := m.Reload(r.Context(), id); err != nil {
		slog.Warn("monitor reload failed", "worker_id", id, "error", err)
	}
}
