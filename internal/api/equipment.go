package api

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/hsetracker/internal/expiry"
	"github.com/erazemk/hsetracker/internal/model"
	"github.com/erazemk/hsetracker/internal/store"
)

// MaxExpiringWindow bounds the ?within= parameter in days.
const MaxExpiringWindow = 365

// EquipmentHandler handles equipment record endpoints.
type EquipmentHandler struct {
	DB       *sql.DB
	Monitor  Monitor
	Location *time.Location
	Now      func() time.Time
}

type equipmentRequest struct {
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
	ReceptionDate string `json:"reception_date"`
	ValidityDate  string `json:"validity_date"`
}

func (req equipmentRequest) equipment() model.Equipment {
	return model.Equipment{
		Name:          strings.TrimSpace(req.Name),
		Quantity:      req.Quantity,
		ReceptionDate: strings.TrimSpace(req.ReceptionDate),
		ValidityDate:  strings.TrimSpace(req.ValidityDate),
	}
}

// empty reports whether the slot carries no data, which clears it.
func (req equipmentRequest) empty() bool {
	return req.Quantity == 0 && strings.TrimSpace(req.ReceptionDate) == "" && strings.TrimSpace(req.ValidityDate) == ""
}

// withStatus fills the derived status of each row as of now.
func (h *EquipmentHandler) withStatus(items []model.Equipment) []model.Equipment {
	now := h.Now()
	for i := range items {
		items[i].ApplyStatus(expiry.Classify(items[i].ReceptionDate, items[i].ValidityDate, now, h.Location))
	}
	return items
}

// Get handles GET /api/workers/{id}/equipment.
func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid worker id")
		return
	}

	record, err := store.GetEquipmentRecord(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get equipment record", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get equipment record")
		return
	}
	if record == nil {
		jsonError(w, http.StatusNotFound, "worker not found")
		return
	}

	record.Equipment = h.withStatus(record.Equipment)
	jsonResponse(w, http.StatusOK, record)
}

// Add handles POST /api/workers/{id}/equipment: configures a single slot.
func (h *EquipmentHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid worker id")
		return
	}

	var req equipmentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item := req.equipment()
	if err := model.ValidateEquipment(item); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.save(w, r, id, []model.Equipment{item}, http.StatusCreated)
}

// Save handles PUT /api/workers/{id}/equipment: saves the whole sheet.
// Configured slots must be complete; all-empty slots are cleared.
func (h *EquipmentHandler) Save(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid worker id")
		return
	}

	var req []equipmentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]model.Equipment, 0, len(req))
	seen := make(map[string]bool, len(req))
	for _, er := range req {
		item := er.equipment()
		if item.Name == "" {
			jsonError(w, http.StatusBadRequest, "equipment name required")
			return
		}
		if seen[item.Name] {
			jsonError(w, http.StatusBadRequest, fmt.Sprintf("duplicate equipment %s", item.Name))
			return
		}
		seen[item.Name] = true

		if !er.empty() {
			if err := model.ValidateEquipment(item); err != nil {
				jsonError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		items = append(items, item)
	}

	h.save(w, r, id, items, http.StatusOK)
}

func (h *EquipmentHandler) save(w http.ResponseWriter, r *http.Request, id int64, items []model.Equipment, status int) {
	if err := store.SaveEquipmentRecord(r.Context(), h.DB, id, items); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "worker not found")
			return
		}
		slog.Error("failed to save equipment", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save equipment")
		return
	}

	reloadWorker(r, h.Monitor, id)
	slog.Info("equipment saved", "user", actor(r), "worker_id", id, "items", len(items))

	record, err := store.GetEquipmentRecord(r.Context(), h.DB, id)
	if err != nil || record == nil {
		jsonError(w, http.StatusInternalServerError, "failed to load equipment record")
		return
	}
	record.Equipment = h.withStatus(record.Equipment)
	jsonResponse(w, status, record)
}

// Delete handles DELETE /api/workers/{id}/equipment/{name}.
func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid worker id")
		return
	}
	name := r.PathValue("name")

	if err := store.DeleteEquipment(r.Context(), h.DB, id, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "equipment not found")
			return
		}
		slog.Error("failed to delete equipment", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete equipment")
		return
	}

	reloadWorker(r, h.Monitor, id)
	slog.Info("equipment removed", "user", actor(r), "worker_id", id, "equipment", name)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "equipment removed"})
}

// Expiring handles GET /api/equipment/expiring?within=N. It lists equipment
// that is expired or expires within N days (default 7).
func (h *EquipmentHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	within := expiry.SoonWindow
	if v := r.URL.Query().Get("within"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > MaxExpiringWindow {
			jsonError(w, http.StatusBadRequest, fmt.Sprintf("within must be between 0 and %d", MaxExpiringWindow))
			return
		}
		within = n
	}

	until := h.Now().In(h.Location).AddDate(0, 0, within).Format(expiry.DateLayout)
	items, err := store.ListExpiring(r.Context(), h.DB, until)
	if err != nil {
		slog.Error("failed to list expiring equipment", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list expiring equipment")
		return
	}

	items = h.withStatus(items)
	filtered := items[:0]
	for _, it := range items {
		if it.Kind != expiry.KindUnset {
			filtered = append(filtered, it)
		}
	}
	if filtered == nil {
		filtered = []model.Equipment{}
	}
	jsonResponse(w, http.StatusOK, filtered)
}

// Summary handles GET /api/equipment/summary.
func (h *EquipmentHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if h.Monitor == nil {
		jsonError(w, http.StatusServiceUnavailable, "monitor not running")
		return
	}
	jsonResponse(w, http.StatusOK, h.Monitor.Summary())
}
