package api

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/hsetracker/internal/imaging"
	"github.com/erazemk/hsetracker/internal/model"
	"github.com/erazemk/hsetracker/internal/store"
)

// StockHandler handles PPE stock endpoints.
type StockHandler struct {
	DB *sql.DB
}

type stockRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	MinStock int    `json:"min_stock"`
	Supplier string `json:"supplier"`
}

func (req *stockRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	req.Supplier = strings.TrimSpace(req.Supplier)
	switch {
	case req.Name == "":
		return "name required"
	case req.Quantity < 0:
		return "quantity cannot be negative"
	case req.MinStock < 0:
		return "min_stock cannot be negative"
	}
	return ""
}

func (req stockRequest) item(id int64) model.StockItem {
	return model.StockItem{
		ID:       id,
		Name:     req.Name,
		Category: req.Category,
		Quantity: req.Quantity,
		MinStock: req.MinStock,
		Supplier: req.Supplier,
	}
}

type adjustRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

// stockView adds the derived stock level to an item.
type stockView struct {
	model.StockItem
	Level string `json:"level"`
}

func viewStock(items []model.StockItem) []stockView {
	views := make([]stockView, len(items))
	for i, s := range items {
		views[i] = stockView{StockItem: s, Level: s.StockLevel()}
	}
	return views
}

// List handles GET /api/stock. Optional ?category= filter.
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListStockItems(r.Context(), h.DB, r.URL.Query().Get("category"))
	if err != nil {
		slog.Error("failed to list stock", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list stock")
		return
	}
	jsonResponse(w, http.StatusOK, viewStock(items))
}

// Low handles GET /api/stock/low.
func (h *StockHandler) Low(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListLowStock(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list low stock", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list low stock")
		return
	}
	jsonResponse(w, http.StatusOK, viewStock(items))
}

// Create handles POST /api/stock.
func (h *StockHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := store.CreateStockItem(r.Context(), h.DB, req.item(0))
	if err != nil {
		slog.Error("failed to create stock item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create stock item")
		return
	}

	slog.Info("stock item created", "user", actor(r), "item", item.Name, "quantity", item.Quantity)
	jsonResponse(w, http.StatusCreated, stockView{StockItem: *item, Level: item.StockLevel()})
}

// Get handles GET /api/stock/{id}.
func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid stock id")
		return
	}

	item, err := store.GetStockItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get stock item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get stock item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "stock item not found")
		return
	}
	jsonResponse(w, http.StatusOK, stockView{StockItem: *item, Level: item.StockLevel()})
}

// Update handles PUT /api/stock/{id}.
func (h *StockHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid stock id")
		return
	}

	var req stockRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	if err := store.UpdateStockItem(r.Context(), h.DB, req.item(id)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "stock item not found")
			return
		}
		slog.Error("failed to update stock item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update stock item")
		return
	}

	h.Get(w, r)
}

// Delete handles DELETE /api/stock/{id}.
func (h *StockHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid stock id")
		return
	}

	if err := store.DeleteStockItem(r.Context(), h.DB, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "stock item not found")
			return
		}
		slog.Error("failed to delete stock item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete stock item")
		return
	}

	slog.Info("stock item deleted", "user", actor(r), "item_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "stock item deleted"})
}

// Adjust handles POST /api/stock/{id}/adjust for receipts (positive delta)
// and issues (negative delta).
func (h *StockHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid stock id")
		return
	}

	var req adjustRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Delta == 0 {
		jsonError(w, http.StatusBadRequest, "delta must be non-zero")
		return
	}

	item, err := store.AdjustStock(r.Context(), h.DB, id, req.Delta)
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, "stock item not found")
		return
	case errors.Is(err, store.ErrInsufficientStock):
		jsonError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		slog.Error("failed to adjust stock", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to adjust stock")
		return
	}

	slog.Info("stock adjusted", "user", actor(r), "item", item.Name, "delta", req.Delta, "reason", req.Reason, "quantity", item.Quantity)
	if item.StockLevel() != model.StockLevelNormal {
		slog.Warn("stock below minimum", "item", item.Name, "quantity", item.Quantity, "min_stock", item.MinStock)
	}
	jsonResponse(w, http.StatusOK, stockView{StockItem: *item, Level: item.StockLevel()})
}

// UploadPhoto handles PUT /api/stock/{id}/photo. The body is either the raw
// image or a multipart form with a "photo" file.
func (h *StockHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid stock id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+1<<20)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("photo")
		if err != nil {
			jsonError(w, http.StatusBadRequest, "photo file required")
			return
		}
		defer file.Close()
		src = file
	}

	photo, err := imaging.Process(src)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetStockPhoto(r.Context(), h.DB, id, photo.Data, photo.MIME); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "stock item not found")
			return
		}
		slog.Error("failed to save photo", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save photo")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{"message": "photo uploaded", "width": photo.Width, "height": photo.Height})
}

// GetPhoto handles GET /api/stock/{id}/photo. ?size=thumb returns a thumbnail.
func (h *StockHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid stock id")
		return
	}

	data, mime, err := store.GetStockPhoto(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get photo", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get photo")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}

	if r.URL.Query().Get("size") == "thumb" {
		thumb, err := imaging.Thumbnail(data)
		if err != nil {
			slog.Error("failed to make thumbnail", "item_id", id, "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to make thumbnail")
			return
		}
		data, mime = thumb.Data, thumb.MIME
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}
