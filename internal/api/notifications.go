package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/hsetracker/internal/model"
	"github.com/erazemk/hsetracker/internal/store"
)

const defaultNotificationLimit = 50

// NotificationsHandler serves the in-app alert list.
type NotificationsHandler struct {
	DB *sql.DB
}

// List handles GET /api/notifications. ?unread=true limits to unread alerts,
// ?limit=N caps the count (default 50, max 500).
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	unread := false
	if v := q.Get("unread"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid unread flag")
			return
		}
		unread = b
	}

	limit := defaultNotificationLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			jsonError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	list, err := store.ListNotifications(r.Context(), h.DB, unread, limit)
	if err != nil {
		slog.Error("failed to list notifications", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if list == nil {
		list = []model.Notification{}
	}
	jsonResponse(w, http.StatusOK, list)
}

// MarkRead handles POST /api/notifications/{id}/read.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := store.MarkNotificationRead(r.Context(), h.DB, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "notification not found")
			return
		}
		slog.Error("failed to mark notification read", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "marked read"})
}
