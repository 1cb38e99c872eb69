package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teamboardhq/teamboard/internal/service"
	"github.com/teamboardhq/teamboard/pkg/middleware"
	"github.com/teamboardhq/teamboard/pkg/pagination"
)

// NotificationHandler handles HTTP requests for notification endpoints.
// All operations are scoped to the authenticated user.
type NotificationHandler struct {
	service *service.NotificationService
}

// NewNotificationHandler creates a new notification HTTP handler.
func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	result, err := h.service.List(r.Context(), userID, pagination.FromRequest(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: result})
}

// MarkRead handles POST /api/v1/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.service.MarkRead(r.Context(), userID, id); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"id": id, "status": "read"}})
}

// MarkAllRead handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	if err := h.service.MarkAllRead(r.Context(), userID); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"status": "all read"}})
}
