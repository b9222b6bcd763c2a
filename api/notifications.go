package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/warp/edutime/notify"
)

// ListNotifications returns the caller's inbox, newest first.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	target := inbox(id)

	items, err := h.Notifications.List(r.Context(), target)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if items == nil {
		items = []notify.Notification{}
	}
	unread, err := h.Notifications.UnreadCount(r.Context(), target)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NotificationsResponse{Items: items, Unread: unread})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	if err := h.Notifications.MarkRead(r.Context(), inbox(id), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	if err := h.Notifications.MarkAllRead(r.Context(), inbox(id)); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearNotifications empties the caller's inbox only.
func (h *Handler) ClearNotifications(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	if err := h.Notifications.Clear(r.Context(), inbox(id)); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
