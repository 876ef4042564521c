package httphandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"admin-notify-service/internal/feed"
	"admin-notify-service/internal/response"
	"admin-notify-service/internal/upstream"
)

type FeedHandler struct {
	store    *feed.Store
	upstream *upstream.Client
	logger   *zap.Logger
}

func NewFeedHandler(store *feed.Store, up *upstream.Client, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{store: store, upstream: up, logger: logger}
}

func (h *FeedHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.store.List())
}

func (h *FeedHandler) CountUnread(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]int{"count": h.store.UnreadCount()})
}

func (h *FeedHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.MarkRead(id); err != nil {
		if errors.Is(err, feed.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "notification not found")
			return
		}
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.NoContent(w)
}

func (h *FeedHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	h.store.MarkAllRead()
	response.NoContent(w)
}

func (h *FeedHandler) ClearNotifications(w http.ResponseWriter, r *http.Request) {
	h.store.Clear()
	h.logger.Info("notification feed cleared")
	response.NoContent(w)
}

// ConnectionStatus reports the upstream feed state for the dashboard's
// connection indicator.
func (h *FeedHandler) ConnectionStatus(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"state":      h.upstream.Status().String(),
		"session_id": h.upstream.SessionID(),
	})
}
