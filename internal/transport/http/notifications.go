package http

import (
	"net/http"

	"github.com/YusovID/barter-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

func (s *Server) notifications(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.notifications"

	ns, err := s.svc.Notification.GetMyNotifications(r.Context(), getUserID(r.Context()))
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	if ns == nil {
		ns = []domain.Notification{}
	}

	s.respond(w, http.StatusOK, map[string][]domain.Notification{"notifications": ns})
}

func (s *Server) unreadCount(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.unreadCount"

	count, err := s.svc.Notification.GetUnreadCount(r.Context(), getUserID(r.Context()))
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]int{"unread_count": count})
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.markRead"

	if err := s.svc.Notification.MarkAsRead(r.Context(), getUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) markAllRead(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.markAllRead"

	marked, err := s.svc.Notification.MarkAllAsRead(r.Context(), getUserID(r.Context()))
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]int{"marked_count": marked})
}
