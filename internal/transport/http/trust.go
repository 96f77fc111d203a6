package http

import (
	"context"
	"net/http"

	"github.com/YusovID/barter-service/internal/apperrors"
	"github.com/go-chi/chi/v5"
)

func (s *Server) trustScore(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.trustScore"

	userID := chi.URLParam(r, "id")

	if _, err := s.svc.Auth.GetUser(r.Context(), userID); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	score, err := s.svc.Trust.CalculateTrustScore(r.Context(), userID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, score)
}

func (s *Server) rateUser(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.rateUser"

	var req ratingRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	target := chi.URLParam(r, "id")
	if err := s.checkRatable(r.Context(), target); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	if err := s.svc.Trust.AddRating(r.Context(), target, req.Rating); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) endorseUser(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.endorseUser"

	target := chi.URLParam(r, "id")
	if err := s.checkRatable(r.Context(), target); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	if err := s.svc.Trust.AddEndorsement(r.Context(), target); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// checkRatable rejects self-ratings and unknown users.
func (s *Server) checkRatable(ctx context.Context, target string) error {
	if target == getUserID(ctx) {
		return apperrors.ErrSelfRating
	}

	if _, err := s.svc.Auth.GetUser(ctx, target); err != nil {
		return err
	}

	return nil
}
