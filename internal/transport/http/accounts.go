package http

import (
	"net/http"

	"github.com/YusovID/barter-service/internal/domain"
)

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.signup"

	var req signupRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	user, token, err := s.svc.Auth.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusCreated, authResponse{Token: token, User: toUserResponse(user)})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.login"

	var req loginRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	user, token, err := s.svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, authResponse{Token: token, User: toUserResponse(user)})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.me"

	user, err := s.svc.Auth.GetUser(r.Context(), getUserID(r.Context()))
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]userResponse{"user": toUserResponse(user)})
}

func (s *Server) completeProfile(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.completeProfile"

	var req profileRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	user, err := s.svc.Profile.CompleteProfile(r.Context(), getUserID(r.Context()), domain.ProfileInput{
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
		City:     req.City,
		State:    req.State,
		ZipCode:  req.ZipCode,
		Bio:      req.Bio,
	})
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]userResponse{"user": toUserResponse(user)})
}
