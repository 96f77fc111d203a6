package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) createBarter(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.createBarter"

	var req createBarterRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	userID := getUserID(r.Context())

	barter, err := s.svc.Barter.CreateBarterRequest(r.Context(), userID, req.ListingID, req.OfferDescription)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusCreated, map[string]barterResponse{"barter": toBarterResponse(barter, userID)})
}

func (s *Server) myBarters(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.myBarters"

	userID := getUserID(r.Context())

	barters, err := s.svc.Barter.GetMyRequests(r.Context(), userID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string][]barterResponse{"barters": toBarterResponses(barters, userID)})
}

func (s *Server) incomingBarters(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.incomingBarters"

	userID := getUserID(r.Context())

	barters, err := s.svc.Barter.GetRequestsForMyListings(r.Context(), userID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string][]barterResponse{"barters": toBarterResponses(barters, userID)})
}

func (s *Server) getBarter(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.getBarter"

	userID := getUserID(r.Context())

	barter, err := s.svc.Barter.GetRequest(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]barterResponse{"barter": toBarterResponse(barter, userID)})
}

func (s *Server) respondToBarter(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.respondToBarter"

	var req respondRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	userID := getUserID(r.Context())

	barter, err := s.svc.Barter.RespondToRequest(r.Context(), chi.URLParam(r, "id"), userID, *req.Accept)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]barterResponse{"barter": toBarterResponse(barter, userID)})
}

func (s *Server) sendChatMessage(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.sendChatMessage"

	var req chatMessageRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	userID := getUserID(r.Context())

	barter, err := s.svc.Barter.SendChatMessage(r.Context(), chi.URLParam(r, "id"), userID, req.Content)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusCreated, map[string]barterResponse{"barter": toBarterResponse(barter, userID)})
}

func (s *Server) completeBarter(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.completeBarter"

	var req completeRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	userID := getUserID(r.Context())

	barter, err := s.svc.Barter.CompleteBarter(r.Context(), chi.URLParam(r, "id"), userID, req.Code)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]barterResponse{"barter": toBarterResponse(barter, userID)})
}
