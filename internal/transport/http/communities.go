package http

import (
	"fmt"
	"net/http"

	"github.com/YusovID/barter-service/internal/apperrors"
	"github.com/YusovID/barter-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

const maxListingsLimit = 200

func (s *Server) createCommunity(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.createCommunity"

	var req createCommunityRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	community, err := s.svc.Community.CreateCommunity(r.Context(), getUserID(r.Context()), domain.CommunityInput{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
	})
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusCreated, map[string]*domain.Community{"community": community})
}

func (s *Server) joinCommunity(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.joinCommunity"

	var req joinCommunityRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	community, err := s.svc.Community.JoinCommunity(r.Context(), getUserID(r.Context()), req.InviteCode)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]*domain.Community{"community": community})
}

func (s *Server) myCommunities(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.myCommunities"

	communities, err := s.svc.Community.GetUserCommunities(r.Context(), getUserID(r.Context()))
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	if communities == nil {
		communities = []domain.Community{}
	}

	s.respond(w, http.StatusOK, map[string][]domain.Community{"communities": communities})
}

func (s *Server) communityMembers(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.communityMembers"

	members, err := s.svc.Community.GetMembers(r.Context(), getUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	if members == nil {
		members = []domain.CommunityMember{}
	}

	s.respond(w, http.StatusOK, map[string][]domain.CommunityMember{"members": members})
}

func (s *Server) communityListings(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.communityListings"

	limit, err := parseLimit(r)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	listings, err := s.svc.Listing.GetCommunityListings(r.Context(), getUserID(r.Context()), chi.URLParam(r, "id"), limit)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string][]listingResponse{"listings": toListingResponses(listings)})
}

func (s *Server) communityMessages(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.communityMessages"

	msgs, err := s.svc.Community.GetMessages(r.Context(), getUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	if msgs == nil {
		msgs = []domain.CommunityMessage{}
	}

	s.respond(w, http.StatusOK, map[string][]domain.CommunityMessage{"messages": msgs})
}

func (s *Server) postCommunityMessage(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.postCommunityMessage"

	var req communityMessageRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	msg, err := s.svc.Community.SendMessage(r.Context(), chi.URLParam(r, "id"), getUserID(r.Context()), req.Content)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusCreated, map[string]*domain.CommunityMessage{"message": msg})
}

// parseLimit reads the optional ?limit= parameter. Zero means no limit.
func parseLimit(r *http.Request) (int, error) {
	var limit *int

	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		return 0, fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}

	if limit == nil {
		return 0, nil
	}

	if *limit < 0 || *limit > maxListingsLimit {
		return 0, fmt.Errorf("%w: limit must be between 0 and %d", apperrors.ErrInvalidRequest, maxListingsLimit)
	}

	return *limit, nil
}
