package http

import (
	"fmt"
	"net/http"

	"github.com/YusovID/barter-service/internal/apperrors"
	"github.com/YusovID/barter-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func (req listingRequest) input(communityID string) (domain.ListingInput, error) {
	value := decimal.Zero

	if req.EstimatedValue != "" {
		var err error

		value, err = decimal.NewFromString(req.EstimatedValue.String())
		if err != nil {
			return domain.ListingInput{}, fmt.Errorf("%w: estimated_value: %w", apperrors.ErrInvalidRequest, err)
		}
	}

	return domain.ListingInput{
		Title:          req.Title,
		Description:    req.Description,
		Category:       domain.ListingCategory(req.Category),
		EstimatedValue: value,
		Availability:   req.Availability,
		Images:         req.Images,
		CommunityID:    communityID,
	}, nil
}

func (s *Server) createListing(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.createListing"

	var req createListingRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	in, err := req.input(req.CommunityID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	listing, err := s.svc.Listing.CreateListing(r.Context(), getUserID(r.Context()), in)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusCreated, map[string]listingResponse{"listing": toListingResponse(listing)})
}

func (s *Server) getListing(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.getListing"

	listing, err := s.svc.Listing.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]listingResponse{"listing": toListingResponse(listing)})
}

func (s *Server) updateListing(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.updateListing"

	var req listingRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	in, err := req.input("")
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	listing, err := s.svc.Listing.UpdateListing(r.Context(), getUserID(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]listingResponse{"listing": toListingResponse(listing)})
}

func (s *Server) deleteListing(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.deleteListing"

	if err := s.svc.Listing.DeleteListing(r.Context(), getUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
