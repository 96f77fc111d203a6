package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/YusovID/barter-service/internal/apperrors"
	"github.com/YusovID/barter-service/internal/domain"
	"github.com/YusovID/barter-service/internal/repository"
	"github.com/google/uuid"
)

type ListingService interface {
	CreateListing(ctx context.Context, userID string, in domain.ListingInput) (*domain.Listing, error)
	UpdateListing(ctx context.Context, userID, listingID string, in domain.ListingInput) (*domain.Listing, error)
	DeleteListing(ctx context.Context, userID, listingID string) error
	GetListing(ctx context.Context, listingID string) (*domain.Listing, error)
	GetCommunityListings(ctx context.Context, userID, communityID string, limit int) ([]domain.Listing, error)
}

type ListingServiceImpl struct {
	BaseService
	listings    repository.ListingRepository
	users       repository.UserRepository
	communities repository.CommunityRepository

	now   func() time.Time
	newID func() string
}

func NewListingService(
	db Transactor,
	log *slog.Logger,
	listings repository.ListingRepository,
	users repository.UserRepository,
	communities repository.CommunityRepository,
) *ListingServiceImpl {
	return &ListingServiceImpl{
		BaseService: NewBaseService(db, log),
		listings:    listings,
		users:       users,
		communities: communities,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

func (s *ListingServiceImpl) CreateListing(ctx context.Context, userID string, in domain.ListingInput) (*domain.Listing, error) {
	const op = "internal.service.listing.CreateListing"
	log := s.log.With(slog.String("op", op), slog.String("user_id", userID), slog.String("community_id", in.CommunityID))

	ext := s.reader()

	user, err := s.users.GetByID(ctx, ext, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotAuthenticated
		}

		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if err := s.requireMember(ctx, in.CommunityID, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	listing := &domain.Listing{
		ID:             s.newID(),
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		EstimatedValue: in.EstimatedValue,
		Availability:   in.Availability,
		Images:         nonNil(in.Images),
		UserID:         user.ID,
		UserName:       user.Name,
		CommunityID:    in.CommunityID,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.listings.Create(ctx, ext, listing); err != nil {
		return nil, fmt.Errorf("%s: failed to create listing: %w", op, err)
	}

	log.Info("listing created", slog.String("listing_id", listing.ID))

	return listing, nil
}

func (s *ListingServiceImpl) requireMember(ctx context.Context, communityID, userID string) error {
	if _, err := s.communities.GetMember(ctx, s.reader(), communityID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNotMember
		}

		return fmt.Errorf("failed to check membership: %w", err)
	}

	return nil
}

// UpdateListing replaces the editable fields. The community of a listing is fixed.
func (s *ListingServiceImpl) UpdateListing(ctx context.Context, userID, listingID string, in domain.ListingInput) (*domain.Listing, error) {
	const op = "internal.service.listing.UpdateListing"

	var listing *domain.Listing

	err := s.transaction(ctx, op, func(tx repository.Tx) error {
		var err error

		listing, err = s.listings.GetByIDForUpdate(ctx, tx, listingID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if listing.UserID != userID {
			return apperrors.ErrForbidden
		}

		listing.Title = in.Title
		listing.Description = in.Description
		listing.Category = in.Category
		listing.EstimatedValue = in.EstimatedValue
		listing.Availability = in.Availability
		listing.Images = nonNil(in.Images)
		listing.UpdatedAt = s.now()

		if err := s.listings.Update(ctx, tx, listing); err != nil {
			return fmt.Errorf("%s: failed to update listing: %w", op, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("listing updated", slog.String("op", op), slog.String("listing_id", listingID))

	return listing, nil
}

// DeleteListing hides the listing; barter requests keep their snapshot of it.
func (s *ListingServiceImpl) DeleteListing(ctx context.Context, userID, listingID string) error {
	const op = "internal.service.listing.DeleteListing"

	return s.transaction(ctx, op, func(tx repository.Tx) error {
		listing, err := s.listings.GetByIDForUpdate(ctx, tx, listingID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if listing.UserID != userID {
			return apperrors.ErrForbidden
		}

		if err := s.listings.Deactivate(ctx, tx, listingID); err != nil {
			return fmt.Errorf("%s: failed to deactivate listing: %w", op, err)
		}

		return nil
	})
}

func (s *ListingServiceImpl) GetListing(ctx context.Context, listingID string) (*domain.Listing, error) {
	const op = "internal.service.listing.GetListing"

	listing, err := s.listings.GetByID(ctx, s.reader(), listingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return listing, nil
}

// GetCommunityListings returns the active listings of a community the user belongs to, newest first.
// A non-positive limit returns all of them.
func (s *ListingServiceImpl) GetCommunityListings(ctx context.Context, userID, communityID string, limit int) ([]domain.Listing, error) {
	const op = "internal.service.listing.GetCommunityListings"

	if err := s.requireMember(ctx, communityID, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	listings, err := s.listings.ListByCommunity(ctx, s.reader(), communityID, true)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list listings: %w", op, err)
	}

	if limit > 0 && len(listings) > limit {
		listings = listings[:limit]
	}

	return listings, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
