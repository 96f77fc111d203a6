package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/YusovID/barter-service/internal/apperrors"
	"github.com/YusovID/barter-service/internal/domain"
	"github.com/YusovID/barter-service/internal/repository"
	"github.com/jmoiron/sqlx"
)

type ListingRepository struct {
	store repository.RecordStore
	log   *slog.Logger
	now   func() time.Time
}

var _ repository.ListingRepository = (*ListingRepository)(nil)

func NewListingRepository(store repository.RecordStore, log *slog.Logger) *ListingRepository {
	return &ListingRepository{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *ListingRepository) Create(ctx context.Context, ext sqlx.ExtContext, listing *domain.Listing) error {
	const op = "internal.repository.records.listing.Create"

	version, err := save(ctx, r.store, ext, nsListings, listing.ID, listing, 0)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	listing.Version = version

	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, ext sqlx.ExtContext, id string) (*domain.Listing, error) {
	const op = "internal.repository.records.listing.GetByID"

	rec, err := r.store.Get(ctx, ext, nsListings, id)

	return fromListingRecord(op, id, rec, err)
}

func (r *ListingRepository) GetByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*domain.Listing, error) {
	const op = "internal.repository.records.listing.GetByIDForUpdate"

	rec, err := r.store.GetForUpdate(ctx, tx, nsListings, id)

	return fromListingRecord(op, id, rec, err)
}

func fromListingRecord(op, id string, rec *domain.Record, err error) (*domain.Listing, error) {
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, &apperrors.ListingNotFoundError{ListingID: id}
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	listing, err := decode[domain.Listing](rec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	listing.Version = rec.Version

	return listing, nil
}

func (r *ListingRepository) Update(ctx context.Context, ext sqlx.ExtContext, listing *domain.Listing) error {
	const op = "internal.repository.records.listing.Update"

	version, err := save(ctx, r.store, ext, nsListings, listing.ID, listing, listing.Version)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &apperrors.ListingNotFoundError{ListingID: listing.ID}
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	listing.Version = version

	return nil
}

func (r *ListingRepository) Deactivate(ctx context.Context, tx repository.Tx, id string) error {
	const op = "internal.repository.records.listing.Deactivate"
	log := r.log.With(slog.String("op", op), slog.String("listing_id", id))

	listing, err := r.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}

	if !listing.IsActive {
		log.Debug("listing already inactive")
		return nil
	}

	listing.IsActive = false
	listing.UpdatedAt = r.now()

	if err := r.Update(ctx, tx, listing); err != nil {
		return err
	}

	log.Info("listing deactivated")

	return nil
}

// ListByCommunity returns the community's listings, newest first.
func (r *ListingRepository) ListByCommunity(ctx context.Context, ext sqlx.ExtContext, communityID string, activeOnly bool) ([]domain.Listing, error) {
	const op = "internal.repository.records.listing.ListByCommunity"

	recs, err := r.store.FindByField(ctx, ext, nsListings, "community_id", communityID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	all, err := decodeAll(recs, func(l *domain.Listing, v int64) { l.Version = v })
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	listings := all[:0]
	for _, l := range all {
		if activeOnly && !l.IsActive {
			continue
		}

		listings = append(listings, l)
	}

	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].CreatedAt.After(listings[j].CreatedAt)
	})

	return listings, nil
}
