package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/YusovID/barter-service/internal/apperrors"
	"github.com/YusovID/barter-service/internal/domain"
	"github.com/YusovID/barter-service/internal/repository"
	"github.com/jmoiron/sqlx"
)

type BarterRepository struct {
	store repository.RecordStore
	log   *slog.Logger
}

var _ repository.BarterRepository = (*BarterRepository)(nil)

func NewBarterRepository(store repository.RecordStore, log *slog.Logger) *BarterRepository {
	return &BarterRepository{store: store, log: log}
}

func (r *BarterRepository) Create(ctx context.Context, ext sqlx.ExtContext, req *domain.BarterRequest) error {
	const op = "internal.repository.records.barter.Create"

	raw, err := encode(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.store.Insert(ctx, ext, nsBarters, req.ID, raw); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req.Version = 1

	return nil
}

func (r *BarterRepository) GetByID(ctx context.Context, ext sqlx.ExtContext, id string) (*domain.BarterRequest, error) {
	const op = "internal.repository.records.barter.GetByID"

	rec, err := r.store.Get(ctx, ext, nsBarters, id)

	return r.fromRecord(op, id, rec, err)
}

func (r *BarterRepository) GetByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*domain.BarterRequest, error) {
	const op = "internal.repository.records.barter.GetByIDForUpdate"

	rec, err := r.store.GetForUpdate(ctx, tx, nsBarters, id)

	return r.fromRecord(op, id, rec, err)
}

func (r *BarterRepository) fromRecord(op, id string, rec *domain.Record, err error) (*domain.BarterRequest, error) {
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, &apperrors.RequestNotFoundError{RequestID: id}
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := decode[domain.BarterRequest](rec)
	if err != nil {
		r.log.Error("rejected malformed barter request", slog.String("op", op), slog.String("request_id", id))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req.Version = rec.Version

	return req, nil
}

func (r *BarterRepository) Update(ctx context.Context, ext sqlx.ExtContext, req *domain.BarterRequest) error {
	const op = "internal.repository.records.barter.Update"

	raw, err := encode(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.store.Update(ctx, ext, nsBarters, req.ID, raw, req.Version); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &apperrors.RequestNotFoundError{RequestID: req.ID}
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	req.Version++

	return nil
}

func (r *BarterRepository) ListByRequester(ctx context.Context, ext sqlx.ExtContext, userID string) ([]domain.BarterRequest, error) {
	return r.listBy(ctx, ext, "internal.repository.records.barter.ListByRequester", "requester_id", userID)
}

func (r *BarterRepository) ListByOwner(ctx context.Context, ext sqlx.ExtContext, userID string) ([]domain.BarterRequest, error) {
	return r.listBy(ctx, ext, "internal.repository.records.barter.ListByOwner", "owner_id", userID)
}

func (r *BarterRepository) ListByListing(ctx context.Context, ext sqlx.ExtContext, listingID string) ([]domain.BarterRequest, error) {
	return r.listBy(ctx, ext, "internal.repository.records.barter.ListByListing", "listing_id", listingID)
}

// listBy returns the matching requests, newest first.
func (r *BarterRepository) listBy(ctx context.Context, ext sqlx.ExtContext, op, field, value string) ([]domain.BarterRequest, error) {
	recs, err := r.store.FindByField(ctx, ext, nsBarters, field, value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	reqs, err := decodeAll(recs, func(b *domain.BarterRequest, v int64) { b.Version = v })
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sort.SliceStable(reqs, func(i, j int) bool {
		return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
	})

	return reqs, nil
}
