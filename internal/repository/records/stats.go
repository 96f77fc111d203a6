package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/YusovID/barter-service/internal/apperrors"
	"github.com/YusovID/barter-service/internal/domain"
	"github.com/YusovID/barter-service/internal/repository"
	"github.com/jmoiron/sqlx"
)

type StatsRepository struct {
	store repository.RecordStore
}

var _ repository.StatsRepository = (*StatsRepository)(nil)

func NewStatsRepository(store repository.RecordStore) *StatsRepository {
	return &StatsRepository{store: store}
}

func (r *StatsRepository) Get(ctx context.Context, ext sqlx.ExtContext, userID string) (*domain.UserStats, error) {
	const op = "internal.repository.records.stats.Get"

	rec, err := r.store.Get(ctx, ext, nsStats, userID)

	return fromStatsRecord(op, userID, rec, err)
}

func (r *StatsRepository) GetForUpdate(ctx context.Context, tx repository.Tx, userID string) (*domain.UserStats, error) {
	const op = "internal.repository.records.stats.GetForUpdate"

	rec, err := r.store.GetForUpdate(ctx, tx, nsStats, userID)

	return fromStatsRecord(op, userID, rec, err)
}

func fromStatsRecord(op, userID string, rec *domain.Record, err error) (*domain.UserStats, error) {
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			stats := domain.DefaultUserStats(userID)
			return &stats, nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stats, err := decode[domain.UserStats](rec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stats.Version = rec.Version

	return stats, nil
}

func (r *StatsRepository) Save(ctx context.Context, ext sqlx.ExtContext, stats *domain.UserStats) error {
	const op = "internal.repository.records.stats.Save"

	version, err := save(ctx, r.store, ext, nsStats, stats.UserID, stats, stats.Version)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	stats.Version = version

	return nil
}
