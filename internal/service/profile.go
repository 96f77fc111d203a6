package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/YusovID/barter-service/internal/domain"
	"github.com/YusovID/barter-service/internal/repository"
)

type ProfileService interface {
	CompleteProfile(ctx context.Context, userID string, in domain.ProfileInput) (*domain.User, error)
}

type ProfileServiceImpl struct {
	BaseService
	users repository.UserRepository
	stats repository.StatsRepository
}

func NewProfileService(db Transactor, log *slog.Logger, users repository.UserRepository, stats repository.StatsRepository) *ProfileServiceImpl {
	return &ProfileServiceImpl{
		BaseService: NewBaseService(db, log),
		users:       users,
		stats:       stats,
	}
}

// CompleteProfile stores the profile and marks the phone and address verifications it proves.
func (s *ProfileServiceImpl) CompleteProfile(ctx context.Context, userID string, in domain.ProfileInput) (*domain.User, error) {
	const op = "internal.service.profile.CompleteProfile"

	var user *domain.User

	err := s.transaction(ctx, op, func(tx repository.Tx) error {
		var err error

		user, err = s.users.GetByIDForUpdate(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		user.FullName = in.FullName
		user.Phone = in.Phone
		user.Address = in.Address
		user.City = in.City
		user.State = in.State
		user.ZipCode = in.ZipCode
		user.Bio = in.Bio
		user.IsProfileComplete = true

		if err := s.users.Update(ctx, tx, user); err != nil {
			return fmt.Errorf("%s: failed to update user: %w", op, err)
		}

		stats, err := s.stats.GetForUpdate(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("%s: failed to get stats with lock: %w", op, err)
		}

		changed := false

		if in.Phone != "" && !stats.Verifications.Phone {
			stats.Verifications.Phone = true
			changed = true
		}

		if in.Address != "" && in.City != "" && !stats.Verifications.Address {
			stats.Verifications.Address = true
			changed = true
		}

		if !changed {
			return nil
		}

		if err := s.stats.Save(ctx, tx, stats); err != nil {
			return fmt.Errorf("%s: failed to save stats: %w", op, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("profile completed", slog.String("op", op), slog.String("user_id", userID))

	return user, nil
}
