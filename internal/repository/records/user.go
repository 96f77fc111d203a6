package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/YusovID/barter-service/internal/apperrors"
	"github.com/YusovID/barter-service/internal/domain"
	"github.com/YusovID/barter-service/internal/repository"
	"github.com/jmoiron/sqlx"
)

type UserRepository struct {
	store repository.RecordStore
	log   *slog.Logger
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(store repository.RecordStore, log *slog.Logger) *UserRepository {
	return &UserRepository{store: store, log: log}
}

type emailIndex struct {
	UserID string `json:"user_id"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create reserves the email in the index and then stores the user; run it in a transaction.
func (r *UserRepository) Create(ctx context.Context, ext sqlx.ExtContext, user *domain.User) error {
	const op = "internal.repository.records.user.Create"

	user.Email = normalizeEmail(user.Email)

	idx, err := json.Marshal(emailIndex{UserID: user.ID})
	if err != nil {
		return fmt.Errorf("%s: failed to encode email index: %w", op, err)
	}

	if err := r.store.Insert(ctx, ext, nsUserEmails, user.Email, idx); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return &apperrors.UserAlreadyExistsError{Email: user.Email}
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	version, err := save(ctx, r.store, ext, nsUsers, user.ID, user, 0)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user.Version = version

	r.log.Debug("user stored", slog.String("op", op), slog.String("user_id", user.ID))

	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, ext sqlx.ExtContext, id string) (*domain.User, error) {
	const op = "internal.repository.records.user.GetByID"

	rec, err := r.store.Get(ctx, ext, nsUsers, id)

	return fromUserRecord(op, id, rec, err)
}

func (r *UserRepository) GetByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*domain.User, error) {
	const op = "internal.repository.records.user.GetByIDForUpdate"

	rec, err := r.store.GetForUpdate(ctx, tx, nsUsers, id)

	return fromUserRecord(op, id, rec, err)
}

func (r *UserRepository) GetByEmail(ctx context.Context, ext sqlx.ExtContext, email string) (*domain.User, error) {
	const op = "internal.repository.records.user.GetByEmail"

	email = normalizeEmail(email)

	idx, err := GetRecord(ctx, r.store, ext, nsUserEmails, email, emailIndex{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if idx.UserID == "" {
		return nil, fmt.Errorf("%s: %w: user with email '%s'", op, apperrors.ErrNotFound, email)
	}

	return r.GetByID(ctx, ext, idx.UserID)
}

func fromUserRecord(op, id string, rec *domain.Record, err error) (*domain.User, error) {
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w: user with id '%s'", op, apperrors.ErrNotFound, id)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := decode[domain.User](rec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user.Version = rec.Version

	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, ext sqlx.ExtContext, user *domain.User) error {
	const op = "internal.repository.records.user.Update"

	version, err := save(ctx, r.store, ext, nsUsers, user.ID, user, user.Version)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user.Version = version

	return nil
}
