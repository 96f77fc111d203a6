package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/YusovID/barter-service/internal/apperrors"
	"github.com/YusovID/barter-service/internal/domain"
	"github.com/YusovID/barter-service/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type TokenIssuer interface {
	GenerateToken(userID, email string) (string, error)
}

type AuthService interface {
	Signup(ctx context.Context, email, password, name string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

type AuthServiceImpl struct {
	BaseService
	users  repository.UserRepository
	stats  repository.StatsRepository
	tokens TokenIssuer

	now   func() time.Time
	newID func() string
	cost  int
}

func NewAuthService(
	db Transactor,
	log *slog.Logger,
	users repository.UserRepository,
	stats repository.StatsRepository,
	tokens TokenIssuer,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		BaseService: NewBaseService(db, log),
		users:       users,
		stats:       stats,
		tokens:      tokens,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
		cost:        bcrypt.DefaultCost,
	}
}

// Signup creates the account and its initial trust stats, and returns a token for it.
func (s *AuthServiceImpl) Signup(ctx context.Context, email, password, name string) (*domain.User, string, error) {
	const op = "internal.service.auth.Signup"
	log := s.log.With(slog.String("op", op))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, "", fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user := &domain.User{
		ID:           s.newID(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}

	err = s.transaction(ctx, op, func(tx repository.Tx) error {
		if err := s.users.Create(ctx, tx, user); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		stats := domain.DefaultUserStats(user.ID)
		if err := s.stats.Save(ctx, tx, &stats); err != nil {
			return fmt.Errorf("%s: failed to create stats: %w", op, err)
		}

		return nil
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user signed up", slog.String("user_id", user.ID))

	return user, token, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	const op = "internal.service.auth.Login"

	user, err := s.users.GetByEmail(ctx, s.reader(), email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", apperrors.ErrInvalidCredentials
		}

		return nil, "", fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user logged in", slog.String("op", op), slog.String("user_id", user.ID))

	return user, token, nil
}

func (s *AuthServiceImpl) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	const op = "internal.service.auth.GetUser"

	user, err := s.users.GetByID(ctx, s.reader(), userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}
