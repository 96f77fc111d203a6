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
	"github.com/jmoiron/sqlx"
)

const maxInviteCodeAttempts = 5

type CommunityService interface {
	CreateCommunity(ctx context.Context, userID string, in domain.CommunityInput) (*domain.Community, error)
	JoinCommunity(ctx context.Context, userID, code string) (*domain.Community, error)
	GetUserCommunities(ctx context.Context, userID string) ([]domain.Community, error)
	GetMembers(ctx context.Context, userID, communityID string) ([]domain.CommunityMember, error)
	SendMessage(ctx context.Context, communityID, userID, content string) (*domain.CommunityMessage, error)
	GetMessages(ctx context.Context, userID, communityID string) ([]domain.CommunityMessage, error)
}

type CommunityServiceImpl struct {
	BaseService
	communities repository.CommunityRepository
	users       repository.UserRepository

	now   func() time.Time
	newID func() string
	codes func() (string, error)
}

func NewCommunityService(
	db Transactor,
	log *slog.Logger,
	communities repository.CommunityRepository,
	users repository.UserRepository,
) *CommunityServiceImpl {
	return &CommunityServiceImpl{
		BaseService: NewBaseService(db, log),
		communities: communities,
		users:       users,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
		codes:       func() (string, error) { return generateCode(inviteCodeLength) },
	}
}

// CreateCommunity stores the community with a fresh invite code and makes the creator its admin.
func (s *CommunityServiceImpl) CreateCommunity(ctx context.Context, userID string, in domain.CommunityInput) (*domain.Community, error) {
	const op = "internal.service.community.CreateCommunity"
	log := s.log.With(slog.String("op", op), slog.String("user_id", userID))

	user, err := s.resolveUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for attempt := 1; attempt <= maxInviteCodeAttempts; attempt++ {
		code, err := s.codes()
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate invite code: %w", op, err)
		}

		now := s.now()
		community := &domain.Community{
			ID:          s.newID(),
			Name:        in.Name,
			Description: in.Description,
			Location:    in.Location,
			InviteCode:  code,
			CreatedBy:   user.ID,
			MemberCount: 1,
			CreatedAt:   now,
		}

		err = s.transaction(ctx, op, func(tx repository.Tx) error {
			if err := s.communities.Create(ctx, tx, community); err != nil {
				return err
			}

			return s.communities.AddMember(ctx, tx, &domain.CommunityMember{
				CommunityID: community.ID,
				UserID:      user.ID,
				UserName:    user.Name,
				Role:        domain.MemberRoleAdmin,
				JoinedAt:    now,
			})
		})

		switch {
		case err == nil:
			log.Info("community created", slog.String("community_id", community.ID))
			return community, nil
		case errors.Is(err, apperrors.ErrAlreadyExists):
			log.Warn("invite code collision, retrying", slog.Int("attempt", attempt))
		default:
			return nil, fmt.Errorf("%s: failed to create community: %w", op, err)
		}
	}

	return nil, fmt.Errorf("%s: no free invite code after %d attempts: %w", op, maxInviteCodeAttempts, apperrors.ErrConflict)
}

// JoinCommunity adds the user to the community with the given invite code. The code is case-insensitive.
func (s *CommunityServiceImpl) JoinCommunity(ctx context.Context, userID, code string) (*domain.Community, error) {
	const op = "internal.service.community.JoinCommunity"
	log := s.log.With(slog.String("op", op), slog.String("user_id", userID))

	user, err := s.resolveUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	found, err := s.communities.GetByInviteCode(ctx, s.reader(), strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var community *domain.Community

	err = s.transaction(ctx, op, func(tx repository.Tx) error {
		var err error

		community, err = s.communities.GetByIDForUpdate(ctx, tx, found.ID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		err = s.communities.AddMember(ctx, tx, &domain.CommunityMember{
			CommunityID: community.ID,
			UserID:      user.ID,
			UserName:    user.Name,
			Role:        domain.MemberRoleMember,
			JoinedAt:    s.now(),
		})
		if err != nil {
			if errors.Is(err, apperrors.ErrAlreadyExists) {
				return apperrors.ErrAlreadyMember
			}

			return fmt.Errorf("%s: failed to add member: %w", op, err)
		}

		community.MemberCount++

		if err := s.communities.Update(ctx, tx, community); err != nil {
			return fmt.Errorf("%s: failed to update member count: %w", op, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("user joined community", slog.String("community_id", community.ID))

	return community, nil
}

func (s *CommunityServiceImpl) GetUserCommunities(ctx context.Context, userID string) ([]domain.Community, error) {
	const op = "internal.service.community.GetUserCommunities"

	communities, err := s.communities.ListUserCommunities(ctx, s.reader(), userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return communities, nil
}

// GetMembers lists the members of a community. Only members may see them.
func (s *CommunityServiceImpl) GetMembers(ctx context.Context, userID, communityID string) ([]domain.CommunityMember, error) {
	const op = "internal.service.community.GetMembers"

	ext := s.reader()

	if _, err := s.requireMember(ctx, ext, communityID, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	members, err := s.communities.ListMembers(ctx, ext, communityID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return members, nil
}

// SendMessage posts content to the community's board. Only members may post.
func (s *CommunityServiceImpl) SendMessage(ctx context.Context, communityID, userID, content string) (*domain.CommunityMessage, error) {
	const op = "internal.service.community.SendMessage"
	log := s.log.With(slog.String("op", op), slog.String("community_id", communityID), slog.String("user_id", userID))

	if userID == "" {
		return nil, apperrors.ErrNotAuthenticated
	}

	var msg *domain.CommunityMessage

	err := s.transaction(ctx, op, func(tx repository.Tx) error {
		member, err := s.requireMember(ctx, tx, communityID, userID)
		if err != nil {
			return err
		}

		msg = &domain.CommunityMessage{
			ID:          s.newID(),
			CommunityID: communityID,
			UserID:      userID,
			UserName:    member.UserName,
			Content:     content,
			CreatedAt:   s.now(),
		}

		if err := s.communities.AddMessage(ctx, tx, msg); err != nil {
			return fmt.Errorf("%s: failed to store message: %w", op, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("community message posted", slog.String("message_id", msg.ID))

	return msg, nil
}

// GetMessages lists the community's board oldest first. Only members may read it.
func (s *CommunityServiceImpl) GetMessages(ctx context.Context, userID, communityID string) ([]domain.CommunityMessage, error) {
	const op = "internal.service.community.GetMessages"

	ext := s.reader()

	if _, err := s.requireMember(ctx, ext, communityID, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	msgs, err := s.communities.ListMessages(ctx, ext, communityID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return msgs, nil
}

// requireMember returns ErrNotFound for an unknown community and ErrNotMember for a non-member.
func (s *CommunityServiceImpl) requireMember(ctx context.Context, ext sqlx.ExtContext, communityID, userID string) (*domain.CommunityMember, error) {
	if _, err := s.communities.GetByID(ctx, ext, communityID); err != nil {
		return nil, err
	}

	member, err := s.communities.GetMember(ctx, ext, communityID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotMember
		}

		return nil, err
	}

	return member, nil
}

func (s *CommunityServiceImpl) resolveUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, apperrors.ErrNotAuthenticated
	}

	user, err := s.users.GetByID(ctx, s.reader(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotAuthenticated
		}

		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
