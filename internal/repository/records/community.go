package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/YusovID/barter-service/internal/apperrors"
	"github.com/YusovID/barter-service/internal/domain"
	"github.com/YusovID/barter-service/internal/repository"
	"github.com/jmoiron/sqlx"
)

type CommunityRepository struct {
	store repository.RecordStore
	log   *slog.Logger
}

var _ repository.CommunityRepository = (*CommunityRepository)(nil)

func NewCommunityRepository(store repository.RecordStore, log *slog.Logger) *CommunityRepository {
	return &CommunityRepository{store: store, log: log}
}

type codeIndex struct {
	CommunityID string `json:"community_id"`
}

func memberKey(communityID, userID string) string {
	return communityID + "/" + userID
}

// Create reserves the invite code and then stores the community; run it in a transaction.
func (r *CommunityRepository) Create(ctx context.Context, ext sqlx.ExtContext, community *domain.Community) error {
	const op = "internal.repository.records.community.Create"

	idx, err := json.Marshal(codeIndex{CommunityID: community.ID})
	if err != nil {
		return fmt.Errorf("%s: failed to encode code index: %w", op, err)
	}

	if err := r.store.Insert(ctx, ext, nsCommunityCodes, community.InviteCode, idx); err != nil {
		return fmt.Errorf("%s: invite code '%s': %w", op, community.InviteCode, err)
	}

	version, err := save(ctx, r.store, ext, nsCommunities, community.ID, community, 0)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	community.Version = version

	return nil
}

func (r *CommunityRepository) GetByID(ctx context.Context, ext sqlx.ExtContext, id string) (*domain.Community, error) {
	const op = "internal.repository.records.community.GetByID"

	rec, err := r.store.Get(ctx, ext, nsCommunities, id)

	return fromCommunityRecord(op, id, rec, err)
}

func (r *CommunityRepository) GetByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*domain.Community, error) {
	const op = "internal.repository.records.community.GetByIDForUpdate"

	rec, err := r.store.GetForUpdate(ctx, tx, nsCommunities, id)

	return fromCommunityRecord(op, id, rec, err)
}

func (r *CommunityRepository) GetByInviteCode(ctx context.Context, ext sqlx.ExtContext, code string) (*domain.Community, error) {
	const op = "internal.repository.records.community.GetByInviteCode"

	idx, err := GetRecord(ctx, r.store, ext, nsCommunityCodes, code, codeIndex{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if idx.CommunityID == "" {
		return nil, fmt.Errorf("%s: %w: community with code '%s'", op, apperrors.ErrNotFound, code)
	}

	return r.GetByID(ctx, ext, idx.CommunityID)
}

func fromCommunityRecord(op, id string, rec *domain.Record, err error) (*domain.Community, error) {
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w: community '%s'", op, apperrors.ErrNotFound, id)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	community, err := decode[domain.Community](rec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	community.Version = rec.Version

	return community, nil
}

func (r *CommunityRepository) Update(ctx context.Context, ext sqlx.ExtContext, community *domain.Community) error {
	const op = "internal.repository.records.community.Update"

	version, err := save(ctx, r.store, ext, nsCommunities, community.ID, community, community.Version)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	community.Version = version

	return nil
}

func (r *CommunityRepository) AddMember(ctx context.Context, ext sqlx.ExtContext, member *domain.CommunityMember) error {
	const op = "internal.repository.records.community.AddMember"

	raw, err := encode(member)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.store.Insert(ctx, ext, nsCommunityMembers, memberKey(member.CommunityID, member.UserID), raw); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r.log.Debug("member added",
		slog.String("op", op),
		slog.String("community_id", member.CommunityID),
		slog.String("user_id", member.UserID),
	)

	return nil
}

func (r *CommunityRepository) GetMember(ctx context.Context, ext sqlx.ExtContext, communityID, userID string) (*domain.CommunityMember, error) {
	const op = "internal.repository.records.community.GetMember"

	rec, err := r.store.Get(ctx, ext, nsCommunityMembers, memberKey(communityID, userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	member, err := decode[domain.CommunityMember](rec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return member, nil
}

func (r *CommunityRepository) ListMembers(ctx context.Context, ext sqlx.ExtContext, communityID string) ([]domain.CommunityMember, error) {
	const op = "internal.repository.records.community.ListMembers"

	recs, err := r.store.List(ctx, ext, nsCommunityMembers, memberKey(communityID, ""))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	members, err := decodeAll(recs, func(*domain.CommunityMember, int64) {})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return members, nil
}

func (r *CommunityRepository) ListUserCommunities(ctx context.Context, ext sqlx.ExtContext, userID string) ([]domain.Community, error) {
	const op = "internal.repository.records.community.ListUserCommunities"

	recs, err := r.store.FindByField(ctx, ext, nsCommunityMembers, "user_id", userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	memberships, err := decodeAll(recs, func(*domain.CommunityMember, int64) {})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	communities := make([]domain.Community, 0, len(memberships))
	for _, m := range memberships {
		community, err := r.GetByID(ctx, ext, m.CommunityID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		communities = append(communities, *community)
	}

	return communities, nil
}

// AddMessage stores the message under "<community id>/<message id>".
func (r *CommunityRepository) AddMessage(ctx context.Context, ext sqlx.ExtContext, msg *domain.CommunityMessage) error {
	const op = "internal.repository.records.community.AddMessage"

	raw, err := encode(msg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.store.Insert(ctx, ext, nsCommunityPosts, memberKey(msg.CommunityID, msg.ID), raw); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *CommunityRepository) ListMessages(ctx context.Context, ext sqlx.ExtContext, communityID string) ([]domain.CommunityMessage, error) {
	const op = "internal.repository.records.community.ListMessages"

	recs, err := r.store.List(ctx, ext, nsCommunityPosts, memberKey(communityID, ""))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	msgs, err := decodeAll(recs, func(*domain.CommunityMessage, int64) {})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })

	return msgs, nil
}
