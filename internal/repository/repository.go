// package repository defines the interfaces for the data persistence layer.
// Every entity lives in a namespaced key-value store of versioned JSON records;
// the typed repositories decode those records and reject malformed ones.
package repository

import (
	"context"

	"github.com/YusovID/barter-service/internal/domain"
	"github.com/jmoiron/sqlx"
)

// Tx is a store transaction. *sqlx.Tx satisfies it.
type Tx interface {
	sqlx.ExtContext
	Commit() error
	Rollback() error
}

// RecordStore is the raw key-value store.
// The ext argument allows every method to be executed within a transaction
// or directly on the store connection.
type RecordStore interface {
	// Get returns apperrors.ErrNotFound if the key is absent.
	Get(ctx context.Context, ext sqlx.ExtContext, namespace, key string) (*domain.Record, error)

	// GetForUpdate reads a record and locks it until tx ends.
	GetForUpdate(ctx context.Context, tx Tx, namespace, key string) (*domain.Record, error)

	// List returns the records whose key starts with keyPrefix, in insertion order.
	List(ctx context.Context, ext sqlx.ExtContext, namespace, keyPrefix string) ([]domain.Record, error)

	// FindByField returns the records whose top-level JSON string field equals value, in insertion order.
	FindByField(ctx context.Context, ext sqlx.ExtContext, namespace, field, value string) ([]domain.Record, error)

	// Insert returns apperrors.ErrAlreadyExists if the key is taken.
	Insert(ctx context.Context, ext sqlx.ExtContext, namespace, key string, value []byte) error

	// Update replaces the value only if the stored version equals expectedVersion.
	// It returns apperrors.ErrConflict on a version mismatch and apperrors.ErrNotFound if the key is absent.
	Update(ctx context.Context, ext sqlx.ExtContext, namespace, key string, value []byte, expectedVersion int64) error

	// Upsert writes the value regardless of the current version.
	Upsert(ctx context.Context, ext sqlx.ExtContext, namespace, key string, value []byte) error
}

// BarterRepository stores barter requests.
type BarterRepository interface {
	// Create returns apperrors.ErrAlreadyExists if the id is taken.
	Create(ctx context.Context, ext sqlx.ExtContext, req *domain.BarterRequest) error

	// GetByID returns an error matching apperrors.ErrNotFound if the request does not exist.
	GetByID(ctx context.Context, ext sqlx.ExtContext, id string) (*domain.BarterRequest, error)

	// GetByIDForUpdate is GetByID that locks the request until tx ends.
	GetByIDForUpdate(ctx context.Context, tx Tx, id string) (*domain.BarterRequest, error)

	// Update writes req if it has not changed since it was read (compare-and-swap on req.Version).
	// On success req.Version is advanced.
	Update(ctx context.Context, ext sqlx.ExtContext, req *domain.BarterRequest) error

	ListByRequester(ctx context.Context, ext sqlx.ExtContext, userID string) ([]domain.BarterRequest, error)
	ListByOwner(ctx context.Context, ext sqlx.ExtContext, userID string) ([]domain.BarterRequest, error)
	ListByListing(ctx context.Context, ext sqlx.ExtContext, listingID string) ([]domain.BarterRequest, error)
}

// ListingRepository stores listings.
type ListingRepository interface {
	Create(ctx context.Context, ext sqlx.ExtContext, listing *domain.Listing) error

	// GetByID returns an error matching apperrors.ErrNotFound if the listing does not exist.
	GetByID(ctx context.Context, ext sqlx.ExtContext, id string) (*domain.Listing, error)
	GetByIDForUpdate(ctx context.Context, tx Tx, id string) (*domain.Listing, error)

	// Update is a compare-and-swap on listing.Version.
	Update(ctx context.Context, ext sqlx.ExtContext, listing *domain.Listing) error

	// Deactivate marks the listing inactive. Deactivating an inactive listing is a no-op.
	Deactivate(ctx context.Context, tx Tx, id string) error

	ListByCommunity(ctx context.Context, ext sqlx.ExtContext, communityID string, activeOnly bool) ([]domain.Listing, error)
}

// UserRepository stores user accounts.
type UserRepository interface {
	// Create returns *apperrors.UserAlreadyExistsError if the email is taken.
	Create(ctx context.Context, ext sqlx.ExtContext, user *domain.User) error
	GetByID(ctx context.Context, ext sqlx.ExtContext, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, ext sqlx.ExtContext, email string) (*domain.User, error)
	GetByIDForUpdate(ctx context.Context, tx Tx, id string) (*domain.User, error)
	Update(ctx context.Context, ext sqlx.ExtContext, user *domain.User) error
}

// StatsRepository stores the trust inputs of every user.
type StatsRepository interface {
	// Get returns domain.DefaultUserStats for a user that has no stats yet.
	Get(ctx context.Context, ext sqlx.ExtContext, userID string) (*domain.UserStats, error)
	GetForUpdate(ctx context.Context, tx Tx, userID string) (*domain.UserStats, error)

	// Save inserts stats that were never stored (Version 0) and compare-and-swaps the rest.
	Save(ctx context.Context, ext sqlx.ExtContext, stats *domain.UserStats) error
}

// NotificationRepository stores per-user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, ext sqlx.ExtContext, n *domain.Notification) error
	GetByID(ctx context.Context, ext sqlx.ExtContext, userID, id string) (*domain.Notification, error)

	// ListByUser returns the user's notifications, newest first.
	ListByUser(ctx context.Context, ext sqlx.ExtContext, userID string) ([]domain.Notification, error)
	Update(ctx context.Context, ext sqlx.ExtContext, n *domain.Notification) error
}

// CommunityRepository stores communities and their memberships.
type CommunityRepository interface {
	// Create returns apperrors.ErrAlreadyExists if the invite code is taken.
	Create(ctx context.Context, ext sqlx.ExtContext, community *domain.Community) error
	GetByID(ctx context.Context, ext sqlx.ExtContext, id string) (*domain.Community, error)
	GetByIDForUpdate(ctx context.Context, tx Tx, id string) (*domain.Community, error)
	GetByInviteCode(ctx context.Context, ext sqlx.ExtContext, code string) (*domain.Community, error)
	Update(ctx context.Context, ext sqlx.ExtContext, community *domain.Community) error

	// AddMember returns apperrors.ErrAlreadyExists if the user is already a member.
	AddMember(ctx context.Context, ext sqlx.ExtContext, member *domain.CommunityMember) error
	GetMember(ctx context.Context, ext sqlx.ExtContext, communityID, userID string) (*domain.CommunityMember, error)
	ListMembers(ctx context.Context, ext sqlx.ExtContext, communityID string) ([]domain.CommunityMember, error)
	ListUserCommunities(ctx context.Context, ext sqlx.ExtContext, userID string) ([]domain.Community, error)

	AddMessage(ctx context.Context, ext sqlx.ExtContext, msg *domain.CommunityMessage) error
	// ListMessages returns the community's messages oldest first.
	ListMessages(ctx context.Context, ext sqlx.ExtContext, communityID string) ([]domain.CommunityMessage, error)
}
