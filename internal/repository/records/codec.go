// package records implements the typed repositories on top of a repository.RecordStore.
// Records are decoded into domain types and validated; anything that fails is rejected
// with apperrors.ErrCorruptRecord instead of being handed to the services.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/YusovID/barter-service/internal/apperrors"
	"github.com/YusovID/barter-service/internal/domain"
	"github.com/YusovID/barter-service/internal/repository"
	"github.com/jmoiron/sqlx"
)

const (
	nsBarters          = "barter_requests"
	nsListings         = "listings"
	nsUsers            = "users"
	nsUserEmails       = "user_emails"
	nsStats            = "user_stats"
	nsNotifications    = "notifications"
	nsCommunities      = "communities"
	nsCommunityCodes   = "community_codes"
	nsCommunityMembers = "community_members"
	nsCommunityPosts   = "community_messages"
)

type validatable interface {
	Validate() error
}

func decode[T any, PT interface {
	*T
	validatable
}](rec *domain.Record) (PT, error) {
	var v T
	if err := json.Unmarshal(rec.Value, &v); err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %w", apperrors.ErrCorruptRecord, rec.Namespace, rec.Key, err)
	}

	p := PT(&v)
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %w", apperrors.ErrCorruptRecord, rec.Namespace, rec.Key, err)
	}

	return p, nil
}

func decodeAll[T any, PT interface {
	*T
	validatable
}](recs []domain.Record, version func(PT, int64)) ([]T, error) {
	out := make([]T, 0, len(recs))

	for i := range recs {
		v, err := decode[T, PT](&recs[i])
		if err != nil {
			return nil, err
		}

		version(v, recs[i].Version)
		out = append(out, *v)
	}

	return out, nil
}

func encode(v validatable) ([]byte, error) {
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to store invalid record: %w", err)
	}

	return json.Marshal(v)
}

// GetRecord reads key from namespace and returns def if the key is absent.
func GetRecord[T any](ctx context.Context, store repository.RecordStore, ext sqlx.ExtContext, namespace, key string, def T) (T, error) {
	rec, err := store.Get(ctx, ext, namespace, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return def, nil
		}

		return def, err
	}

	var v T
	if err := json.Unmarshal(rec.Value, &v); err != nil {
		return def, fmt.Errorf("%w: %s/%s: %w", apperrors.ErrCorruptRecord, namespace, key, err)
	}

	return v, nil
}

// PutRecord writes value under key regardless of what is stored there.
func PutRecord[T any](ctx context.Context, store repository.RecordStore, ext sqlx.ExtContext, namespace, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", namespace, key, err)
	}

	return store.Upsert(ctx, ext, namespace, key, raw)
}

// save inserts a record that was never stored and compare-and-swaps an existing one.
func save(ctx context.Context, store repository.RecordStore, ext sqlx.ExtContext, namespace, key string, v validatable, version int64) (int64, error) {
	raw, err := encode(v)
	if err != nil {
		return 0, err
	}

	if version == 0 {
		if err := store.Insert(ctx, ext, namespace, key, raw); err != nil {
			if errors.Is(err, apperrors.ErrAlreadyExists) {
				return 0, fmt.Errorf("%w: %w", apperrors.ErrConflict, err)
			}

			return 0, err
		}

		return 1, nil
	}

	if err := store.Update(ctx, ext, namespace, key, raw, version); err != nil {
		return 0, err
	}

	return version + 1, nil
}
