package records

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/YusovID/barter-service/internal/apperrors"
	"github.com/YusovID/barter-service/internal/domain"
	"github.com/YusovID/barter-service/internal/repository"
	"github.com/jmoiron/sqlx"
)

// NotificationRepository keys notifications by "<user id>/<notification id>" so a user's
// notifications share a key prefix.
type NotificationRepository struct {
	store repository.RecordStore
}

var _ repository.NotificationRepository = (*NotificationRepository)(nil)

func NewNotificationRepository(store repository.RecordStore) *NotificationRepository {
	return &NotificationRepository{store: store}
}

func notificationKey(userID, id string) string {
	return userID + "/" + id
}

func (r *NotificationRepository) Create(ctx context.Context, ext sqlx.ExtContext, n *domain.Notification) error {
	const op = "internal.repository.records.notification.Create"

	version, err := save(ctx, r.store, ext, nsNotifications, notificationKey(n.UserID, n.ID), n, 0)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n.Version = version

	return nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, ext sqlx.ExtContext, userID, id string) (*domain.Notification, error) {
	const op = "internal.repository.records.notification.GetByID"

	rec, err := r.store.Get(ctx, ext, nsNotifications, notificationKey(userID, id))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w: notification '%s'", op, apperrors.ErrNotFound, id)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	n, err := decode[domain.Notification](rec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	n.Version = rec.Version

	return n, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, ext sqlx.ExtContext, userID string) ([]domain.Notification, error) {
	const op = "internal.repository.records.notification.ListByUser"

	recs, err := r.store.List(ctx, ext, nsNotifications, notificationKey(userID, ""))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ns, err := decodeAll(recs, func(n *domain.Notification, v int64) { n.Version = v })
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// newest first; records come back in insertion order
	for i, j := 0, len(ns)-1; i < j; i, j = i+1, j-1 {
		ns[i], ns[j] = ns[j], ns[i]
	}

	sort.SliceStable(ns, func(i, j int) bool { return ns[i].CreatedAt.After(ns[j].CreatedAt) })

	return ns, nil
}

func (r *NotificationRepository) Update(ctx context.Context, ext sqlx.ExtContext, n *domain.Notification) error {
	const op = "internal.repository.records.notification.Update"

	version, err := save(ctx, r.store, ext, nsNotifications, notificationKey(n.UserID, n.ID), n, n.Version)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n.Version = version

	return nil
}
