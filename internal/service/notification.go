package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/YusovID/barter-service/internal/domain"
	"github.com/YusovID/barter-service/internal/repository"
	"github.com/YusovID/barter-service/pkg/logger/sl"
	"github.com/google/uuid"
)

type NotificationService interface {
	Notifier
	GetMyNotifications(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, userID, notificationID string) error
	MarkAllAsRead(ctx context.Context, userID string) (int, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)
}

// Broadcaster forwards a stored notification to live subscribers.
type Broadcaster interface {
	Broadcast(ctx context.Context, n *domain.Notification) error
}

type NotificationServiceImpl struct {
	BaseService
	repo        repository.NotificationRepository
	broadcaster Broadcaster

	now   func() time.Time
	newID func() string
}

var _ Notifier = (*NotificationServiceImpl)(nil)

func NewNotificationService(db Transactor, log *slog.Logger, repo repository.NotificationRepository) *NotificationServiceImpl {
	return &NotificationServiceImpl{
		BaseService: NewBaseService(db, log),
		repo:        repo,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

// WithBroadcaster makes Notify push every stored notification to b as well.
func (s *NotificationServiceImpl) WithBroadcaster(b Broadcaster) *NotificationServiceImpl {
	s.broadcaster = b
	return s
}

// Notify appends a notification for userID. It must not be called with a transaction open.
func (s *NotificationServiceImpl) Notify(ctx context.Context, userID string, draft domain.NotificationDraft) error {
	const op = "internal.service.notification.Notify"

	n := &domain.Notification{
		ID:        s.newID(),
		UserID:    userID,
		Title:     draft.Title,
		Message:   draft.Message,
		Type:      draft.Type,
		RelatedID: draft.RelatedID,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, s.reader(), n); err != nil {
		return fmt.Errorf("%s: failed to store notification: %w", op, err)
	}

	log := s.log.With(slog.String("op", op), slog.String("user_id", userID), slog.String("type", string(draft.Type)))
	log.Debug("notification stored")

	// Broadcast failures are logged only; the stored notification stays.
	if s.broadcaster != nil {
		if err := s.broadcaster.Broadcast(ctx, n); err != nil {
			log.Warn("failed to broadcast notification", sl.Err(err))
		}
	}

	return nil
}

func (s *NotificationServiceImpl) GetMyNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	const op = "internal.service.notification.GetMyNotifications"

	ns, err := s.repo.ListByUser(ctx, s.reader(), userID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list notifications: %w", op, err)
	}

	return ns, nil
}

func (s *NotificationServiceImpl) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	const op = "internal.service.notification.MarkAsRead"

	return s.transaction(ctx, op, func(tx repository.Tx) error {
		n, err := s.repo.GetByID(ctx, tx, userID, notificationID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if n.IsRead {
			return nil
		}

		n.IsRead = true

		if err := s.repo.Update(ctx, tx, n); err != nil {
			return fmt.Errorf("%s: failed to update notification: %w", op, err)
		}

		return nil
	})
}

func (s *NotificationServiceImpl) MarkAllAsRead(ctx context.Context, userID string) (int, error) {
	const op = "internal.service.notification.MarkAllAsRead"

	var marked int

	err := s.transaction(ctx, op, func(tx repository.Tx) error {
		ns, err := s.repo.ListByUser(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("%s: failed to list notifications: %w", op, err)
		}

		for i := range ns {
			if ns[i].IsRead {
				continue
			}

			ns[i].IsRead = true

			if err := s.repo.Update(ctx, tx, &ns[i]); err != nil {
				return fmt.Errorf("%s: failed to update notification: %w", op, err)
			}

			marked++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("notifications marked as read", slog.String("op", op), slog.String("user_id", userID), slog.Int("count", marked))

	return marked, nil
}

func (s *NotificationServiceImpl) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	const op = "internal.service.notification.GetUnreadCount"

	ns, err := s.repo.ListByUser(ctx, s.reader(), userID)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to list notifications: %w", op, err)
	}

	var unread int

	for _, n := range ns {
		if !n.IsRead {
			unread++
		}
	}

	return unread, nil
}
