package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/YusovID/barter-service/internal/domain"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	args := m.Called(ctx, subject, payload, len(opts))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*jetstream.PubAck), args.Error(1)
}

func TestSubject(t *testing.T) {
	testCases := []struct {
		userID   string
		expected string
	}{
		{userID: "8c1f6a2e-4b1e-4f59-9d4c-2a1f3b9e7c10", expected: "notifications.8c1f6a2e-4b1e-4f59-9d4c-2a1f3b9e7c10"},
		{userID: "a.b", expected: "notifications.a_b"},
		{userID: "*>", expected: "notifications.__"},
		{userID: "with space", expected: "notifications.with_space"},
	}

	for _, tc := range testCases {
		t.Run(tc.userID, func(t *testing.T) {
			assert.Equal(t, tc.expected, Subject(tc.userID))
		})
	}
}

func TestNotificationBroadcaster_Broadcast(t *testing.T) {
	n := &domain.Notification{
		ID:        "n1",
		UserID:    "u1",
		Title:     "New barter request",
		Type:      domain.NotificationBarterRequest,
		RelatedID: "b1",
	}

	t.Run("Publishes the notification on the user subject", func(t *testing.T) {
		pub := new(publisherMock)
		pub.On("Publish", mock.Anything, "notifications.u1", mock.MatchedBy(func(payload []byte) bool {
			var got domain.Notification
			if err := json.Unmarshal(payload, &got); err != nil {
				return false
			}

			return got.ID == "n1" && got.Type == domain.NotificationBarterRequest && got.RelatedID == "b1"
		}), 1).Return(&jetstream.PubAck{Stream: StreamName, Sequence: 7}, nil).Once()

		b := NewNotificationBroadcaster(pub, slog.New(slog.NewTextHandler(io.Discard, nil)))

		require.NoError(t, b.Broadcast(context.Background(), n))
		pub.AssertExpectations(t)
	})

	t.Run("Wraps publish errors", func(t *testing.T) {
		pub := new(publisherMock)
		pub.On("Publish", mock.Anything, "notifications.u1", mock.Anything, 1).Return(nil, jetstream.ErrNoStreamResponse).Once()

		b := NewNotificationBroadcaster(pub, slog.New(slog.NewTextHandler(io.Discard, nil)))

		err := b.Broadcast(context.Background(), n)
		require.Error(t, err)
		assert.True(t, errors.Is(err, jetstream.ErrNoStreamResponse))
		assert.Contains(t, err.Error(), "notifications.u1")
	})
}
