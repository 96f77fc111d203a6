// Package events pushes stored notifications to NATS JetStream so connected clients receive them live.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/YusovID/barter-service/internal/config"
	"github.com/YusovID/barter-service/internal/domain"
	"github.com/YusovID/barter-service/pkg/logger/sl"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	StreamName    = "BARTER_NOTIFICATIONS"
	SubjectPrefix = "notifications"

	streamMaxAge = 7 * 24 * time.Hour
)

var subjectEscaper = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_")

// Subject is the subject a user's notifications are published on.
func Subject(userID string) string {
	return SubjectPrefix + "." + subjectEscaper.Replace(userID)
}

// Client wraps the NATS connection and its JetStream context.
type Client struct {
	conn *nats.Conn
	js   jetstream.JetStream
	log  *slog.Logger
}

func Connect(cfg config.NATS, log *slog.Logger) (*Client, error) {
	const op = "internal.events.Connect"

	opts := []nats.Option{
		nats.Name("barter-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("nats disconnected", sl.Err(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error("nats async error", sl.Err(err))
		}),
	}

	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect to nats: %w", op, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%s: failed to create jetstream context: %w", op, err)
	}

	log.Info("connected to nats", slog.String("url", nc.ConnectedUrl()))

	return &Client{conn: nc, js: js, log: log}, nil
}

// EnsureStream creates the notifications stream if it does not exist yet.
func (c *Client) EnsureStream(ctx context.Context) error {
	const op = "internal.events.EnsureStream"

	_, err := c.js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}

	if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("%s: failed to look up stream: %w", op, err)
	}

	_, err = c.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      streamMaxAge,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Duplicates:  time.Minute,
		Description: "Per-user barter notifications",
	})
	if err != nil {
		return fmt.Errorf("%s: failed to create stream: %w", op, err)
	}

	c.log.Info("created jetstream stream", slog.String("stream", StreamName))

	return nil
}

func (c *Client) Broadcaster() *NotificationBroadcaster {
	return NewNotificationBroadcaster(c.js, c.log)
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}

	err := c.conn.Drain()
	if err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		return err
	}

	return nil
}

// publisher is the part of jetstream.JetStream the broadcaster needs.
type publisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// NotificationBroadcaster publishes notifications, deduplicated by notification id.
type NotificationBroadcaster struct {
	js  publisher
	log *slog.Logger
}

func NewNotificationBroadcaster(js publisher, log *slog.Logger) *NotificationBroadcaster {
	return &NotificationBroadcaster{js: js, log: log}
}

func (b *NotificationBroadcaster) Broadcast(ctx context.Context, n *domain.Notification) error {
	const op = "internal.events.Broadcast"

	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal notification: %w", op, err)
	}

	subject := Subject(n.UserID)

	ack, err := b.js.Publish(ctx, subject, data, jetstream.WithMsgID(n.ID))
	if err != nil {
		return fmt.Errorf("%s: failed to publish to '%s': %w", op, subject, err)
	}

	b.log.Debug("notification published",
		slog.String("op", op),
		slog.String("subject", subject),
		slog.Uint64("seq", ack.Sequence),
		slog.Bool("duplicate", ack.Duplicate),
	)

	return nil
}
