// Package natsbus publishes and consumes raw messages on a NATS subject.
package natsbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Config holds NATS connection details.
type Config struct {
	URL     string
	Subject string
}

// Client is a NATS connection bound to one subject.
type Client struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
	closed  chan struct{}
}

// Connect dials the NATS server. Reconnects are handled by the library.
func Connect(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Subject == "" {
		return nil, errors.New("nats subject is required")
	}
	closed := make(chan struct{})
	conn, err := nats.Connect(cfg.URL,
		nats.Name("virtualvault"),
		nats.Timeout(5*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(*nats.Conn) { close(closed) }),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Info("nats client connected", zap.String("subject", cfg.Subject))
	return &Client{conn: conn, subject: cfg.Subject, logger: logger, closed: closed}, nil
}

// Publish sends body on the configured subject.
func (c *Client) Publish(ctx context.Context, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.conn.Publish(c.subject, body); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", c.subject, err)
	}
	return nil
}

// Consume subscribes to the subject and hands every message to handler until
// ctx is done. Handler errors are logged; NATS core has no redelivery.
func (c *Client) Consume(ctx context.Context, handler func([]byte) error) error {
	sub, err := c.conn.Subscribe(c.subject, func(msg *nats.Msg) {
		if err := handler(msg.Data); err != nil {
			c.logger.Error("error processing message", zap.String("subject", msg.Subject), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", c.subject, err)
	}
	c.logger.Info("waiting for messages", zap.String("subject", c.subject))

	<-ctx.Done()
	if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		return fmt.Errorf("failed to unsubscribe from %s: %w", c.subject, err)
	}
	return nil
}

// Close drains pending messages and waits for the connection to close.
func (c *Client) Close() error {
	err := c.conn.Drain()
	if errors.Is(err, nats.ErrConnectionClosed) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	<-c.closed
	return nil
}
