package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// NATSClient wraps the NATS connection and its JetStream context. The
// service only produces events; consumers live in downstream services.
type NATSClient struct {
	servers string
	nc      *nats.Conn
	js      nats.JetStreamContext
}

// NewNATSClient creates an unconnected client for the given servers
func NewNATSClient(servers string) *NATSClient {
	return &NATSClient{servers: servers}
}

// Connect establishes the connection and the JetStream context
func (c *NATSClient) Connect(ctx context.Context) error {
	nc, err := nats.Connect(c.servers,
		nats.Name("lambolotto"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.WithField("server", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	c.nc = nc
	c.js = js
	log.WithField("servers", c.servers).Info("Connected to NATS")
	return nil
}

// Publish writes a message to the given subject through JetStream
func (c *NATSClient) Publish(ctx context.Context, subject string, data []byte) error {
	if c.js == nil {
		return fmt.Errorf("not connected to NATS")
	}

	if _, err := c.js.Publish(subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// Close drains the connection so queued publishes are not lost
func (c *NATSClient) Close() error {
	if c.nc == nil {
		return nil
	}
	if err := c.nc.Drain(); err != nil {
		c.nc.Close()
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	return nil
}

// ensureStream creates the stream when it does not exist yet
func (c *NATSClient) ensureStream(streamName string, subjects []string) error {
	if c.js == nil {
		return fmt.Errorf("not connected to NATS")
	}

	if _, err := c.js.StreamInfo(streamName); err == nil {
		return nil
	}

	_, err := c.js.AddStream(&nats.StreamConfig{
		Name:        streamName,
		Subjects:    subjects,
		Retention:   nats.LimitsPolicy,
		MaxAge:      7 * 24 * time.Hour,
		Storage:     nats.FileStorage,
		Description: "Lottery domain events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", streamName, err)
	}

	log.WithFields(log.Fields{
		"stream":   streamName,
		"subjects": subjects,
	}).Info("Created JetStream stream")
	return nil
}
