package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"

	"tailor-portal/internal/shared/telemetry"
)

type natsConn interface {
	Publish(subj string, data []byte) error
	Drain() error
	Close()
}

// NATS publishes events as JSON on a core NATS connection.
type NATS struct {
	conn natsConn
}

// Connect dials url and returns a NATS publisher.
func Connect(url string, opts ...nats.Option) (*NATS, error) {
	defaults := []nats.Option{
		nats.Name("tailor-portal"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				telemetry.Warn("events.disconnected", map[string]any{"error": err})
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			telemetry.Info("events.reconnected", map[string]any{"url": nc.ConnectedUrlRedacted()})
		}),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, err
	}
	return &NATS{conn: nc}, nil
}

// ArtifactStored implements Publisher.
func (n *NATS) ArtifactStored(ctx context.Context, evt ArtifactStored) error {
	if n == nil || n.conn == nil {
		return errors.New("nil nats publisher")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return n.conn.Publish(SubjectArtifactStored, data)
}

// Close drains pending publishes and closes the connection.
func (n *NATS) Close() {
	if n == nil || n.conn == nil {
		return
	}
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
	}
}

var _ Publisher = (*NATS)(nil)
