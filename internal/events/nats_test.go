package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subject string
	data    []byte
	err     error
	drained bool
	closed  bool
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	f.subject = subj
	f.data = data
	return f.err
}

func (f *fakeConn) Drain() error {
	f.drained = true
	return errors.New("drain failed")
}

func (f *fakeConn) Close() { f.closed = true }

func TestNATSPublishesJSON(t *testing.T) {
	conn := &fakeConn{}
	pub := &NATS{conn: conn}
	storedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	err := pub.ArtifactStored(context.Background(), ArtifactStored{
		FileID:   "x.pdf",
		Filename: "x.pdf",
		ResumeID: 42,
		JobID:    7,
		Store:    "local",
		StoredAt: storedAt,
	})
	require.NoError(t, err)
	assert.Equal(t, SubjectArtifactStored, conn.subject)

	var got map[string]any
	require.NoError(t, json.Unmarshal(conn.data, &got))
	assert.Equal(t, "x.pdf", got["fileId"])
	assert.Equal(t, float64(42), got["resumeId"])
	assert.NotContains(t, got, "ownerId")
}

func TestNATSPublishCanceledContext(t *testing.T) {
	conn := &fakeConn{}
	pub := &NATS{conn: conn}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pub.ArtifactStored(ctx, ArtifactStored{FileID: "x.pdf"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, conn.subject)
}

func TestNATSCloseFallsBackWhenDrainFails(t *testing.T) {
	conn := &fakeConn{}
	(&NATS{conn: conn}).Close()
	assert.True(t, conn.drained)
	assert.True(t, conn.closed)
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, Noop{}.ArtifactStored(context.Background(), ArtifactStored{}))
}
