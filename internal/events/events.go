package events

import (
	"context"
	"time"
)

// SubjectArtifactStored carries ArtifactStored notifications.
const SubjectArtifactStored = "portal.artifacts.stored"

// ArtifactStored announces a new object in the artifact store so an external
// housekeeper can expire it.
type ArtifactStored struct {
	FileID    string    `json:"fileId"`
	Filename  string    `json:"filename"`
	OwnerID   string    `json:"ownerId,omitempty"`
	ResumeID  int64     `json:"resumeId"`
	JobID     int64     `json:"jobId"`
	SizeBytes int64     `json:"sizeBytes"`
	Store     string    `json:"store"`
	StoredAt  time.Time `json:"storedAt"`
}

// Publisher emits artifact lifecycle events.
type Publisher interface {
	ArtifactStored(ctx context.Context, evt ArtifactStored) error
}

// Noop discards events.
type Noop struct{}

// ArtifactStored implements Publisher.
func (Noop) ArtifactStored(context.Context, ArtifactStored) error { return nil }
