package delivery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"tailor-portal/internal/artifacts"
	"tailor-portal/internal/backend"
	"tailor-portal/internal/events"
	"tailor-portal/internal/shared/metrics"
	"tailor-portal/internal/shared/storage/object"
	"tailor-portal/internal/shared/telemetry"
	"tailor-portal/internal/shared/util"
	"tailor-portal/internal/tailor"
)

// Delivery modes.
const (
	ModeStore  = "store"
	ModeStream = "stream"
)

// DefaultProxyFilename names proxied downloads that arrive without one.
const DefaultProxyFilename = "Tailored_Resume.pdf"

const msgForeignLink = "download link does not point at the tailoring service"

// Fetcher retrieves artifact bytes from a backend download URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Delivery is what the client receives. Data is set when the bytes go
// straight into the response; FileID is set when they were stored.
type Delivery struct {
	FileID   string
	Filename string
	Data     []byte
}

// Service turns tailored artifacts into downloads.
type Service struct {
	Mode       string
	Store      object.ArtifactStore
	StoreName  string
	Fetcher    Fetcher
	Repo       artifacts.Repo
	Events     events.Publisher
	UniqueKeys bool

	Now func() time.Time
}

// Deliver resolves the artifact bytes and either stores them (store mode) or
// returns them for streaming.
func (s *Service) Deliver(ctx context.Context, ownerID string, artifact tailor.Artifact) (Delivery, error) {
	data, pages, err := s.resolve(ctx, artifact)
	if err != nil {
		return Delivery{}, err
	}

	if s.Mode == ModeStream {
		metrics.AddArtifactBytes(ModeStream, len(data))
		return Delivery{Filename: artifact.Filename, Data: data}, nil
	}

	if s.Store == nil {
		return Delivery{}, errors.New("artifact store not configured")
	}
	fileID := artifact.Filename
	if s.UniqueKeys {
		fileID = uuid.NewString() + "_" + artifact.Filename
	}
	if err := s.Store.Put(ctx, fileID, data); err != nil {
		return Delivery{}, fmt.Errorf("store artifact %s: %w", fileID, err)
	}
	metrics.AddArtifactBytes(ModeStore, len(data))

	storedAt := s.now()
	s.record(ctx, artifacts.Record{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		ResumeID:  artifact.ResumeID,
		JobID:     artifact.JobID,
		FileID:    fileID,
		Filename:  artifact.Filename,
		SizeBytes: int64(len(data)),
		Pages:     pages,
		CreatedAt: storedAt,
	})
	s.publish(ctx, events.ArtifactStored{
		FileID:    fileID,
		Filename:  artifact.Filename,
		OwnerID:   ownerID,
		ResumeID:  artifact.ResumeID,
		JobID:     artifact.JobID,
		SizeBytes: int64(len(data)),
		Store:     s.StoreName,
		StoredAt:  storedAt,
	})

	return Delivery{FileID: fileID, Filename: artifact.Filename}, nil
}

// Open returns a stored artifact. Missing artifacts and ids that are not
// plain filenames are tailor.ErrNotFound.
func (s *Service) Open(ctx context.Context, fileID string) (Delivery, error) {
	if s.Store == nil {
		return Delivery{}, errors.New("artifact store not configured")
	}
	if !util.IsSafeFilename(fileID) {
		metrics.IncArtifactNotFound()
		return Delivery{}, tailor.ErrNotFound
	}
	ok, err := s.Store.Exists(ctx, fileID)
	if err != nil {
		return Delivery{}, fmt.Errorf("stat artifact %s: %w", fileID, err)
	}
	if !ok {
		metrics.IncArtifactNotFound()
		return Delivery{}, tailor.ErrNotFound
	}
	data, err := s.Store.Get(ctx, fileID)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			metrics.IncArtifactNotFound()
			return Delivery{}, tailor.ErrNotFound
		}
		return Delivery{}, fmt.Errorf("read artifact %s: %w", fileID, err)
	}
	metrics.AddArtifactBytes("download", len(data))
	return Delivery{FileID: fileID, Filename: s.DisplayName(fileID), Data: data}, nil
}

// Proxy fetches a backend download URL on the client's behalf. rawURL must
// resolve to the backend origin.
func (s *Service) Proxy(ctx context.Context, rawURL, filename string) (Delivery, error) {
	if strings.TrimSpace(rawURL) == "" {
		return Delivery{}, tailor.ErrBadRequest
	}
	if s.Fetcher == nil {
		return Delivery{}, errors.New("backend fetcher not configured")
	}
	data, err := s.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		if errors.Is(err, backend.ErrForeignURL) {
			return Delivery{}, err
		}
		return Delivery{}, fetchError(err)
	}
	if _, err := tailor.InspectPDF(data); err != nil {
		return Delivery{}, &tailor.BackendError{Status: http.StatusBadGateway, Message: "download link did not return a PDF"}
	}

	name := util.SanitizeFilename(strings.TrimSpace(filename))
	if !util.IsSafeFilename(name) {
		name = DefaultProxyFilename
	}
	metrics.AddArtifactBytes("proxy", len(data))
	return Delivery{Filename: name, Data: data}, nil
}

// List returns the caller's delivered artifacts, newest first.
func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]artifacts.Record, error) {
	if ownerID == "" {
		return nil, tailor.ErrUnauthorized
	}
	if s.Repo == nil {
		return []artifacts.Record{}, nil
	}
	return s.Repo.ListByOwner(ctx, ownerID, limit, offset)
}

// DisplayName is the download name for a stored file id. Under UniqueKeys
// the uuid prefix Deliver added is stripped; otherwise the id is the name.
func (s *Service) DisplayName(fileID string) string {
	if !s.UniqueKeys {
		return fileID
	}
	if len(fileID) > 37 && fileID[36] == '_' {
		if _, err := uuid.Parse(fileID[:36]); err == nil {
			return fileID[37:]
		}
	}
	return fileID
}

func (s *Service) resolve(ctx context.Context, artifact tailor.Artifact) ([]byte, int, error) {
	if artifact.Data != nil {
		return artifact.Data, artifact.Pages, nil
	}
	if s.Fetcher == nil {
		return nil, 0, errors.New("backend fetcher not configured")
	}
	data, err := s.Fetcher.Fetch(ctx, artifact.DownloadURL)
	if err != nil {
		if errors.Is(err, backend.ErrForeignURL) {
			return nil, 0, &tailor.BackendError{Status: http.StatusBadGateway, Message: msgForeignLink}
		}
		return nil, 0, fetchError(err)
	}
	pages, err := tailor.InspectPDF(data)
	if err != nil {
		return nil, 0, &tailor.BackendError{Status: http.StatusBadGateway, Message: "backend returned a non-PDF document"}
	}
	return data, pages, nil
}

func fetchError(err error) error {
	var statusErr *backend.StatusError
	switch {
	case errors.As(err, &statusErr):
		return &tailor.BackendError{Status: statusErr.Status, Message: statusErr.Message}
	case errors.Is(err, context.DeadlineExceeded):
		return &tailor.BackendError{Status: http.StatusGatewayTimeout, Message: "upstream timeout"}
	default:
		return fmt.Errorf("fetch artifact: %w", err)
	}
}

func (s *Service) record(ctx context.Context, record artifacts.Record) {
	if s.Repo == nil || record.OwnerID == "" {
		return
	}
	if err := s.Repo.Create(ctx, record); err != nil {
		telemetry.Warn("artifacts.record_failed", map[string]any{
			"file_id": record.FileID,
			"error":   err,
		})
	}
}

func (s *Service) publish(ctx context.Context, evt events.ArtifactStored) {
	if s.Events == nil {
		return
	}
	if err := s.Events.ArtifactStored(ctx, evt); err != nil {
		telemetry.Warn("events.publish_failed", map[string]any{
			"file_id": evt.FileID,
			"error":   err,
		})
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
