package tailor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"tailor-portal/internal/backend"
	"tailor-portal/internal/shared/metrics"
	"tailor-portal/internal/shared/telemetry"
	"tailor-portal/internal/shared/util"
)

// TokenProvider supplies the caller's bearer token. An empty token with a
// nil error means the caller is anonymous.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Backend is the tailoring endpoint.
type Backend interface {
	Tailor(ctx context.Context, token string, resumeID, jobID int64) (backend.Response, error)
}

// Service orchestrates a tailoring request: validation, token, backend call.
type Service struct {
	Tokens  TokenProvider
	Backend Backend
	// Timeout bounds the backend call. Zero means the caller's context only.
	Timeout time.Duration
	// Dedupe collapses concurrent identical requests from the same caller
	// into one backend call.
	Dedupe bool

	group singleflight.Group
}

// Tailor runs one tailoring request. Failures are ErrBadRequest,
// ErrUnauthorized, *BackendError, or an internal error.
func (s *Service) Tailor(ctx context.Context, req Request) (Artifact, error) {
	start := time.Now()
	artifact, err := s.tailor(ctx, req)
	metrics.ObserveTailor(outcome(err), time.Since(start).Seconds())
	return artifact, err
}

func (s *Service) tailor(ctx context.Context, req Request) (Artifact, error) {
	resumeID, jobID, err := req.Parse()
	if err != nil {
		return Artifact{}, err
	}
	if s.Tokens == nil || s.Backend == nil {
		return Artifact{}, errors.New("tailor service missing dependencies")
	}

	token, err := s.Tokens.Token(ctx)
	if err != nil {
		telemetry.Warn("tailor.token_failed", map[string]any{"error": err})
		return Artifact{}, ErrUnauthorized
	}
	if token == "" {
		return Artifact{}, ErrUnauthorized
	}

	resp, err := s.call(ctx, token, resumeID, jobID)
	if err != nil {
		return Artifact{}, mapBackendError(err)
	}

	artifact := Artifact{ResumeID: resumeID, JobID: jobID}
	switch r := resp.(type) {
	case backend.RawPDF:
		pages, err := InspectPDF(r.Data)
		if err != nil {
			return Artifact{}, &BackendError{Status: http.StatusBadGateway, Message: msgNotPDF}
		}
		artifact.Data = r.Data
		artifact.Pages = pages
		artifact.Filename = Filename(r.Filename, req.JobCompany)
	case backend.Redirect:
		if r.URL == "" {
			return Artifact{}, &BackendError{Status: http.StatusBadGateway, Message: msgNoDownloadLink}
		}
		artifact.DownloadURL = r.URL
		artifact.Filename = Filename(r.Filename, req.JobCompany)
	default:
		return Artifact{}, fmt.Errorf("unexpected backend response %T", resp)
	}
	return artifact, nil
}

func (s *Service) call(ctx context.Context, token string, resumeID, jobID int64) (backend.Response, error) {
	if !s.Dedupe {
		callCtx, cancel := s.withTimeout(ctx)
		defer cancel()
		return s.Backend.Tailor(callCtx, token, resumeID, jobID)
	}

	key := util.HashKey(token) + ":" + strconv.FormatInt(resumeID, 10) + ":" + strconv.FormatInt(jobID, 10)
	ch := s.group.DoChan(key, func() (any, error) {
		// Shared by every waiter, so one caller going away must not cancel it.
		callCtx, cancel := s.withTimeout(context.WithoutCancel(ctx))
		defer cancel()
		return s.Backend.Tailor(callCtx, token, resumeID, jobID)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(backend.Response), nil
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

func mapBackendError(err error) error {
	var statusErr *backend.StatusError
	switch {
	case errors.As(err, &statusErr):
		return &BackendError{Status: statusErr.Status, Message: statusErr.Message}
	case errors.Is(err, context.DeadlineExceeded):
		return &BackendError{Status: http.StatusGatewayTimeout, Message: "upstream timeout"}
	case errors.Is(err, backend.ErrMalformedResponse), errors.Is(err, backend.ErrTooLarge):
		return &BackendError{Status: http.StatusBadGateway, Message: msgMalformed}
	default:
		return fmt.Errorf("tailor backend call: %w", err)
	}
}

func outcome(err error) string {
	var backendErr *BackendError
	switch {
	case err == nil:
		return metrics.OutcomeDelivered
	case errors.Is(err, ErrBadRequest):
		return metrics.OutcomeBadRequest
	case errors.Is(err, ErrUnauthorized):
		return metrics.OutcomeUnauthorized
	case errors.As(err, &backendErr):
		return metrics.OutcomeBackendError
	default:
		return metrics.OutcomeInternal
	}
}
