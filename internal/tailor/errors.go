package tailor

import (
	"errors"
	"fmt"
)

var (
	// ErrBadRequest indicates missing or invalid resumeId/jobId.
	ErrBadRequest = errors.New("resumeId and jobId are required")

	// ErrUnauthorized indicates no usable bearer token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates a stored artifact is absent.
	ErrNotFound = errors.New("artifact not found")

	// ErrNotPDF indicates bytes that do not sniff as a PDF document.
	ErrNotPDF = errors.New("not a pdf document")
)

// Messages surfaced for backend replies the portal could not use.
const (
	msgNoDownloadLink = "No download link returned from server."
	msgNotPDF         = "backend returned a non-PDF document"
	msgMalformed      = "backend returned an unreadable response"
)

// BackendError is a failure reported by the tailoring backend. Status and
// Message are surfaced to the caller unchanged.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("tailoring backend returned %d: %s", e.Status, e.Message)
}
