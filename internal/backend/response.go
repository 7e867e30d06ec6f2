package backend

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Response is what a successful tailor call produced: RawPDF or Redirect.
type Response interface {
	isResponse()
}

// RawPDF carries the generated document inline.
type RawPDF struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Redirect points at a transient download URL on the backend.
type Redirect struct {
	URL      string
	Filename string
}

func (RawPDF) isResponse()   {}
func (Redirect) isResponse() {}

var (
	// ErrForeignURL rejects download URLs outside the backend origin.
	ErrForeignURL = errors.New("download url is not on the backend origin")

	// ErrMalformedResponse is a 2xx body that could not be decoded.
	ErrMalformedResponse = errors.New("malformed backend response")

	// ErrTooLarge is a body over the read limit.
	ErrTooLarge = errors.New("backend response too large")

	// ErrUnavailable wraps transport failures (connection refused, reset).
	ErrUnavailable = errors.New("backend unavailable")
)

// StatusError is a non-2xx backend reply, or a synthetic 504 on timeout.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return "backend status " + http.StatusText(e.Status) + ": " + e.Message
}

// maxMessageLen caps backend messages surfaced to clients, in bytes.
const maxMessageLen = 500

type errorDetail struct {
	Detail json.RawMessage `json:"detail"`
}

// newStatusError builds a StatusError from a FastAPI-style {"detail": "..."} body
// or plain text. Non-string details fall back to the raw body.
func newStatusError(status int, body []byte) *StatusError {
	msg := ""
	var parsed errorDetail
	if json.Unmarshal(body, &parsed) == nil && len(parsed.Detail) > 0 {
		var s string
		if json.Unmarshal(parsed.Detail, &s) == nil {
			msg = s
		} else {
			msg = string(parsed.Detail)
		}
	}
	if msg == "" {
		msg = string(body)
	}
	msg = strings.TrimSpace(strings.ToValidUTF8(msg, "\uFFFD"))
	if len(msg) > maxMessageLen {
		cut := maxMessageLen
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &StatusError{Status: status, Message: msg}
}
