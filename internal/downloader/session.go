package downloader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// State is the phase of a tailoring session as shown to the user.
type State string

const (
	StateIdle      State = "idle"
	StateTailoring State = "tailoring"
	StateSuccess   State = "success"
	StateError     State = "error"
)

// DefaultCloseDelay lets the exit animation finish before state is reset.
const DefaultCloseDelay = 300 * time.Millisecond

var (
	// ErrInvalidTransition is returned for an action the current state does not allow.
	ErrInvalidTransition = errors.New("action not allowed in current state")

	// ErrDiscarded is returned by Tailor when the session was closed while
	// the request was in flight.
	ErrDiscarded = errors.New("result discarded after close")
)

// TailorFunc produces the document and its filename.
type TailorFunc func(ctx context.Context) (Blob, string, error)

// Snapshot is a consistent view of a session.
type Snapshot struct {
	State    State
	Filename string
	Err      string
}

// Session drives one surface from idle through tailoring to success or error.
type Session struct {
	Run        TailorFunc
	Trigger    *Trigger
	CloseDelay time.Duration
	// After schedules f to run once after d. Defaults to time.AfterFunc.
	After func(d time.Duration, f func())

	mu       sync.Mutex
	state    State
	gen      uint64
	blob     Blob
	filename string
	errMsg   string
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{State: s.current(), Filename: s.filename, Err: s.errMsg}
}

// Tailor runs the request. Allowed only from idle. A result that arrives
// after Close is dropped and ErrDiscarded returned.
func (s *Session) Tailor(ctx context.Context) error {
	s.mu.Lock()
	if s.current() != StateIdle {
		s.mu.Unlock()
		return ErrInvalidTransition
	}
	if s.Run == nil {
		s.mu.Unlock()
		return errors.New("session has no tailor func")
	}
	s.state = StateTailoring
	s.errMsg = ""
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	blob, filename, err := s.Run(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return ErrDiscarded
	}
	if err != nil {
		s.state = StateError
		s.errMsg = err.Error()
		return err
	}
	s.state = StateSuccess
	s.blob = blob
	s.filename = filename
	return nil
}

// Download saves the cached document. It may be called repeatedly in success.
func (s *Session) Download() error {
	s.mu.Lock()
	if s.current() != StateSuccess {
		s.mu.Unlock()
		return ErrInvalidTransition
	}
	blob, filename := s.blob, s.filename
	s.mu.Unlock()

	if s.Trigger == nil {
		return errors.New("session has no trigger")
	}
	if err := s.Trigger.Save(blob, filename); err != nil {
		return fmt.Errorf("save %s: %w", filename, err)
	}
	return nil
}

// Retry returns an errored session to idle.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current() != StateError {
		return ErrInvalidTransition
	}
	s.gen++
	s.state = StateIdle
	s.errMsg = ""
	return nil
}

// Close hides the surface. Any in-flight result is discarded now; state and
// cached document are reset to idle after CloseDelay unless Tailor or Retry
// ran in the meantime.
func (s *Session) Close() {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	delay := s.CloseDelay
	if delay <= 0 {
		delay = DefaultCloseDelay
	}
	reset := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen {
			return
		}
		s.state = StateIdle
		s.blob = Blob{}
		s.filename = ""
		s.errMsg = ""
	}
	if s.After != nil {
		s.After(delay, reset)
		return
	}
	time.AfterFunc(delay, reset)
}

func (s *Session) current() State {
	if s.state == "" {
		return StateIdle
	}
	return s.state
}
