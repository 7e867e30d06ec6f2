package downloader

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// OctetStream is the type blobs are re-wrapped with before saving. Browsers
// with a built-in PDF viewer render application/pdf blobs instead of saving.
const OctetStream = "application/octet-stream"

// DefaultReleaseDelay is how long the trigger and object URL outlive the click.
const DefaultReleaseDelay = 100 * time.Millisecond

// Blob is binary content with a media type.
type Blob struct {
	Data []byte
	Type string
}

// Browser is the page environment a download runs in.
type Browser interface {
	CreateObjectURL(b Blob) (string, error)
	RevokeObjectURL(url string)
	CreateAnchor(href, download string) (Anchor, error)
}

// Anchor is a transient link element with a download attribute.
type Anchor interface {
	Click() error
	Remove()
}

// Trigger forces a save dialog for a blob.
type Trigger struct {
	Browser      Browser
	ReleaseDelay time.Duration
	// After schedules f to run once after d. Defaults to time.AfterFunc.
	After func(d time.Duration, f func())

	pending sync.WaitGroup
}

// Save re-wraps blob as a byte stream, clicks a transient anchor once, and
// releases the anchor and object URL after ReleaseDelay.
func (t *Trigger) Save(blob Blob, filename string) error {
	if t.Browser == nil {
		return errors.New("downloader: no browser")
	}
	if filename == "" {
		return errors.New("downloader: empty filename")
	}

	url, err := t.Browser.CreateObjectURL(Blob{Data: blob.Data, Type: OctetStream})
	if err != nil {
		return fmt.Errorf("create object url: %w", err)
	}
	anchor, err := t.Browser.CreateAnchor(url, filename)
	if err != nil {
		t.Browser.RevokeObjectURL(url)
		return fmt.Errorf("create anchor: %w", err)
	}

	clickErr := anchor.Click()

	// Revoking immediately can abort the download before the browser reads it.
	t.pending.Add(1)
	t.after(t.releaseDelay(), func() {
		defer t.pending.Done()
		anchor.Remove()
		t.Browser.RevokeObjectURL(url)
	})

	if clickErr != nil {
		return fmt.Errorf("click: %w", clickErr)
	}
	return nil
}

// Wait blocks until every scheduled release has run.
func (t *Trigger) Wait() {
	t.pending.Wait()
}

func (t *Trigger) releaseDelay() time.Duration {
	if t.ReleaseDelay > 0 {
		return t.ReleaseDelay
	}
	return DefaultReleaseDelay
}

func (t *Trigger) after(d time.Duration, f func()) {
	if t.After != nil {
		t.After(d, f)
		return
	}
	time.AfterFunc(d, f)
}
