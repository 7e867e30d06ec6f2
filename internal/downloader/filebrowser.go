package downloader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"tailor-portal/internal/shared/util"
)

// FileBrowser is a Browser for terminals: a clicked download is written
// into Dir under its download name.
type FileBrowser struct {
	Dir string

	mu    sync.Mutex
	next  int
	blobs map[string]Blob
	saved []string
}

// Saved lists the paths written so far.
func (b *FileBrowser) Saved() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.saved...)
}

// CreateObjectURL implements Browser.
func (b *FileBrowser) CreateObjectURL(blob Blob) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.blobs == nil {
		b.blobs = make(map[string]Blob)
	}
	b.next++
	url := "blob:tailorctl/" + strconv.Itoa(b.next)
	b.blobs[url] = blob
	return url, nil
}

// RevokeObjectURL implements Browser.
func (b *FileBrowser) RevokeObjectURL(url string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blobs, url)
}

// CreateAnchor implements Browser.
func (b *FileBrowser) CreateAnchor(href, download string) (Anchor, error) {
	name := util.SanitizeFilename(download)
	if !util.IsSafeFilename(name) {
		return nil, fmt.Errorf("unsafe download name %q", download)
	}
	return &fileAnchor{browser: b, href: href, name: name}, nil
}

type fileAnchor struct {
	browser *FileBrowser
	href    string
	name    string
}

func (a *fileAnchor) Click() error {
	a.browser.mu.Lock()
	blob, ok := a.browser.blobs[a.href]
	a.browser.mu.Unlock()
	if !ok {
		return errors.New("object url revoked before click")
	}

	if err := os.MkdirAll(a.browser.Dir, 0o755); err != nil {
		return err
	}
	dest := filepath.Join(a.browser.Dir, a.name)
	tmp, err := os.CreateTemp(a.browser.Dir, ".download-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(blob.Data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	a.browser.mu.Lock()
	a.browser.saved = append(a.browser.saved, dest)
	a.browser.mu.Unlock()
	return nil
}

func (a *fileAnchor) Remove() {}

var _ Browser = (*FileBrowser)(nil)
