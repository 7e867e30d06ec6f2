package downloader

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

type scheduled struct {
	delay time.Duration
	fn    func()
}

// manualClock records scheduled callbacks and runs them on demand.
type manualClock struct {
	mu    sync.Mutex
	queue []scheduled
}

func (c *manualClock) After(d time.Duration, f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, scheduled{delay: d, fn: f})
}

func (c *manualClock) RunAll() {
	c.mu.Lock()
	queue := c.queue
	c.queue = nil
	c.mu.Unlock()
	for _, s := range queue {
		s.fn()
	}
}

func (c *manualClock) Delays() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, 0, len(c.queue))
	for _, s := range c.queue {
		out = append(out, s.delay)
	}
	return out
}

type fakeAnchor struct {
	browser  *fakeBrowser
	href     string
	download string
	clicks   int
	removed  bool
}

func (a *fakeAnchor) Click() error {
	a.clicks++
	if a.browser.clickErr != nil {
		return a.browser.clickErr
	}
	a.browser.saved[a.download] = a.browser.urls[a.href]
	return nil
}

func (a *fakeAnchor) Remove() { a.removed = true }

type fakeBrowser struct {
	next     int
	urls     map[string]Blob
	revoked  []string
	anchors  []*fakeAnchor
	saved    map[string]Blob
	clickErr error
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{urls: map[string]Blob{}, saved: map[string]Blob{}}
}

func (b *fakeBrowser) CreateObjectURL(blob Blob) (string, error) {
	b.next++
	url := fmt.Sprintf("blob:test/%d", b.next)
	b.urls[url] = blob
	return url, nil
}

func (b *fakeBrowser) RevokeObjectURL(url string) {
	if _, ok := b.urls[url]; !ok {
		panic(errors.New("revoke of unknown url " + url))
	}
	delete(b.urls, url)
	b.revoked = append(b.revoked, url)
}

func (b *fakeBrowser) CreateAnchor(href, download string) (Anchor, error) {
	a := &fakeAnchor{browser: b, href: href, download: download}
	b.anchors = append(b.anchors, a)
	return a, nil
}
