package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxBodyBytes caps any payload read from the backend.
const maxBodyBytes = 50 << 20

// Client talks to the tailoring backend.
type Client struct {
	base       *url.URL
	httpClient *http.Client
}

// New constructs a Client for baseURL. httpClient may be nil; the default
// client uses an otelhttp transport so trace context reaches the backend.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend url must be http(s), got %q", baseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("backend url has no host: %q", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			// Upper bound only; callers pass tighter deadlines through ctx.
			Timeout: 5 * time.Minute,
		}
	}
	return &Client{base: base, httpClient: httpClient}, nil
}

type tailorBody struct {
	JobID int64 `json:"job_id"`
}

type redirectEnvelope struct {
	DownloadURL string `json:"download_url"`
	Filename    string `json:"filename"`
}

// Tailor asks the backend to tailor resumeID for jobID on behalf of token.
func (c *Client) Tailor(ctx context.Context, token string, resumeID, jobID int64) (Response, error) {
	body, err := json.Marshal(tailorBody{JobID: jobID})
	if err != nil {
		return nil, err
	}

	endpoint := c.base.JoinPath("api", "resumes", strconv.FormatInt(resumeID, 10), "tailor")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf, application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	payload, err := readLimited(ctx, resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp.StatusCode, payload)
	}

	return decodeTailorResponse(resp.Header, payload)
}

// Fetch downloads a backend artifact. rawURL may be relative to the backend
// base; absolute URLs must point at the backend's own origin.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	target, err := c.Resolve(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/pdf, application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	payload, err := readLimited(ctx, resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp.StatusCode, payload)
	}
	return payload, nil
}

// Resolve turns a download URL into an absolute URL on the backend origin.
func (c *Client) Resolve(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, ErrForeignURL
	}
	ref, err := url.Parse(rawURL)
	if err != nil {
		return nil, ErrForeignURL
	}
	target := c.base.ResolveReference(ref)
	if !strings.EqualFold(target.Scheme, c.base.Scheme) || !strings.EqualFold(target.Host, c.base.Host) {
		return nil, ErrForeignURL
	}
	target.User = nil
	return target, nil
}

func decodeTailorResponse(header http.Header, payload []byte) (Response, error) {
	mediaType := ""
	if ct := header.Get("Content-Type"); ct != "" {
		if parsed, _, err := mime.ParseMediaType(ct); err == nil {
			mediaType = strings.ToLower(parsed)
		}
	}
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = mimetype.Detect(payload).String()
		if mediaType == "text/plain; charset=utf-8" && json.Valid(payload) {
			mediaType = "application/json"
		}
	}

	if mediaType == "application/json" || strings.HasSuffix(mediaType, "+json") {
		var env redirectEnvelope
		if err := json.Unmarshal(payload, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return Redirect{URL: strings.TrimSpace(env.DownloadURL), Filename: strings.TrimSpace(env.Filename)}, nil
	}

	return RawPDF{
		Data:        payload,
		Filename:    filenameFromDisposition(header.Get("Content-Disposition")),
		ContentType: mediaType,
	}, nil
}

// filenameFromDisposition reads the filename parameter of a Content-Disposition
// header. RFC 5987 filename* values are decoded by mime.ParseMediaType.
func filenameFromDisposition(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(value)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["filename"])
}

func readLimited(ctx context.Context, r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return nil, transportError(ctx, err)
	}
	if len(data) > maxBodyBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

func transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &StatusError{Status: http.StatusGatewayTimeout, Message: "upstream timeout"}
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &StatusError{Status: http.StatusGatewayTimeout, Message: "upstream timeout"}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
