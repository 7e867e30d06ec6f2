package portalclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"tailor-portal/internal/shared/util"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

const maxDownloadBytes = 50 << 20

// DefaultFilename names a streamed document whose response carries no usable
// Content-Disposition filename.
const DefaultFilename = "Tailored_Resume.pdf"

// Error is a non-2xx reply from the portal.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("portal returned %d: %s", e.Status, e.Message)
}

// Client calls the portal's tailoring and download endpoints.
type Client struct {
	base       *url.URL
	httpClient *http.Client
}

// New builds a client for baseURL. Requests carry a bearer token from ts;
// a nil ts sends anonymous requests.
func New(baseURL string, ts oauth2.TokenSource) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid portal url %q", baseURL)
	}
	var transport http.RoundTripper = otelhttp.NewTransport(http.DefaultTransport)
	if ts != nil {
		transport = &oauth2.Transport{Source: oauth2.ReuseTokenSource(nil, ts), Base: transport}
	}
	return &Client{base: base, httpClient: &http.Client{Transport: transport}}, nil
}

// StaticToken wraps a fixed bearer token.
func StaticToken(token string) oauth2.TokenSource {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

// Document is a downloaded artifact.
type Document struct {
	Filename string
	Data     []byte
}

type tailorRequest struct {
	ResumeID   int64  `json:"resumeId"`
	JobID      int64  `json:"jobId"`
	JobCompany string `json:"jobCompany,omitempty"`
}

type storedResponse struct {
	FileID   string `json:"fileId"`
	Filename string `json:"filename"`
}

// Tailor requests a tailored resume and returns the document. Portals in
// store mode answer with a file id, which is then downloaded; portals in
// stream mode return the bytes directly.
func (c *Client) Tailor(ctx context.Context, resumeID, jobID int64, company string) (Document, error) {
	body, err := json.Marshal(tailorRequest{ResumeID: resumeID, JobID: jobID, JobCompany: company})
	if err != nil {
		return Document{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/tailor-resume", nil), bytes.NewReader(body))
	if err != nil {
		return Document{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, payload, err := c.do(req)
	if err != nil {
		return Document{}, err
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return Document{Filename: attachmentName(resp.Header.Get("Content-Disposition"), DefaultFilename), Data: payload}, nil
	}

	var stored storedResponse
	if err := json.Unmarshal(payload, &stored); err != nil {
		return Document{}, fmt.Errorf("decode tailor response: %w", err)
	}
	if stored.FileID == "" {
		return Document{}, fmt.Errorf("portal returned no file id")
	}
	doc, err := c.Download(ctx, stored.FileID)
	if err != nil {
		return Document{}, err
	}
	if stored.Filename != "" {
		doc.Filename = stored.Filename
	}
	return doc, nil
}

// Download fetches a stored artifact by file id.
func (c *Client) Download(ctx context.Context, fileID string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/api/download-resume", url.Values{"fileId": {fileID}}), nil)
	if err != nil {
		return Document{}, err
	}
	resp, payload, err := c.do(req)
	if err != nil {
		return Document{}, err
	}
	fallback := util.SanitizeFilename(fileID)
	if !util.IsSafeFilename(fallback) {
		fallback = DefaultFilename
	}
	return Document{Filename: attachmentName(resp.Header.Get("Content-Disposition"), fallback), Data: payload}, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()
	return u.String()
}

func (c *Client) do(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, nil, err
	}
	if len(payload) > maxDownloadBytes {
		return nil, nil, fmt.Errorf("portal response exceeds %d bytes", maxDownloadBytes)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, decodeError(resp.StatusCode, payload)
	}
	return resp, payload, nil
}

func decodeError(status int, payload []byte) *Error {
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	out := &Error{Status: status}
	if json.Unmarshal(payload, &body) == nil && body.Error.Message != "" {
		out.Code = body.Error.Code
		out.Message = body.Error.Message
		return out
	}
	out.Message = strings.TrimSpace(string(payload))
	if out.Message == "" {
		out.Message = http.StatusText(status)
	}
	return out
}

// attachmentName returns the sanitized Content-Disposition filename, or
// fallback when the header is missing, malformed or names nothing safe.
func attachmentName(disposition, fallback string) string {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return fallback
	}
	name := util.SanitizeFilename(params["filename"])
	if !util.IsSafeFilename(name) {
		return fallback
	}
	return name
}
