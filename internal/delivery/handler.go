package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tailor-portal/internal/artifacts"
	"tailor-portal/internal/backend"
	"tailor-portal/internal/shared/server/middleware"
	"tailor-portal/internal/shared/server/respond"
	"tailor-portal/internal/shared/telemetry"
	"tailor-portal/internal/tailor"
)

const maxTailorBody = 16 << 10

// Tailorer runs the tailoring request.
type Tailorer interface {
	Tailor(ctx context.Context, req tailor.Request) (tailor.Artifact, error)
}

// Handler wires the download endpoints to the services.
type Handler struct {
	Tailor Tailorer
	Svc    *Service
}

// NewHandler constructs a Handler.
func NewHandler(t Tailorer, svc *Service) *Handler {
	return &Handler{Tailor: t, Svc: svc}
}

// RegisterRoutes attaches routes to rg. tailorMW runs only in front of the
// tailoring routes, which are the ones that cost a backend call.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, tailorMW ...gin.HandlerFunc) {
	tailorChain := append(append([]gin.HandlerFunc{}, tailorMW...), h.tailorResume)
	rg.POST("/tailor-resume", tailorChain...)
	rg.GET("/tailor-resume", tailorChain...)
	rg.GET("/download", h.download)
	rg.GET("/download-resume", h.downloadResume)
	rg.GET("/artifacts", h.list)
}

type tailorRequest struct {
	ResumeID   flexID `json:"resumeId"`
	JobID      flexID `json:"jobId"`
	JobCompany string `json:"jobCompany"`
}

// flexID accepts a JSON number or string.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

func (h *Handler) tailorResume(c *gin.Context) {
	var body tailorRequest
	if c.Request.Method == http.MethodPost {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxTailorBody)
		if err := json.NewDecoder(c.Request.Body).Decode(&body); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	} else {
		body.ResumeID = flexID(c.Query("resumeId"))
		body.JobID = flexID(c.Query("jobId"))
		body.JobCompany = c.Query("jobCompany")
	}

	req := tailor.Request{
		ResumeID:   string(body.ResumeID),
		JobID:      string(body.JobID),
		JobCompany: body.JobCompany,
	}
	c.Set(middleware.ResumeIDKey, strings.TrimSpace(req.ResumeID))
	c.Set(middleware.JobIDKey, strings.TrimSpace(req.JobID))

	artifact, err := h.Tailor.Tailor(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	delivered, err := h.Svc.Deliver(c.Request.Context(), middleware.UserIDFromContext(c), artifact)
	if err != nil {
		writeError(c, err)
		return
	}
	if delivered.FileID == "" {
		writeArtifact(c, delivered)
		return
	}
	c.Set(middleware.FileIDKey, delivered.FileID)
	respond.OK(c, gin.H{
		"fileId":   delivered.FileID,
		"filename": delivered.Filename,
	})
}

func (h *Handler) download(c *gin.Context) {
	rawURL := strings.TrimSpace(c.Query("url"))
	if rawURL == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Download URL is required", nil)
		return
	}

	delivered, err := h.Svc.Proxy(c.Request.Context(), rawURL, c.Query("filename"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeArtifact(c, delivered)
}

func (h *Handler) downloadResume(c *gin.Context) {
	fileID := strings.TrimSpace(c.Query("fileId"))
	if fileID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "File ID is required", nil)
		return
	}
	c.Set(middleware.FileIDKey, fileID)

	delivered, err := h.Svc.Open(c.Request.Context(), fileID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeArtifact(c, delivered)
}

type artifactResponse struct {
	FileID    string `json:"fileId"`
	Filename  string `json:"filename"`
	ResumeID  int64  `json:"resumeId"`
	JobID     int64  `json:"jobId"`
	SizeBytes int64  `json:"sizeBytes"`
	Pages     int    `json:"pages"`
	CreatedAt string `json:"createdAt"`
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	items := make([]artifactResponse, 0, len(records))
	for _, r := range records {
		items = append(items, toResponse(r))
	}
	respond.OK(c, gin.H{"items": items})
}

func toResponse(r artifacts.Record) artifactResponse {
	return artifactResponse{
		FileID:    r.FileID,
		Filename:  r.Filename,
		ResumeID:  r.ResumeID,
		JobID:     r.JobID,
		SizeBytes: r.SizeBytes,
		Pages:     r.Pages,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// writeArtifact sends bytes with the headers that make browsers save rather
// than render the document.
func writeArtifact(c *gin.Context, d Delivery) {
	respond.Attachment(c, "application/pdf", d.Filename, d.Data)
}

// writeError maps pipeline failures onto HTTP. Backend failures keep their
// status and message; anything unexpected is logged and sent as a bare 500.
func writeError(c *gin.Context, err error) {
	var backendErr *tailor.BackendError
	switch {
	case errors.Is(err, tailor.ErrBadRequest):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Missing resumeId or jobId", nil)
	case errors.Is(err, tailor.ErrUnauthorized):
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Unauthorized", nil)
	case errors.Is(err, tailor.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "File not found", nil)
	case errors.Is(err, backend.ErrForeignURL):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Download URL must point at the tailoring service", nil)
	case errors.As(err, &backendErr):
		status := backendErr.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		respond.Error(c, status, "backend_error", backendErr.Message, nil)
	default:
		telemetry.Error("delivery.internal_error", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"path":       c.Request.URL.Path,
			"error":      err,
		})
		respond.Internal(c)
	}
}
