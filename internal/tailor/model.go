package tailor

import (
	"strconv"
	"strings"

	"tailor-portal/internal/shared/util"
)

const (
	defaultCompany = "Company"

	// Names are capped so a storage key with a uuid prefix still fits in one
	// path element.
	maxCompanyLen  = 100
	maxExplicitLen = 200
)

// Request asks for resume ResumeID to be tailored to job JobID. Identifiers
// arrive as text from query strings or JSON and are validated by Parse.
type Request struct {
	ResumeID   string
	JobID      string
	JobCompany string
}

// Parse returns the numeric identifiers or ErrBadRequest.
func (r Request) Parse() (resumeID, jobID int64, err error) {
	resumeID, ok := parseID(r.ResumeID)
	if !ok {
		return 0, 0, ErrBadRequest
	}
	jobID, ok = parseID(r.JobID)
	if !ok {
		return 0, 0, ErrBadRequest
	}
	return resumeID, jobID, nil
}

func parseID(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Artifact is a successfully tailored document. Exactly one of Data or
// DownloadURL is set: Data for inline PDFs, DownloadURL when the backend
// handed back a link to fetch.
type Artifact struct {
	ResumeID    int64
	JobID       int64
	Filename    string
	Data        []byte
	DownloadURL string
	Pages       int
}

// Filename picks the display name for an artifact. An explicit name wins
// when it survives sanitization; otherwise Tailored_Resume_{company}.pdf.
// Overlong explicit names fall back to the synthesized one and the company
// segment is truncated.
func Filename(explicit, company string) string {
	name := util.SanitizeFilename(strings.TrimSpace(explicit))
	if len(name) <= maxExplicitLen && util.IsSafeFilename(name) {
		return name
	}
	company = strings.TrimSpace(company)
	if company == "" {
		company = defaultCompany
	}
	safe := util.SanitizeFilename(company)
	if len(safe) > maxCompanyLen {
		safe = safe[:maxCompanyLen]
	}
	return "Tailored_Resume_" + safe + ".pdf"
}
