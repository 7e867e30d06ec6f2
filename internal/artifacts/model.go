package artifacts

import "time"

// Record is one delivered artifact, kept so callers can list what they have
// generated. The bytes live in the artifact store under FileID.
type Record struct {
	ID        string
	OwnerID   string
	ResumeID  int64
	JobID     int64
	FileID    string
	Filename  string
	SizeBytes int64
	Pages     int
	CreatedAt time.Time
}
