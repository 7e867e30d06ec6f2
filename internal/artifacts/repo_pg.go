package artifacts

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a record.
func (r *PGRepo) Create(ctx context.Context, record Record) error {
	if err := validate(record); err != nil {
		return err
	}
	const query = `
INSERT INTO artifacts (
    id, owner_id, resume_id, job_id, file_id, filename, size_bytes, pages, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.ExecContext(ctx, query,
		record.ID,
		record.OwnerID,
		record.ResumeID,
		record.JobID,
		record.FileID,
		record.Filename,
		record.SizeBytes,
		record.Pages,
		record.CreatedAt,
	)
	return err
}

// ListByOwner lists records ordered newest-first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Record, error) {
	limit, offset = clampPage(limit, offset)
	const query = `
SELECT id, owner_id, resume_id, job_id, file_id, filename, size_bytes, pages, created_at
FROM artifacts
WHERE owner_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var record Record
		if err := rows.Scan(
			&record.ID,
			&record.OwnerID,
			&record.ResumeID,
			&record.JobID,
			&record.FileID,
			&record.Filename,
			&record.SizeBytes,
			&record.Pages,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
