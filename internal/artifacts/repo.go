package artifacts

import (
	"context"
	"errors"
)

// ErrInvalidInput indicates a record missing its owner or file id.
var ErrInvalidInput = errors.New("invalid input")

// Repo defines persistence operations for the artifact ledger.
type Repo interface {
	Create(ctx context.Context, record Record) error
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Record, error)
}

func validate(record Record) error {
	if record.ID == "" || record.OwnerID == "" || record.FileID == "" {
		return ErrInvalidInput
	}
	return nil
}
