package repository

import (
	"context"
	"time"

	"github.com/GERNAVSBIZ/movimento/internal/domain/entity"
)

// MovementFilter narrows a movement query. Zero values mean no constraint.
type MovementFilter struct {
	UploadID string
	From     *time.Time
	To       *time.Time
	Search   string
	Limit    int
}

// MovementRepository defines the interface for movement persistence
type MovementRepository interface {
	// SaveBatch writes the movements in write-batch sized chunks and
	// returns how many were stored.
	SaveBatch(ctx context.Context, movements []*entity.Movement) (int, error)
	// FindByUpload returns the movements of one upload, newest timestamp
	// first, honoring the optional range, search, and limit constraints.
	FindByUpload(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
}
