package repository

import (
	"context"

	"github.com/GERNAVSBIZ/movimento/internal/domain/entity"
)

// UploadRepository defines the interface for upload metadata operations
type UploadRepository interface {
	Save(ctx context.Context, upload *entity.Upload) error
	FindByID(ctx context.Context, id string) (*entity.Upload, error)
	FindAll(ctx context.Context, limit int) ([]*entity.Upload, error)
}
