package repository

import (
	"context"

	"github.com/GERNAVSBIZ/movimento/internal/domain/entity"
)

// AerodromeRepository defines the interface for aerodrome reference lookups
type AerodromeRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Aerodrome, error)
	UpsertBatch(ctx context.Context, aerodromes []*entity.Aerodrome) error
}
