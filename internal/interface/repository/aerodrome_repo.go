package repository

import (
	"context"
	"time"

	"github.com/GERNAVSBIZ/movimento/internal/domain/entity"
	"github.com/GERNAVSBIZ/movimento/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAerodromeRepository implements the AerodromeRepository interface
type GormAerodromeRepository struct {
	db *gorm.DB
}

// NewGormAerodromeRepository creates a new GORM aerodrome repository
func NewGormAerodromeRepository(db *gorm.DB) repository.AerodromeRepository {
	return &GormAerodromeRepository{
		db: db,
	}
}

// Aerodromelist GORM model for database mapping
type Aerodromelist struct {
	ID        uint           `gorm:"primaryKey"`
	Code      string         `gorm:"column:icao;unique"`
	Name      string         `gorm:"column:name"`
	City      string         `gorm:"column:city"`
	State     string         `gorm:"column:state"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (Aerodromelist) TableName() string {
	return "m_aerodromos"
}

// GetByCode finds an aerodrome by ICAO code
func (r *GormAerodromeRepository) GetByCode(ctx context.Context, code string) (*entity.Aerodrome, error) {
	var aerodrome Aerodromelist
	result := r.db.WithContext(ctx).Unscoped().Where("icao = ?", code).First(&aerodrome)

	if result.Error != nil {
		return nil, result.Error
	}

	// Convert GORM model to domain entity
	return &entity.Aerodrome{
		ID:        aerodrome.ID,
		Code:      aerodrome.Code,
		Name:      aerodrome.Name,
		City:      aerodrome.City,
		State:     aerodrome.State,
		CreatedAt: aerodrome.CreatedAt,
		UpdatedAt: aerodrome.UpdatedAt,
		DeletedAt: aerodrome.DeletedAt,
	}, nil
}

// UpsertBatch inserts or refreshes reference rows keyed by ICAO code
func (r *GormAerodromeRepository) UpsertBatch(ctx context.Context, aerodromes []*entity.Aerodrome) error {
	if len(aerodromes) == 0 {
		return nil
	}

	rows := make([]Aerodromelist, 0, len(aerodromes))
	for _, a := range aerodromes {
		rows = append(rows, Aerodromelist{
			Code:  a.Code,
			Name:  a.Name,
			City:  a.City,
			State: a.State,
		})
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "icao"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "city", "state", "updated_at"}),
	}).CreateInBatches(rows, 500).Error
}
