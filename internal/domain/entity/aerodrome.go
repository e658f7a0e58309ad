package entity

import (
	"time"

	"gorm.io/gorm"
)

// Aerodrome is a reference row used to enrich movement destinations
type Aerodrome struct {
	ID        uint
	Code      string
	Name      string
	City      string
	State     string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt
}
