// internal/domain/entity/movement.go
package entity

import (
	"time"
)

// Flight rule values produced by the line parser
const (
	RuleIFR     = "IFR"
	RuleVFR     = "VFR"
	RuleUnknown = "N/A"
)

// Movement is one aircraft movement extracted from an uploaded tower log
// line. The Portuguese document keys are the legacy layout consumed by the
// existing dashboards; renaming them breaks stored data and API clients.
type Movement struct {
	ID           string     `bson:"_id,omitempty" json:"id,omitempty"`
	UploadID     string     `bson:"uploadId" json:"uploadId"`
	Timestamp    *time.Time `bson:"timestamp" json:"timestamp"`
	Registration string     `bson:"matricula" json:"matricula"`
	AircraftType string     `bson:"tipo_aeronave" json:"tipo_aeronave"`
	Destination  string     `bson:"destino" json:"destino"`
	FlightRule   string     `bson:"regra_voo" json:"regra_voo"`
	Runway       string     `bson:"pista" json:"pista"`
	Operator     string     `bson:"responsavel" json:"responsavel"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`

	// DestinationName is filled at query time from the aerodrome
	// reference table, never persisted.
	DestinationName string `bson:"-" json:"destino_nome,omitempty"`
}
