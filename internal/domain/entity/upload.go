// internal/domain/entity/upload.go
package entity

import (
	"time"
)

// Upload tracks one ingested tower log file. Movements reference their
// parent upload through Movement.UploadID.
type Upload struct {
	ID           string    `bson:"_id" json:"uploadId"`
	Filename     string    `bson:"filename" json:"filename"`
	RecordCount  int       `bson:"recordCount" json:"recordCount"`
	LinesRead    int       `bson:"linesRead" json:"linesRead"`
	LinesSkipped int       `bson:"linesSkipped" json:"linesSkipped"`
	ArchivePath  string    `bson:"archivePath,omitempty" json:"archivePath,omitempty"`
	UploadedAt   time.Time `bson:"uploadedAt" json:"uploadedAt"`
}
