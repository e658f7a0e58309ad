package utils

import "time"

// Layout names the fixed character offsets of the tower log line format.
// All positions are rune offsets into the raw line; the half-open ranges
// follow the column convention of the legacy format.
type Layout struct {
	DateStart     int
	DateEnd       int
	RegStart      int
	RegEnd        int
	TypeStart     int
	TypeEnd       int
	DestStart     int
	MinTrimmedLen int    // trimmed lines at or below this length are skipped
	Sentinel      string // header/footer marker, skips the line
	AnchorSkip    int    // runes skipped past the anchor before the runway scan
}

// DefaultLayout returns the offsets of the legacy tower log layout
func DefaultLayout() Layout {
	return Layout{
		DateStart:     9,
		DateEnd:       15,
		RegStart:      15,
		RegEnd:        22,
		TypeStart:     22,
		TypeEnd:       27,
		DestStart:     27,
		MinTrimmedLen: 50,
		Sentinel:      "SBIZAIZ0",
		AnchorSkip:    2,
	}
}

// MovementRecord represents one aircraft movement extracted from a line.
// Timestamp is nil when the embedded date and time could not be parsed.
type MovementRecord struct {
	Timestamp    *time.Time
	Registration string
	AircraftType string
	Destination  string
	FlightRule   string
	Runway       string
	Operator     string
}

// LineResult pairs a best-effort record with the names of the fields
// that stayed at their default because extraction found nothing
type LineResult struct {
	Record MovementRecord
	Misses []string
}

// ParseStats summarizes one pass over an uploaded file
type ParseStats struct {
	LinesRead    int
	LinesSkipped int
}

// Constants
const (
	TIMESTAMP_LAYOUT = "0201061504"
	VALUE_MISSING    = "N/A"
	RULE_IFR         = "IFR"
	RULE_VFR         = "VFR"
)
