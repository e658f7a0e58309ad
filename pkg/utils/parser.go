package utils

import (
	"bufio"
	"io"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/GERNAVSBIZ/movimento/pkg/logger"
)

// Longest line the scanner accepts. Tower logs top out well below this.
const maxLineBytes = 1 << 20

var (
	operatorPattern = regexp.MustCompile(`\S+$`)
	anchorPattern   = regexp.MustCompile(`IV|VV`)
	runwayPattern   = regexp.MustCompile(`\d{2}`)
	timePattern     = regexp.MustCompile(`\d{4}`)
)

// MovementParser extracts movement records from tower log lines
type MovementParser struct {
	layout Layout
	logger logger.Logger
}

// NewMovementParser creates a new movement parser
func NewMovementParser(layout Layout, logger logger.Logger) *MovementParser {
	return &MovementParser{
		layout: layout,
		logger: logger,
	}
}

// Parse reads r line by line and extracts one record per admitted line,
// preserving input order. Lines are decoded as UTF-8 with invalid
// sequences dropped. The returned error reports a failed read, never a
// malformed line.
func (p *MovementParser) Parse(r io.Reader) ([]LineResult, ParseStats, error) {
	var results []LineResult
	var stats ParseStats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		stats.LinesRead++
		line := strings.ToValidUTF8(scanner.Text(), "")

		result, ok := p.ParseLine(line)
		if !ok {
			stats.LinesSkipped++
			continue
		}
		if len(result.Misses) > 0 {
			p.logger.Debug("Partial record extracted", "line", stats.LinesRead, "misses", result.Misses)
		}
		results = append(results, result)
	}
	if err := scanner.Err(); err != nil {
		return results, stats, err
	}

	p.logger.Info("Parsed upload", "lines", stats.LinesRead, "skipped", stats.LinesSkipped, "records", len(results))
	return results, stats, nil
}

// ParseLine extracts a single record from one raw line. ok is false when
// the admission rule rejects the line. An admitted line always yields a
// record: fields that cannot be extracted keep their defaults and are
// named in Misses.
func (p *MovementParser) ParseLine(line string) (LineResult, bool) {
	trimmed := strings.TrimSpace(line)
	if utf8.RuneCountInString(trimmed) <= p.layout.MinTrimmedLen || strings.HasPrefix(line, p.layout.Sentinel) {
		return LineResult{}, false
	}

	record := MovementRecord{
		Registration: VALUE_MISSING,
		AircraftType: VALUE_MISSING,
		Destination:  VALUE_MISSING,
		FlightRule:   VALUE_MISSING,
		Runway:       "",
		Operator:     VALUE_MISSING,
	}
	var misses []string

	// Operator is the last whitespace-delimited token on the line
	if operator := operatorPattern.FindString(trimmed); operator != "" {
		record.Operator = operator
	} else {
		misses = append(misses, "responsavel")
	}

	// Fixed columns overwrite the default even when blank
	runes := []rune(line)
	record.Registration = strings.TrimSpace(sliceRunes(runes, p.layout.RegStart, p.layout.RegEnd))
	record.AircraftType = strings.TrimSpace(sliceRunes(runes, p.layout.TypeStart, p.layout.TypeEnd))

	// The first flight rule token anchors every remaining field
	anchorLoc := anchorPattern.FindStringIndex(line)
	if anchorLoc == nil {
		misses = append(misses, "regra_voo", "pista", "destino", "timestamp")
		return LineResult{Record: record, Misses: misses}, true
	}

	anchorToken := line[anchorLoc[0]:anchorLoc[1]]
	record.FlightRule = strings.ReplaceAll(strings.ReplaceAll(anchorToken, "IV", RULE_IFR), "VV", RULE_VFR)
	anchorIdx := utf8.RuneCountInString(line[:anchorLoc[0]])

	afterAnchor := sliceRunes(runes, anchorIdx+p.layout.AnchorSkip, len(runes))
	if runway := runwayPattern.FindString(afterAnchor); runway != "" {
		record.Runway = runway
	} else {
		misses = append(misses, "pista")
	}

	// Time is the last 4-digit run before the anchor, re-located by its
	// last occurrence in that segment
	beforeAnchor := sliceRunes(runes, 0, anchorIdx)
	timeTokens := timePattern.FindAllString(beforeAnchor, -1)
	if len(timeTokens) == 0 {
		misses = append(misses, "destino", "timestamp")
		return LineResult{Record: record, Misses: misses}, true
	}

	timeToken := timeTokens[len(timeTokens)-1]
	timeIdx := lastRuneIndex(beforeAnchor, timeToken)

	if destination := strings.TrimSpace(sliceRunes(runes, p.layout.DestStart, timeIdx)); destination != "" {
		record.Destination = destination
	} else {
		misses = append(misses, "destino")
	}

	dateToken := sliceRunes(runes, p.layout.DateStart, p.layout.DateEnd)
	when, err := time.Parse(TIMESTAMP_LAYOUT, dateToken+timeToken)
	if err != nil {
		misses = append(misses, "timestamp")
	} else {
		record.Timestamp = &when
	}

	return LineResult{Record: record, Misses: misses}, true
}
