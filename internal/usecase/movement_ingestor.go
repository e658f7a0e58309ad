// internal/usecase/movement_ingestor.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/GERNAVSBIZ/movimento/internal/domain/entity"
	"github.com/GERNAVSBIZ/movimento/internal/domain/repository"
	"github.com/GERNAVSBIZ/movimento/pkg/logger"
	"github.com/GERNAVSBIZ/movimento/pkg/metrics"
	"github.com/GERNAVSBIZ/movimento/pkg/utils"
)

// ErrNoValidRecords reports an upload whose lines were all rejected by the
// admission rule. The transport layer maps it to an input validation error.
var ErrNoValidRecords = errors.New("no valid records found in file")

// IngestResult summarizes one accepted upload
type IngestResult struct {
	UploadID string
	Count    int
}

// MovementIngestor turns an uploaded tower log file into stored movements
type MovementIngestor struct {
	parser       *utils.MovementParser
	movementRepo repository.MovementRepository
	uploadRepo   repository.UploadRepository
	archiveRepo  repository.ArchiveRepository
	metrics      *metrics.Metrics
	logger       logger.Logger
}

// NewMovementIngestor creates a new movement ingestor
func NewMovementIngestor(
	parser *utils.MovementParser,
	movementRepo repository.MovementRepository,
	uploadRepo repository.UploadRepository,
	archiveRepo repository.ArchiveRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *MovementIngestor {
	return &MovementIngestor{
		parser:       parser,
		movementRepo: movementRepo,
		uploadRepo:   uploadRepo,
		archiveRepo:  archiveRepo,
		metrics:      metrics,
		logger:       logger,
	}
}

// IngestFile parses one uploaded file and persists its movements under a
// fresh upload id. The raw bytes are teed into the archive while parsing;
// an archive failure is logged and absorbed, never surfaced to the caller.
func (i *MovementIngestor) IngestFile(ctx context.Context, filename string, file io.Reader) (*IngestResult, error) {
	start := time.Now()
	uploadID := uuid.New().String()

	reader := file
	archivePath := ""
	var archive *swallowWriter

	if i.archiveRepo.Ready() {
		writer, objectPath, err := i.archiveRepo.NewObject(ctx, uploadID, filename)
		if err != nil {
			i.logger.Error("Failed to open archive object", "uploadId", uploadID, "error", err)
		} else {
			archive = newSwallowWriter(writer)
			archivePath = objectPath
			reader = io.TeeReader(file, archive)
		}
	}

	results, stats, parseErr := i.parser.Parse(reader)

	if archive != nil {
		if err := archive.Close(); err != nil {
			i.logger.Error("Failed to archive upload", "uploadId", uploadID, "error", err)
			i.metrics.ErrorsCount.WithLabelValues("archive").Inc()
			archivePath = ""
		}
	}

	if parseErr != nil {
		i.metrics.ErrorsCount.WithLabelValues("parse").Inc()
		return nil, fmt.Errorf("failed to read upload: %w", parseErr)
	}

	i.metrics.FilesProcessed.Inc()
	i.metrics.LinesSkipped.Add(float64(stats.LinesSkipped))
	i.metrics.RecordsParsed.Add(float64(len(results)))

	if len(results) == 0 {
		return nil, ErrNoValidRecords
	}

	now := time.Now().UTC()
	movements := make([]*entity.Movement, 0, len(results))
	for _, result := range results {
		for _, miss := range result.Misses {
			i.metrics.FieldMisses.WithLabelValues(miss).Inc()
		}
		record := result.Record
		movements = append(movements, &entity.Movement{
			UploadID:     uploadID,
			Timestamp:    record.Timestamp,
			Registration: record.Registration,
			AircraftType: record.AircraftType,
			Destination:  record.Destination,
			FlightRule:   record.FlightRule,
			Runway:       record.Runway,
			Operator:     record.Operator,
			CreatedAt:    now,
		})
	}

	saved, err := i.movementRepo.SaveBatch(ctx, movements)
	if err != nil {
		i.metrics.ErrorsCount.WithLabelValues("save_batch").Inc()
		return nil, fmt.Errorf("failed to save movements: %w", err)
	}
	i.metrics.RecordsSaved.Add(float64(saved))

	upload := &entity.Upload{
		ID:           uploadID,
		Filename:     filename,
		RecordCount:  saved,
		LinesRead:    stats.LinesRead,
		LinesSkipped: stats.LinesSkipped,
		ArchivePath:  archivePath,
		UploadedAt:   now,
	}
	if err := i.uploadRepo.Save(ctx, upload); err != nil {
		i.metrics.ErrorsCount.WithLabelValues("save_upload").Inc()
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}

	i.metrics.IngestTime.Observe(time.Since(start).Seconds())
	i.logger.Info("Upload ingested",
		"uploadId", uploadID,
		"filename", filename,
		"records", saved,
		"linesSkipped", stats.LinesSkipped)

	return &IngestResult{UploadID: uploadID, Count: saved}, nil
}

// swallowWriter keeps the archive tee alive when the backend write fails:
// it records the first error and keeps accepting bytes so parsing never
// stalls on the side channel.
type swallowWriter struct {
	writer io.WriteCloser
	err    error
}

func newSwallowWriter(writer io.WriteCloser) *swallowWriter {
	return &swallowWriter{writer: writer}
}

func (s *swallowWriter) Write(p []byte) (int, error) {
	if s.err == nil {
		if _, err := s.writer.Write(p); err != nil {
			s.err = err
		}
	}
	return len(p), nil
}

func (s *swallowWriter) Close() error {
	closeErr := s.writer.Close()
	if s.err != nil {
		return s.err
	}
	return closeErr
}
