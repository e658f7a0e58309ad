package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"

	"github.com/GERNAVSBIZ/movimento/internal/infrastructure/oauth"
	"github.com/GERNAVSBIZ/movimento/pkg/logger"
)

var errArchiveDisabled = errors.New("archive is not configured")

// GCSArchiveRepository implements the ArchiveRepository interface on a
// cloud storage bucket
type GCSArchiveRepository struct {
	client *storage.Client
	bucket string
	logger logger.Logger
}

// NewGCSArchiveRepository creates the raw file archive. An empty bucket
// name disables archiving; the repository stays usable but never Ready.
func NewGCSArchiveRepository(ctx context.Context, bucket string, credentials *oauth.StorageCredentials, logger logger.Logger) (*GCSArchiveRepository, error) {
	if bucket == "" {
		logger.Warn("Archive bucket not configured, raw uploads will not be kept")
		return &GCSArchiveRepository{logger: logger}, nil
	}

	opts, err := credentials.ClientOptions(ctx)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSArchiveRepository{
		client: client,
		bucket: bucket,
		logger: logger,
	}, nil
}

// Ready reports whether the archive accepts objects
func (r *GCSArchiveRepository) Ready() bool {
	return r.client != nil
}

// NewObject opens a writer for the raw bytes of one upload. The object
// lands under raw/{uploadID}/ so reprocessing can find it by upload.
func (r *GCSArchiveRepository) NewObject(ctx context.Context, uploadID, filename string) (io.WriteCloser, string, error) {
	if r.client == nil {
		return nil, "", errArchiveDisabled
	}

	name := path.Base(filename)
	if name == "." || name == "/" || name == "" {
		name = "upload.dat"
	}

	objectPath := fmt.Sprintf("raw/%s/%s", uploadID, name)
	writer := r.client.Bucket(r.bucket).Object(objectPath).NewWriter(ctx)
	writer.ContentType = "text/plain; charset=utf-8"

	return writer, objectPath, nil
}

// Close releases the storage client
func (r *GCSArchiveRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
