package oauth

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"github.com/GERNAVSBIZ/movimento/pkg/logger"
)

// StorageCredentials resolves credentials for the raw file archive.
// Resolution order: inline JSON from the environment, then a local key
// file, then application default credentials.
type StorageCredentials struct {
	credentialsJSON string
	credentialsFile string
	logger          logger.Logger
}

// NewStorageCredentials creates a new credential resolver
func NewStorageCredentials(credentialsJSON, credentialsFile string, logger logger.Logger) *StorageCredentials {
	return &StorageCredentials{
		credentialsJSON: credentialsJSON,
		credentialsFile: credentialsFile,
		logger:          logger,
	}
}

// ClientOptions returns the client options for the first configured
// credential source. An empty slice selects application default
// credentials.
func (s *StorageCredentials) ClientOptions(ctx context.Context) ([]option.ClientOption, error) {
	if s.credentialsJSON != "" {
		creds, err := google.CredentialsFromJSON(ctx, []byte(s.credentialsJSON), storage.ScopeReadWrite)
		if err != nil {
			return nil, fmt.Errorf("failed to parse archive credentials: %w", err)
		}
		s.logger.Info("Archive credentials read from environment")
		return []option.ClientOption{option.WithTokenSource(creds.TokenSource)}, nil
	}

	if s.credentialsFile != "" {
		s.logger.Info("Archive credentials read from local file", "path", s.credentialsFile)
		return []option.ClientOption{option.WithCredentialsFile(s.credentialsFile)}, nil
	}

	s.logger.Info("Archive using application default credentials")
	return nil, nil
}
