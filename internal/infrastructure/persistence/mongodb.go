package persistence

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the document store connection outcome. The service starts even
// when the store is down; callers branch on Available instead of checking
// a nullable client.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	err    error
}

// Connect builds a MongoDB client, verifies it with a ping, and wraps the
// outcome. A failed connection yields an unavailable store, not an error.
func Connect(ctx context.Context, uri, dbName, username, password string) *Store {
	clientOptions := options.Client().ApplyURI(uri)

	if username != "" && password != "" {
		clientOptions.SetAuth(options.Credential{
			Username: username,
			Password: password,
		})
	}

	// Set connection timeout
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return &Store{err: err}
	}

	// Ping to check connection
	if err := client.Ping(ctx, nil); err != nil {
		return &Store{err: err}
	}

	return &Store{
		client: client,
		db:     client.Database(dbName),
	}
}

// Available reports whether the store can serve requests
func (s *Store) Available() bool {
	return s.err == nil
}

// Err returns the connection failure, nil when the store is available
func (s *Store) Err() error {
	return s.err
}

// Database returns the connected database. Only valid when Available.
func (s *Store) Database() *mongo.Database {
	return s.db
}

// Close disconnects the underlying client
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
