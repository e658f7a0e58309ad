// internal/interface/repository/movement_repo.go
package repository

import (
	"context"
	"regexp"

	"github.com/GERNAVSBIZ/movimento/internal/domain/entity"
	"github.com/GERNAVSBIZ/movimento/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMovementRepository implements MovementRepository
type MongoMovementRepository struct {
	collection *mongo.Collection
	batchSize  int
}

// NewMongoMovementRepository creates a new movement repository. batchSize
// caps how many documents one insert carries, matching the write-batch
// limit of the platform the collection was migrated from.
func NewMongoMovementRepository(db *mongo.Database, batchSize int) repository.MovementRepository {
	collection := db.Collection("movimento_aeronaves")

	// Create indexes for upload scoping and timestamp ordering
	ctx := context.Background()

	uploadIndex := mongo.IndexModel{
		Keys: bson.M{"uploadId": 1},
	}

	timestampIndex := mongo.IndexModel{
		Keys: bson.M{"timestamp": -1},
	}

	// Compound index for the upload-scoped, newest-first listing
	uploadTimestampIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "uploadId", Value: 1},
			{Key: "timestamp", Value: -1},
		},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		uploadIndex,
		timestampIndex,
		uploadTimestampIndex,
	})

	return &MongoMovementRepository{
		collection: collection,
		batchSize:  batchSize,
	}
}

// SaveBatch inserts the movements in chunks of at most batchSize documents
// and returns how many were stored. A failed chunk stops the write and
// reports the documents stored so far.
func (r *MongoMovementRepository) SaveBatch(ctx context.Context, movements []*entity.Movement) (int, error) {
	saved := 0

	for start := 0; start < len(movements); start += r.batchSize {
		end := start + r.batchSize
		if end > len(movements) {
			end = len(movements)
		}

		docs := make([]interface{}, 0, end-start)
		for _, movement := range movements[start:end] {
			if movement.ID == "" {
				movement.ID = primitive.NewObjectID().Hex()
			}
			docs = append(docs, movement)
		}

		result, err := r.collection.InsertMany(ctx, docs)
		if result != nil {
			saved += len(result.InsertedIDs)
		}
		if err != nil {
			return saved, err
		}
	}

	return saved, nil
}

// FindByUpload returns the movements of one upload, newest timestamp
// first. Documents without a timestamp sort last.
func (r *MongoMovementRepository) FindByUpload(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	query := bson.M{"uploadId": filter.UploadID}

	timeRange := bson.M{}
	if filter.From != nil {
		timeRange["$gte"] = *filter.From
	}
	if filter.To != nil {
		timeRange["$lte"] = *filter.To
	}
	if len(timeRange) > 0 {
		query["timestamp"] = timeRange
	}

	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = []bson.M{
			{"matricula": pattern},
			{"destino": pattern},
			{"tipo_aeronave": pattern},
		}
	}

	limit64 := int64(filter.Limit)
	cursor, err := r.collection.Find(ctx, query, &options.FindOptions{
		Limit: &limit64,
		Sort:  bson.D{{Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var movements []*entity.Movement
	if err := cursor.All(ctx, &movements); err != nil {
		return nil, err
	}

	return movements, nil
}
