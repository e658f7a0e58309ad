// internal/interface/repository/upload_repo.go
package repository

import (
	"context"

	"github.com/GERNAVSBIZ/movimento/internal/domain/entity"
	"github.com/GERNAVSBIZ/movimento/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUploadRepository implements the UploadRepository interface
type MongoUploadRepository struct {
	collection *mongo.Collection
}

// NewMongoUploadRepository creates a new MongoDB upload repository
func NewMongoUploadRepository(db *mongo.Database) repository.UploadRepository {
	collection := db.Collection("uploads")

	// Index on uploadedAt for the newest-first listing
	ctx := context.Background()
	uploadedAtIndex := mongo.IndexModel{
		Keys: bson.M{"uploadedAt": -1},
	}
	collection.Indexes().CreateOne(ctx, uploadedAtIndex)

	return &MongoUploadRepository{
		collection: collection,
	}
}

// Save saves an upload record
func (r *MongoUploadRepository) Save(ctx context.Context, upload *entity.Upload) error {
	_, err := r.collection.InsertOne(ctx, upload)
	return err
}

// FindByID finds an upload by its identifier
func (r *MongoUploadRepository) FindByID(ctx context.Context, id string) (*entity.Upload, error) {
	var upload entity.Upload
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&upload)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &upload, nil
}

// FindAll returns uploads newest first
func (r *MongoUploadRepository) FindAll(ctx context.Context, limit int) ([]*entity.Upload, error) {
	limit64 := int64(limit)
	cursor, err := r.collection.Find(ctx, bson.M{}, &options.FindOptions{
		Limit: &limit64,
		Sort:  bson.D{{Key: "uploadedAt", Value: -1}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var uploads []*entity.Upload
	if err := cursor.All(ctx, &uploads); err != nil {
		return nil, err
	}

	return uploads, nil
}
