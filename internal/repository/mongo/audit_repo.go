package mongo

import (
	"context"
	"errors"

	"alcyxob/fitness-scheduler/internal/domain"
	"alcyxob/fitness-scheduler/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const auditCollectionName = "exercise_audit"

// mongoAuditRepository implements repository.AuditRepository.
// The collection is append-only: this type deliberately has no update or
// delete methods, and none should be added.
type mongoAuditRepository struct {
	collection *mongo.Collection
}

// NewMongoAuditRepository creates a new Audit repository backed by MongoDB.
func NewMongoAuditRepository(db *mongo.Database) repository.AuditRepository {
	return &mongoAuditRepository{
		collection: db.Collection(auditCollectionName),
	}
}

// Append inserts one audit record.
func (r *mongoAuditRepository) Append(ctx context.Context, record domain.AuditRecord) error {
	if record.UserID == primitive.NilObjectID {
		return errors.New("audit record requires a user ID")
	}

	record.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, record)
	return err
}

// ListByUser returns a user's audit trail in emission order, oldest first.
func (r *mongoAuditRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.AuditRecord, error) {
	var records []domain.AuditRecord

	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// EnsureAuditIndexes creates necessary indexes for the exercise_audit collection.
func EnsureAuditIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
