package mongo

import (
	"context"
	"errors"
	"time"

	"alcyxob/fitness-scheduler/internal/domain"
	"alcyxob/fitness-scheduler/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const painCollectionName = "pain_reports"

// mongoPainReportRepository implements repository.PainReportRepository
type mongoPainReportRepository struct {
	collection *mongo.Collection
}

// NewMongoPainReportRepository creates a new PainReport repository backed by MongoDB.
func NewMongoPainReportRepository(db *mongo.Database) repository.PainReportRepository {
	return &mongoPainReportRepository{
		collection: db.Collection(painCollectionName),
	}
}

// Create inserts a new pain report.
func (r *mongoPainReportRepository) Create(ctx context.Context, report *domain.PainReport) (primitive.ObjectID, error) {
	if report.UserID == primitive.NilObjectID || report.BodyPart == "" {
		return primitive.NilObjectID, errors.New("user ID and body part are required")
	}

	report.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	if report.ReportedDate.IsZero() {
		report.ReportedDate = now
	}
	report.CreatedAt = now

	result, err := r.collection.InsertOne(ctx, report)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// Resolve sets the resolution date on a report, ending its exclusion window.
func (r *mongoPainReportRepository) Resolve(ctx context.Context, id primitive.ObjectID, resolvedDate time.Time) error {
	update := bson.M{
		"$set": bson.M{"resolvedDate": resolvedDate.UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetActiveSince returns unresolved reports made on or after since, newest
// first.
func (r *mongoPainReportRepository) GetActiveSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.PainReport, error) {
	filter := bson.M{
		"userId":       userID,
		"reportedDate": bson.M{"$gte": since.UTC()},
		"resolvedDate": nil,
	}
	return r.find(ctx, filter)
}

// GetAllSince returns every report made on or after since, resolved or not.
func (r *mongoPainReportRepository) GetAllSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.PainReport, error) {
	filter := bson.M{
		"userId":       userID,
		"reportedDate": bson.M{"$gte": since.UTC()},
	}
	return r.find(ctx, filter)
}

func (r *mongoPainReportRepository) find(ctx context.Context, filter bson.M) ([]domain.PainReport, error) {
	var reports []domain.PainReport

	findOptions := options.Find().SetSort(bson.D{{Key: "reportedDate", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}

// EnsurePainReportIndexes creates necessary indexes for the pain_reports collection.
func EnsurePainReportIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "reportedDate", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
