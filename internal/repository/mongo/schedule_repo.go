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

const (
	scheduleCollectionName         = "workout_schedules"
	scheduledWorkoutCollectionName = "scheduled_workouts"
)

// mongoScheduleRepository implements repository.ScheduleRepository
type mongoScheduleRepository struct {
	schedules *mongo.Collection
	workouts  *mongo.Collection
}

// NewMongoScheduleRepository creates a new Schedule repository backed by MongoDB.
func NewMongoScheduleRepository(db *mongo.Database) repository.ScheduleRepository {
	return &mongoScheduleRepository{
		schedules: db.Collection(scheduleCollectionName),
		workouts:  db.Collection(scheduledWorkoutCollectionName),
	}
}

// CreateSchedule inserts a new weekly schedule.
func (r *mongoScheduleRepository) CreateSchedule(ctx context.Context, schedule *domain.WorkoutSchedule) (primitive.ObjectID, error) {
	if schedule.UserID == primitive.NilObjectID || schedule.WeekStart.IsZero() {
		return primitive.NilObjectID, errors.New("user ID and week start are required")
	}

	schedule.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now
	if schedule.Status == "" {
		schedule.Status = domain.ScheduleDraft
	}

	result, err := r.schedules.InsertOne(ctx, schedule)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetScheduleByID retrieves one weekly schedule.
func (r *mongoScheduleRepository) GetScheduleByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSchedule, error) {
	var schedule domain.WorkoutSchedule
	err := r.schedules.FindOne(ctx, bson.M{"_id": id}).Decode(&schedule)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

// GetScheduleByUserAndWeek retrieves the schedule for one user and one week.
func (r *mongoScheduleRepository) GetScheduleByUserAndWeek(ctx context.Context, userID primitive.ObjectID, weekStart time.Time) (*domain.WorkoutSchedule, error) {
	var schedule domain.WorkoutSchedule
	filter := bson.M{
		"userId":    userID,
		"weekStart": weekStart.UTC(),
	}

	err := r.schedules.FindOne(ctx, filter).Decode(&schedule)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

// SetScheduleStatus transitions a schedule between draft/active/archived.
func (r *mongoScheduleRepository) SetScheduleStatus(ctx context.Context, id primitive.ObjectID, status domain.ScheduleStatus) error {
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.schedules.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CreateWorkout inserts one day slot. New slots start at revision 1.
func (r *mongoScheduleRepository) CreateWorkout(ctx context.Context, workout *domain.ScheduledWorkout) (primitive.ObjectID, error) {
	if workout.ScheduleID == primitive.NilObjectID || workout.Date.IsZero() {
		return primitive.NilObjectID, errors.New("schedule ID and date are required")
	}

	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	workout.Revision = 1
	if workout.Status == "" {
		workout.Status = domain.WorkoutPending
	}

	result, err := r.workouts.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetWorkoutByID retrieves one day slot.
func (r *mongoScheduleRepository) GetWorkoutByID(ctx context.Context, id primitive.ObjectID) (*domain.ScheduledWorkout, error) {
	var workout domain.ScheduledWorkout
	err := r.workouts.FindOne(ctx, bson.M{"_id": id}).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// GetWorkoutsBySchedule retrieves all day slots for a schedule, ordered by date.
func (r *mongoScheduleRepository) GetWorkoutsBySchedule(ctx context.Context, scheduleID primitive.ObjectID) ([]domain.ScheduledWorkout, error) {
	var workouts []domain.ScheduledWorkout

	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.workouts.Find(ctx, bson.M{"scheduleId": scheduleID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return workouts, nil
}

// UpdateWorkoutStatus applies a completion/skip with optimistic concurrency.
// The revision is part of the filter, so a concurrent update that already
// bumped it makes this write match nothing; we then distinguish "slot gone"
// from "slot moved on" to return the right error.
func (r *mongoScheduleRepository) UpdateWorkoutStatus(ctx context.Context, id primitive.ObjectID, expectedRevision int64, update repository.WorkoutStatusUpdate) (*domain.ScheduledWorkout, error) {
	filter := bson.M{"_id": id}
	if expectedRevision > 0 {
		filter["revision"] = expectedRevision
	}

	set := bson.M{
		"status":    update.Status,
		"updatedAt": time.Now().UTC(),
	}
	if update.CompletedAt != nil {
		set["completedAt"] = update.CompletedAt.UTC()
	}
	if update.CompletionNote != "" {
		set["completionNote"] = update.CompletionNote
	}
	if update.SkipReason != "" {
		set["skipReason"] = update.SkipReason
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var workout domain.ScheduledWorkout
	err := r.workouts.FindOneAndUpdate(ctx, filter, bson.M{
		"$set": set,
		"$inc": bson.M{"revision": 1},
	}, opts).Decode(&workout)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if expectedRevision > 0 {
				// The slot may exist at a newer revision.
				if _, getErr := r.GetWorkoutByID(ctx, id); getErr == nil {
					return nil, repository.ErrStaleRevision
				}
			}
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// ReplaceWorkoutAssignment swaps the day's assignment under the same
// revision guard as UpdateWorkoutStatus. The slot goes back to pending.
func (r *mongoScheduleRepository) ReplaceWorkoutAssignment(ctx context.Context, id primitive.ObjectID, expectedRevision int64, snapshot *domain.ExerciseSnapshot, restReason string, varietyRelaxed bool) (*domain.ScheduledWorkout, error) {
	filter := bson.M{"_id": id}
	if expectedRevision > 0 {
		filter["revision"] = expectedRevision
	}

	set := bson.M{
		"status":         domain.WorkoutPending,
		"restDay":        snapshot == nil,
		"restReason":     restReason,
		"varietyRelaxed": varietyRelaxed,
		"updatedAt":      time.Now().UTC(),
	}
	if snapshot != nil {
		set["exercise"] = snapshot
	}

	update := bson.M{
		"$set": set,
		"$inc": bson.M{"revision": 1},
	}
	if snapshot == nil {
		update["$unset"] = bson.M{"exercise": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var workout domain.ScheduledWorkout
	err := r.workouts.FindOneAndUpdate(ctx, filter, update, opts).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if expectedRevision > 0 {
				if _, getErr := r.GetWorkoutByID(ctx, id); getErr == nil {
					return nil, repository.ErrStaleRevision
				}
			}
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// DeleteWorkoutsBySchedule removes every day slot of a schedule. Only used
// for explicit regeneration.
func (r *mongoScheduleRepository) DeleteWorkoutsBySchedule(ctx context.Context, scheduleID primitive.ObjectID) error {
	_, err := r.workouts.DeleteMany(ctx, bson.M{"scheduleId": scheduleID})
	return err
}

// EnsureScheduleIndexes creates necessary indexes for the schedule collections.
func EnsureScheduleIndexes(ctx context.Context, schedules, workouts *mongo.Collection) {
	scheduleIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "weekStart", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	workoutIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "scheduleId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
	}

	if _, err := schedules.Indexes().CreateMany(ctx, scheduleIndexes); err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", schedules.Name(), err)
	}
	if _, err := workouts.Indexes().CreateMany(ctx, workoutIndexes); err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", workouts.Name(), err)
	}
}
