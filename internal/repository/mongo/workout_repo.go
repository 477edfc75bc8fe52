// internal/repository/mongo/workout_repo.go
package mongo

import (
	"context"
	"fittrack/backend/internal/domain"
	"fittrack/backend/internal/repository"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const WorkoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	workouts collection[domain.Workout]
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database, timeout time.Duration) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		workouts: newCollection[domain.Workout](db, WorkoutCollectionName, timeout),
	}
}

// Create inserts a new workout.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	// $push on a null field fails, so always store an array.
	if workout.ExerciseIDs == nil {
		workout.ExerciseIDs = []primitive.ObjectID{}
	}

	return r.workouts.insert(ctx, workout)
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	return r.workouts.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoWorkoutRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Workout, error) {
	return r.workouts.findByIDs(ctx, ids)
}

func (r *mongoWorkoutRepository) List(ctx context.Context, filter domain.WorkoutFilter) ([]domain.Workout, error) {
	query := bson.M{}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.Level != "" {
		query["level"] = filter.Level
	}
	if filter.FocusArea != "" {
		query["focusArea"] = filter.FocusArea
	}
	return r.workouts.find(ctx, query)
}

func (r *mongoWorkoutRepository) Update(ctx context.Context, id primitive.ObjectID, patch domain.WorkoutPatch) (*domain.Workout, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Type != nil {
		set["type"] = *patch.Type
	}
	if patch.Level != nil {
		set["level"] = *patch.Level
	}
	if patch.FocusArea != nil {
		set["focusArea"] = *patch.FocusArea
	}
	if patch.ExerciseIDs != nil {
		ids := *patch.ExerciseIDs
		if ids == nil {
			ids = []primitive.ObjectID{}
		}
		set["exerciseIds"] = ids
	}
	return r.workouts.updateByID(ctx, id, bson.M{"$set": set})
}

// Delete removes a workout. Users referencing it are left untouched.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.workouts.deleteByID(ctx, id)
}

func (r *mongoWorkoutRepository) AppendExerciseID(ctx context.Context, workoutID, exerciseID primitive.ObjectID) (*domain.Workout, error) {
	update := bson.M{
		"$push": bson.M{"exerciseIds": exerciseID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.workouts.updateByID(ctx, workoutID, update)
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) error {
	return ensureIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "level", Value: 1}},
			Options: options.Index(),
		},
		{
			// Reverse lookup of workouts containing an exercise
			Keys:    bson.D{{Key: "exerciseIds", Value: 1}},
			Options: options.Index(),
		},
	})
}
