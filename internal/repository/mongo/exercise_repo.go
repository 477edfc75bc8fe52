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

const ExerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	exercises collection[domain.Exercise]
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
// Each call is bounded by timeout.
func NewMongoExerciseRepository(db *mongo.Database, timeout time.Duration) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		exercises: newCollection[domain.Exercise](db, ExerciseCollectionName, timeout),
	}
}

// Create inserts a new exercise into the database.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	return r.exercises.insert(ctx, exercise)
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	return r.exercises.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoExerciseRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	return r.exercises.findByIDs(ctx, ids)
}

// List retrieves every exercise matching filter in insertion order.
func (r *mongoExerciseRepository) List(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error) {
	query := bson.M{}
	if filter.Name != "" {
		query["name"] = filter.Name
	}
	return r.exercises.find(ctx, query)
}

// Update sets only the fields supplied in patch.
func (r *mongoExerciseRepository) Update(ctx context.Context, id primitive.ObjectID, patch domain.ExercisePatch) (*domain.Exercise, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Repetitions != nil {
		set["repetitions"] = *patch.Repetitions
	}
	if patch.Sets != nil {
		set["sets"] = *patch.Sets
	}
	if patch.VideoKey != nil {
		set["videoKey"] = *patch.VideoKey
	}
	return r.exercises.updateByID(ctx, id, bson.M{"$set": set})
}

// Delete removes an exercise. Workouts referencing it are left untouched.
func (r *mongoExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.exercises.deleteByID(ctx, id)
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	return ensureIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index(),
		},
	})
}
