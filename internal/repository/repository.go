package repository

import (
	"context"
	"fittrack/backend/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound    = RepositoryError("not found")
	ErrUnavailable = RepositoryError("storage unavailable") // Store unreachable or the call timed out
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	// GetByIDs returns the exercises that exist among ids, in no particular order.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	List(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error)
	Update(ctx context.Context, id primitive.ObjectID, patch domain.ExercisePatch) (*domain.Exercise, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// WorkoutRepository defines the interface for interacting with workout data.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Workout, error)
	List(ctx context.Context, filter domain.WorkoutFilter) ([]domain.Workout, error)
	Update(ctx context.Context, id primitive.ObjectID, patch domain.WorkoutPatch) (*domain.Workout, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// AppendExerciseID pushes exerciseID onto the end of the workout's ExerciseIDs.
	AppendExerciseID(ctx context.Context, workoutID, exerciseID primitive.ObjectID) (*domain.Workout, error)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
	Update(ctx context.Context, id primitive.ObjectID, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// AppendWorkoutID pushes workoutID onto the end of the user's WorkoutIDs.
	AppendWorkoutID(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.User, error)
}
