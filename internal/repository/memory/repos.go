package memory

import (
	"context"
	"time"

	"fittrack/backend/internal/domain"
	"fittrack/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseRepository implements repository.ExerciseRepository in memory.
type ExerciseRepository struct {
	exercises *table[domain.Exercise]
}

func NewExerciseRepository() *ExerciseRepository {
	return &ExerciseRepository{
		exercises: newTable(
			func(e *domain.Exercise) primitive.ObjectID { return e.ID },
			func(e domain.Exercise) domain.Exercise { return e },
		),
	}
}

var _ repository.ExerciseRepository = (*ExerciseRepository)(nil)

func (r *ExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	return r.exercises.insert(ctx, *exercise)
}

func (r *ExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	return r.exercises.get(ctx, id)
}

func (r *ExerciseRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	return r.exercises.getMany(ctx, ids)
}

func (r *ExerciseRepository) List(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error) {
	return r.exercises.list(ctx, filter.Matches)
}

func (r *ExerciseRepository) Update(ctx context.Context, id primitive.ObjectID, patch domain.ExercisePatch) (*domain.Exercise, error) {
	return r.exercises.update(ctx, id, func(e *domain.Exercise) {
		patch.Apply(e)
		e.UpdatedAt = time.Now().UTC()
	})
}

func (r *ExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.exercises.remove(ctx, id)
}

// WorkoutRepository implements repository.WorkoutRepository in memory.
type WorkoutRepository struct {
	workouts *table[domain.Workout]
}

func NewWorkoutRepository() *WorkoutRepository {
	return &WorkoutRepository{
		workouts: newTable(
			func(w *domain.Workout) primitive.ObjectID { return w.ID },
			func(w domain.Workout) domain.Workout {
				w.ExerciseIDs = cloneIDs(w.ExerciseIDs)
				return w
			},
		),
	}
}

var _ repository.WorkoutRepository = (*WorkoutRepository)(nil)

func (r *WorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	if workout.ExerciseIDs == nil {
		workout.ExerciseIDs = []primitive.ObjectID{}
	}
	return r.workouts.insert(ctx, *workout)
}

func (r *WorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	return r.workouts.get(ctx, id)
}

func (r *WorkoutRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Workout, error) {
	return r.workouts.getMany(ctx, ids)
}

func (r *WorkoutRepository) List(ctx context.Context, filter domain.WorkoutFilter) ([]domain.Workout, error) {
	return r.workouts.list(ctx, filter.Matches)
}

func (r *WorkoutRepository) Update(ctx context.Context, id primitive.ObjectID, patch domain.WorkoutPatch) (*domain.Workout, error) {
	return r.workouts.update(ctx, id, func(w *domain.Workout) {
		patch.Apply(w)
		w.UpdatedAt = time.Now().UTC()
	})
}

func (r *WorkoutRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.workouts.remove(ctx, id)
}

func (r *WorkoutRepository) AppendExerciseID(ctx context.Context, workoutID, exerciseID primitive.ObjectID) (*domain.Workout, error) {
	return r.workouts.update(ctx, workoutID, func(w *domain.Workout) {
		w.ExerciseIDs = append(w.ExerciseIDs, exerciseID)
		w.UpdatedAt = time.Now().UTC()
	})
}

// UserRepository implements repository.UserRepository in memory.
type UserRepository struct {
	users *table[domain.User]
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: newTable(
			func(u *domain.User) primitive.ObjectID { return u.ID },
			func(u domain.User) domain.User {
				u.WorkoutIDs = cloneIDs(u.WorkoutIDs)
				return u
			},
		),
	}
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.WorkoutIDs == nil {
		user.WorkoutIDs = []primitive.ObjectID{}
	}
	return r.users.insert(ctx, *user)
}

func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.users.get(ctx, id)
}

func (r *UserRepository) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	return r.users.list(ctx, filter.Matches)
}

func (r *UserRepository) Update(ctx context.Context, id primitive.ObjectID, patch domain.UserPatch) (*domain.User, error) {
	return r.users.update(ctx, id, func(u *domain.User) {
		patch.Apply(u)
		u.UpdatedAt = time.Now().UTC()
	})
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.users.remove(ctx, id)
}

func (r *UserRepository) AppendWorkoutID(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.User, error) {
	return r.users.update(ctx, userID, func(u *domain.User) {
		u.WorkoutIDs = append(u.WorkoutIDs, workoutID)
		u.UpdatedAt = time.Now().UTC()
	})
}
