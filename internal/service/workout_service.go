package service

import (
	"context"
	"fmt"

	"fittrack/backend/internal/domain"
	"fittrack/backend/internal/populate"
	"fittrack/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutInput holds the fields of a new workout.
type WorkoutInput struct {
	Type        string
	Level       string
	FocusArea   string
	ExerciseIDs []primitive.ObjectID
}

// --- Service Interface ---
type WorkoutService interface {
	CreateWorkout(ctx context.Context, in WorkoutInput) (*domain.Workout, error)
	GetWorkoutByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	ListWorkouts(ctx context.Context, filter domain.WorkoutFilter) ([]domain.Workout, error)
	UpdateWorkout(ctx context.Context, id primitive.ObjectID, patch domain.WorkoutPatch) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, id primitive.ObjectID) error

	// AddExercise appends exerciseID to the workout's exercise list. Both must exist.
	AddExercise(ctx context.Context, workoutID, exerciseID primitive.ObjectID) (*domain.Workout, error)
	// Populate resolves the reference field named by field on every workout.
	Populate(ctx context.Context, workouts []domain.Workout, field string, policy populate.Policy) ([]domain.WorkoutWithExercises, error)
}

// --- Service Implementation ---

type workoutService struct {
	workoutRepo  repository.WorkoutRepository
	exerciseRepo repository.ExerciseRepository
	resolver     *populate.Resolver
}

// NewWorkoutService creates a new workout service.
func NewWorkoutService(workoutRepo repository.WorkoutRepository, exerciseRepo repository.ExerciseRepository, resolver *populate.Resolver) WorkoutService {
	return &workoutService{
		workoutRepo:  workoutRepo,
		exerciseRepo: exerciseRepo,
		resolver:     resolver,
	}
}

func (s *workoutService) CreateWorkout(ctx context.Context, in WorkoutInput) (*domain.Workout, error) {
	workout := &domain.Workout{
		Type:        in.Type,
		Level:       in.Level,
		FocusArea:   in.FocusArea,
		ExerciseIDs: append([]primitive.ObjectID{}, in.ExerciseIDs...),
	}
	if _, err := s.workoutRepo.Create(ctx, workout); err != nil {
		return nil, translate(err, ErrWorkoutNotFound)
	}
	return workout, nil
}

func (s *workoutService) GetWorkoutByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, ErrWorkoutNotFound)
	}
	return workout, nil
}

func (s *workoutService) ListWorkouts(ctx context.Context, filter domain.WorkoutFilter) ([]domain.Workout, error) {
	workouts, err := s.workoutRepo.List(ctx, filter)
	if err != nil {
		return nil, translate(err, ErrWorkoutNotFound)
	}
	return workouts, nil
}

func (s *workoutService) UpdateWorkout(ctx context.Context, id primitive.ObjectID, patch domain.WorkoutPatch) (*domain.Workout, error) {
	if patch.IsEmpty() {
		return s.GetWorkoutByID(ctx, id)
	}
	workout, err := s.workoutRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, translate(err, ErrWorkoutNotFound)
	}
	return workout, nil
}

// DeleteWorkout removes the workout. Users that list it keep the id.
func (s *workoutService) DeleteWorkout(ctx context.Context, id primitive.ObjectID) error {
	return translate(s.workoutRepo.Delete(ctx, id), ErrWorkoutNotFound)
}

func (s *workoutService) AddExercise(ctx context.Context, workoutID, exerciseID primitive.ObjectID) (*domain.Workout, error) {
	if _, err := s.exerciseRepo.GetByID(ctx, exerciseID); err != nil {
		return nil, translate(err, ErrExerciseNotFound)
	}
	workout, err := s.workoutRepo.AppendExerciseID(ctx, workoutID, exerciseID)
	if err != nil {
		return nil, translate(err, ErrWorkoutNotFound)
	}
	return workout, nil
}

func (s *workoutService) Populate(ctx context.Context, workouts []domain.Workout, field string, policy populate.Policy) ([]domain.WorkoutWithExercises, error) {
	ref, ok := domain.ParseRefField(field)
	if !ok || ref != domain.FieldExerciseIDs {
		return nil, invalid("populate", fmt.Sprintf("workouts have no reference field %q", field))
	}
	out, err := s.resolver.Workouts(ctx, workouts, policy)
	if err != nil {
		return nil, translate(err, ErrExerciseNotFound)
	}
	return out, nil
}
