// Package populate replaces identifier references with the records they point at.
//
// Each resolution call builds its own DataLoader: every referenced id of every
// input record is enqueued before any result is awaited, so lookups are
// de-duplicated and batched into GetByIDs calls that run concurrently. Results
// are reassembled by position, so output index i always corresponds to input
// index i. Resolution is one level deep; resolving a user's workouts leaves the
// workouts' exercise ids untouched.
package populate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fittrack/backend/internal/domain"
	"fittrack/backend/internal/observability"
	"fittrack/backend/internal/repository"

	"github.com/graph-gophers/dataloader/v7"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxBatch = 100
	wait     = 2 * time.Millisecond
)

// Policy decides what happens when a reference points at a missing record.
type Policy string

const (
	// PolicyDefault defers to the resolver's configured policy.
	PolicyDefault Policy = ""
	// PolicyPlaceholder leaves nil at the dangling index.
	PolicyPlaceholder Policy = "placeholder"
	// PolicyFail aborts the resolution with a *DanglingReferenceError.
	PolicyFail Policy = "fail"
)

// ParsePolicy converts a configuration value into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyPlaceholder, PolicyFail:
		return p, nil
	}
	return PolicyDefault, fmt.Errorf("unknown dangling reference policy %q", s)
}

// DanglingReferenceError reports a reference whose target does not exist.
type DanglingReferenceError struct {
	Field domain.RefField
	Index int
	ID    primitive.ObjectID
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling reference: %s[%d] points at missing record %s", e.Field, e.Index, e.ID.Hex())
}

// WorkoutSource is the read side of the workout store needed for resolution.
type WorkoutSource interface {
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Workout, error)
}

// ExerciseSource is the read side of the exercise store needed for resolution.
type ExerciseSource interface {
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
}

// Resolver resolves User.WorkoutIDs and Workout.ExerciseIDs.
type Resolver struct {
	workouts  WorkoutSource
	exercises ExerciseSource
	policy    Policy
	logger    *slog.Logger
}

// NewResolver creates a Resolver. policy is used whenever a call passes PolicyDefault.
func NewResolver(workouts WorkoutSource, exercises ExerciseSource, policy Policy, logger *slog.Logger) *Resolver {
	if policy == PolicyDefault {
		policy = PolicyPlaceholder
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{workouts: workouts, exercises: exercises, policy: policy, logger: logger}
}

func (r *Resolver) effective(p Policy) Policy {
	if p == PolicyDefault {
		return r.policy
	}
	return p
}

// Users resolves the workout references of every user. The stored users are not modified.
func (r *Resolver) Users(ctx context.Context, users []domain.User, policy Policy) ([]domain.UserWithWorkouts, error) {
	policy = r.effective(policy)
	loader := newLoader(r.workouts.GetByIDs, func(w *domain.Workout) primitive.ObjectID { return w.ID })

	thunks := make([]dataloader.ThunkMany[*domain.Workout], len(users))
	for i := range users {
		thunks[i] = enqueue(ctx, loader, users[i].WorkoutIDs)
	}

	out := make([]domain.UserWithWorkouts, len(users))
	for i := range users {
		workouts, err := collect(ctx, r.logger, thunks[i], users[i].WorkoutIDs, domain.FieldWorkoutIDs, policy)
		if err != nil {
			return nil, err
		}
		out[i] = domain.UserWithWorkouts{User: users[i], Workouts: workouts}
	}
	return out, nil
}

// User resolves the workout references of a single user.
func (r *Resolver) User(ctx context.Context, user *domain.User, policy Policy) (*domain.UserWithWorkouts, error) {
	out, err := r.Users(ctx, []domain.User{*user}, policy)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Workouts resolves the exercise references of every workout.
func (r *Resolver) Workouts(ctx context.Context, workouts []domain.Workout, policy Policy) ([]domain.WorkoutWithExercises, error) {
	policy = r.effective(policy)
	loader := newLoader(r.exercises.GetByIDs, func(e *domain.Exercise) primitive.ObjectID { return e.ID })

	thunks := make([]dataloader.ThunkMany[*domain.Exercise], len(workouts))
	for i := range workouts {
		thunks[i] = enqueue(ctx, loader, workouts[i].ExerciseIDs)
	}

	out := make([]domain.WorkoutWithExercises, len(workouts))
	for i := range workouts {
		exercises, err := collect(ctx, r.logger, thunks[i], workouts[i].ExerciseIDs, domain.FieldExerciseIDs, policy)
		if err != nil {
			return nil, err
		}
		out[i] = domain.WorkoutWithExercises{Workout: workouts[i], Exercises: exercises}
	}
	return out, nil
}

// Workout resolves the exercise references of a single workout.
func (r *Resolver) Workout(ctx context.Context, workout *domain.Workout, policy Policy) (*domain.WorkoutWithExercises, error) {
	out, err := r.Workouts(ctx, []domain.Workout{*workout}, policy)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// newLoader builds a per-call loader. Ids missing from a batch resolve to repository.ErrNotFound.
func newLoader[T any](fetch func(context.Context, []primitive.ObjectID) ([]T, error), idOf func(*T) primitive.ObjectID) *dataloader.Loader[primitive.ObjectID, *T] {
	batch := func(ctx context.Context, keys []primitive.ObjectID) []*dataloader.Result[*T] {
		results := make([]*dataloader.Result[*T], len(keys))

		records, err := fetch(ctx, keys)
		if err != nil {
			for i := range results {
				results[i] = &dataloader.Result[*T]{Error: err}
			}
			return results
		}

		byID := make(map[primitive.ObjectID]*T, len(records))
		for i := range records {
			byID[idOf(&records[i])] = &records[i]
		}
		for i, key := range keys {
			if rec, ok := byID[key]; ok {
				results[i] = &dataloader.Result[*T]{Data: rec}
			} else {
				results[i] = &dataloader.Result[*T]{Error: repository.ErrNotFound}
			}
		}
		return results
	}

	return dataloader.NewBatchedLoader(
		batch,
		dataloader.WithWait[primitive.ObjectID, *T](wait),
		dataloader.WithBatchCapacity[primitive.ObjectID, *T](maxBatch),
	)
}

func enqueue[T any](ctx context.Context, loader *dataloader.Loader[primitive.ObjectID, *T], ids []primitive.ObjectID) dataloader.ThunkMany[*T] {
	if len(ids) == 0 {
		return nil
	}
	return loader.LoadMany(ctx, ids)
}

// collect waits for thunk and lays the records out in the order of ids.
func collect[T any](ctx context.Context, logger *slog.Logger, thunk dataloader.ThunkMany[*T], ids []primitive.ObjectID, field domain.RefField, policy Policy) ([]*T, error) {
	out := make([]*T, len(ids))
	if thunk == nil {
		return out, nil
	}

	values, errs := thunk()
	for i, id := range ids {
		var err error
		if errs != nil {
			err = errs[i]
		}
		if err == nil && values[i] == nil {
			err = repository.ErrNotFound
		}

		switch {
		case err == nil:
			// Copy so duplicate ids never share one record.
			rec := *values[i]
			out[i] = &rec
		case errors.Is(err, repository.ErrNotFound):
			observability.RecordDanglingReference(string(field))
			if policy == PolicyFail {
				return nil, &DanglingReferenceError{Field: field, Index: i, ID: id}
			}
			logger.WarnContext(ctx, "dangling reference", "field", field, "index", i, "id", id.Hex())
		default:
			return nil, fmt.Errorf("resolve %s: %w", field, err)
		}
	}
	return out, nil
}
