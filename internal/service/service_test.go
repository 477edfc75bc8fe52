package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"fittrack/backend/internal/domain"
	"fittrack/backend/internal/populate"
	"fittrack/backend/internal/repository"
	"fittrack/backend/internal/repository/memory"
	"fittrack/backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type services struct {
	users     service.UserService
	workouts  service.WorkoutService
	exercises service.ExerciseService
	files     *fakeStorage
}

func newServices(t *testing.T, withStorage bool) services {
	t.Helper()
	userRepo := memory.NewUserRepository()
	workoutRepo := memory.NewWorkoutRepository()
	exerciseRepo := memory.NewExerciseRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := populate.NewResolver(workoutRepo, exerciseRepo, populate.PolicyPlaceholder, logger)

	s := services{
		users:    service.NewUserService(userRepo, workoutRepo, resolver),
		workouts: service.NewWorkoutService(workoutRepo, exerciseRepo, resolver),
	}
	if withStorage {
		s.files = &fakeStorage{}
		s.exercises = service.NewExerciseService(exerciseRepo, s.files, time.Minute, logger)
	} else {
		s.exercises = service.NewExerciseService(exerciseRepo, nil, 0, logger)
	}
	return s
}

// fakeStorage hands out deterministic URLs and records deletions.
type fakeStorage struct {
	deleted   []string
	deleteErr error
}

func (f *fakeStorage) GeneratePresignedUploadURL(_ context.Context, key, contentType string, expires time.Duration) (string, error) {
	return fmt.Sprintf("https://s3.test/put/%s?ct=%s&exp=%d", key, contentType, int(expires.Seconds())), nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, expires time.Duration) (string, error) {
	return fmt.Sprintf("https://s3.test/get/%s?exp=%d", key, int(expires.Seconds())), nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return f.deleteErr
}

func phil() service.UserInput {
	return service.UserInput{ExternalID: "1", Nickname: "Phil", Email: "Phil@test.com"}
}

func TestUserService_CreateAndGet(t *testing.T) {
	s := newServices(t, false)
	ctx := context.Background()

	user, err := s.users.CreateUser(ctx, phil())
	require.NoError(t, err)
	assert.False(t, user.ID.IsZero())
	assert.Equal(t, "1", user.ExternalID)
	assert.Equal(t, "Phil", user.Nickname)
	assert.Equal(t, "Phil@test.com", user.Email)
	assert.Empty(t, user.WorkoutIDs)

	got, err := s.users.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Nickname, got.Nickname)
	assert.Equal(t, user.Email, got.Email)
}

func TestUserService_CreateRequiresFields(t *testing.T) {
	s := newServices(t, false)
	ctx := context.Background()

	cases := map[string]func(in *service.UserInput){
		"nickname":   func(in *service.UserInput) { in.Nickname = "" },
		"externalId": func(in *service.UserInput) { in.ExternalID = "" },
		"email":      func(in *service.UserInput) { in.Email = "   " },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			in := phil()
			mutate(&in)
			_, err := s.users.CreateUser(ctx, in)

			var verr *service.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, field, verr.Field)
		})
	}

	users, err := s.users.ListUsers(ctx, domain.UserFilter{})
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserService_UpdateChangesOnlySuppliedFields(t *testing.T) {
	s := newServices(t, false)
	ctx := context.Background()

	user, err := s.users.CreateUser(ctx, phil())
	require.NoError(t, err)

	nick := "X"
	updated, err := s.users.UpdateUser(ctx, user.ID, domain.UserPatch{Nickname: &nick})
	require.NoError(t, err)
	assert.Equal(t, "X", updated.Nickname)

	got, err := s.users.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "X", got.Nickname)
	assert.Equal(t, "1", got.ExternalID)
	assert.Equal(t, "Phil@test.com", got.Email)

	blank := ""
	_, err = s.users.UpdateUser(ctx, user.ID, domain.UserPatch{Email: &blank})
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = s.users.UpdateUser(ctx, primitive.NewObjectID(), domain.UserPatch{Nickname: &nick})
	assert.ErrorIs(t, err, service.ErrUserNotFound)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUserService_GetByExternalIDReturnsFirstMatch(t *testing.T) {
	s := newServices(t, false)
	ctx := context.Background()

	first, err := s.users.CreateUser(ctx, phil())
	require.NoError(t, err)
	dup := phil()
	dup.Nickname = "Phil Two"
	_, err = s.users.CreateUser(ctx, dup)
	require.NoError(t, err)

	got, err := s.users.GetUserByExternalID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = s.users.GetUserByExternalID(ctx, "404")
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestUserService_AddWorkoutAndPopulate(t *testing.T) {
	s := newServices(t, false)
	ctx := context.Background()

	user, err := s.users.CreateUser(ctx, phil())
	require.NoError(t, err)

	types := []string{"Upper Body", "Body Building", "Strength Training"}
	for _, typ := range types {
		w, err := s.workouts.CreateWorkout(ctx, service.WorkoutInput{Type: typ, Level: "Beginner", FocusArea: "Upper Body"})
		require.NoError(t, err)
		_, err = s.users.AddWorkout(ctx, user.ID, w.ID)
		require.NoError(t, err)
	}

	_, err = s.users.AddWorkout(ctx, user.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, service.ErrWorkoutNotFound)

	stored, err := s.users.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, stored.WorkoutIDs, 3)

	populated, err := s.users.Populate(ctx, []domain.User{*stored}, "workoutIds", populate.PolicyDefault)
	require.NoError(t, err)
	require.Len(t, populated, 1)
	require.Len(t, populated[0].Workouts, 3)
	assert.Equal(t, "Body Building", populated[0].Workouts[1].Type)
	for i, typ := range types {
		assert.Equal(t, typ, populated[0].Workouts[i].Type)
	}

	_, err = s.users.Populate(ctx, []domain.User{*stored}, "exerciseIds", populate.PolicyDefault)
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUserService_DeleteDoesNotCascade(t *testing.T) {
	s := newServices(t, false)
	ctx := context.Background()

	w, err := s.workouts.CreateWorkout(ctx, service.WorkoutInput{Type: "Cardio"})
	require.NoError(t, err)
	in := phil()
	in.WorkoutIDs = []primitive.ObjectID{w.ID}
	user, err := s.users.CreateUser(ctx, in)
	require.NoError(t, err)

	require.NoError(t, s.workouts.DeleteWorkout(ctx, w.ID))

	stored, err := s.users.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{w.ID}, stored.WorkoutIDs)

	populated, err := s.users.Populate(ctx, []domain.User{*stored}, "workoutIds", populate.PolicyDefault)
	require.NoError(t, err)
	assert.Nil(t, populated[0].Workouts[0])

	_, err = s.users.Populate(ctx, []domain.User{*stored}, "workoutIds", populate.PolicyFail)
	var dangling *service.DanglingReferenceError
	assert.ErrorAs(t, err, &dangling)

	require.NoError(t, s.users.DeleteUser(ctx, user.ID))
	assert.ErrorIs(t, s.users.DeleteUser(ctx, user.ID), service.ErrUserNotFound)
}

func TestWorkoutService_PopulatePreservesOrder(t *testing.T) {
	s := newServices(t, false)
	ctx := context.Background()

	e1, err := s.exercises.CreateExercise(ctx, service.ExerciseInput{Name: "Push ups", Repetitions: 8, Sets: 3})
	require.NoError(t, err)
	e2, err := s.exercises.CreateExercise(ctx, service.ExerciseInput{Name: "Pull ups", Repetitions: 5, Sets: 3})
	require.NoError(t, err)

	w, err := s.workouts.CreateWorkout(ctx, service.WorkoutInput{
		Type: "Upper Body", Level: "Beginner", FocusArea: "Chest",
		ExerciseIDs: []primitive.ObjectID{e1.ID},
	})
	require.NoError(t, err)
	w, err = s.workouts.AddExercise(ctx, w.ID, e2.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{e1.ID, e2.ID}, w.ExerciseIDs)

	populated, err := s.workouts.Populate(ctx, []domain.Workout{*w}, "exerciseIds", populate.PolicyDefault)
	require.NoError(t, err)
	require.Len(t, populated[0].Exercises, 2)
	assert.Equal(t, "Push ups", populated[0].Exercises[0].Name)
	assert.Equal(t, "Pull ups", populated[0].Exercises[1].Name)

	_, err = s.workouts.Populate(ctx, []domain.Workout{*w}, "nope", populate.PolicyDefault)
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = s.workouts.AddExercise(ctx, primitive.NewObjectID(), e1.ID)
	assert.ErrorIs(t, err, service.ErrWorkoutNotFound)
	_, err = s.workouts.AddExercise(ctx, w.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, service.ErrExerciseNotFound)
}

func TestWorkoutService_Update(t *testing.T) {
	s := newServices(t, false)
	ctx := context.Background()

	w, err := s.workouts.CreateWorkout(ctx, service.WorkoutInput{Type: "Cardio", Level: "Beginner", FocusArea: "Legs"})
	require.NoError(t, err)

	level := "Advance"
	updated, err := s.workouts.UpdateWorkout(ctx, w.ID, domain.WorkoutPatch{Level: &level})
	require.NoError(t, err)
	assert.Equal(t, "Advance", updated.Level)
	assert.Equal(t, "Cardio", updated.Type)

	unchanged, err := s.workouts.UpdateWorkout(ctx, w.ID, domain.WorkoutPatch{})
	require.NoError(t, err)
	assert.Equal(t, "Advance", unchanged.Level)

	list, err := s.workouts.ListWorkouts(ctx, domain.WorkoutFilter{Level: "Advance"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestExerciseService_Lifecycle(t *testing.T) {
	s := newServices(t, false)
	ctx := context.Background()

	list, err := s.exercises.ListExercises(ctx, domain.ExerciseFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	e, err := s.exercises.CreateExercise(ctx, service.ExerciseInput{Name: "Squats", Repetitions: 10, Sets: 4})
	require.NoError(t, err)
	_, err = s.exercises.CreateExercise(ctx, service.ExerciseInput{Name: "Lunges", Repetitions: 12, Sets: 3})
	require.NoError(t, err)

	list, err = s.exercises.ListExercises(ctx, domain.ExerciseFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	sets := 5
	updated, err := s.exercises.UpdateExercise(ctx, e.ID, domain.ExercisePatch{Sets: &sets})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Sets)
	assert.Equal(t, 10, updated.Repetitions)

	negative := -1
	_, err = s.exercises.UpdateExercise(ctx, e.ID, domain.ExercisePatch{Repetitions: &negative})
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr)

	require.NoError(t, s.exercises.DeleteExercise(ctx, e.ID))
	_, err = s.exercises.GetExerciseByID(ctx, e.ID)
	assert.ErrorIs(t, err, service.ErrExerciseNotFound)
	assert.ErrorIs(t, s.exercises.DeleteExercise(ctx, e.ID), service.ErrExerciseNotFound)
}

func TestExerciseService_Video(t *testing.T) {
	s := newServices(t, true)
	ctx := context.Background()

	e, err := s.exercises.CreateExercise(ctx, service.ExerciseInput{Name: "Deadlift", Repetitions: 5, Sets: 5})
	require.NoError(t, err)

	_, err = s.exercises.VideoDownloadURL(ctx, e.ID)
	assert.ErrorIs(t, err, service.ErrNoVideo)

	_, err = s.exercises.RequestVideoUpload(ctx, e.ID, "image/png")
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr)

	upload, err := s.exercises.RequestVideoUpload(ctx, e.ID, "video/mp4")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(upload.ObjectKey, "exercises/"+e.ID.Hex()+"/videos/"))
	assert.Contains(t, upload.UploadURL, upload.ObjectKey)
	assert.Contains(t, upload.UploadURL, "exp=60")

	url, err := s.exercises.VideoDownloadURL(ctx, e.ID)
	require.NoError(t, err)
	assert.Contains(t, url, upload.ObjectKey)

	s.files.deleteErr = errors.New("bucket gone")
	require.NoError(t, s.exercises.DeleteExercise(ctx, e.ID))
	assert.Equal(t, []string{upload.ObjectKey}, s.files.deleted)

	_, err = s.exercises.RequestVideoUpload(ctx, primitive.NewObjectID(), "video/mp4")
	assert.ErrorIs(t, err, service.ErrExerciseNotFound)
}

func TestExerciseService_ReplacingVideoRemovesPreviousObject(t *testing.T) {
	s := newServices(t, true)
	ctx := context.Background()

	e, err := s.exercises.CreateExercise(ctx, service.ExerciseInput{Name: "Snatch", Repetitions: 3, Sets: 5})
	require.NoError(t, err)

	first, err := s.exercises.RequestVideoUpload(ctx, e.ID, "video/mp4")
	require.NoError(t, err)
	assert.Empty(t, s.files.deleted)

	s.files.deleteErr = errors.New("transient")
	second, err := s.exercises.RequestVideoUpload(ctx, e.ID, "video/webm")
	require.NoError(t, err)
	assert.NotEqual(t, first.ObjectKey, second.ObjectKey)
	assert.Equal(t, []string{first.ObjectKey}, s.files.deleted)

	url, err := s.exercises.VideoDownloadURL(ctx, e.ID)
	require.NoError(t, err)
	assert.Contains(t, url, second.ObjectKey)
}

func TestExerciseService_VideoStorageDisabled(t *testing.T) {
	s := newServices(t, false)
	ctx := context.Background()

	e, err := s.exercises.CreateExercise(ctx, service.ExerciseInput{Name: "Plank"})
	require.NoError(t, err)

	_, err = s.exercises.RequestVideoUpload(ctx, e.ID, "video/mp4")
	assert.ErrorIs(t, err, service.ErrVideoStorageDisabled)
	_, err = s.exercises.VideoDownloadURL(ctx, e.ID)
	assert.ErrorIs(t, err, service.ErrVideoStorageDisabled)
}

// downUsers fails every call the way the mongo repository does on timeout.
type downUsers struct {
	repository.UserRepository
}

func (downUsers) err() error {
	return fmt.Errorf("%w: %v", repository.ErrUnavailable, context.DeadlineExceeded)
}

func (d downUsers) Create(context.Context, *domain.User) (primitive.ObjectID, error) {
	return primitive.NilObjectID, d.err()
}

func (d downUsers) GetByID(context.Context, primitive.ObjectID) (*domain.User, error) {
	return nil, d.err()
}

func (d downUsers) List(context.Context, domain.UserFilter) ([]domain.User, error) {
	return nil, d.err()
}

func TestUserService_StorageUnavailable(t *testing.T) {
	workouts := memory.NewWorkoutRepository()
	resolver := populate.NewResolver(workouts, memory.NewExerciseRepository(), populate.PolicyPlaceholder, nil)
	users := service.NewUserService(downUsers{}, workouts, resolver)
	ctx := context.Background()

	_, err := users.CreateUser(ctx, phil())
	assert.ErrorIs(t, err, service.ErrStorageUnavailable)
	assert.NotErrorIs(t, err, service.ErrNotFound)

	_, err = users.GetUserByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, service.ErrStorageUnavailable)

	_, err = users.ListUsers(ctx, domain.UserFilter{})
	assert.ErrorIs(t, err, service.ErrStorageUnavailable)
}
