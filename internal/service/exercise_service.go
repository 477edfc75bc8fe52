package service

import (
	"context"
	"log/slog"
	"time"

	"fittrack/backend/internal/domain"
	"fittrack/backend/internal/repository"
	"fittrack/backend/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseInput holds the fields of a new exercise.
type ExerciseInput struct {
	Name        string
	Repetitions int
	Sets        int
}

// VideoUpload is a presigned upload target for an exercise demo video.
// The client PUTs the file to UploadURL with the same Content-Type.
type VideoUpload struct {
	UploadURL string
	ObjectKey string
	ExpiresAt time.Time
}

// --- Service Interface ---
type ExerciseService interface {
	CreateExercise(ctx context.Context, in ExerciseInput) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	ListExercises(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, id primitive.ObjectID, patch domain.ExercisePatch) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, id primitive.ObjectID) error

	RequestVideoUpload(ctx context.Context, id primitive.ObjectID, contentType string) (*VideoUpload, error)
	VideoDownloadURL(ctx context.Context, id primitive.ObjectID) (string, error)
}

// --- Service Implementation ---

type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	fileStorage  storage.FileStorage // nil when video storage is not configured
	urlExpiry    time.Duration
	logger       *slog.Logger
}

// NewExerciseService creates a new exercise service. fileStorage may be nil.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, fileStorage storage.FileStorage, urlExpiry time.Duration, logger *slog.Logger) ExerciseService {
	if urlExpiry <= 0 {
		urlExpiry = storage.DefaultPresignedURLExpiry
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		fileStorage:  fileStorage,
		urlExpiry:    urlExpiry,
		logger:       logger,
	}
}

func validateVolume(repetitions, sets *int) error {
	if repetitions != nil && *repetitions < 0 {
		return invalid("repetitions", "must not be negative")
	}
	if sets != nil && *sets < 0 {
		return invalid("sets", "must not be negative")
	}
	return nil
}

func (s *exerciseService) CreateExercise(ctx context.Context, in ExerciseInput) (*domain.Exercise, error) {
	if err := validateVolume(&in.Repetitions, &in.Sets); err != nil {
		return nil, err
	}

	exercise := &domain.Exercise{
		Name:        in.Name,
		Repetitions: in.Repetitions,
		Sets:        in.Sets,
	}
	if _, err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		return nil, translate(err, ErrExerciseNotFound)
	}
	return exercise, nil
}

func (s *exerciseService) GetExerciseByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, ErrExerciseNotFound)
	}
	return exercise, nil
}

func (s *exerciseService) ListExercises(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error) {
	exercises, err := s.exerciseRepo.List(ctx, filter)
	if err != nil {
		return nil, translate(err, ErrExerciseNotFound)
	}
	return exercises, nil
}

// UpdateExercise applies a partial update. VideoKey is managed through the video
// operations and is ignored here.
func (s *exerciseService) UpdateExercise(ctx context.Context, id primitive.ObjectID, patch domain.ExercisePatch) (*domain.Exercise, error) {
	patch.VideoKey = nil
	if err := validateVolume(patch.Repetitions, patch.Sets); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.GetExerciseByID(ctx, id)
	}

	exercise, err := s.exerciseRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, translate(err, ErrExerciseNotFound)
	}
	return exercise, nil
}

// DeleteExercise removes the exercise. Workouts that list it keep the id.
// A stored demo video is removed best-effort.
func (s *exerciseService) DeleteExercise(ctx context.Context, id primitive.ObjectID) error {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		return translate(err, ErrExerciseNotFound)
	}
	if err := s.exerciseRepo.Delete(ctx, id); err != nil {
		return translate(err, ErrExerciseNotFound)
	}

	if s.fileStorage != nil && exercise.VideoKey != "" {
		s.removeVideo(ctx, id, exercise.VideoKey)
	}
	return nil
}

// removeVideo deletes a stored video object. Failures are logged, not returned.
func (s *exerciseService) removeVideo(ctx context.Context, id primitive.ObjectID, key string) {
	if err := s.fileStorage.DeleteObject(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete exercise video", "exerciseId", id.Hex(), "key", key, "error", err)
	}
}

// RequestVideoUpload records a fresh object key on the exercise and returns a
// presigned PUT URL for it. A previously stored video is removed best-effort.
func (s *exerciseService) RequestVideoUpload(ctx context.Context, id primitive.ObjectID, contentType string) (*VideoUpload, error) {
	if s.fileStorage == nil {
		return nil, ErrVideoStorageDisabled
	}
	if err := storage.ValidateVideoContentType(contentType); err != nil {
		return nil, invalid("contentType", err.Error())
	}
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, ErrExerciseNotFound)
	}

	key := storage.ExerciseVideoKey(id.Hex(), contentType)
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, key, contentType, s.urlExpiry)
	if err != nil {
		return nil, err
	}

	if _, err := s.exerciseRepo.Update(ctx, id, domain.ExercisePatch{VideoKey: &key}); err != nil {
		return nil, translate(err, ErrExerciseNotFound)
	}
	if exercise.VideoKey != "" {
		s.removeVideo(ctx, id, exercise.VideoKey)
	}

	return &VideoUpload{
		UploadURL: uploadURL,
		ObjectKey: key,
		ExpiresAt: time.Now().UTC().Add(s.urlExpiry),
	}, nil
}

func (s *exerciseService) VideoDownloadURL(ctx context.Context, id primitive.ObjectID) (string, error) {
	if s.fileStorage == nil {
		return "", ErrVideoStorageDisabled
	}
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		return "", translate(err, ErrExerciseNotFound)
	}
	if exercise.VideoKey == "" {
		return "", ErrNoVideo
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, exercise.VideoKey, s.urlExpiry)
}
