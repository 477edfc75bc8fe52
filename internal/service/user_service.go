package service

import (
	"context"
	"fmt"
	"strings"

	"fittrack/backend/internal/domain"
	"fittrack/backend/internal/populate"
	"fittrack/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserInput holds the fields of a new user. ExternalID, Nickname and Email are required.
type UserInput struct {
	ExternalID string
	Nickname   string
	Email      string
	WorkoutIDs []primitive.ObjectID
}

// --- Service Interface ---
type UserService interface {
	CreateUser(ctx context.Context, in UserInput) (*domain.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// GetUserByExternalID returns the earliest created user with the given external id.
	GetUserByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, patch domain.UserPatch) (*domain.User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error

	// AddWorkout appends workoutID to the user's workout list. Both must exist.
	AddWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.User, error)
	// Populate resolves the reference field named by field on every user.
	Populate(ctx context.Context, users []domain.User, field string, policy populate.Policy) ([]domain.UserWithWorkouts, error)
}

// --- Service Implementation ---

type userService struct {
	userRepo    repository.UserRepository
	workoutRepo repository.WorkoutRepository
	resolver    *populate.Resolver
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, workoutRepo repository.WorkoutRepository, resolver *populate.Resolver) UserService {
	return &userService{
		userRepo:    userRepo,
		workoutRepo: workoutRepo,
		resolver:    resolver,
	}
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "is required")
	}
	return nil
}

func (s *userService) CreateUser(ctx context.Context, in UserInput) (*domain.User, error) {
	for _, f := range []struct{ name, value string }{
		{"externalId", in.ExternalID},
		{"nickname", in.Nickname},
		{"email", in.Email},
	} {
		if err := required(f.name, f.value); err != nil {
			return nil, err
		}
	}

	user := &domain.User{
		ExternalID: in.ExternalID,
		Nickname:   in.Nickname,
		Email:      in.Email,
		WorkoutIDs: append([]primitive.ObjectID{}, in.WorkoutIDs...),
	}
	if _, err := s.userRepo.Create(ctx, user); err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *userService) GetUserByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	if err := required("externalId", externalID); err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx, domain.UserFilter{ExternalID: externalID})
	if err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return &users[0], nil
}

func (s *userService) ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	return users, nil
}

// UpdateUser applies a partial update. Required fields may be changed but not blanked.
func (s *userService) UpdateUser(ctx context.Context, id primitive.ObjectID, patch domain.UserPatch) (*domain.User, error) {
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"externalId", patch.ExternalID},
		{"nickname", patch.Nickname},
		{"email", patch.Email},
	} {
		if f.value == nil {
			continue
		}
		if err := required(f.name, *f.value); err != nil {
			return nil, err
		}
	}
	if patch.IsEmpty() {
		return s.GetUserByID(ctx, id)
	}

	user, err := s.userRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	return user, nil
}

// DeleteUser removes the user. The referenced workouts are left alone.
func (s *userService) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	return translate(s.userRepo.Delete(ctx, id), ErrUserNotFound)
}

func (s *userService) AddWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.User, error) {
	if _, err := s.workoutRepo.GetByID(ctx, workoutID); err != nil {
		return nil, translate(err, ErrWorkoutNotFound)
	}
	user, err := s.userRepo.AppendWorkoutID(ctx, userID, workoutID)
	if err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *userService) Populate(ctx context.Context, users []domain.User, field string, policy populate.Policy) ([]domain.UserWithWorkouts, error) {
	ref, ok := domain.ParseRefField(field)
	if !ok || ref != domain.FieldWorkoutIDs {
		return nil, invalid("populate", fmt.Sprintf("users have no reference field %q", field))
	}
	out, err := s.resolver.Users(ctx, users, policy)
	if err != nil {
		return nil, translate(err, ErrWorkoutNotFound)
	}
	return out, nil
}
