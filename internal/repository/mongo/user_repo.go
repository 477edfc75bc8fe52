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

const UserCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	users collection[domain.User]
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
// It expects a connected *mongo.Database instance.
func NewMongoUserRepository(db *mongo.Database, timeout time.Duration) repository.UserRepository {
	return &mongoUserRepository{
		users: newCollection[domain.User](db, UserCollectionName, timeout),
	}
}

// Create inserts a new user into the database.
// Required fields are checked by the service layer before this is called.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.WorkoutIDs == nil {
		user.WorkoutIDs = []primitive.ObjectID{}
	}

	return r.users.insert(ctx, user)
}

// GetByID retrieves a user by their MongoDB ObjectID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.users.findOne(ctx, bson.M{"_id": id})
}

// List retrieves users matching filter, oldest first.
func (r *mongoUserRepository) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	query := bson.M{}
	if filter.ExternalID != "" {
		query["externalId"] = filter.ExternalID
	}
	if filter.Email != "" {
		query["email"] = filter.Email
	}
	return r.users.find(ctx, query)
}

func (r *mongoUserRepository) Update(ctx context.Context, id primitive.ObjectID, patch domain.UserPatch) (*domain.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.ExternalID != nil {
		set["externalId"] = *patch.ExternalID
	}
	if patch.Nickname != nil {
		set["nickname"] = *patch.Nickname
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.WorkoutIDs != nil {
		ids := *patch.WorkoutIDs
		if ids == nil {
			ids = []primitive.ObjectID{}
		}
		set["workoutIds"] = ids
	}
	return r.users.updateByID(ctx, id, bson.M{"$set": set})
}

func (r *mongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.users.deleteByID(ctx, id)
}

// AppendWorkoutID adds a workout to the end of the user's list. Duplicates are kept.
func (r *mongoUserRepository) AppendWorkoutID(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.User, error) {
	update := bson.M{
		"$push": bson.M{"workoutIds": workoutID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.users.updateByID(ctx, userID, update)
}

// EnsureUserIndexes creates necessary indexes for the users collection.
// Call this once during application startup.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) error {
	return ensureIndexes(ctx, collection, []mongo.IndexModel{
		{
			// Not unique: several users may share an external ID.
			Keys:    bson.D{{Key: "externalId", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index(),
		},
	})
}
