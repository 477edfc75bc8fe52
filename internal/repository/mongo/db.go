package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fittrack/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// DefaultOpTimeout bounds a single repository call when no timeout is configured.
const DefaultOpTimeout = 5 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary so an unreachable server fails startup instead of the first request.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// classify maps driver errors onto the repository error set.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err), mongo.IsNetworkError(err):
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return err
}

// collection wraps a mongo collection of T with per-call timeouts,
// insertion-ordered reads and error classification.
type collection[T any] struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func newCollection[T any](db *mongo.Database, name string, timeout time.Duration) collection[T] {
	if timeout <= 0 {
		timeout = DefaultOpTimeout
	}
	return collection[T]{coll: db.Collection(name), timeout: timeout}
}

func (c collection[T]) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

func (c collection[T]) insert(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	ctx, cancel := c.bounded(ctx)
	defer cancel()

	result, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, classify(err)
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (c collection[T]) findOne(ctx context.Context, filter bson.M) (*T, error) {
	ctx, cancel := c.bounded(ctx)
	defer cancel()

	var doc T
	if err := c.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, classify(err)
	}
	return &doc, nil
}

// find returns every match sorted by _id, which follows insertion order.
func (c collection[T]) find(ctx context.Context, filter bson.M) ([]T, error) {
	ctx, cancel := c.bounded(ctx)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := c.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, classify(err)
	}
	defer cursor.Close(ctx)

	docs := []T{}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, classify(err)
	}
	return docs, nil
}

func (c collection[T]) findByIDs(ctx context.Context, ids []primitive.ObjectID) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	return c.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// updateByID applies update and returns the document as it is after the update.
func (c collection[T]) updateByID(ctx context.Context, id primitive.ObjectID, update bson.M) (*T, error) {
	ctx, cancel := c.bounded(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc T
	if err := c.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc); err != nil {
		return nil, classify(err)
	}
	return &doc, nil
}

func (c collection[T]) deleteByID(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := c.bounded(ctx)
	defer cancel()

	result, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classify(err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func ensureIndexes(ctx context.Context, coll *mongo.Collection, indexes []mongo.IndexModel) error {
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create indexes for %s: %w", coll.Name(), err)
	}
	return nil
}

// EnsureIndexes creates the indexes of every collection used by the service.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	return errors.Join(
		EnsureUserIndexes(ctx, db.Collection(UserCollectionName)),
		EnsureWorkoutIndexes(ctx, db.Collection(WorkoutCollectionName)),
		EnsureExerciseIndexes(ctx, db.Collection(ExerciseCollectionName)),
	)
}
