// Package memory keeps records in process memory. It backs local development
// (database.driver: memory) and the service and handler tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fittrack/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// table is an insertion-ordered set of records of type T.
// Records are copied on the way in and out so callers never share state with the store.
type table[T any] struct {
	mu    sync.RWMutex
	order []primitive.ObjectID
	rows  map[primitive.ObjectID]T
	clone func(T) T
	id    func(*T) primitive.ObjectID
}

func newTable[T any](id func(*T) primitive.ObjectID, clone func(T) T) *table[T] {
	return &table[T]{
		rows:  make(map[primitive.ObjectID]T),
		clone: clone,
		id:    id,
	}
}

func (t *table[T]) insert(ctx context.Context, rec T) (primitive.ObjectID, error) {
	if err := alive(ctx); err != nil {
		return primitive.NilObjectID, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.id(&rec)
	t.rows[id] = t.clone(rec)
	t.order = append(t.order, id)
	return id, nil
}

func (t *table[T]) get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	rec, ok := t.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := t.clone(rec)
	return &out, nil
}

func (t *table[T]) getMany(ctx context.Context, ids []primitive.ObjectID) ([]T, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]T, 0, len(ids))
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if rec, ok := t.rows[id]; ok {
			out = append(out, t.clone(rec))
		}
	}
	return out, nil
}

func (t *table[T]) list(ctx context.Context, match func(*T) bool) ([]T, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := []T{}
	for _, id := range t.order {
		rec := t.rows[id]
		if match(&rec) {
			out = append(out, t.clone(rec))
		}
	}
	return out, nil
}

// update runs mutate on a copy of the record and stores the result.
func (t *table[T]) update(ctx context.Context, id primitive.ObjectID, mutate func(*T)) (*T, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rec = t.clone(rec)
	mutate(&rec)
	t.rows[id] = rec
	out := t.clone(rec)
	return &out, nil
}

func (t *table[T]) remove(ctx context.Context, id primitive.ObjectID) error {
	if err := alive(ctx); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.rows, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

// alive reports the context error, with an expired deadline mapped to
// repository.ErrUnavailable the same way the mongo driver's timeouts are.
func alive(ctx context.Context) error {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return err
}

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	return append([]primitive.ObjectID{}, ids...)
}
