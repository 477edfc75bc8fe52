// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise is a single movement with its prescribed volume. It holds no references.
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Repetitions int                `bson:"repetitions" json:"repetitions"`
	Sets        int                `bson:"sets" json:"sets"`
	VideoKey    string             `bson:"videoKey,omitempty" json:"-"` // Object key of the demo video in S3, if one was uploaded
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ExercisePatch carries a partial update. Nil fields are left unchanged.
type ExercisePatch struct {
	Name        *string
	Repetitions *int
	Sets        *int
	VideoKey    *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ExercisePatch) IsEmpty() bool {
	return p.Name == nil && p.Repetitions == nil && p.Sets == nil && p.VideoKey == nil
}

// Apply merges the supplied fields into e.
func (p ExercisePatch) Apply(e *Exercise) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Repetitions != nil {
		e.Repetitions = *p.Repetitions
	}
	if p.Sets != nil {
		e.Sets = *p.Sets
	}
	if p.VideoKey != nil {
		e.VideoKey = *p.VideoKey
	}
}

// ExerciseFilter selects exercises by exact field match. The zero value matches all.
type ExerciseFilter struct {
	Name string
}

// Matches reports whether e satisfies the filter.
func (f ExerciseFilter) Matches(e *Exercise) bool {
	return f.Name == "" || f.Name == e.Name
}
