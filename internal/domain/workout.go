package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workout groups exercises into a session. It lists its exercises by ID only;
// the exercises themselves live independently.
type Workout struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Type        string               `bson:"type" json:"type"`           // e.g. "Body Building", "Strength Training"
	Level       string               `bson:"level" json:"level"`         // e.g. "Beginner", "Intermediate"
	FocusArea   string               `bson:"focusArea" json:"focusArea"` // e.g. "Upper Body", "Chest"
	ExerciseIDs []primitive.ObjectID `bson:"exerciseIds" json:"exerciseIds"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// WorkoutPatch carries a partial update. Nil fields are left unchanged;
// a non-nil ExerciseIDs replaces the whole list.
type WorkoutPatch struct {
	Type        *string
	Level       *string
	FocusArea   *string
	ExerciseIDs *[]primitive.ObjectID
}

func (p WorkoutPatch) IsEmpty() bool {
	return p.Type == nil && p.Level == nil && p.FocusArea == nil && p.ExerciseIDs == nil
}

// Apply merges the supplied fields into w.
func (p WorkoutPatch) Apply(w *Workout) {
	if p.Type != nil {
		w.Type = *p.Type
	}
	if p.Level != nil {
		w.Level = *p.Level
	}
	if p.FocusArea != nil {
		w.FocusArea = *p.FocusArea
	}
	if p.ExerciseIDs != nil {
		w.ExerciseIDs = append([]primitive.ObjectID{}, (*p.ExerciseIDs)...)
	}
}

// WorkoutFilter selects workouts by exact field match. Empty fields are ignored.
type WorkoutFilter struct {
	Type      string
	Level     string
	FocusArea string
}

func (f WorkoutFilter) Matches(w *Workout) bool {
	return (f.Type == "" || f.Type == w.Type) &&
		(f.Level == "" || f.Level == w.Level) &&
		(f.FocusArea == "" || f.FocusArea == w.FocusArea)
}

// WorkoutWithExercises is a workout whose exercise references have been resolved.
// Exercises[i] corresponds to ExerciseIDs[i]; a nil entry is a dangling reference.
type WorkoutWithExercises struct {
	Workout
	Exercises []*Exercise
}
