package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserPatch_ApplyOnlySuppliedFields(t *testing.T) {
	u := User{ExternalID: "1", Nickname: "Phil", Email: "Phil@test.com"}

	nick := "X"
	patch := UserPatch{Nickname: &nick}
	assert.False(t, patch.IsEmpty())
	patch.Apply(&u)

	assert.Equal(t, "X", u.Nickname)
	assert.Equal(t, "1", u.ExternalID)
	assert.Equal(t, "Phil@test.com", u.Email)
	assert.True(t, UserPatch{}.IsEmpty())
}

func TestWorkoutPatch_ReplacesExerciseIDsWithCopy(t *testing.T) {
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
	w := Workout{Type: "Cardio"}

	WorkoutPatch{ExerciseIDs: &ids}.Apply(&w)
	ids[0] = primitive.NilObjectID

	assert.Len(t, w.ExerciseIDs, 2)
	assert.NotEqual(t, primitive.NilObjectID, w.ExerciseIDs[0])
	assert.Equal(t, "Cardio", w.Type)
}

func TestExercisePatch(t *testing.T) {
	e := Exercise{Name: "Squats", Repetitions: 10, Sets: 3}
	sets := 5
	ExercisePatch{Sets: &sets}.Apply(&e)
	assert.Equal(t, Exercise{Name: "Squats", Repetitions: 10, Sets: 5}, e)
	assert.True(t, ExercisePatch{}.IsEmpty())
}

func TestFilters(t *testing.T) {
	w := &Workout{Type: "Body Building", Level: "Beginner", FocusArea: "Upper Body"}
	assert.True(t, WorkoutFilter{}.Matches(w))
	assert.True(t, WorkoutFilter{Type: "Body Building", Level: "Beginner"}.Matches(w))
	assert.False(t, WorkoutFilter{Level: "Advance"}.Matches(w))

	u := &User{ExternalID: "1", Email: "a@b.c"}
	assert.True(t, UserFilter{ExternalID: "1"}.Matches(u))
	assert.False(t, UserFilter{ExternalID: "2"}.Matches(u))

	assert.True(t, ExerciseFilter{}.Matches(&Exercise{Name: "Plank"}))
	assert.False(t, ExerciseFilter{Name: "Squats"}.Matches(&Exercise{Name: "Plank"}))
}

func TestParseRefField(t *testing.T) {
	f, ok := ParseRefField("workoutIds")
	assert.True(t, ok)
	assert.Equal(t, FieldWorkoutIDs, f)

	f, ok = ParseRefField("exerciseIds")
	assert.True(t, ok)
	assert.Equal(t, FieldExerciseIDs, f)

	_, ok = ParseRefField("WorkoutIds")
	assert.False(t, ok)
}
