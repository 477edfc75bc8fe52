package domain

// RefField names a field that holds identifiers of another entity's records.
type RefField string

const (
	FieldWorkoutIDs  RefField = "workoutIds"  // User -> Workout
	FieldExerciseIDs RefField = "exerciseIds" // Workout -> Exercise
)

// ParseRefField returns the designator named by s.
func ParseRefField(s string) (RefField, bool) {
	switch RefField(s) {
	case FieldWorkoutIDs, FieldExerciseIDs:
		return RefField(s), true
	}
	return "", false
}
