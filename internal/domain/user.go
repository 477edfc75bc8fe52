package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an athlete known to the tracker. ExternalID is the identifier issued
// by the client application and is not required to be unique.
type User struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ExternalID string               `bson:"externalId" json:"externalId"`
	Nickname   string               `bson:"nickname" json:"nickname"`
	Email      string               `bson:"email" json:"email"`
	WorkoutIDs []primitive.ObjectID `bson:"workoutIds" json:"workoutIds"` // Append-ordered
	CreatedAt  time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// UserPatch carries a partial update. Nil fields are left unchanged.
type UserPatch struct {
	ExternalID *string
	Nickname   *string
	Email      *string
	WorkoutIDs *[]primitive.ObjectID
}

func (p UserPatch) IsEmpty() bool {
	return p.ExternalID == nil && p.Nickname == nil && p.Email == nil && p.WorkoutIDs == nil
}

// Apply merges the supplied fields into u.
func (p UserPatch) Apply(u *User) {
	if p.ExternalID != nil {
		u.ExternalID = *p.ExternalID
	}
	if p.Nickname != nil {
		u.Nickname = *p.Nickname
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.WorkoutIDs != nil {
		u.WorkoutIDs = append([]primitive.ObjectID{}, (*p.WorkoutIDs)...)
	}
}

// UserFilter selects users by exact field match. Empty fields are ignored.
type UserFilter struct {
	ExternalID string
	Email      string
}

func (f UserFilter) Matches(u *User) bool {
	return (f.ExternalID == "" || f.ExternalID == u.ExternalID) &&
		(f.Email == "" || f.Email == u.Email)
}

// UserWithWorkouts is a user whose workout references have been resolved.
// Workouts[i] corresponds to WorkoutIDs[i]; a nil entry is a dangling reference.
// The workouts' own ExerciseIDs are left unresolved.
type UserWithWorkouts struct {
	User
	Workouts []*Workout
}
