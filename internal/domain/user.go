package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// HealthGoal describes what the user wants their weight to do.
type HealthGoal string

const (
	GoalLose     HealthGoal = "lose"
	GoalMaintain HealthGoal = "maintain"
	GoalGain     HealthGoal = "gain"
)

// Profile holds everything the plan generator needs to know about a user:
// body metrics for the calorie target, and preference/allergy sets for
// candidate filtering.
type Profile struct {
	Age                int        `bson:"age,omitempty" json:"age,omitempty"`
	Gender             string     `bson:"gender,omitempty" json:"gender,omitempty"` // "male" or "female"
	HeightCm           float64    `bson:"heightCm,omitempty" json:"heightCm,omitempty"`
	CurrentWeightKg    float64    `bson:"currentWeightKg,omitempty" json:"currentWeightKg,omitempty"`
	TargetWeightKg     float64    `bson:"targetWeightKg,omitempty" json:"targetWeightKg,omitempty"`
	HealthGoal         HealthGoal `bson:"healthGoal,omitempty" json:"healthGoal,omitempty"`
	ActivityLevel      string     `bson:"activityLevel,omitempty" json:"activityLevel,omitempty"`
	DailyCalorieTarget float64    `bson:"dailyCalorieTarget,omitempty" json:"dailyCalorieTarget,omitempty"`
	DietaryPreferences []string   `bson:"dietaryPreferences,omitempty" json:"dietaryPreferences,omitempty"`
	Allergies          []string   `bson:"allergies,omitempty" json:"allergies,omitempty"`
}

// IsComplete reports whether every field required for plan generation is set.
// Single source of truth for the completeness gate; the client mirrors the
// same field list.
func (p Profile) IsComplete() bool {
	return p.Age > 0 &&
		p.Gender != "" &&
		p.HeightCm > 0 &&
		p.CurrentWeightKg > 0 &&
		p.TargetWeightKg > 0 &&
		p.HealthGoal != "" &&
		p.ActivityLevel != ""
}

// User represents an account in the system (either a regular user or an admin).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	Profile      Profile            `bson:"profile" json:"profile"`

	// The plan the user is currently following, if any. Kept in sync with
	// plan status transitions so "current active plan" is a direct lookup
	// instead of a status scan.
	ActivePlanID *primitive.ObjectID `bson:"activePlanId,omitempty" json:"activePlanId,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
