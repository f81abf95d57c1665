package repository

import (
	"context"

	"dietly/diet-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, profile domain.Profile) error
	// SetActivePlan updates the user's active-plan pointer; pass nil to clear it.
	SetActivePlan(ctx context.Context, id primitive.ObjectID, planID *primitive.ObjectID) error
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MealRepository defines the interface for interacting with the meal catalog.
type MealRepository interface {
	Create(ctx context.Context, meal *domain.Meal) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Meal, error)
	// List returns catalog meals matching the filter; a zero-value filter
	// returns the whole catalog.
	List(ctx context.Context, filter MealFilter) ([]domain.Meal, error)
	Update(ctx context.Context, meal *domain.Meal) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MealFilter narrows catalog listings.
type MealFilter struct {
	MealType         domain.MealType // empty = all types
	DietaryTag       string          // empty = any
	ExcludeAllergens []string        // meals carrying any of these are omitted
}

// MealPlanRepository defines the interface for interacting with meal plans.
type MealPlanRepository interface {
	// Create inserts a new plan. Inserting a second active plan for the
	// same user fails with ErrDuplicate (partial unique index).
	Create(ctx context.Context, plan *domain.MealPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlan, error)
	GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.MealPlan, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.MealPlan, error)
	// UpdateDays replaces the plan's day entries and adherence counters.
	UpdateDays(ctx context.Context, plan *domain.MealPlan) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.PlanStatus) error
}
