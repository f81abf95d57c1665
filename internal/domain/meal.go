package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MealType classifies both catalog meals and plan slots.
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

// MealTypes lists every slot category in plan order.
var MealTypes = []MealType{MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack}

// ValidMealType reports whether t is one of the four slot categories.
func ValidMealType(t MealType) bool {
	switch t {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack:
		return true
	}
	return false
}

// Nutrition holds per-serving nutrition facts. All values are non-negative.
type Nutrition struct {
	Calories float64 `bson:"calories" json:"calories"`
	Protein  float64 `bson:"protein" json:"protein"`
	Carbs    float64 `bson:"carbs" json:"carbs"`
	Fats     float64 `bson:"fats" json:"fats"`
	Fiber    float64 `bson:"fiber,omitempty" json:"fiber,omitempty"`
	Sugar    float64 `bson:"sugar,omitempty" json:"sugar,omitempty"`
	Sodium   float64 `bson:"sodium,omitempty" json:"sodium,omitempty"`
}

// Ingredient is one line of a meal's ingredient list.
type Ingredient struct {
	Name   string  `bson:"name" json:"name"`
	Amount float64 `bson:"amount" json:"amount"`
	Unit   string  `bson:"unit,omitempty" json:"unit,omitempty"`
}

// Meal represents one recipe/food item in the catalog. Created and edited by
// admins; read-only to the plan generator and to users browsing the library.
type Meal struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	MealType     MealType           `bson:"mealType" json:"mealType"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Servings     int                `bson:"servings" json:"servings"` // servings the recipe yields
	Difficulty   string             `bson:"difficulty,omitempty" json:"difficulty,omitempty"` // e.g. "easy", "medium", "hard"
	Nutrition    Nutrition          `bson:"nutrition" json:"nutrition"`
	Ingredients  []Ingredient       `bson:"ingredients" json:"ingredients"`
	Instructions []string           `bson:"instructions,omitempty" json:"instructions,omitempty"`
	DietaryTags  []string           `bson:"dietaryTags,omitempty" json:"dietaryTags,omitempty"` // e.g. "vegan", "keto"
	Allergens    []string           `bson:"allergens,omitempty" json:"allergens,omitempty"`     // e.g. "peanut", "dairy"
	ImageKey     string             `bson:"imageKey,omitempty" json:"imageKey,omitempty"`       // object-storage key, presigned on read
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Validation errors for meal creation/update.
var (
	ErrMealNameRequired        = errors.New("meal name is required")
	ErrMealTypeInvalid         = errors.New("meal type must be breakfast, lunch, dinner or snack")
	ErrMealCaloriesNegative    = errors.New("meal calories must be non-negative")
	ErrMealIngredientsRequired = errors.New("meal requires at least one ingredient")
)

// Validate checks the creation invariants: a name, a valid meal type,
// non-negative calories and at least one ingredient.
func (m *Meal) Validate() error {
	if m.Name == "" {
		return ErrMealNameRequired
	}
	if !ValidMealType(m.MealType) {
		return ErrMealTypeInvalid
	}
	if m.Nutrition.Calories < 0 {
		return ErrMealCaloriesNegative
	}
	if len(m.Ingredients) == 0 {
		return ErrMealIngredientsRequired
	}
	return nil
}

// HasAnyAllergen reports whether the meal carries any allergen from the
// given set. Matching is exact on the tag strings.
func (m *Meal) HasAnyAllergen(allergies []string) bool {
	if len(allergies) == 0 || len(m.Allergens) == 0 {
		return false
	}
	for _, a := range allergies {
		for _, tag := range m.Allergens {
			if tag == a {
				return true
			}
		}
	}
	return false
}

// MatchesAnyPreference reports whether the meal carries at least one of the
// user's dietary-preference tags.
func (m *Meal) MatchesAnyPreference(prefs []string) bool {
	for _, p := range prefs {
		for _, tag := range m.DietaryTags {
			if tag == p {
				return true
			}
		}
	}
	return false
}
