package domain

import "testing"

func validMeal() Meal {
	return Meal{
		Name:        "Oatmeal",
		MealType:    MealTypeBreakfast,
		Servings:    1,
		Nutrition:   Nutrition{Calories: 350, Protein: 12},
		Ingredients: []Ingredient{{Name: "oats", Amount: 80, Unit: "g"}},
	}
}

func TestMealValidate(t *testing.T) {
	m := validMeal()
	if err := m.Validate(); err != nil {
		t.Fatalf("expected valid meal, got %v", err)
	}

	m = validMeal()
	m.Name = ""
	if err := m.Validate(); err != ErrMealNameRequired {
		t.Fatalf("expected ErrMealNameRequired, got %v", err)
	}

	m = validMeal()
	m.MealType = "brunch"
	if err := m.Validate(); err != ErrMealTypeInvalid {
		t.Fatalf("expected ErrMealTypeInvalid, got %v", err)
	}

	m = validMeal()
	m.Nutrition.Calories = -1
	if err := m.Validate(); err != ErrMealCaloriesNegative {
		t.Fatalf("expected ErrMealCaloriesNegative, got %v", err)
	}

	m = validMeal()
	m.Ingredients = nil
	if err := m.Validate(); err != ErrMealIngredientsRequired {
		t.Fatalf("expected ErrMealIngredientsRequired, got %v", err)
	}
}

func TestHasAnyAllergen(t *testing.T) {
	m := validMeal()
	m.Allergens = []string{"peanut", "dairy"}

	if !m.HasAnyAllergen([]string{"peanut"}) {
		t.Fatalf("expected peanut allergen match")
	}
	if m.HasAnyAllergen([]string{"shellfish"}) {
		t.Fatalf("expected no match for shellfish")
	}
	if m.HasAnyAllergen(nil) {
		t.Fatalf("expected no match for empty allergy set")
	}
}

func TestMatchesAnyPreference(t *testing.T) {
	m := validMeal()
	m.DietaryTags = []string{"vegan", "gluten-free"}

	if !m.MatchesAnyPreference([]string{"keto", "vegan"}) {
		t.Fatalf("expected vegan preference match")
	}
	if m.MatchesAnyPreference([]string{"keto"}) {
		t.Fatalf("expected no match for keto")
	}
}
