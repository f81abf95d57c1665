package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"dietly/diet-app/internal/domain"
	"dietly/diet-app/internal/repository"
)

// MinWeeklyOptions is the minimum candidate-pool size per meal type below
// which preference filtering falls back to the full allergy-filtered pool.
const MinWeeklyOptions = 3

// InsufficientMealsError reports that the catalog cannot satisfy the
// generator's variety constraints. It carries structured details so the
// client can render actionable guidance ("fix the catalog", not "try again").
type InsufficientMealsError struct {
	MissingMealTypes []string       `json:"missingMealTypes"`
	AvailableCounts  map[string]int `json:"availableCounts"`
	Suggestion       string         `json:"suggestion"`
}

func (e *InsufficientMealsError) Error() string {
	return fmt.Sprintf("insufficient meals available for: %s", strings.Join(e.MissingMealTypes, ", "))
}

// SelectionService produces candidate meal pools for plan generation.
type SelectionService interface {
	// SelectCandidates returns the eligible meals for one slot category:
	// allergy-excluded, preference-filtered with fallback, shuffled by the
	// injected random source. An empty result is not an error here; the
	// generator aggregates empty pools across all types into one
	// InsufficientMealsError.
	SelectCandidates(ctx context.Context, profile domain.Profile, mealType domain.MealType) ([]domain.Meal, error)

	// CandidatePools builds pools for all four slot categories and fails
	// with *InsufficientMealsError when any category has zero candidates.
	CandidatePools(ctx context.Context, profile domain.Profile) (map[domain.MealType][]domain.Meal, error)
}

// selectionService implements SelectionService over the meal catalog.
type selectionService struct {
	mealRepo repository.MealRepository
	rng      *rand.Rand
}

// NewSelectionService creates a selection service. The random source drives
// candidate shuffling for variety; pass a fixed seed for reproducible plans.
func NewSelectionService(mealRepo repository.MealRepository, rng *rand.Rand) SelectionService {
	return &selectionService{mealRepo: mealRepo, rng: rng}
}

func (s *selectionService) SelectCandidates(ctx context.Context, profile domain.Profile, mealType domain.MealType) ([]domain.Meal, error) {
	catalog, err := s.mealRepo.List(ctx, repository.MealFilter{MealType: mealType})
	if err != nil {
		return nil, err
	}
	pool := filterCandidates(catalog, profile)
	s.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool, nil
}

func (s *selectionService) CandidatePools(ctx context.Context, profile domain.Profile) (map[domain.MealType][]domain.Meal, error) {
	pools := make(map[domain.MealType][]domain.Meal, len(domain.MealTypes))
	var missing []string
	counts := make(map[string]int, len(domain.MealTypes))

	for _, mt := range domain.MealTypes {
		pool, err := s.SelectCandidates(ctx, profile, mt)
		if err != nil {
			return nil, err
		}
		pools[mt] = pool
		counts[string(mt)] = len(pool)
		if len(pool) == 0 {
			missing = append(missing, string(mt))
		}
	}

	if len(missing) > 0 {
		return nil, &InsufficientMealsError{
			MissingMealTypes: missing,
			AvailableCounts:  counts,
			Suggestion:       suggestionFor(missing, profile),
		}
	}
	return pools, nil
}

// filterCandidates applies the two-stage eligibility policy to one meal
// type's catalog slice. Allergy exclusion is hard: a meal carrying any of
// the user's allergens is never offered. Preference filtering is soft: when
// the preferred pool is smaller than MinWeeklyOptions, the full
// allergy-filtered pool is used instead so generation does not starve on a
// narrow preference.
func filterCandidates(catalog []domain.Meal, profile domain.Profile) []domain.Meal {
	var safe []domain.Meal
	for _, m := range catalog {
		if m.HasAnyAllergen(profile.Allergies) {
			continue
		}
		safe = append(safe, m)
	}

	if len(profile.DietaryPreferences) == 0 {
		return safe
	}
	var preferred []domain.Meal
	for _, m := range safe {
		if m.MatchesAnyPreference(profile.DietaryPreferences) {
			preferred = append(preferred, m)
		}
	}
	if len(preferred) < MinWeeklyOptions {
		return safe
	}
	return preferred
}

// suggestionFor builds the human-readable hint attached to an
// InsufficientMealsError. The missing slice keeps slot order
// (breakfast, lunch, dinner, snack).
func suggestionFor(missing []string, profile domain.Profile) string {
	if len(profile.DietaryPreferences) > 0 || len(profile.Allergies) > 0 {
		return fmt.Sprintf("No eligible meals for %s. Try relaxing your dietary preferences, or ask an admin to add more meals of those types.",
			strings.Join(missing, ", "))
	}
	return fmt.Sprintf("The catalog has no meals of type %s. Ask an admin to add some before generating a plan.",
		strings.Join(missing, ", "))
}
