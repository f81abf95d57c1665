package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"dietly/diet-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testToday = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

// fullCatalog returns a meal repo stocked with three meals per slot type,
// calorie-spread around a 2000 kcal daily target.
func fullCatalog() *fakeMealRepo {
	repo := &fakeMealRepo{}
	add := func(name string, mt domain.MealType, cal float64, allergens []string) {
		repo.meals = append(repo.meals, catalogMeal(name, mt, cal, nil, allergens))
	}
	add("b400", domain.MealTypeBreakfast, 400, nil)
	add("b450", domain.MealTypeBreakfast, 450, nil)
	add("b500", domain.MealTypeBreakfast, 500, nil)
	add("l600", domain.MealTypeLunch, 600, nil)
	add("l650", domain.MealTypeLunch, 650, nil)
	add("l700", domain.MealTypeLunch, 700, nil)
	add("d550", domain.MealTypeDinner, 550, nil)
	add("d600", domain.MealTypeDinner, 600, nil)
	add("d650", domain.MealTypeDinner, 650, nil)
	add("s150", domain.MealTypeSnack, 150, nil)
	add("s200", domain.MealTypeSnack, 200, nil)
	add("s250", domain.MealTypeSnack, 250, nil)
	return repo
}

func testUser(users *fakeUserRepo) *domain.User {
	user := &domain.User{
		Name:  "Test User",
		Email: "user@example.com",
		Role:  domain.RoleUser,
		Profile: domain.Profile{
			Age:                30,
			Gender:             "male",
			HeightCm:           180,
			CurrentWeightKg:    80,
			TargetWeightKg:     75,
			HealthGoal:         domain.GoalMaintain,
			ActivityLevel:      "moderate",
			DailyCalorieTarget: 2000,
		},
	}
	_, _ = users.Create(context.Background(), user)
	return user
}

func newTestPlanService(meals *fakeMealRepo) (PlanService, *fakePlanRepo, *fakeUserRepo, *domain.User) {
	users := newFakeUserRepo()
	user := testUser(users)
	plans := newFakePlanRepo()
	selection := NewSelectionService(meals, rand.New(rand.NewSource(7)))
	svc := NewPlanService(plans, users, selection, func() time.Time { return testToday })
	return svc, plans, users, user
}

func TestGeneratePlan_DayCountAndDates(t *testing.T) {
	for _, duration := range []int{3, 7, 14, 21, 30} {
		svc, _, _, user := newTestPlanService(fullCatalog())
		start := testToday.AddDate(0, 0, 1)

		plan, err := svc.GeneratePlan(context.Background(), user.ID, start, duration)
		if err != nil {
			t.Fatalf("duration %d: unexpected error: %v", duration, err)
		}
		if len(plan.Days) != duration {
			t.Fatalf("duration %d: expected %d days, got %d", duration, duration, len(plan.Days))
		}
		wantStart := domain.TruncateToDay(start)
		for i, day := range plan.Days {
			want := wantStart.AddDate(0, 0, i)
			if !day.Date.Equal(want) {
				t.Fatalf("duration %d: day %d expected date %v, got %v", duration, i, want, day.Date)
			}
		}
		wantEnd := wantStart.AddDate(0, 0, duration-1)
		if !plan.EndDate.Equal(wantEnd) {
			t.Fatalf("duration %d: expected end date %v, got %v", duration, wantEnd, plan.EndDate)
		}
		if plan.Status != domain.PlanStatusActive {
			t.Fatalf("expected new plan to be active, got %s", plan.Status)
		}
	}
}

func TestGeneratePlan_Preconditions(t *testing.T) {
	svc, _, users, user := newTestPlanService(fullCatalog())
	ctx := context.Background()

	if _, err := svc.GeneratePlan(ctx, user.ID, testToday, 5); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
	if _, err := svc.GeneratePlan(ctx, user.ID, testToday.AddDate(0, 0, -1), 7); !errors.Is(err, ErrStartDateInPast) {
		t.Fatalf("expected ErrStartDateInPast, got %v", err)
	}

	// Same calendar day but earlier clock time must still be accepted.
	earlier := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.GeneratePlan(ctx, user.ID, earlier, 3); err != nil {
		t.Fatalf("expected today to be a valid start date, got %v", err)
	}

	incomplete := &domain.User{Name: "No Profile", Email: "bare@example.com", Role: domain.RoleUser}
	_, _ = users.Create(ctx, incomplete)
	if _, err := svc.GeneratePlan(ctx, incomplete.ID, testToday, 7); !errors.Is(err, ErrProfileIncomplete) {
		t.Fatalf("expected ErrProfileIncomplete, got %v", err)
	}
}

func TestGeneratePlan_SlotsRespectMealType(t *testing.T) {
	meals := fullCatalog()
	svc, _, _, user := newTestPlanService(meals)

	typeByID := make(map[primitive.ObjectID]domain.MealType)
	for _, m := range meals.meals {
		typeByID[m.ID] = m.MealType
	}

	plan, err := svc.GeneratePlan(context.Background(), user.ID, testToday, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, day := range plan.Days {
		if day.Breakfast == nil || typeByID[day.Breakfast.MealID] != domain.MealTypeBreakfast {
			t.Fatalf("day %d: breakfast slot holds wrong meal type", i)
		}
		if day.Lunch == nil || typeByID[day.Lunch.MealID] != domain.MealTypeLunch {
			t.Fatalf("day %d: lunch slot holds wrong meal type", i)
		}
		if day.Dinner == nil || typeByID[day.Dinner.MealID] != domain.MealTypeDinner {
			t.Fatalf("day %d: dinner slot holds wrong meal type", i)
		}
		for j, s := range day.Snacks {
			if typeByID[s.MealID] != domain.MealTypeSnack {
				t.Fatalf("day %d snack %d: wrong meal type", i, j)
			}
		}
	}
}

func TestGeneratePlan_DayCaloriesNearTarget(t *testing.T) {
	svc, _, _, user := newTestPlanService(fullCatalog())

	plan, err := svc.GeneratePlan(context.Background(), user.ID, testToday, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	target := 2000.0
	for i := range plan.Days {
		total := domain.AggregateDay(&plan.Days[i]).Calories
		if diff := total - target; diff > 400 || diff < -400 {
			t.Fatalf("day %d: total %v too far from target %v", i, total, target)
		}
	}
}

func TestGeneratePlan_EntryDefaults(t *testing.T) {
	svc, _, _, user := newTestPlanService(fullCatalog())

	plan, err := svc.GeneratePlan(context.Background(), user.ID, testToday, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range plan.Days {
		for _, e := range plan.Days[i].Entries() {
			if e.Servings != 1 {
				t.Fatalf("day %d: expected servings=1, got %v", i, e.Servings)
			}
			if e.Consumed {
				t.Fatalf("day %d: new entry marked consumed", i)
			}
		}
	}
	if plan.ConsumedMeals != 0 || plan.TotalMeals == 0 {
		t.Fatalf("expected fresh adherence counters, got %d/%d", plan.ConsumedMeals, plan.TotalMeals)
	}
}

func TestGeneratePlan_NeverSchedulesAllergens(t *testing.T) {
	meals := fullCatalog()
	peanutIDs := make(map[primitive.ObjectID]bool)
	// One peanut-tagged meal per slot type.
	for _, mt := range domain.MealTypes {
		m := catalogMeal("peanut "+string(mt), mt, 500, nil, []string{"peanut"})
		meals.meals = append(meals.meals, m)
		peanutIDs[m.ID] = true
	}

	svc, _, users, user := newTestPlanService(meals)
	user.Profile.Allergies = []string{"peanut"}
	_ = users.UpdateProfile(context.Background(), user.ID, user.Profile)

	plan, err := svc.GeneratePlan(context.Background(), user.ID, testToday, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range plan.Days {
		for _, e := range plan.Days[i].Entries() {
			if peanutIDs[e.MealID] {
				t.Fatalf("day %d: scheduled a meal carrying the user's allergen", i)
			}
		}
	}
}

func TestGeneratePlan_SecondActivePlanFails(t *testing.T) {
	svc, plans, users, user := newTestPlanService(fullCatalog())
	ctx := context.Background()

	first, err := svc.GeneratePlan(ctx, user.ID, testToday, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := users.GetByID(ctx, user.ID)
	if stored.ActivePlanID == nil || *stored.ActivePlanID != first.ID {
		t.Fatalf("expected user's activePlanId to point at the new plan")
	}

	if _, err := svc.GeneratePlan(ctx, user.ID, testToday, 7); !errors.Is(err, ErrActivePlanExists) {
		t.Fatalf("expected ErrActivePlanExists, got %v", err)
	}
	if n := plans.activeCount(user.ID); n != 1 {
		t.Fatalf("expected exactly 1 active plan, got %d", n)
	}
}

func TestGeneratePlan_InsufficientCatalog(t *testing.T) {
	meals := &fakeMealRepo{}
	meals.meals = append(meals.meals,
		catalogMeal("oats", domain.MealTypeBreakfast, 350, nil, nil),
		catalogMeal("salad", domain.MealTypeLunch, 450, nil, nil),
	)
	svc, plans, _, user := newTestPlanService(meals)

	_, err := svc.GeneratePlan(context.Background(), user.ID, testToday, 7)
	var insufficient *InsufficientMealsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientMealsError, got %v", err)
	}
	if len(insufficient.MissingMealTypes) != 2 ||
		insufficient.MissingMealTypes[0] != "dinner" ||
		insufficient.MissingMealTypes[1] != "snack" {
		t.Fatalf("expected missing [dinner snack], got %v", insufficient.MissingMealTypes)
	}
	if n := plans.activeCount(user.ID); n != 0 {
		t.Fatalf("failed generation must not persist a plan, found %d", n)
	}
}

func TestMarkConsumed_ToggleKeepsAdherenceConsistent(t *testing.T) {
	svc, _, _, user := newTestPlanService(fullCatalog())
	ctx := context.Background()

	plan, err := svc.GeneratePlan(ctx, user.ID, testToday, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	date := plan.Days[1].Date

	updated, err := svc.MarkConsumed(ctx, user.ID, plan.ID, date, domain.MealTypeBreakfast, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.Days[1].Breakfast.Consumed {
		t.Fatalf("expected breakfast to be marked consumed")
	}
	if updated.ConsumedMeals != 1 {
		t.Fatalf("expected 1 consumed meal, got %d", updated.ConsumedMeals)
	}
	wantPct := 100 * float64(1) / float64(updated.TotalMeals)
	if updated.AdherencePercentage != wantPct {
		t.Fatalf("expected adherence %v, got %v", wantPct, updated.AdherencePercentage)
	}

	// Second identical call toggles back: net no-op on the flag, counters
	// still consistent.
	updated, err = svc.MarkConsumed(ctx, user.ID, plan.ID, date, domain.MealTypeBreakfast, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Days[1].Breakfast.Consumed {
		t.Fatalf("expected second toggle to clear the flag")
	}
	if updated.ConsumedMeals != 0 || updated.AdherencePercentage != 0 {
		t.Fatalf("expected counters back to zero, got %d / %v", updated.ConsumedMeals, updated.AdherencePercentage)
	}
}

func TestMarkConsumed_MatchesDateIgnoringTime(t *testing.T) {
	svc, _, _, user := newTestPlanService(fullCatalog())
	ctx := context.Background()

	plan, err := svc.GeneratePlan(ctx, user.ID, testToday, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Client sends an evening timestamp; it addresses the same calendar day.
	evening := plan.Days[0].Date.Add(20*time.Hour + 15*time.Minute)
	updated, err := svc.MarkConsumed(ctx, user.ID, plan.ID, evening, domain.MealTypeDinner, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.Days[0].Dinner.Consumed {
		t.Fatalf("expected dinner of day 0 to be consumed")
	}
}

func TestMarkConsumed_Errors(t *testing.T) {
	svc, _, _, user := newTestPlanService(fullCatalog())
	ctx := context.Background()

	plan, err := svc.GeneratePlan(ctx, user.ID, testToday, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	outside := plan.EndDate.AddDate(0, 0, 5)
	if _, err := svc.MarkConsumed(ctx, user.ID, plan.ID, outside, domain.MealTypeLunch, 0); !errors.Is(err, ErrDayNotFound) {
		t.Fatalf("expected ErrDayNotFound, got %v", err)
	}

	if _, err := svc.MarkConsumed(ctx, user.ID, plan.ID, plan.StartDate, domain.MealTypeSnack, 99); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("expected ErrInvalidSlot for out-of-range snack index, got %v", err)
	}

	if _, err := svc.MarkConsumed(ctx, user.ID, primitive.NewObjectID(), plan.StartDate, domain.MealTypeLunch, 0); !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}

	other := primitive.NewObjectID()
	if _, err := svc.MarkConsumed(ctx, other, plan.ID, plan.StartDate, domain.MealTypeLunch, 0); !errors.Is(err, ErrPlanAccessDenied) {
		t.Fatalf("expected ErrPlanAccessDenied for non-owner, got %v", err)
	}
}

func TestStopPlan(t *testing.T) {
	svc, plans, users, user := newTestPlanService(fullCatalog())
	ctx := context.Background()

	plan, err := svc.GeneratePlan(ctx, user.ID, testToday, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stopped, err := svc.StopPlan(ctx, user.ID, plan.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stopped.Status != domain.PlanStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", stopped.Status)
	}
	storedUser, _ := users.GetByID(ctx, user.ID)
	if storedUser.ActivePlanID != nil {
		t.Fatalf("expected activePlanId cleared after stop")
	}

	// Stop is irreversible and not repeatable.
	if _, err := svc.StopPlan(ctx, user.ID, plan.ID); !errors.Is(err, ErrPlanNotActive) {
		t.Fatalf("expected ErrPlanNotActive on second stop, got %v", err)
	}
	// Consumption is gated on active status too.
	if _, err := svc.MarkConsumed(ctx, user.ID, plan.ID, plan.StartDate, domain.MealTypeLunch, 0); !errors.Is(err, ErrPlanNotActive) {
		t.Fatalf("expected ErrPlanNotActive after stop, got %v", err)
	}

	// The slot is free again: a new plan can be generated.
	if _, err := svc.GeneratePlan(ctx, user.ID, testToday, 7); err != nil {
		t.Fatalf("expected generation to succeed after stop, got %v", err)
	}
	if n := plans.activeCount(user.ID); n != 1 {
		t.Fatalf("expected exactly 1 active plan after regeneration, got %d", n)
	}
}

func TestLazyCompletionOnRead(t *testing.T) {
	meals := fullCatalog()
	users := newFakeUserRepo()
	user := testUser(users)
	plans := newFakePlanRepo()
	selection := NewSelectionService(meals, rand.New(rand.NewSource(7)))

	svc := NewPlanService(plans, users, selection, func() time.Time { return testToday })
	plan, err := svc.GeneratePlan(context.Background(), user.ID, testToday, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Same stores, clock advanced past the plan's end date.
	later := testToday.AddDate(0, 0, 10)
	svcLater := NewPlanService(plans, users, selection, func() time.Time { return later })

	if _, err := svcLater.GetActivePlan(context.Background(), user.ID); !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("expected no active plan after expiry, got %v", err)
	}
	stored, _ := plans.GetByID(context.Background(), plan.ID)
	if stored.Status != domain.PlanStatusCompleted {
		t.Fatalf("expected expired plan to be completed, got %s", stored.Status)
	}
	storedUser, _ := users.GetByID(context.Background(), user.ID)
	if storedUser.ActivePlanID != nil {
		t.Fatalf("expected activePlanId cleared on lazy completion")
	}
}

func TestPlanNutrition(t *testing.T) {
	svc, _, _, user := newTestPlanService(fullCatalog())
	ctx := context.Background()

	plan, err := svc.GeneratePlan(ctx, user.ID, testToday, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	totals, perDay, err := svc.PlanNutrition(ctx, user.ID, plan.ID, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(perDay) != 3 {
		t.Fatalf("expected 3 per-day totals, got %d", len(perDay))
	}
	var sum float64
	for _, d := range perDay {
		sum += d.Calories
	}
	if totals.Calories != sum {
		t.Fatalf("plan total %v != sum of day totals %v", totals.Calories, sum)
	}
	if totals.AverageCalories != sum/3 {
		t.Fatalf("expected average %v, got %v", sum/3, totals.AverageCalories)
	}
}
