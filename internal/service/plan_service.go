package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"dietly/diet-app/internal/domain"
	"dietly/diet-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInvalidDuration   = errors.New("plan duration must be one of 3, 7, 14, 21 or 30 days")
	ErrStartDateInPast   = errors.New("plan start date must be today or later")
	ErrProfileIncomplete = errors.New("profile must be completed before generating a plan")
	ErrActivePlanExists  = errors.New("an active plan already exists; stop it before generating a new one")
	ErrPlanNotFound      = errors.New("meal plan not found")
	ErrPlanAccessDenied  = errors.New("access denied to this meal plan")
	ErrPlanNotActive     = errors.New("plan is not active")
	ErrDayNotFound       = errors.New("no plan day matches the given date")
	ErrInvalidSlot       = errors.New("meal slot is empty or snack index is out of range")
)

// Per-slot share of the daily calorie target. Snacks take whatever the
// mains leave under target, capped by their own share per added snack.
var slotCalorieShare = map[domain.MealType]float64{
	domain.MealTypeBreakfast: 0.25,
	domain.MealTypeLunch:     0.35,
	domain.MealTypeDinner:    0.30,
	domain.MealTypeSnack:     0.10,
}

// Day totals within this fraction of the daily target count as on-target;
// snacks are only added while the day is further under than this.
const calorieToleranceFraction = 0.10

// Most snacks the generator will schedule in a single day.
const maxSnacksPerDay = 2

// --- Service Interface ---
type PlanService interface {
	GeneratePlan(ctx context.Context, userID primitive.ObjectID, startDate time.Time, durationDays int) (*domain.MealPlan, error)
	GetPlan(ctx context.Context, userID, planID primitive.ObjectID, isAdmin bool) (*domain.MealPlan, error)
	GetActivePlan(ctx context.Context, userID primitive.ObjectID) (*domain.MealPlan, error)
	ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.MealPlan, error)
	MarkConsumed(ctx context.Context, userID, planID primitive.ObjectID, date time.Time, mealType domain.MealType, snackIndex int) (*domain.MealPlan, error)
	StopPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.MealPlan, error)
	PlanNutrition(ctx context.Context, userID, planID primitive.ObjectID, isAdmin bool) (domain.PlanTotals, []domain.Totals, error)
}

// --- Service Implementation ---

// planService implements the PlanService interface.
type planService struct {
	planRepo  repository.MealPlanRepository
	userRepo  repository.UserRepository
	selection SelectionService
	now       func() time.Time // injected clock for date gating and lazy completion
}

// NewPlanService creates a new instance of planService.
func NewPlanService(
	planRepo repository.MealPlanRepository,
	userRepo repository.UserRepository,
	selection SelectionService,
	now func() time.Time,
) PlanService {
	if now == nil {
		now = time.Now
	}
	return &planService{
		planRepo:  planRepo,
		userRepo:  userRepo,
		selection: selection,
		now:       now,
	}
}

// === Generation ===

// GeneratePlan builds and persists a day-by-day plan for the user.
//
// Preconditions: duration is one of the allowed lengths, startDate is today
// or later (calendar compare), the profile is complete, and no other active
// plan exists. The single-active invariant is enforced twice: a pre-check
// here for a friendly error, and the storage layer's partial unique index
// for the concurrent case (duplicate key mapped back to ErrActivePlanExists).
func (s *planService) GeneratePlan(ctx context.Context, userID primitive.ObjectID, startDate time.Time, durationDays int) (*domain.MealPlan, error) {
	if !domain.ValidDuration(durationDays) {
		return nil, ErrInvalidDuration
	}
	start := domain.TruncateToDay(startDate)
	today := domain.TruncateToDay(s.now())
	if start.Before(today) {
		return nil, ErrStartDateInPast
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanAccessDenied
		}
		return nil, err
	}
	if !user.Profile.IsComplete() {
		return nil, ErrProfileIncomplete
	}
	target := user.Profile.DailyCalorieTarget
	if target <= 0 {
		// Derive on the fly if the profile was completed without a stored target.
		derived, ok := user.Profile.DeriveCalorieTarget()
		if !ok {
			return nil, ErrProfileIncomplete
		}
		target = derived
	}

	// Pre-check for an existing active plan (lazily completing an expired one).
	if existing, err := s.activePlanFinalized(ctx, userID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrActivePlanExists
	}

	pools, err := s.selection.CandidatePools(ctx, user.Profile)
	if err != nil {
		return nil, err
	}

	plan := &domain.MealPlan{
		UserID:       userID,
		Name:         fmt.Sprintf("%d-Day Plan starting %s", durationDays, start.Format("Jan 2, 2006")),
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, durationDays-1),
		DurationDays: durationDays,
		Status:       domain.PlanStatusActive,
		Target:       domain.Nutrition{Calories: target},
		Days:         make([]domain.Day, 0, durationDays),
	}
	for i := 0; i < durationDays; i++ {
		day := buildDay(start.AddDate(0, 0, i), pools, target, i)
		plan.Days = append(plan.Days, day)
	}
	plan.RecomputeAdherence()

	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrActivePlanExists
		}
		return nil, err
	}
	plan.ID = planID

	if err := s.userRepo.SetActivePlan(ctx, userID, &planID); err != nil {
		return nil, err
	}
	return plan, nil
}

// buildDay assembles one day's slots from the candidate pools. Mains are
// chosen by closeness to the slot's calorie budget; snacks are appended only
// while the day remains under target by more than the tolerance band, at
// most maxSnacksPerDay of them.
func buildDay(date time.Time, pools map[domain.MealType][]domain.Meal, dailyTarget float64, dayIndex int) domain.Day {
	day := domain.Day{Date: date}
	total := 0.0

	for _, mt := range []domain.MealType{domain.MealTypeBreakfast, domain.MealTypeLunch, domain.MealTypeDinner} {
		budget := dailyTarget * slotCalorieShare[mt]
		meal := pickMeal(pools[mt], budget, dayIndex)
		if meal == nil {
			continue
		}
		entry := newEntry(meal)
		total += meal.Nutrition.Calories
		switch mt {
		case domain.MealTypeBreakfast:
			day.Breakfast = entry
		case domain.MealTypeLunch:
			day.Lunch = entry
		case domain.MealTypeDinner:
			day.Dinner = entry
		}
	}

	tolerance := dailyTarget * calorieToleranceFraction
	snackPool := pools[domain.MealTypeSnack]
	for len(day.Snacks) < maxSnacksPerDay && dailyTarget-total > tolerance {
		deficit := dailyTarget - total
		meal := pickMeal(snackPool, deficit, dayIndex+len(day.Snacks))
		if meal == nil {
			break
		}
		day.Snacks = append(day.Snacks, *newEntry(meal))
		total += meal.Nutrition.Calories
	}
	return day
}

// pickMeal ranks the pool by |calories - budget| ascending, protein
// descending, then meal ID, and rotates through the top candidates by day
// index so consecutive days vary while staying deterministic.
func pickMeal(pool []domain.Meal, budget float64, dayIndex int) *domain.Meal {
	if len(pool) == 0 {
		return nil
	}
	ranked := make([]domain.Meal, len(pool))
	copy(ranked, pool)
	sort.SliceStable(ranked, func(i, j int) bool {
		di := absDiff(ranked[i].Nutrition.Calories, budget)
		dj := absDiff(ranked[j].Nutrition.Calories, budget)
		if di != dj {
			return di < dj
		}
		if ranked[i].Nutrition.Protein != ranked[j].Nutrition.Protein {
			return ranked[i].Nutrition.Protein > ranked[j].Nutrition.Protein
		}
		return ranked[i].ID.Hex() < ranked[j].ID.Hex()
	})

	window := len(ranked)
	if window > MinWeeklyOptions {
		window = MinWeeklyOptions
	}
	meal := ranked[dayIndex%window]
	return &meal
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// newEntry snapshots a meal into a plan entry with the defaults the
// generator always uses: one serving, not yet consumed.
func newEntry(meal *domain.Meal) *domain.MealEntry {
	return &domain.MealEntry{
		MealID:    meal.ID,
		Name:      meal.Name,
		Servings:  1,
		Consumed:  false,
		Nutrition: meal.Nutrition,
	}
}

// === Read surface ===

// GetPlan retrieves a plan. Only the owner (or an admin) may read it.
// Expired active plans are finalized to completed before being returned.
func (s *planService) GetPlan(ctx context.Context, userID, planID primitive.ObjectID, isAdmin bool) (*domain.MealPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.UserID != userID && !isAdmin {
		return nil, ErrPlanAccessDenied
	}
	if err := s.finalizeIfExpired(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// GetActivePlan retrieves the user's current active plan, finalizing it
// first if its end date has passed (in which case there is none).
func (s *planService) GetActivePlan(ctx context.Context, userID primitive.ObjectID) (*domain.MealPlan, error) {
	plan, err := s.activePlanFinalized(ctx, userID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// ListPlans returns all plans for a user, newest first.
func (s *planService) ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.MealPlan, error) {
	plans, err := s.planRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if err := s.finalizeIfExpired(ctx, &plans[i]); err != nil {
			return nil, err
		}
	}
	return plans, nil
}

// PlanNutrition returns the plan-level aggregate plus per-day totals, in
// day order.
func (s *planService) PlanNutrition(ctx context.Context, userID, planID primitive.ObjectID, isAdmin bool) (domain.PlanTotals, []domain.Totals, error) {
	plan, err := s.GetPlan(ctx, userID, planID, isAdmin)
	if err != nil {
		return domain.PlanTotals{}, nil, err
	}
	perDay := make([]domain.Totals, len(plan.Days))
	for i := range plan.Days {
		perDay[i] = domain.AggregateDay(&plan.Days[i])
	}
	return domain.AggregatePlan(plan), perDay, nil
}

// === Consumption tracking ===

// MarkConsumed toggles the consumed flag on one meal slot of one day and
// recomputes the plan's adherence counters. Only the owner of an active
// plan may track consumption; the client disables the action for inactive
// plans but the rule is enforced here regardless.
func (s *planService) MarkConsumed(ctx context.Context, userID, planID primitive.ObjectID, date time.Time, mealType domain.MealType, snackIndex int) (*domain.MealPlan, error) {
	plan, err := s.GetPlan(ctx, userID, planID, false)
	if err != nil {
		return nil, err
	}
	if plan.Status != domain.PlanStatusActive {
		return nil, ErrPlanNotActive
	}

	day := plan.DayFor(date)
	if day == nil {
		return nil, ErrDayNotFound
	}

	var entry *domain.MealEntry
	switch mealType {
	case domain.MealTypeBreakfast:
		entry = day.Breakfast
	case domain.MealTypeLunch:
		entry = day.Lunch
	case domain.MealTypeDinner:
		entry = day.Dinner
	case domain.MealTypeSnack:
		if snackIndex < 0 || snackIndex >= len(day.Snacks) {
			return nil, ErrInvalidSlot
		}
		entry = &day.Snacks[snackIndex]
	default:
		return nil, ErrInvalidSlot
	}
	if entry == nil {
		return nil, ErrInvalidSlot
	}

	entry.Consumed = !entry.Consumed
	plan.RecomputeAdherence()

	if err := s.planRepo.UpdateDays(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// === Lifecycle ===

// StopPlan cancels the user's plan. Irreversible: cancelled is terminal.
func (s *planService) StopPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.MealPlan, error) {
	plan, err := s.GetPlan(ctx, userID, planID, false)
	if err != nil {
		return nil, err
	}
	if plan.Status != domain.PlanStatusActive {
		return nil, ErrPlanNotActive
	}
	if err := s.planRepo.UpdateStatus(ctx, planID, domain.PlanStatusActive, domain.PlanStatusCancelled); err != nil {
		return nil, err
	}
	plan.Status = domain.PlanStatusCancelled
	if err := s.userRepo.SetActivePlan(ctx, userID, nil); err != nil {
		return nil, err
	}
	return plan, nil
}

// finalizeIfExpired performs the lazy active→completed transition: an
// active plan whose end date has passed is completed on read. The
// compare-and-set in UpdateStatus makes concurrent finalizations converge.
func (s *planService) finalizeIfExpired(ctx context.Context, plan *domain.MealPlan) error {
	if plan.Status != domain.PlanStatusActive {
		return nil
	}
	today := domain.TruncateToDay(s.now())
	if !today.After(domain.TruncateToDay(plan.EndDate)) {
		return nil
	}
	err := s.planRepo.UpdateStatus(ctx, plan.ID, domain.PlanStatusActive, domain.PlanStatusCompleted)
	if err != nil && !errors.Is(err, repository.ErrUpdateFailed) {
		return err
	}
	plan.Status = domain.PlanStatusCompleted
	return s.userRepo.SetActivePlan(ctx, plan.UserID, nil)
}

// activePlanFinalized fetches the user's active plan, applying lazy
// completion. Returns (nil, nil) when the user has no active plan.
func (s *planService) activePlanFinalized(ctx context.Context, userID primitive.ObjectID) (*domain.MealPlan, error) {
	plan, err := s.planRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := s.finalizeIfExpired(ctx, plan); err != nil {
		return nil, err
	}
	if plan.Status != domain.PlanStatusActive {
		return nil, nil
	}
	return plan, nil
}
