package service

import (
	"context"

	"dietly/diet-app/internal/domain"
	"dietly/diet-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory fakes for the repository interfaces, shared across the service
// tests in this package.

type fakeMealRepo struct {
	meals []domain.Meal
}

func (r *fakeMealRepo) Create(ctx context.Context, meal *domain.Meal) (primitive.ObjectID, error) {
	if err := meal.Validate(); err != nil {
		return primitive.NilObjectID, err
	}
	meal.ID = primitive.NewObjectID()
	r.meals = append(r.meals, *meal)
	return meal.ID, nil
}

func (r *fakeMealRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Meal, error) {
	for i := range r.meals {
		if r.meals[i].ID == id {
			m := r.meals[i]
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeMealRepo) List(ctx context.Context, filter repository.MealFilter) ([]domain.Meal, error) {
	var out []domain.Meal
	for _, m := range r.meals {
		if filter.MealType != "" && m.MealType != filter.MealType {
			continue
		}
		if filter.DietaryTag != "" && !m.MatchesAnyPreference([]string{filter.DietaryTag}) {
			continue
		}
		if m.HasAnyAllergen(filter.ExcludeAllergens) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeMealRepo) Update(ctx context.Context, meal *domain.Meal) error {
	for i := range r.meals {
		if r.meals[i].ID == meal.ID {
			r.meals[i] = *meal
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeMealRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	for i := range r.meals {
		if r.meals[i].ID == id {
			r.meals = append(r.meals[:i], r.meals[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	r.users[user.ID] = user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, profile domain.Profile) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Profile = profile
	return nil
}

func (r *fakeUserRepo) SetActivePlan(ctx context.Context, id primitive.ObjectID, planID *primitive.ObjectID) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.ActivePlanID = planID
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// fakePlanRepo mirrors the Mongo repo's behavior, including the partial
// unique index: inserting a second active plan for a user fails with
// ErrDuplicate.
type fakePlanRepo struct {
	plans map[primitive.ObjectID]*domain.MealPlan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[primitive.ObjectID]*domain.MealPlan)}
}

func (r *fakePlanRepo) Create(ctx context.Context, plan *domain.MealPlan) (primitive.ObjectID, error) {
	if plan.Status == domain.PlanStatusActive {
		for _, p := range r.plans {
			if p.UserID == plan.UserID && p.Status == domain.PlanStatusActive {
				return primitive.NilObjectID, repository.ErrDuplicate
			}
		}
	}
	plan.ID = primitive.NewObjectID()
	r.plans[plan.ID] = plan
	return plan.ID, nil
}

func (r *fakePlanRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlan, error) {
	if p, ok := r.plans[id]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakePlanRepo) GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.MealPlan, error) {
	for _, p := range r.plans {
		if p.UserID == userID && p.Status == domain.PlanStatusActive {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakePlanRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.MealPlan, error) {
	var out []domain.MealPlan
	for _, p := range r.plans {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePlanRepo) UpdateDays(ctx context.Context, plan *domain.MealPlan) error {
	stored, ok := r.plans[plan.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Days = plan.Days
	stored.ConsumedMeals = plan.ConsumedMeals
	stored.TotalMeals = plan.TotalMeals
	stored.AdherencePercentage = plan.AdherencePercentage
	return nil
}

func (r *fakePlanRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.PlanStatus) error {
	stored, ok := r.plans[id]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != from {
		return repository.ErrUpdateFailed
	}
	stored.Status = to
	return nil
}

// activeCount reports how many active-status plans exist for a user.
func (r *fakePlanRepo) activeCount(userID primitive.ObjectID) int {
	n := 0
	for _, p := range r.plans {
		if p.UserID == userID && p.Status == domain.PlanStatusActive {
			n++
		}
	}
	return n
}
