package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanStatus is the lifecycle state of a meal plan.
type PlanStatus string

const (
	PlanStatusDraft     PlanStatus = "draft"
	PlanStatusActive    PlanStatus = "active"
	PlanStatusCompleted PlanStatus = "completed"
	PlanStatusCancelled PlanStatus = "cancelled"
)

// AllowedDurations are the plan lengths (in days) the generator accepts.
var AllowedDurations = []int{3, 7, 14, 21, 30}

// ValidDuration reports whether d is one of the allowed plan lengths.
func ValidDuration(d int) bool {
	for _, allowed := range AllowedDurations {
		if d == allowed {
			return true
		}
	}
	return false
}

// CanTransitionTo encodes the plan state machine:
// draft → active → {completed, cancelled}. completed and cancelled are
// terminal; no transition may skip a state.
func (s PlanStatus) CanTransitionTo(next PlanStatus) bool {
	switch s {
	case PlanStatusDraft:
		return next == PlanStatusActive
	case PlanStatusActive:
		return next == PlanStatusCompleted || next == PlanStatusCancelled
	}
	return false
}

// MealEntry is one scheduled occurrence of a Meal within a Day. The meal's
// per-serving nutrition is snapshotted at generation time so plan totals
// survive later catalog edits.
type MealEntry struct {
	MealID    primitive.ObjectID `bson:"mealId" json:"mealId"`
	Name      string             `bson:"name" json:"name"`
	Servings  float64            `bson:"servings" json:"servings"` // positive multiplier, default 1
	Consumed  bool               `bson:"consumed" json:"consumed"`
	Nutrition Nutrition          `bson:"nutrition" json:"nutrition"` // per single serving
}

// Day is one calendar day's meal assignment, embedded in a MealPlan.
// Dates are stored as UTC midnight; comparisons are calendar-date only.
type Day struct {
	Date      time.Time   `bson:"date" json:"date"`
	Breakfast *MealEntry  `bson:"breakfast,omitempty" json:"breakfast,omitempty"`
	Lunch     *MealEntry  `bson:"lunch,omitempty" json:"lunch,omitempty"`
	Dinner    *MealEntry  `bson:"dinner,omitempty" json:"dinner,omitempty"`
	Snacks    []MealEntry `bson:"snacks,omitempty" json:"snacks,omitempty"`
	Notes     string      `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Entries returns every non-nil meal entry of the day, snacks included,
// as pointers into the day so callers may mutate them.
func (d *Day) Entries() []*MealEntry {
	var out []*MealEntry
	for _, e := range []*MealEntry{d.Breakfast, d.Lunch, d.Dinner} {
		if e != nil {
			out = append(out, e)
		}
	}
	for i := range d.Snacks {
		out = append(out, &d.Snacks[i])
	}
	return out
}

// MealPlan is the generated multi-day plan artifact.
type MealPlan struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	Name         string             `bson:"name" json:"name"`
	StartDate    time.Time          `bson:"startDate" json:"startDate"`
	EndDate      time.Time          `bson:"endDate" json:"endDate"` // = startDate + (durationDays-1) days
	DurationDays int                `bson:"durationDays" json:"durationDays"`
	Status       PlanStatus         `bson:"status" json:"status"`
	Target       Nutrition          `bson:"target" json:"target"` // daily targets; Calories is the primary one
	Days         []Day              `bson:"days" json:"days"`

	// Adherence summary, recomputed on every consumption toggle.
	ConsumedMeals       int     `bson:"consumedMeals" json:"consumedMeals"`
	TotalMeals          int     `bson:"totalMeals" json:"totalMeals"`
	AdherencePercentage float64 `bson:"adherencePercentage" json:"adherencePercentage"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// SameCalendarDay compares two instants by UTC calendar date, ignoring
// time-of-day. Plan dates are calendar dates, so this is the only equality
// used for day lookup.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// TruncateToDay normalizes an instant to UTC midnight of its calendar date.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayFor returns the plan day matching the given calendar date, or nil.
func (p *MealPlan) DayFor(date time.Time) *Day {
	for i := range p.Days {
		if SameCalendarDay(p.Days[i].Date, date) {
			return &p.Days[i]
		}
	}
	return nil
}

// RecomputeAdherence recounts consumed and total meal slots across all days
// and updates the adherence percentage (0 when the plan has no slots).
func (p *MealPlan) RecomputeAdherence() {
	consumed, total := 0, 0
	for i := range p.Days {
		for _, e := range p.Days[i].Entries() {
			total++
			if e.Consumed {
				consumed++
			}
		}
	}
	p.ConsumedMeals = consumed
	p.TotalMeals = total
	if total == 0 {
		p.AdherencePercentage = 0
		return
	}
	p.AdherencePercentage = 100 * float64(consumed) / float64(total)
}
