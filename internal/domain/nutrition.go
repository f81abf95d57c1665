package domain

// Totals is the summed nutrition of a day or plan. Values keep full float
// precision; rounding happens only at presentation time.
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// PlanTotals extends Totals with the per-day average for the whole plan.
type PlanTotals struct {
	Totals
	AverageCalories float64 `json:"averageCalories"`
}

func (t *Totals) add(e *MealEntry) {
	t.Calories += e.Nutrition.Calories * e.Servings
	t.Protein += e.Nutrition.Protein * e.Servings
	t.Carbs += e.Nutrition.Carbs * e.Servings
	t.Fats += e.Nutrition.Fats * e.Servings
}

// AggregateDay sums nutrition across every non-nil entry of the day,
// snacks included, weighted by each entry's servings multiplier. Empty
// slots contribute zero.
func AggregateDay(d *Day) Totals {
	var t Totals
	if d == nil {
		return t
	}
	for _, e := range d.Entries() {
		t.add(e)
	}
	return t
}

// AggregatePlan sums nutrition across all days of the plan and derives the
// per-day calorie average over the plan's duration.
func AggregatePlan(p *MealPlan) PlanTotals {
	var pt PlanTotals
	if p == nil {
		return pt
	}
	for i := range p.Days {
		dt := AggregateDay(&p.Days[i])
		pt.Calories += dt.Calories
		pt.Protein += dt.Protein
		pt.Carbs += dt.Carbs
		pt.Fats += dt.Fats
	}
	if p.DurationDays > 0 {
		pt.AverageCalories = pt.Calories / float64(p.DurationDays)
	}
	return pt
}
