package domain

// activityMultipliers maps activity level strings to their TDEE multiplier.
// Single source of truth for valid activity levels; also used to validate
// profile updates.
var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// Calorie adjustments applied on top of TDEE per health goal. A ~500 kcal
// daily deficit targets roughly 0.5 kg/week of loss.
const (
	loseAdjustment = -500
	gainAdjustment = 300
)

// ValidActivityLevel reports whether level is a known activity level.
func ValidActivityLevel(level string) bool {
	_, ok := activityMultipliers[level]
	return ok
}

// DeriveCalorieTarget derives the user's daily calorie target from the
// profile: Mifflin-St Jeor BMR, scaled by the activity multiplier, adjusted
// for the health goal. Returns ok=false when the profile is incomplete or
// the activity level is unknown.
func (p Profile) DeriveCalorieTarget() (float64, bool) {
	if !p.IsComplete() {
		return 0, false
	}
	mult, ok := activityMultipliers[p.ActivityLevel]
	if !ok {
		return 0, false
	}

	// Mifflin-St Jeor: different constant for male vs female
	bmr := 10*p.CurrentWeightKg + 6.25*p.HeightCm - 5*float64(p.Age)
	if p.Gender == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}

	tdee := bmr * mult
	switch p.HealthGoal {
	case GoalLose:
		tdee += loseAdjustment
	case GoalGain:
		tdee += gainAdjustment
	}
	// Never recommend below a minimal safe intake
	if tdee < 1200 {
		tdee = 1200
	}
	return tdee, true
}
