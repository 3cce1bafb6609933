package services

import (
	"math"
	"time"

	"github.com/sjperalta/gymflow-api/internal/models"
)

const day = 24 * time.Hour

// ComputeEndDate derives a contract end date from the plan duration.
// Months take precedence over days. A plan with neither falls back to one month.
// Month arithmetic clamps to the last day of the target month, so
// 2024-01-31 + 1 month is 2024-02-29 rather than rolling into March.
func ComputeEndDate(start time.Time, plan *models.MembershipPlan) time.Time {
	if plan != nil {
		if plan.DurationMonths != nil && *plan.DurationMonths > 0 {
			return AddMonthsClamped(start, *plan.DurationMonths)
		}
		if plan.DurationDays != nil && *plan.DurationDays > 0 {
			return start.AddDate(0, 0, *plan.DurationDays)
		}
	}
	return AddMonthsClamped(start, 1)
}

// AddMonthsClamped adds calendar months keeping the day of month when it
// exists in the target month and using the month's last day otherwise.
func AddMonthsClamped(t time.Time, months int) time.Time {
	year, month, dayOfMonth := t.Date()
	hour, minute, sec := t.Clock()

	// First day of the target month, normalized by time.Date
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := daysIn(firstOfTarget.Year(), firstOfTarget.Month(), t.Location())
	if dayOfMonth > lastDay {
		dayOfMonth = lastDay
	}

	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), dayOfMonth, hour, minute, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// ComputeFinalAmount applies the custom price override and the discount
// percentage to the plan base price, rounded to cents. Inputs are not clamped.
func ComputeFinalAmount(basePrice float64, customPrice, discountPercentage *float64) float64 {
	amount := basePrice
	if customPrice != nil {
		amount = *customPrice
	}
	if discountPercentage != nil {
		amount = amount * (1 - *discountPercentage/100)
	}
	return roundCents(amount)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeFreezeExtension returns the freeze span in whole days, rounded up
func ComputeFreezeExtension(freezeStart, freezeEnd time.Time) (int, error) {
	if !freezeEnd.After(freezeStart) {
		return 0, ErrInvalidFreezeRange
	}
	return int(math.Ceil(float64(freezeEnd.Sub(freezeStart)) / float64(day))), nil
}
