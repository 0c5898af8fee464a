package subscription

import (
	"github.com/shopspring/decimal"

	"pharmatrack/m/domain"
)

// Plan is a purchasable subscription.
type Plan struct {
	Type         domain.PlanType `json:"planType"`
	Price        decimal.Decimal `json:"price"`
	DurationDays int             `json:"durationDays"`
}

var plans = []Plan{
	{Type: domain.PlanMonthly, Price: decimal.NewFromInt(699), DurationDays: 30},
	{Type: domain.PlanQuarterly, Price: decimal.NewFromInt(1899), DurationDays: 90},
	{Type: domain.PlanHalfYearly, Price: decimal.NewFromInt(3299), DurationDays: 180},
	{Type: domain.PlanYearly, Price: decimal.NewFromInt(5999), DurationDays: 365},
}

// Plans lists the pricing table, shortest plan first.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// LookupPlan finds a plan by type.
func LookupPlan(planType domain.PlanType) (Plan, bool) {
	for _, p := range plans {
		if p.Type == planType {
			return p, true
		}
	}
	return Plan{}, false
}
