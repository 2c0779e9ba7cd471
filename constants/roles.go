package constants

// Role is a user role.
type Role string

const (
	RoleBroker Role = "broker"
	RoleAdmin  Role = "admin"
)

// PlanType is a subscription billing plan.
type PlanType string

const (
	PlanMonthly   PlanType = "monthly"
	PlanQuarterly PlanType = "quarterly"
)

// PlanPrices maps plan types to their price in rupees.
var PlanPrices = map[PlanType]int64{
	PlanMonthly:   999,
	PlanQuarterly: 2499,
}

// PlanMonths maps plan types to their duration in calendar months.
var PlanMonths = map[PlanType]int{
	PlanMonthly:   1,
	PlanQuarterly: 3,
}

// ValidPlan reports whether the given plan type is known.
func ValidPlan(p PlanType) bool {
	_, ok := PlanPrices[p]
	return ok
}
