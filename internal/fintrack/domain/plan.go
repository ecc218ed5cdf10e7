package domain

// Plan is an offer shown in the plan-selection dialog.
type Plan struct {
	ID       string
	Name     string
	Features []string
	Paid     bool
}

const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

// Plans lists the offers presented when an entitlement check fails.
func Plans() []Plan {
	return []Plan{
		{
			ID:   PlanFree,
			Name: "Free Plan",
			Features: []string{
				"Limited PDF statements",
				"No advanced chatbot",
			},
		},
		{
			ID:   PlanPremium,
			Name: "Finance Tracker Premium",
			Paid: true,
			Features: []string{
				"Advanced chatbot",
				"Unlimited PDF statements",
				"Budget alert system",
				"Budget forecast",
			},
		},
	}
}
