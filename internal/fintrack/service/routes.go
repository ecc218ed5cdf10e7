package service

import (
	"fmt"
	"strings"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/domain"
)

// Route is a protected page. Prerequisite pages additionally need at least
// one uploaded statement; Premium pages gate their actions on a subscription.
type Route struct {
	Name         string
	Path         string
	Title        string
	Prerequisite bool
	Premium      bool
}

var routes = []Route{
	{Name: "dashboard", Path: "/dashboard", Title: "Dashboard", Prerequisite: true},
	{Name: "profile", Path: "/profile", Title: "Profile", Prerequisite: true},
	{Name: "budget-forecast", Path: "/budget-forecast", Title: "Budget Forecast", Prerequisite: true, Premium: true},
	{Name: "chatbot", Path: "/chatbot", Title: "Chatbot", Prerequisite: true},
	{Name: "history", Path: "/history", Title: "Transaction History", Prerequisite: true},
	{Name: "statements", Path: "/pdf", Title: "Upload Statements"},
	{Name: "add-goal", Path: "/add-goal", Title: "Add Goal", Prerequisite: true},
}

// DefaultRoute is where "/" redirects.
const DefaultRoute = "dashboard"

// Routes returns the protected route table.
func Routes() []Route {
	return append([]Route(nil), routes...)
}

// LookupRoute finds a route by name or path. "/" resolves to DefaultRoute.
func LookupRoute(ref string) (Route, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == "/" {
		ref = DefaultRoute
	}
	for _, r := range routes {
		if r.Name == ref || r.Path == ref || r.Path == "/"+ref {
			return r, nil
		}
	}
	return Route{}, fmt.Errorf("%w: %s", domain.ErrUnknownRoute, ref)
}
