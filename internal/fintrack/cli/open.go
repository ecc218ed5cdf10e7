package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/app"
	"github.com/aussiebroadwan/fintrack/internal/fintrack/domain"
	"github.com/aussiebroadwan/fintrack/internal/fintrack/service"
	"github.com/spf13/cobra"
)

type routeView struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	Title        string `json:"title"`
	Prerequisite bool   `json:"requiresStatement"`
	Premium      bool   `json:"premium"`
}

type openView struct {
	Route     routeView         `json:"route"`
	State     string            `json:"state"`
	Message   string            `json:"message,omitempty"`
	AuthViews []domain.AuthView `json:"authViews,omitempty"`
	Plans     []domain.Plan     `json:"plans,omitempty"`
	Forecast  domain.Forecast   `json:"forecast,omitempty"`
}

func newOpenCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "open [route]",
		Short: "Check what a page would show",
		Long: `Run the route guard for a page. Without a route, list the pages.

Premium pages also go through the subscription check.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listRoutes(e)
			}
			return e.withApp(cmd, true, func(ctx context.Context, a *app.Application) error {
				return runOpen(ctx, e, a, args[0])
			})
		},
	}
}

func toRouteView(r service.Route) routeView {
	return routeView{Name: r.Name, Path: r.Path, Title: r.Title, Prerequisite: r.Prerequisite, Premium: r.Premium}
}

func listRoutes(e *env) error {
	routes := service.Routes()
	views := make([]routeView, 0, len(routes))
	for _, r := range routes {
		views = append(views, toRouteView(r))
	}
	if e.jsonOutput {
		return e.render(views, "")
	}

	tw := tabwriter.NewWriter(e.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPATH\tTITLE\tNOTES")
	for _, r := range routes {
		var notes []string
		if r.Prerequisite {
			notes = append(notes, "needs statement")
		}
		if r.Premium {
			notes = append(notes, "premium")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, r.Path, r.Title, strings.Join(notes, ", "))
	}
	return tw.Flush()
}

func runOpen(ctx context.Context, e *env, a *app.Application, ref string) error {
	d, err := a.Guard.Check(ref)
	if err != nil {
		return err
	}

	v := openView{
		Route:     toRouteView(d.Route),
		State:     d.State.String(),
		Message:   d.Message,
		AuthViews: d.AuthViews,
	}

	if d.State == service.Authorized && d.Route.Premium {
		result, forecast, err := openPremium(ctx, a, d.Route)
		if err != nil {
			return err
		}
		v.Forecast = forecast
		if result == service.PlanRequired {
			dialog := a.Gate.Dialog()
			dialog.Dismiss()
			v.State = result.String()
			v.Message = "Subscribe to open this page. Run `fintrack subscribe`."
			v.Plans = dialog.Plans
		}
	}

	human := fmt.Sprintf("%s (%s): %s", d.Route.Title, d.Route.Path, v.State)
	if v.Message != "" {
		human += "\n" + v.Message
	}
	if len(v.AuthViews) > 0 {
		names := make([]string, len(v.AuthViews))
		for i, view := range v.AuthViews {
			names[i] = view.String()
		}
		human += "\nAvailable: " + strings.Join(names, ", ")
	}
	if len(v.Plans) > 0 {
		human += "\n\n" + formatPlans(v.Plans)
	}
	if len(v.Forecast) > 0 {
		human += "\n\n" + formatForecast(v.Forecast)
	}
	return e.render(v, human)
}

// openPremium runs the gated action behind a premium page.
func openPremium(ctx context.Context, a *app.Application, r service.Route) (service.GateResult, domain.Forecast, error) {
	switch r.Name {
	case "budget-forecast":
		return a.Forecast.Load(ctx)
	default:
		return service.PlanRequired, nil, fmt.Errorf("%w: %s has no premium action", domain.ErrUnknownRoute, r.Name)
	}
}
