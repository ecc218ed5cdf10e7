package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/domain"
)

// render writes v as indented JSON with --json and human otherwise.
func (e *env) render(v any, human string) error {
	if e.jsonOutput {
		enc := json.NewEncoder(e.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(e.Out, human)
	return err
}

type sessionView struct {
	SignedIn   bool               `json:"signedIn"`
	User       *domain.UserRecord `json:"user,omitempty"`
	Statements int                `json:"statements"`
	Premium    bool               `json:"premium"`
}

func newSessionView(session *domain.Session, statements domain.StatementSet) sessionView {
	if session == nil {
		return sessionView{}
	}
	u := session.User
	return sessionView{
		SignedIn:   true,
		User:       &u,
		Statements: len(statements),
		Premium:    u.Subscription,
	}
}

func (v sessionView) human() string {
	if !v.SignedIn {
		return "Not signed in."
	}

	plan := "Free"
	if v.Premium {
		plan = "Premium"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Signed in as %s (%s)\n", displayName(*v.User), v.User.Email)
	if v.User.WalletAddress != "" {
		fmt.Fprintf(&b, "Wallet:      %s\n", v.User.WalletAddress)
	}
	fmt.Fprintf(&b, "Plan:        %s\n", plan)
	fmt.Fprintf(&b, "Statements:  %d", v.Statements)
	return b.String()
}

func displayName(u domain.UserRecord) string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Username != "":
		return u.Username
	default:
		return u.Email
	}
}

func formatPlans(plans []domain.Plan) string {
	var b strings.Builder
	for i, p := range plans {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\n", p.Name)
		for _, f := range p.Features {
			fmt.Fprintf(&b, "  - %s\n", f)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatForecast(f domain.Forecast) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "CATEGORY\tWEEK\tMON\tTUE\tWED\tTHU\tFRI\tSAT\tSUN\t")
	for _, c := range f {
		fmt.Fprintf(tw, "%s\t%.2f\t", c.Category, c.WeekTotal)
		for _, amount := range c.Daily {
			fmt.Fprintf(tw, "%.2f\t", amount)
		}
		fmt.Fprintln(tw)
	}
	_ = tw.Flush()
	fmt.Fprintf(&b, "Predicted spend next week: %.2f", f.Total())
	return b.String()
}
