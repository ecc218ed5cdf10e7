package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/app"
	"github.com/spf13/cobra"
)

type statusView struct {
	sessionView
	ExpiresAt *time.Time `json:"accessTokenExpiresAt,omitempty"`
	Error     string     `json:"error,omitempty"`
}

func newStatusCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who is signed in",
		Long:  `Resolve the stored credential into a session and show the signed-in user, plan and statement count.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withApp(cmd, false, func(ctx context.Context, a *app.Application) error {
				return runStatus(ctx, e, a)
			})
		},
	}
}

func runStatus(ctx context.Context, e *env, a *app.Application) error {
	bootErr := a.Boot(ctx)

	v := statusView{sessionView: newSessionView(a.Holder.Session(), a.Holder.Statements())}
	if cred, ok := a.Credentials().Read(ctx); ok {
		if exp, ok := cred.ExpiresAt(); ok {
			v.ExpiresAt = &exp
		}
	}
	if bootErr != nil {
		v.Error = bootErr.Error()
	}

	human := v.human()
	if v.SignedIn && v.ExpiresAt != nil {
		human += fmt.Sprintf("\nToken:       expires %s", v.ExpiresAt.Local().Format(time.RFC1123))
	}
	if v.Error != "" {
		human += "\nError:       " + v.Error
	}
	return e.render(v, human)
}
