package cli

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/app"
	"github.com/aussiebroadwan/fintrack/internal/fintrack/service"
	"github.com/spf13/cobra"
)

func newSubscribeCommand(e *env) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Upgrade to the premium plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withApp(cmd, true, func(ctx context.Context, a *app.Application) error {
				return runSubscribe(ctx, e, a, yes)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Upgrade without asking")
	return cmd
}

func runSubscribe(ctx context.Context, e *env, a *app.Application, yes bool) error {
	result, err := a.Gate.CheckEntitlement(ctx, func(context.Context) error {
		v := newSessionView(a.Holder.Session(), a.Holder.Statements())
		return e.render(v, "Already on the premium plan.")
	})
	if err != nil || result == service.Proceeded {
		return err
	}

	dialog := a.Gate.Dialog()
	if !yes {
		fmt.Fprintln(e.Err, formatPlans(dialog.Plans))
		ok, err := e.prompter().Confirm("Upgrade to premium?")
		if err != nil {
			return err
		}
		if !ok {
			dialog.Dismiss()
			v := newSessionView(a.Holder.Session(), a.Holder.Statements())
			return e.render(v, "Plan unchanged.")
		}
	}

	session, err := dialog.Upgrade(ctx)
	if err != nil {
		return err
	}
	v := newSessionView(session, a.Holder.Statements())
	return e.render(v, "Subscribed to the premium plan.")
}

func newUnsubscribeCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "unsubscribe",
		Short: "Cancel the premium plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withApp(cmd, true, func(ctx context.Context, a *app.Application) error {
				session, err := a.Gate.CancelSubscription(ctx)
				if err != nil {
					return err
				}
				v := newSessionView(session, a.Holder.Statements())
				return e.render(v, "Subscription cancelled.")
			})
		},
	}
}
