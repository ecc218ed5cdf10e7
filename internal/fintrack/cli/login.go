package cli

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/app"
	"github.com/spf13/cobra"
)

func newLoginCommand(e *env) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with e-mail and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withApp(cmd, false, func(ctx context.Context, a *app.Application) error {
				p := e.prompter()
				addr, err := p.TextOr(email, "Email")
				if err != nil {
					return err
				}
				password, err := p.Password("Password")
				if err != nil {
					return err
				}

				session, err := a.Auth.Login(ctx, addr, password)
				if err != nil {
					return err
				}
				v := newSessionView(session, a.Holder.Statements())
				if !v.SignedIn {
					return e.render(v, v.human())
				}
				return e.render(v, fmt.Sprintf("Welcome back, %s.", displayName(*v.User)))
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account e-mail (prompted when empty)")
	return cmd
}

func newLogoutCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withApp(cmd, false, func(ctx context.Context, a *app.Application) error {
				if err := a.Auth.Logout(ctx); err != nil {
					return err
				}
				return e.render(sessionView{}, "Signed out.")
			})
		},
	}
}
