package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/app"
	"github.com/aussiebroadwan/fintrack/internal/fintrack/service"
	"github.com/spf13/cobra"
)

// promptSigner shows the message to sign and reads the signature back, for
// signing in an external wallet.
type promptSigner struct {
	e *env
}

func (s promptSigner) SignMessage(_ context.Context, address, message string) (string, error) {
	fmt.Fprintf(s.e.Err, "Sign this message with %s:\n\n%s\n\n", address, message)
	sig, err := s.e.prompter().Text("Signature")
	if err != nil {
		return "", err
	}
	if sig == "" {
		return "", errors.New("signature request rejected")
	}
	return sig, nil
}

func newWalletCommand(e *env) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "wallet <address>",
		Short: "Sign in with an Ethereum wallet",
		Long: `Sign in by signing a challenge with the wallet. A wallet that is not yet
linked to an account is linked after confirming the account's e-mail and
password.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, false, func(ctx context.Context, a *app.Application) error {
				return runWallet(ctx, e, a, args[0], email)
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account to link an unknown wallet to (prompted when needed)")
	return cmd
}

func runWallet(ctx context.Context, e *env, a *app.Application, address, email string) error {
	var signer service.WalletSigner = promptSigner{e: e}
	if e.signer != nil {
		signer = e.signer
	}

	wl := a.Auth.WalletLogin()
	if _, err := wl.Connect(ctx, address); err != nil {
		return err
	}

	session, needsLink, err := wl.Sign(ctx, signer)
	if err != nil {
		return err
	}

	if needsLink {
		fmt.Fprintln(e.Err, "This wallet is not linked to an account yet.")
		p := e.prompter()
		addr, err := p.TextOr(email, "Email")
		if err != nil {
			return err
		}
		password, err := p.Password("Password")
		if err != nil {
			return err
		}
		if session, err = wl.Link(ctx, addr, password); err != nil {
			return err
		}
	}

	v := newSessionView(session, a.Holder.Statements())
	if !v.SignedIn {
		return e.render(v, v.human())
	}
	return e.render(v, fmt.Sprintf("Signed in as %s with wallet %s.", displayName(*v.User), v.User.WalletAddress))
}
