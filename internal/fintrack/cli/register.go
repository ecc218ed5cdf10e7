package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/app"
	"github.com/aussiebroadwan/fintrack/internal/fintrack/service"
	"github.com/spf13/cobra"
)

type registerFlags struct {
	email    string
	username string
	name     string
	phone    string
	image    string
}

func newRegisterCommand(e *env) *cobra.Command {
	var f registerFlags

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an account. A one-time code is sent to the e-mail address and has to
be entered before the account details are submitted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withApp(cmd, false, func(ctx context.Context, a *app.Application) error {
				return runRegister(ctx, e, a, f)
			})
		},
	}
	cmd.Flags().StringVar(&f.email, "email", "", "Account e-mail (prompted when empty)")
	cmd.Flags().StringVar(&f.username, "username", "", "Username (prompted when empty)")
	cmd.Flags().StringVar(&f.name, "name", "", "Full name (prompted when empty)")
	cmd.Flags().StringVar(&f.phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&f.image, "image", "", "Profile picture file")
	return cmd
}

func runRegister(ctx context.Context, e *env, a *app.Application, f registerFlags) error {
	p := e.prompter()
	reg := a.Auth.Register()

	// 1. Verify the e-mail
	email, err := p.TextOr(f.email, "Email")
	if err != nil {
		return err
	}
	reg.SetEmail(email)
	if err := reg.SendOTP(ctx); err != nil {
		return err
	}
	fmt.Fprintf(e.Err, "A code was sent to %s.\n", email)

	code, err := p.Text("Code")
	if err != nil {
		return err
	}
	if err := reg.VerifyOTP(ctx, code); err != nil {
		return err
	}

	// 2. Account details
	form := service.RegistrationForm{Phone: f.phone}
	if form.Username, err = p.TextOr(f.username, "Username"); err != nil {
		return err
	}
	if form.Name, err = p.TextOr(f.name, "Name"); err != nil {
		return err
	}
	if form.Password, err = p.Password("Password"); err != nil {
		return err
	}
	if form.ConfirmPassword, err = p.Password("Confirm password"); err != nil {
		return err
	}

	image, closeImage, err := openImage(f.image)
	if err != nil {
		return err
	}
	defer closeImage()
	if image != nil {
		form.Image, form.ImageName = image, filepath.Base(f.image)
	}

	// 3. Submit
	session, err := reg.Submit(ctx, form)
	if err != nil {
		return err
	}
	v := newSessionView(session, a.Holder.Statements())
	if !v.SignedIn {
		return e.render(v, "Account created. Run `fintrack login` to sign in.")
	}
	return e.render(v, fmt.Sprintf("Welcome, %s.", displayName(*v.User)))
}

// openImage opens path when set. The returned close func is always safe to
// call.
func openImage(path string) (io.Reader, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, func() {}, fmt.Errorf("open image: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
