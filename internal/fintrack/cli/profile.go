package cli

import (
	"context"
	"path/filepath"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/app"
	"github.com/aussiebroadwan/fintrack/internal/fintrack/domain"
	"github.com/aussiebroadwan/fintrack/internal/fintrack/service"
	"github.com/spf13/cobra"
)

func newProfileCommand(e *env) *cobra.Command {
	var f registerFlags

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Edit the signed-in user's profile",
		Long:  `Update the profile. Fields left unset keep their current value.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withApp(cmd, true, func(ctx context.Context, a *app.Application) error {
				current := a.Holder.Session()
				if current == nil {
					return domain.ErrNoSession
				}

				form := service.ProfileForm{
					Username: pick(f.username, current.User.Username),
					Name:     pick(f.name, current.User.Name),
					Phone:    pick(f.phone, current.User.Phone),
					Email:    pick(f.email, current.User.Email),
				}

				image, closeImage, err := openImage(f.image)
				if err != nil {
					return err
				}
				defer closeImage()
				if image != nil {
					form.Image, form.ImageName = image, filepath.Base(f.image)
				}

				session, err := a.Auth.SaveProfile(ctx, form)
				if err != nil {
					return err
				}
				v := newSessionView(session, a.Holder.Statements())
				return e.render(v, v.human())
			})
		},
	}
	cmd.Flags().StringVar(&f.email, "email", "", "E-mail")
	cmd.Flags().StringVar(&f.username, "username", "", "Username")
	cmd.Flags().StringVar(&f.name, "name", "", "Full name")
	cmd.Flags().StringVar(&f.phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&f.image, "image", "", "Profile picture file")
	return cmd
}

func pick(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
