package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/app"
	"github.com/spf13/cobra"
)

func newUploadCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a bank statement",
		Long:  `Upload a PDF bank statement. Pages that need a statement open once one is uploaded.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, true, func(ctx context.Context, a *app.Application) error {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open statement: %w", err)
				}
				defer f.Close()

				session, err := a.Uploader.Upload(ctx, filepath.Base(args[0]), f)
				if err != nil {
					return err
				}
				v := newSessionView(session, a.Holder.Statements())
				return e.render(v, fmt.Sprintf("Uploaded %s. %d statement(s) on file.", filepath.Base(args[0]), v.Statements))
			})
		},
	}
}
