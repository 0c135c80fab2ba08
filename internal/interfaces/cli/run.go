package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewRunCommand creates the run subcommand
func NewRunCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Discover and run the enabled extensions",
		Long: `Run waits for the host, discovers the published extensions, shows the
settings view and runs every extension that is not disabled.

In the terminal UI press "p" for preferences, toggle extensions with space
and choose "Save & Reload" to persist the selection and restart. With
--headless the enabled extensions run once and the command exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := container.build(cmd, false)
			if err != nil {
				return err
			}
			defer func() { _ = c.Shutdown(context.Background()) }()

			return c.Run(cmd.Context())
		},
	}
}
