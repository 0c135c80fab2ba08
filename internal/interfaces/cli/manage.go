package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewEnableCommand creates the enable subcommand
func NewEnableCommand(container *CLIContainer) *cobra.Command {
	return newToggleCommand(container, true)
}

// NewDisableCommand creates the disable subcommand
func NewDisableCommand(container *CLIContainer) *cobra.Command {
	return newToggleCommand(container, false)
}

func newToggleCommand(container *CLIContainer, enabled bool) *cobra.Command {
	verb, past := "disable", "Disabled"
	if enabled {
		verb, past = "enable", "Enabled"
	}

	return &cobra.Command{
		Use:   verb + " <id>...",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " extensions by identifier",
		Long: fmt.Sprintf(`Store an explicit %s override for each identifier. The change takes
effect the next time the loader runs. Identifiers are the ones shown by
"km-loader list".`, verb),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := container.build(cmd, true)
			if err != nil {
				return err
			}
			defer func() { _ = c.Shutdown(cmd.Context()) }()

			if err := c.Loader.SetEnabled(cmd.Context(), args, enabled); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", past, strings.Join(args, ", "))
			return nil
		},
	}
}

// NewResetCommand creates the reset subcommand
func NewResetCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "reset [id]...",
		Short: "Forget stored overrides",
		Long: `Remove the stored override for each identifier so it falls back to the
default (enabled). Without arguments every override is removed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := container.build(cmd, true)
			if err != nil {
				return err
			}
			defer func() { _ = c.Shutdown(cmd.Context()) }()

			if err := c.Loader.Reset(cmd.Context(), args); err != nil {
				return err
			}
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Reset all overrides")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset: %s\n", strings.Join(args, ", "))
			return nil
		},
	}
}
