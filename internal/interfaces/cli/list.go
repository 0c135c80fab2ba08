package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"kilometers.ai/loader/internal/application/services"
	"kilometers.ai/loader/internal/core/domain/extension"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	enabledStyle  = cellStyle.Foreground(lipgloss.Color("46"))
	disabledStyle = cellStyle.Foreground(lipgloss.Color("196"))
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// listedExtension is the JSON form of one list row
type listedExtension struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Enabled  bool   `json:"enabled"`
	Override string `json:"override"`
	Source   string `json:"source"`
}

// NewListCommand creates the list subcommand
func NewListCommand(container *CLIContainer) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the published extensions and their state",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := container.build(cmd, true)
			if err != nil {
				return err
			}
			defer func() { _ = c.Shutdown(cmd.Context()) }()

			statuses, err := c.Loader.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list extensions: %w", err)
			}

			if asJSON {
				return writeJSON(cmd, statuses)
			}
			if len(statuses) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No extensions published.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStatusTable(statuses))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the list as JSON")
	return cmd
}

func writeJSON(cmd *cobra.Command, statuses []services.ExtensionStatus) error {
	rows := make([]listedExtension, 0, len(statuses))
	for _, s := range statuses {
		rows = append(rows, listedExtension{
			ID:       s.Descriptor.Identifier(),
			Name:     s.Descriptor.DisplayName(),
			Enabled:  s.Enabled(),
			Override: s.State.String(),
			Source:   s.Descriptor.Source().String(),
		})
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// renderStatusTable renders one row per extension
func renderStatusTable(statuses []services.ExtensionStatus) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("ID", "NAME", "STATE", "SOURCE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 2 && row >= 0 && row < len(statuses) {
				if statuses[row].Enabled() {
					return enabledStyle
				}
				return disabledStyle
			}
			return cellStyle
		})

	for _, s := range statuses {
		t.Row(
			s.Descriptor.Identifier(),
			s.Descriptor.DisplayName(),
			stateLabel(s.State),
			s.Descriptor.Source().String(),
		)
	}
	return t.Render()
}

func stateLabel(state extension.State) string {
	if state == extension.StateUnset {
		return "enabled (default)"
	}
	return state.String()
}
