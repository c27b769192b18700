package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/combogen/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show combogen version information.

Displays:
  - combogen version, commit, and build date
  - versions of the imaging, schema and storage libraries compiled in`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
			return nil
		},
	}
}
