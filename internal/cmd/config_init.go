package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/opmodel/combogen/internal/config"
	oerrors "github.com/opmodel/combogen/internal/errors"
	"github.com/opmodel/combogen/internal/output"
)

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize default configuration",
		Long: `Write a configuration file holding the default settings.

The file is written to the resolved config path:
  --config flag > COMBOGEN_CONFIG env > ~/.combogen/config.yaml

Examples:
  # Initialize configuration
  combogen config init

  # Overwrite existing configuration
  combogen config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	path := GetConfigPath()
	if path == "" {
		paths, err := config.DefaultPaths()
		if err != nil {
			return fail("could not determine home directory", oerrors.Wrap(oerrors.ErrNotFound, "could not determine home directory"))
		}
		path = paths.ConfigFile
	}
	path, err := config.ExpandPath(path)
	if err != nil {
		return fail("could not expand config path", err)
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fail("config init failed", &oerrors.DetailError{
			Type:     "validation failed",
			Message:  "configuration already exists",
			Location: path,
			Hint:     "Use --force to overwrite existing configuration.",
			Cause:    oerrors.ErrValidation,
		})
	}

	// Create directories with secure permissions (0700)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fail("config init failed", oerrors.NewPermissionError(
			fmt.Sprintf("could not create %s: %v", filepath.Dir(path), err),
			map[string]string{"dir": filepath.Dir(path)},
			"Check the permissions of the parent directory or pass --config."))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(config.DefaultConfig()); err != nil {
		return fail("config init failed", err)
	}
	if err := enc.Close(); err != nil {
		return fail("config init failed", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fail("config init failed", oerrors.NewPermissionError(
			fmt.Sprintf("could not write %s: %v", path, err),
			map[string]string{"path": path},
			"Check the permissions of the config directory or pass --config."))
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, output.FormatCheckmark("Configuration initialized at "+path))
	fmt.Fprintln(w, "Validate with: combogen config vet")
	return nil
}
