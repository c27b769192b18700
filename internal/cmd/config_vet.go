package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opmodel/combogen/internal/config"
	oerrors "github.com/opmodel/combogen/internal/errors"
	"github.com/opmodel/combogen/internal/output"
)

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate configuration",
		Long: `Validate the combogen configuration file.

Checks performed:
  1. Config file exists at resolved path
  2. Config file is valid YAML with no unknown keys
  3. Values pass the schema (drivers, formats, ranges)

The config path is resolved using precedence:
  --config flag > COMBOGEN_CONFIG env > ~/.combogen/config.yaml

Examples:
  # Validate default configuration
  combogen config vet

  # Validate custom config path
  combogen config vet --config /path/to/config.yaml`,
		Args: cobra.NoArgs,
		RunE: runConfigVet,
	}
}

func runConfigVet(cmd *cobra.Command, args []string) error {
	path := GetConfigPath()
	output.Debug("validating config", "path", path, "source", configPath.Source)

	w := cmd.OutOrStdout()

	exists, err := config.ConfigFileExists(path)
	if err != nil {
		return fail("config vet failed", err)
	}
	if !exists {
		return fail("config vet failed", oerrors.NewNotFoundError(
			"configuration file not found", path,
			"Run 'combogen config init' to create default configuration"))
	}
	fmt.Fprintln(w, output.FormatVetCheck("Config file found", path))

	v, err := config.NewValidator()
	if err != nil {
		return fail("config vet failed", err)
	}
	if err := v.ValidateFile(path); err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			for _, e := range verrs {
				output.Error("invalid value", "field", e.Field, "message", e.Message)
			}
			return &ExitError{Code: ExitValidationError, Err: err, Printed: true}
		}
		return fail("config vet failed", err)
	}
	fmt.Fprintln(w, output.FormatVetCheck("Schema validation passed", ""))

	loader := config.NewLoader()
	cfg, err := loader.LoadWithDefaults(path)
	if err != nil {
		return fail("config vet failed", err)
	}
	for _, e := range effectiveValues(cfg) {
		fmt.Fprintln(w, output.FormatVetCheck(e.key, e.value+" ("+string(valueSource(loader, e.key))+")"))
	}

	fmt.Fprintln(w, output.FormatCheckmark("Configuration is valid"))
	return nil
}

type effectiveValue struct {
	key   string
	value string
}

// effectiveValues lists the settings a render pass starts from.
func effectiveValues(cfg *config.Config) []effectiveValue {
	return []effectiveValue{
		{"catalog", cfg.Catalog},
		{"assetsDir", cfg.AssetsDir},
		{"buildDir", cfg.BuildDir},
		{"output.format", cfg.Output.Format},
		{"render.backend", cfg.Render.Backend},
		{"cache.driver", cfg.Cache.Driver},
		{"store.driver", cfg.Store.Driver},
	}
}

// valueSource reports where a loaded key came from. Environment variables
// override the file.
func valueSource(loader *config.Loader, key string) config.ConfigSource {
	switch {
	case os.Getenv(config.EnvVar(key)) != "":
		return config.SourceEnv
	case loader.InConfig(key):
		return config.SourceConfig
	default:
		return config.SourceDefault
	}
}
