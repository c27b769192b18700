package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/combogen/internal/config"
	"github.com/opmodel/combogen/internal/output"
)

var (
	// Global flags
	configFlag     string
	verboseFlag    bool
	timestampsFlag bool

	// Loaded during PersistentPreRunE. cliConfig holds file and env values
	// only; defaults are applied per key during resolution.
	cliConfig  *config.Config
	configPath config.ResolveConfigPathResult
)

// NewRootCmd creates the root command for the combogen CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "combogen",
		Short: "Layered image combination generator",
		Long: `combogen renders every distinct combination of a layer catalog.

Optional layers may be omitted, required layers are merged into every combo
as fixed bundles, rarity weights cap how many outputs may use a layer, and
combos rendered by a previous run are skipped.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeGlobals(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (env: COMBOGEN_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&timestampsFlag, "timestamps", true, "Show timestamps in log output")

	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewPlanCmd())
	rootCmd.AddCommand(NewCacheCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// initializeGlobals sets up logging and loads configuration.
func initializeGlobals(cmd *cobra.Command) error {
	pathResult, err := config.ResolveConfigPath(config.ResolveConfigPathOptions{
		FlagValue: configFlag,
	})
	if err != nil {
		pathResult = config.ResolveConfigPathResult{ConfigPath: configFlag, Source: config.SourceFlag}
	}
	configPath = pathResult

	// A broken config file must not block commands like `config vet` that
	// exist to diagnose it.
	loaded, loadErr := config.NewLoader().Load(pathResult.ConfigPath)
	if loadErr != nil {
		loaded = &config.Config{}
	}
	cliConfig = loaded

	logCfg := output.LogConfig{Verbose: verboseFlag}
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(timestampsFlag)
	} else if cliConfig.Log.Timestamps != nil {
		logCfg.Timestamps = cliConfig.Log.Timestamps
	}
	output.SetupLogging(logCfg)

	if loadErr != nil {
		output.Warn("ignoring config file", "path", pathResult.ConfigPath, "err", loadErr)
	}
	output.Debug("initializing CLI",
		"config", pathResult.ConfigPath,
		"source", pathResult.Source,
	)

	return nil
}

// GetConfig returns the loaded configuration, never nil.
func GetConfig() *config.Config {
	if cliConfig == nil {
		return &config.Config{}
	}
	return cliConfig
}

// GetConfigPath returns the resolved config path value.
func GetConfigPath() string {
	if configPath.ConfigPath != "" {
		return configPath.ConfigPath
	}
	return configFlag
}
