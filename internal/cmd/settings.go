package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/opmodel/combogen/internal/config"
	oerrors "github.com/opmodel/combogen/internal/errors"
)

// passFlags holds the per-command flags shared by generate, plan and cache.
type passFlags struct {
	assets      string
	buildDir    string
	format      string
	jpegQuality int
	backend     string
	concurrency int
	cacheDriver string
	cacheDSN    string
	store       string
	metricsFile string
}

func (f *passFlags) bindStorage(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.buildDir, "build-dir", "", "Directory for rendered combos and metadata (env: COMBOGEN_BUILD_DIR)")
	cmd.Flags().StringVar(&f.cacheDriver, "cache-driver", "", "Cache driver: json, sqlite, postgres, memory (env: COMBOGEN_CACHE_DRIVER)")
	cmd.Flags().StringVar(&f.cacheDSN, "cache-dsn", "", "sqlite path or postgres DSN (env: COMBOGEN_CACHE_DSN)")
	cmd.Flags().StringVar(&f.store, "store", "", "Artifact store: fs, memory, s3 (env: COMBOGEN_STORE_DRIVER)")
}

func (f *passFlags) bindRender(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.assets, "assets", "", "Directory with one folder of element images per layer (env: COMBOGEN_ASSETS_DIR)")
	cmd.Flags().StringVar(&f.format, "format", "", "Output image format: png, jpeg")
	cmd.Flags().IntVar(&f.jpegQuality, "jpeg-quality", 0, "JPEG quality 1-100 (default 90)")
	cmd.Flags().StringVar(&f.backend, "backend", "", "Compositing backend: gg, ximage")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "Concurrent render workers (default: number of CPUs)")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after the pass")
}

// settings are the effective values of one command after resolution.
type settings struct {
	Catalog     string
	AssetsDir   string
	BuildDir    string
	Format      string
	JPEGQuality int
	Backend     string
	Concurrency int
	CacheDriver string
	CacheDSN    string
	StoreDriver string
	MetricsFile string
	S3          config.S3Config

	resolved []config.ResolvedValue
}

// resolveSettings applies flag > env > config > default to every key.
func resolveSettings(cmd *cobra.Command, f *passFlags, catalogArg string) (*settings, error) {
	cfg := GetConfig()
	def := config.DefaultConfig()
	s := &settings{S3: cfg.Store.S3}

	changed := func(name, value string) string {
		if fl := cmd.Flags().Lookup(name); fl != nil && fl.Changed {
			return value
		}
		return ""
	}
	resolve := func(key, flagValue, cfgValue, defValue string) string {
		rv := config.Resolve(config.ResolveOptions{
			Key:          key,
			FlagValue:    flagValue,
			EnvVar:       config.EnvVar(key),
			ConfigValue:  cfgValue,
			DefaultValue: defValue,
		})
		s.resolved = append(s.resolved, rv)
		return rv.Value
	}
	resolveInt := func(key, flagName string, flagValue, cfgValue int) (int, error) {
		v := resolve(key, changed(flagName, strconv.Itoa(flagValue)), itoaNonZero(cfgValue), "")
		if v == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, oerrors.NewValidationError(fmt.Sprintf("%s must be an integer, got %q", key, v), "", key, "")
		}
		return n, nil
	}

	s.Catalog = resolve("catalog", catalogArg, cfg.Catalog, def.Catalog)
	s.AssetsDir = resolve("assetsDir", changed("assets", f.assets), cfg.AssetsDir, def.AssetsDir)
	s.BuildDir = resolve("buildDir", changed("build-dir", f.buildDir), cfg.BuildDir, def.BuildDir)
	s.Format = resolve("output.format", changed("format", f.format), cfg.Output.Format, def.Output.Format)
	s.Backend = resolve("render.backend", changed("backend", f.backend), cfg.Render.Backend, def.Render.Backend)
	s.CacheDriver = resolve("cache.driver", changed("cache-driver", f.cacheDriver), cfg.Cache.Driver, def.Cache.Driver)
	s.CacheDSN = resolve("cache.dsn", changed("cache-dsn", f.cacheDSN), cfg.Cache.DSN, "")
	s.StoreDriver = resolve("store.driver", changed("store", f.store), cfg.Store.Driver, def.Store.Driver)
	s.MetricsFile = resolve("metrics.file", changed("metrics-file", f.metricsFile), cfg.Metrics.File, "")

	var err error
	if s.JPEGQuality, err = resolveInt("output.jpegQuality", "jpeg-quality", f.jpegQuality, cfg.Output.JPEGQuality); err != nil {
		return nil, err
	}
	if s.Concurrency, err = resolveInt("render.concurrency", "concurrency", f.concurrency, cfg.Render.Concurrency); err != nil {
		return nil, err
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	config.LogResolvedValues(s.resolved)
	return s, nil
}

// validate runs the config schema over the effective values.
func (s *settings) validate() error {
	v, err := config.NewValidator()
	if err != nil {
		return err
	}
	effective := &config.Config{
		Catalog:   s.Catalog,
		AssetsDir: s.AssetsDir,
		BuildDir:  s.BuildDir,
		Output:    config.OutputConfig{Format: s.Format, JPEGQuality: s.JPEGQuality},
		Render:    config.RenderConfig{Backend: s.Backend, Concurrency: s.Concurrency},
		Cache:     config.CacheConfig{Driver: s.CacheDriver, DSN: s.CacheDSN},
		Store:     config.StoreConfig{Driver: s.StoreDriver, S3: s.S3},
		Metrics:   config.MetricsConfig{File: s.MetricsFile},
	}
	if err := v.Validate(effective); err != nil {
		return oerrors.NewValidationError(err.Error(), GetConfigPath(), "", "Check flags, COMBOGEN_* environment variables and the config file.")
	}
	return nil
}

func itoaNonZero(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
