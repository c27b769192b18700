package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Environment variable prefix for combogen configuration.
const envPrefix = "COMBOGEN"

// envBindings maps configuration keys to their environment variables.
var envBindings = map[string]string{
	"catalog":                  "COMBOGEN_CATALOG",
	"assetsDir":                "COMBOGEN_ASSETS_DIR",
	"buildDir":                 "COMBOGEN_BUILD_DIR",
	"output.format":            "COMBOGEN_OUTPUT_FORMAT",
	"output.jpegQuality":       "COMBOGEN_OUTPUT_JPEG_QUALITY",
	"render.backend":           "COMBOGEN_RENDER_BACKEND",
	"render.concurrency":       "COMBOGEN_RENDER_CONCURRENCY",
	"cache.driver":             "COMBOGEN_CACHE_DRIVER",
	"cache.dsn":                "COMBOGEN_CACHE_DSN",
	"store.driver":             "COMBOGEN_STORE_DRIVER",
	"store.s3.bucket":          "COMBOGEN_S3_BUCKET",
	"store.s3.region":          "COMBOGEN_S3_REGION",
	"store.s3.endpoint":        "COMBOGEN_S3_ENDPOINT",
	"store.s3.prefix":          "COMBOGEN_S3_PREFIX",
	"store.s3.pathStyle":       "COMBOGEN_S3_PATH_STYLE",
	"store.s3.accessKeyID":     "COMBOGEN_S3_ACCESS_KEY_ID",
	"store.s3.secretAccessKey": "COMBOGEN_S3_SECRET_ACCESS_KEY",
	"metrics.file":             "COMBOGEN_METRICS_FILE",
	"log.timestamps":           "COMBOGEN_LOG_TIMESTAMPS",
}

// EnvVar returns the environment variable bound to a configuration key.
func EnvVar(key string) string {
	return envBindings[key]
}

// Loader handles loading and merging configuration from multiple sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	return &Loader{v: v}
}

// Load loads configuration from the given file path.
// If configFile is empty, it uses the default config file path.
// Environment variables take precedence over file values.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile == "" {
		var err error
		configFile, err = GetConfigFile()
		if err != nil {
			return nil, fmt.Errorf("getting config file path: %w", err)
		}
	}

	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	l.v.SetConfigFile(expandedPath)
	l.v.SetConfigType("yaml")

	// A missing config file is fine: defaults and env vars still apply.
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads configuration and applies defaults.
func (l *Loader) LoadWithDefaults(configFile string) (*Config, error) {
	cfg, err := l.Load(configFile)
	if err != nil {
		return nil, err
	}

	return cfg.WithDefaults(), nil
}

// InConfig reports whether the loaded config file set key.
func (l *Loader) InConfig(key string) bool {
	return l.v.InConfig(key)
}

// ConfigFileExists checks if the config file exists.
func ConfigFileExists(configFile string) (bool, error) {
	if configFile == "" {
		var err error
		configFile, err = GetConfigFile()
		if err != nil {
			return false, err
		}
	}

	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
