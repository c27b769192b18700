// Package config provides configuration loading and management.
package config

// OutputConfig controls how rendered combos are encoded.
type OutputConfig struct {
	// Format is the output image format: "png" (default) or "jpeg".
	// Env: COMBOGEN_OUTPUT_FORMAT
	Format string `json:"format,omitempty" yaml:"format,omitempty" mapstructure:"format"`

	// JPEGQuality is used when Format is "jpeg". 0 selects the encoder default.
	// Env: COMBOGEN_OUTPUT_JPEG_QUALITY
	JPEGQuality int `json:"jpegQuality,omitempty" yaml:"jpegQuality,omitempty" mapstructure:"jpegQuality"`
}

// RenderConfig contains compositing settings.
type RenderConfig struct {
	// Backend is the compositing backend: "gg" (default) or "ximage".
	// Env: COMBOGEN_RENDER_BACKEND
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty" mapstructure:"backend"`

	// Concurrency bounds the number of concurrent render workers.
	// 0 means runtime.NumCPU().
	// Env: COMBOGEN_RENDER_CONCURRENCY
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty" mapstructure:"concurrency"`
}

// CacheConfig selects the fingerprint cache backend.
type CacheConfig struct {
	// Driver is one of "json" (default), "sqlite", "postgres", "memory".
	// Env: COMBOGEN_CACHE_DRIVER
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty" mapstructure:"driver"`

	// DSN is the sqlite file path or the postgres connection string.
	// Env: COMBOGEN_CACHE_DSN
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty" mapstructure:"dsn"`
}

// S3Config contains the settings of the s3 artifact store.
type S3Config struct {
	Bucket          string `json:"bucket,omitempty" yaml:"bucket,omitempty" mapstructure:"bucket"`
	Region          string `json:"region,omitempty" yaml:"region,omitempty" mapstructure:"region"`
	Endpoint        string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" mapstructure:"endpoint"`
	Prefix          string `json:"prefix,omitempty" yaml:"prefix,omitempty" mapstructure:"prefix"`
	PathStyle       bool   `json:"pathStyle,omitempty" yaml:"pathStyle,omitempty" mapstructure:"pathStyle"`
	AccessKeyID     string `json:"accessKeyID,omitempty" yaml:"accessKeyID,omitempty" mapstructure:"accessKeyID"`
	SecretAccessKey string `json:"secretAccessKey,omitempty" yaml:"secretAccessKey,omitempty" mapstructure:"secretAccessKey"`
}

// StoreConfig selects where rendered artifacts and metadata are written.
type StoreConfig struct {
	// Driver is one of "fs" (default), "memory", "s3".
	// Env: COMBOGEN_STORE_DRIVER
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty" mapstructure:"driver"`

	S3 S3Config `json:"s3,omitempty" yaml:"s3,omitempty" mapstructure:"s3"`
}

// MetricsConfig contains metrics export settings.
type MetricsConfig struct {
	// File is a Prometheus textfile written after every pass. Empty disables it.
	// Env: COMBOGEN_METRICS_FILE
	File string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `json:"timestamps,omitempty" yaml:"timestamps,omitempty" mapstructure:"timestamps"`
}

// Config represents the combogen configuration.
// Loaded from ~/.combogen/config.yaml, validated against the embedded CUE schema.
type Config struct {
	// Catalog is the path of the layer catalog (JSON or YAML).
	// Env: COMBOGEN_CATALOG
	Catalog string `json:"catalog,omitempty" yaml:"catalog,omitempty" mapstructure:"catalog"`

	// AssetsDir holds one directory per layer with its element images.
	// Env: COMBOGEN_ASSETS_DIR
	AssetsDir string `json:"assetsDir,omitempty" yaml:"assetsDir,omitempty" mapstructure:"assetsDir"`

	// BuildDir receives rendered combos and the metadata document.
	// Env: COMBOGEN_BUILD_DIR
	BuildDir string `json:"buildDir,omitempty" yaml:"buildDir,omitempty" mapstructure:"buildDir"`

	Output  OutputConfig  `json:"output,omitempty" yaml:"output,omitempty" mapstructure:"output"`
	Render  RenderConfig  `json:"render,omitempty" yaml:"render,omitempty" mapstructure:"render"`
	Cache   CacheConfig   `json:"cache,omitempty" yaml:"cache,omitempty" mapstructure:"cache"`
	Store   StoreConfig   `json:"store,omitempty" yaml:"store,omitempty" mapstructure:"store"`
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty" mapstructure:"metrics"`
	Log     LogConfig     `json:"log,omitempty" yaml:"log,omitempty" mapstructure:"log"`
}

// Default values.
const (
	DefaultCatalog   = "config.json"
	DefaultAssetsDir = "Assets"
	DefaultBuildDir  = "Builds"
)

// DefaultConfig returns a Config with all default values populated.
// Used by `combogen config init` to generate the initial config file.
func DefaultConfig() *Config {
	return &Config{
		Catalog:   DefaultCatalog,
		AssetsDir: DefaultAssetsDir,
		BuildDir:  DefaultBuildDir,
		Output:    OutputConfig{Format: "png"},
		Render:    RenderConfig{Backend: "gg"},
		Cache:     CacheConfig{Driver: "json"},
		Store:     StoreConfig{Driver: "fs"},
	}
}

// WithDefaults fills every empty field from DefaultConfig.
func (c *Config) WithDefaults() *Config {
	def := DefaultConfig()
	out := *c
	if out.Catalog == "" {
		out.Catalog = def.Catalog
	}
	if out.AssetsDir == "" {
		out.AssetsDir = def.AssetsDir
	}
	if out.BuildDir == "" {
		out.BuildDir = def.BuildDir
	}
	if out.Output.Format == "" {
		out.Output.Format = def.Output.Format
	}
	if out.Render.Backend == "" {
		out.Render.Backend = def.Render.Backend
	}
	if out.Cache.Driver == "" {
		out.Cache.Driver = def.Cache.Driver
	}
	if out.Store.Driver == "" {
		out.Store.Driver = def.Store.Driver
	}
	return &out
}
