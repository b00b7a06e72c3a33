// Package config provides file and environment based configuration for the
// exporter and its conversion server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. PLC2YAML_SERVER_PORT.
const EnvPrefix = "PLC2YAML"

// DefaultConfigName is the config file searched for in the working directory.
const DefaultConfigName = "plc2yaml"

// Config represents the root configuration structure
type Config struct {
	Convert ConvertConfig `mapstructure:"convert" yaml:"convert"`
	Markers MarkersConfig `mapstructure:"markers" yaml:"markers"`
	Mapping MappingConfig `mapstructure:"mapping" yaml:"mapping"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// ConvertConfig names the files of a one-shot conversion
type ConvertConfig struct {
	Input  string `mapstructure:"input" yaml:"input"`
	Output string `mapstructure:"output" yaml:"output"`
	Format string `mapstructure:"format" yaml:"format"` // "yaml", "msgpack" or empty to follow the output extension
}

// MarkersConfig delimits the data region of the export
type MarkersConfig struct {
	Begin string `mapstructure:"begin" yaml:"begin"`
	End   string `mapstructure:"end" yaml:"end"`
}

// MappingConfig controls how records become tags
type MappingConfig struct {
	RootName             string `mapstructure:"root_name" yaml:"root_name"`
	CoilOffsetCorrection bool   `mapstructure:"coil_offset_correction" yaml:"coil_offset_correction"`
	OffsetRangeCheck     bool   `mapstructure:"offset_range_check" yaml:"offset_range_check"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port                 int    `mapstructure:"port" yaml:"port"`
	BindAddress          string `mapstructure:"bind_address" yaml:"bind_address"`
	BodyLimit            string `mapstructure:"body_limit" yaml:"body_limit"`
	ReadTimeout          int    `mapstructure:"read_timeout_seconds" yaml:"read_timeout_seconds"`
	WriteTimeout         int    `mapstructure:"write_timeout_seconds" yaml:"write_timeout_seconds"`
	IdleTimeout          int    `mapstructure:"idle_timeout_seconds" yaml:"idle_timeout_seconds"`
	EnableRequestLogging bool   `mapstructure:"enable_request_logging" yaml:"enable_request_logging"`
}

// StorageConfig contains conversion storage settings
type StorageConfig struct {
	DataDirectory string `mapstructure:"data_directory" yaml:"data_directory"`
	RecentLimit   int    `mapstructure:"recent_limit" yaml:"recent_limit"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Verbosity int `mapstructure:"verbosity" yaml:"verbosity"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			Output: "Tags.yaml",
		},
		Markers: MarkersConfig{
			Begin: "#BEGIN ELEMENT_DOC",
			End:   "#END",
		},
		Mapping: MappingConfig{
			RootName:             "Tags",
			CoilOffsetCorrection: true,
		},
		Server: ServerConfig{
			Port:                 8089,
			BindAddress:          "0.0.0.0",
			BodyLimit:            "32M",
			ReadTimeout:          30,
			WriteTimeout:         30,
			IdleTimeout:          120,
			EnableRequestLogging: true,
		},
		Storage: StorageConfig{
			DataDirectory: "./data/conversions",
			RecentLimit:   20,
		},
		Log: LogConfig{
			Verbosity: 0,
		},
	}
}

// SetDefaults registers the defaults with v so that env overrides and
// Unmarshal see every key even without a config file.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("convert.input", d.Convert.Input)
	v.SetDefault("convert.output", d.Convert.Output)
	v.SetDefault("convert.format", d.Convert.Format)
	v.SetDefault("markers.begin", d.Markers.Begin)
	v.SetDefault("markers.end", d.Markers.End)
	v.SetDefault("mapping.root_name", d.Mapping.RootName)
	v.SetDefault("mapping.coil_offset_correction", d.Mapping.CoilOffsetCorrection)
	v.SetDefault("mapping.offset_range_check", d.Mapping.OffsetRangeCheck)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.bind_address", d.Server.BindAddress)
	v.SetDefault("server.body_limit", d.Server.BodyLimit)
	v.SetDefault("server.read_timeout_seconds", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout_seconds", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout_seconds", d.Server.IdleTimeout)
	v.SetDefault("server.enable_request_logging", d.Server.EnableRequestLogging)
	v.SetDefault("storage.data_directory", d.Storage.DataDirectory)
	v.SetDefault("storage.recent_limit", d.Storage.RecentLimit)
	v.SetDefault("log.verbosity", d.Log.Verbosity)
}

// Load reads configuration into a Config. configFile may be empty, in which
// case plc2yaml.yaml is looked up in the working directory and its absence is
// not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if used := v.ConfigFileUsed(); used != "" {
		cfg.resolvePaths(filepath.Dir(used))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Markers.Begin) == "" {
		return errors.New("markers.begin must not be empty")
	}
	if strings.TrimSpace(c.Markers.End) == "" {
		return errors.New("markers.end must not be empty")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Storage.RecentLimit <= 0 {
		return fmt.Errorf("storage.recent_limit must be positive: %d", c.Storage.RecentLimit)
	}
	return nil
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *Config) resolvePaths(configDir string) {
	if c.Storage.DataDirectory != "" && !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
}

// GetServerAddr returns the server bind address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// EnsureDirectories creates all necessary directories
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Storage.DataDirectory, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", c.Storage.DataDirectory, err)
	}
	return nil
}
