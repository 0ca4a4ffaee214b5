package config

import "time"

// Config represents the complete pyscope configuration.
// It can be loaded from .pyscope/config.yml with environment variable overrides.
type Config struct {
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Scan   ScanConfig   `yaml:"scan" mapstructure:"scan"`
	Watch  WatchConfig  `yaml:"watch" mapstructure:"watch"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`                         // listen address, e.g. ":8080"
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"` // reject uploads larger than this
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// ScanConfig configures the directory scan command.
type ScanConfig struct {
	Include string `yaml:"include" mapstructure:"include"` // glob over file names, e.g. "*.py"
}

// WatchConfig configures the file watcher.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			MaxUploadBytes:  2 << 20,
			ReadTimeout:     10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Scan: ScanConfig{
			Include: "*.py",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}
