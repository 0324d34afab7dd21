// Package config provides configuration management for fig.
//
// This package handles two distinct inputs:
//   - the fig application configuration (Docker host, project name
//     override, log level), loaded from YAML files and environment
//     variables with a FIG_ prefix
//   - the fig.yml service definitions, a mapping of service name to
//     service spec, loaded with LoadServices
//
// # Configuration Sources Priority
//
// Application configuration is loaded in the following order (later
// sources override earlier ones):
//  1. Default values (hardcoded)
//  2. Configuration files (./fig-config.yaml, ~/.fig/config.yaml)
//  3. Environment variables (FIG_ prefix)
//
// # Environment Variables
//
// Use FIG_ prefix and underscores for nested keys:
//   - FIG_DOCKER_HOST=tcp://192.168.1.10:2375
//   - FIG_PROJECT_NAME=myapp
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration structure for fig.
type Config struct {
	// Docker contains Engine API connection settings
	Docker DockerConfig `mapstructure:"docker"`

	// Project contains project-level settings
	Project ProjectConfig `mapstructure:"project"`

	// Logging contains logging settings
	Logging LoggingConfig `mapstructure:"logging"`
}

// DockerConfig contains Engine API connection settings.
type DockerConfig struct {
	// Host is the Docker daemon address. Empty means DOCKER_HOST and
	// friends from the environment.
	Host string `mapstructure:"host"`
}

// ProjectConfig contains project-level settings.
type ProjectConfig struct {
	// Name overrides the project name derived from the fig.yml
	// directory.
	Name string `mapstructure:"name"`

	// File is the service definition file (default: fig.yml).
	File string `mapstructure:"file"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error)
	Level string `mapstructure:"level"`
}

// Load reads application configuration from a file and environment
// variables. If cfgFile is empty, it searches standard locations.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("fig-config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.fig")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			if !isFileNotFoundError(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		} else {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix("FIG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("docker.host", "")
	v.SetDefault("project.name", "")
	v.SetDefault("project.file", "fig.yml")
	v.SetDefault("logging.level", "info")
}

func validate(cfg *Config) error {
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", cfg.Logging.Level)
	}
	return nil
}

// ProjectName returns the effective project name: the configured
// override, or the name of the directory holding the service definition
// file, lowercased and stripped to [a-z0-9].
func (c *Config) ProjectName() string {
	if c.Project.Name != "" {
		return normalizeProjectName(c.Project.Name)
	}

	abs, err := filepath.Abs(c.Project.File)
	if err != nil {
		return "default"
	}
	name := normalizeProjectName(filepath.Base(filepath.Dir(abs)))
	if name == "" {
		return "default"
	}
	return name
}

func normalizeProjectName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isFileNotFoundError checks if an error is a file not found error.
func isFileNotFoundError(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr, os.ErrNotExist)
	}
	return false
}
