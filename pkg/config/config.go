package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nspcc-dev/neo-vesting/pkg/core/storage/dbconfig"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is the default path to the config directory.
	DefaultConfigPath = "./config"
	// DefaultConfigName is the default configuration name.
	DefaultConfigName = "vesting"
)

// Version is the version of the binary, set at build time.
var Version string

// Config top level struct representing the config for the vesting ledger.
type Config struct {
	ApplicationConfiguration ApplicationConfiguration `yaml:"ApplicationConfiguration"`
	Vesting                  Vesting                  `yaml:"Vesting"`
}

// Load attempts to load the config from the given path for the given
// configuration name (the file is expected to be <path>/<name>.yml).
func Load(path, name string) (Config, error) {
	return LoadFile(filepath.Join(path, name+".yml"))
}

// LoadFile loads config from the provided path.
func LoadFile(configPath string) (Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config '%s' doesn't exist", configPath)
	}

	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}

	return Parse(configData)
}

// Parse decodes YAML config applying defaults for the missing values.
func Parse(configData []byte) (Config, error) {
	config := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(configData))
	decoder.KnownFields(true)
	err := decoder.Decode(&config)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

// Default returns configuration with all defaults set, it has no owner and
// hence isn't valid.
func Default() Config {
	return Config{
		ApplicationConfiguration: ApplicationConfiguration{
			DBConfiguration: dbconfig.DBConfiguration{
				Type: dbconfig.InMemoryDB,
			},
			LogLevel:        "info",
			LogEncoding:     "console",
			MonitorInterval: DefaultMonitorInterval,
		},
		Vesting: Vesting{
			TokenName:   DefaultTokenName,
			TokenSymbol: DefaultTokenSymbol,
			Decimals:    DefaultDecimals,
			PolicyTable: PolicyTableDefault,
		},
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if err := c.ApplicationConfiguration.Validate(); err != nil {
		return fmt.Errorf("invalid ApplicationConfiguration: %w", err)
	}
	if err := c.Vesting.Validate(); err != nil {
		return fmt.Errorf("invalid Vesting section: %w", err)
	}
	return nil
}
