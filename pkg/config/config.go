package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"crmigrate/pkg/migrate"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	envVarPrefix = "CRMIGRATE"
	appName      = "crmigrate"
)

// Config is read from CRMIGRATE_* variables only; LogLevel alone falls back to
// the unprefixed LOG_LEVEL.
type Config struct {
	Group       string `envconfig:"CRMIGRATE_GROUP"        yaml:"group"`
	Kind        string `envconfig:"CRMIGRATE_KIND"         yaml:"kind"`
	SourceField string `envconfig:"CRMIGRATE_SOURCE_FIELD" yaml:"sourceField"`
	DestField   string `envconfig:"CRMIGRATE_DEST_FIELD"   yaml:"destField"`
	DestVersion string `envconfig:"CRMIGRATE_DEST_VERSION" yaml:"destVersion"`

	// ListVersion is the version requested when listing records from a
	// cluster. The API server returns every stored object in this version
	// regardless of how it is stored.
	ListVersion string `envconfig:"CRMIGRATE_LIST_VERSION" yaml:"listVersion"`

	// Resource is the plural resource name of `Kind`.
	Resource string `envconfig:"CRMIGRATE_RESOURCE" yaml:"resource"`

	// LogLevel is read from CRMIGRATE_LOG_LEVEL, falling back to LOG_LEVEL.
	LogLevel string `envconfig:"LOG_LEVEL" yaml:"logLevel"`
}

// Default returns the configuration for converting `kodachi.com` FFS
// resources to v1alpha2.
func Default() Config {
	return Config{
		Group:       migrate.DefaultRule.Group,
		Kind:        migrate.DefaultRule.Kind,
		SourceField: migrate.DefaultRule.SourceField,
		DestField:   migrate.DefaultRule.DestField,
		DestVersion: migrate.DefaultRule.DestVersion,
		ListVersion: "v1alpha1",
		Resource:    "ffses",
	}
}

// Load starts from `Default()`, applies the YAML file named by
// CRMIGRATE_CONFIG_FILE (if any) and then the CRMIGRATE_* environment
// variables.
func Load() (*Config, error) {
	c := Default()

	if configFile := os.Getenv(envVarPrefix + "_CONFIG_FILE"); configFile != "" {
		if err := c.LoadFile(configFile); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}

	return &c, nil
}

// LoadFile overlays the values in the YAML file at `path` onto `c`. Unknown
// keys are rejected.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file `%s`: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("unmarshaling config file `%s`: %w", path, err)
	}
	return nil
}

// Rule returns the migration rule described by the configuration.
func (c *Config) Rule() migrate.Rule {
	return migrate.Rule{
		Group:       c.Group,
		Kind:        c.Kind,
		SourceField: c.SourceField,
		DestField:   c.DestField,
		DestVersion: c.DestVersion,
	}
}

// Validate reports the first missing setting, then checks the rule itself.
func (c *Config) Validate() error {
	if y, e := func() (string, string) {
		if c.Group == "" {
			return "group", "GROUP"
		}
		if c.Kind == "" {
			return "kind", "KIND"
		}
		if c.SourceField == "" {
			return "sourceField", "SOURCE_FIELD"
		}
		if c.DestField == "" {
			return "destField", "DEST_FIELD"
		}
		if c.DestVersion == "" {
			return "destVersion", "DEST_VERSION"
		}
		if c.ListVersion == "" {
			return "listVersion", "LIST_VERSION"
		}
		if c.Resource == "" {
			return "resource", "RESOURCE"
		}
		return "", ""
	}(); y != "" {
		return fmt.Errorf(
			"missing required configuration: %s / %s_%s",
			y,
			envVarPrefix,
			e,
		)
	}

	if err := c.Rule().Validate(); err != nil {
		return fmt.Errorf("%s: %w", appName, err)
	}
	return nil
}
