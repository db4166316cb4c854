package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"
)

//go:embed config.yaml
var defaultConfig []byte

type (
	PageConfig struct {
		Size      string `yaml:"size" validate:"oneof=A3 A4 A5 Letter Legal custom"`
		Width     string `yaml:"width" validate:"required_if=Size custom"`
		Height    string `yaml:"height" validate:"required_if=Size custom"`
		Landscape bool   `yaml:"landscape"`
	}

	OutputConfig struct {
		Format string `yaml:"format" validate:"oneof=html pdf"`
		Title  string `yaml:"title"`
		Author string `yaml:"author"`
	}

	DocumentConfig struct {
		Container string       `yaml:"container"`
		PageClass string       `yaml:"page_class" validate:"required,excludesall=.#"`
		Page      PageConfig   `yaml:"page"`
		Capacity  float64      `yaml:"capacity" validate:"gte=0"`
		Tolerance float64      `yaml:"tolerance" validate:"gte=0"`
		Overflow  string       `yaml:"overflow" validate:"oneof=error place"`
		Output    OutputConfig `yaml:"output"`
	}

	Config struct {
		Version  int            `yaml:"version" validate:"eq=1"`
		Document DocumentConfig `yaml:"document"`
		Logging  LoggingConfig  `yaml:"logging"`
	}
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we defined are accepted
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := validate.Struct(cfg); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of the built-in defaults and performs
// validation.
func LoadConfiguration(path string) (*Config, error) {
	haveFile := len(path) > 0

	cfg, err := unmarshalConfig(defaultConfig, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process default configuration: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare returns the default configuration file
func Prepare() []byte {
	return bytes.Clone(defaultConfig)
}

// Dump marshals cfg to YAML
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
