package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the runtime parameters of the alarm console.
type Config struct {
	// QueueCapacity is the size of the bounded request ring between the
	// input loop and the dispatcher.
	QueueCapacity int `yaml:"queue_capacity"`
	// Tick is the display scheduler period.
	Tick time.Duration `yaml:"tick"`
	// Prompt is the text drawn in front of the user's input line.
	Prompt string `yaml:"prompt"`
	// LogLevel is the minimum level emitted by the logger.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default filename for console settings.
	DefaultConfigFilename = "alarm-console-settings.yaml"

	// DefaultQueueCapacity matches the fixed ring size of the original
	// producer/consumer design.
	DefaultQueueCapacity = 4

	// DefaultTick is the display scheduler period.
	DefaultTick = time.Second

	// DefaultPrompt is the console prompt text.
	DefaultPrompt = "Alarm> "

	// DefaultLogLevel is the default minimum log level.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the file permission for saved settings.
	DefaultFilePermissions = 0o600
)

// errConfigIsNotSet is returned when a nil configuration is provided.
var errConfigIsNotSet = errors.New("configuration is not set")

// Default returns a configuration with every field at its default.
func Default() *Config {
	return &Config{
		QueueCapacity: DefaultQueueCapacity,
		Tick:          DefaultTick,
		Prompt:        DefaultPrompt,
		LogLevel:      DefaultLogLevel,
	}
}

// Load reads configuration from the provided path. An empty path means the
// default filename; a file that does not exist yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills absent fields with
// defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.QueueCapacity < 0 {
		return fmt.Errorf("queue capacity must be positive, got %d", cfg.QueueCapacity)
	}

	if cfg.QueueCapacity == 0 {
		cfg.QueueCapacity = DefaultQueueCapacity
	}

	if cfg.Tick < 0 {
		return fmt.Errorf("tick must be positive, got %s", cfg.Tick)
	}

	if cfg.Tick == 0 {
		cfg.Tick = DefaultTick
	}

	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	return nil
}
