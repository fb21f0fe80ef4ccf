package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.yaml.in/yaml/v3"

	"github.com/ekisa-team/lingua/internal/envvar"
)

// ErrInvalidChunkProfile is returned when a chunk profile cannot be satisfied by segmentation.
var ErrInvalidChunkProfile = errors.New("invalid chunk profile")

// LoadAndValidate loads and validates the configuration.
func LoadAndValidate(path, schemaPath string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read config: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	schema, err := jsonschema.Compile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("config: failed to compile schema: %w", err)
	}

	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("config: config validation failed: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal into Config struct: %w", err)
	}

	if err := applyEnv(&config); err != nil {
		return nil, err
	}

	ApplyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &config, nil
}

// applyEnv overrides file values with LINGUA_* environment variables.
func applyEnv(cfg *Config) error {
	if v := os.Getenv(envvar.LinguaServerHTTPPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid %s %q: %w", envvar.LinguaServerHTTPPort, v, err)
		}
		cfg.Server.Port = port
	}

	if v := os.Getenv(envvar.LinguaDatabaseURL); v != "" {
		cfg.Registry.DatabaseURL = v
	}

	if v := os.Getenv(envvar.LinguaMQTTBrokerURL); v != "" {
		cfg.Usage.MQTT.Broker = v
	}

	return nil
}

// Validate checks constraints the schema cannot express.
func (c *Config) Validate() error {
	profiles := append([]ChunkProfile{c.Audio.Default}, c.Audio.Profiles...)
	for _, p := range profiles {
		eff := c.Audio.ProfileFor(p.Match)
		if p.Match == "" {
			eff = c.Audio.Default
		}

		if eff.BatchSize < 1 || eff.MinSeconds <= 0 || eff.MaxSeconds <= 0 {
			return fmt.Errorf("%w %q: batch size and durations must be positive", ErrInvalidChunkProfile, p.Match)
		}
		if eff.MinSeconds > eff.MaxSeconds/2 {
			return fmt.Errorf("%w %q: min %.1fs exceeds half of max %.1fs", ErrInvalidChunkProfile, p.Match, eff.MinSeconds, eff.MaxSeconds)
		}
	}

	switch c.Registry.Source {
	case SourceTypeStatic:
		for id, svc := range c.Registry.Services {
			if _, ok := c.Registry.Models[svc.ModelID]; !ok {
				return fmt.Errorf("service %q references unknown model %q", id, svc.ModelID)
			}
		}
	case SourceTypePostgres:
		if c.Registry.DatabaseURL == "" {
			return fmt.Errorf("registry source %q requires a database url", c.Registry.Source)
		}
	default:
		return fmt.Errorf("unknown registry source %q", c.Registry.Source)
	}

	if c.Usage.Sink == SinkTypeMQTT && c.Usage.MQTT.Broker == "" {
		return errors.New("usage sink mqtt requires a broker")
	}

	return nil
}
