// Package config loads client and relay settings.
//
// Sources are layered: built-in defaults, then an optional YAML file, then
// REVERSI_* environment variables. Command-line flags are applied by the
// caller on top. The merged result is checked against an embedded CUE
// schema.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/FireRat666/Banter-Reversi/internal/coordinator"
	"github.com/FireRat666/Banter-Reversi/internal/property"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "REVERSI_"

// Store kinds.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRelay  = "relay"
)

//go:embed schema.cue
var schemaSource string

// Config holds all settings. Field names follow the YAML file.
type Config struct {
	// Location is the hosting location the instance key is derived from.
	Location string `yaml:"location" env:"LOCATION" json:"location"`

	// Instance overrides the location-derived instance key.
	Instance string `yaml:"instance" env:"INSTANCE" json:"instance"`

	// HideUI hides the reset control.
	HideUI bool `yaml:"hideUI" env:"HIDE_UI" json:"hideUI"`

	// User names the local participant for stores without their own
	// identity assignment. Empty means generate one.
	User string `yaml:"user" env:"USER" json:"user"`

	// LogFile routes logs to a rolling file instead of stderr.
	LogFile string `yaml:"logFile" env:"LOG_FILE" json:"logFile"`

	Store StoreConfig `yaml:"store" envPrefix:"STORE_" json:"store"`
	Sync  SyncConfig  `yaml:"sync" envPrefix:"SYNC_" json:"sync"`
	Relay RelayConfig `yaml:"relay" envPrefix:"RELAY_" json:"relay"`
}

// StoreConfig selects the shared property store.
type StoreConfig struct {
	Kind         string        `yaml:"kind" env:"KIND" json:"kind"`
	Path         string        `yaml:"path" env:"PATH" json:"path"`
	URL          string        `yaml:"url" env:"URL" json:"url"`
	PollInterval time.Duration `yaml:"pollInterval" env:"POLL_INTERVAL" json:"pollInterval"`
}

// SyncConfig tunes the coordinator's readiness wait.
type SyncConfig struct {
	PollInterval time.Duration `yaml:"pollInterval" env:"POLL_INTERVAL" json:"pollInterval"`
	ReadyTimeout time.Duration `yaml:"readyTimeout" env:"READY_TIMEOUT" json:"readyTimeout"`
}

// RelayConfig configures `reversi serve`.
type RelayConfig struct {
	Addr    string `yaml:"addr" env:"ADDR" json:"addr"`
	LogFile string `yaml:"logFile" env:"LOG_FILE" json:"logFile"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Kind:         StoreSQLite,
			Path:         "reversi.db",
			URL:          "ws://localhost:8080/ws?space=lobby",
			PollInterval: 250 * time.Millisecond,
		},
		Sync: SyncConfig{
			PollInterval: coordinator.DefaultPollInterval,
			ReadyTimeout: coordinator.DefaultReadyTimeout,
		},
		Relay: RelayConfig{
			Addr: ":8080",
		},
	}
}

// Load layers the YAML file at path (if any) and the environment over the
// defaults. The result is not validated; call Validate after applying
// flags.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true) // Reject unknown fields
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks cfg against the schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// InstanceName resolves the game instance: the explicit instance, else the
// key derived from the location, else the default instance.
func (c Config) InstanceName() string {
	if c.Instance != "" {
		return c.Instance
	}
	if key := property.InstanceKey(c.Location); key != "" {
		return key
	}
	return coordinator.DefaultInstance
}
