// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable that locates the config file
// when no --config flag is passed.
const EnvVar = "SWITCHBOOT_CONFIG"

// ApplicationID is the stable identifier that names the local
// endpoint. On Windows this becomes \\.\pipe\<id>; the unix fallback
// derives a socket path from it.
const ApplicationID = "ca9ba1f9-4aaa-486f-8ce4-f69453af0c6c"

// Config is the configuration for switchboot's privileged bridge.
// Every field has a working default; a config file only needs to name
// what it overrides.
type Config struct {
	// Endpoint configures the local duplex channel.
	Endpoint EndpointConfig `yaml:"endpoint"`

	// Service configures the Windows service registration and its
	// lifecycle timing.
	Service ServiceConfig `yaml:"service"`

	// Broker configures the unprivileged side's connect behavior.
	Broker BrokerConfig `yaml:"broker"`

	// Listener configures the privileged side's shutdown policy.
	Listener ListenerConfig `yaml:"listener"`
}

// EndpointConfig configures the named endpoint and its framing.
type EndpointConfig struct {
	// Name is the endpoint name (e.g. \\.\pipe\<app-id>). Empty means
	// the default derived from ApplicationID.
	Name string `yaml:"name"`

	// MaxFrameSize caps the length prefix a receiver will honor, in
	// bytes. Frames claiming more are a protocol error.
	MaxFrameSize uint32 `yaml:"max_frame_size"`

	// KeyFile is the path of a hex-encoded 256-bit channel key. Empty
	// means the compiled-in default key (integrity only — see the
	// transport package docs).
	KeyFile string `yaml:"key_file"`
}

// ServiceConfig configures service registration and lifecycle timing.
type ServiceConfig struct {
	// Name is the SCM service name.
	Name string `yaml:"name"`

	// DisplayName is shown in the services UI.
	DisplayName string `yaml:"display_name"`

	// StartTimeout bounds how long a start request waits for the
	// service to reach Running.
	StartTimeout Duration `yaml:"start_timeout"`

	// ReadyTimeout bounds how long service main waits for the
	// listener worker's readiness signal before advertising Running
	// anyway.
	ReadyTimeout Duration `yaml:"ready_timeout"`

	// StopGrace is how long the shutdown watchdog waits for workers
	// to finish before forcing the process down.
	StopGrace Duration `yaml:"stop_grace"`
}

// BrokerConfig configures the broker's connection to the elevated peer.
type BrokerConfig struct {
	// ConnectAttempts is the bounded retry budget for the first
	// connect; the endpoint may not exist yet while the service is
	// still starting.
	ConnectAttempts int `yaml:"connect_attempts"`

	// ConnectRetryDelay is the fixed delay between attempts.
	ConnectRetryDelay Duration `yaml:"connect_retry_delay"`
}

// ListenerConfig configures the elevated peer's shutdown policy.
type ListenerConfig struct {
	// MaxIdle shuts the listener down after this long with no active
	// connection. Zero disables idle shutdown.
	MaxIdle Duration `yaml:"max_idle"`

	// WaitForNewClient, when false, shuts the listener down as soon
	// as its first client's session ends.
	WaitForNewClient bool `yaml:"wait_for_new_client"`
}

// Default returns the configuration used when no file overrides it.
// The timing values mirror the advertised SCM wait hints: StopGrace
// matches the StopPending hint so the watchdog fires before the SCM
// loses patience.
func Default() Config {
	return Config{
		Endpoint: EndpointConfig{
			Name:         `\\.\pipe\` + ApplicationID,
			MaxFrameSize: 1 << 20,
		},
		Service: ServiceConfig{
			Name:         "swboot-cli",
			DisplayName:  "Switchboot System Service",
			StartTimeout: Duration(10 * time.Second),
			ReadyTimeout: Duration(5 * time.Second),
			StopGrace:    Duration(5 * time.Second),
		},
		Broker: BrokerConfig{
			ConnectAttempts:   10,
			ConnectRetryDelay: Duration(500 * time.Millisecond),
		},
		Listener: ListenerConfig{
			MaxIdle:          Duration(5 * time.Second),
			WaitForNewClient: true,
		},
	}
}

// Load reads configuration from path. If path is empty, the EnvVar
// location is used; if that is also empty, the defaults are returned
// unchanged. Fields absent from the file keep their default values.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks invariants that would otherwise surface as obscure
// runtime failures.
func (c Config) Validate() error {
	if c.Endpoint.Name == "" {
		return fmt.Errorf("endpoint.name must not be empty")
	}
	if c.Endpoint.MaxFrameSize == 0 {
		return fmt.Errorf("endpoint.max_frame_size must be positive")
	}
	if c.Service.Name == "" {
		return fmt.Errorf("service.name must not be empty")
	}
	if c.Broker.ConnectAttempts <= 0 {
		return fmt.Errorf("broker.connect_attempts must be positive")
	}
	if c.Service.StopGrace <= 0 {
		return fmt.Errorf("service.stop_grace must be positive")
	}
	return nil
}

// Duration is a time.Duration that unmarshals from YAML strings in
// time.ParseDuration format ("500ms", "10s").
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
