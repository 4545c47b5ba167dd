// File: control/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// YAML configuration of a resource grid deployment and a thread-safe store that
// propagates reloads to registered listeners.

package control

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-ran/api"
	"gopkg.in/yaml.v3"
)

// GridConfig sizes every grid of the pools.
type GridConfig struct {
	NofPorts   int  `yaml:"nof_ports"`
	NofSymbols int  `yaml:"nof_symbols"`
	NofPRB     int  `yaml:"nof_prb"`
	LockMemory bool `yaml:"lock_memory"`
}

// NofSubc returns the number of subcarriers of a grid.
func (g GridConfig) NofSubc() int { return g.NofPRB * api.NRE }

// PoolConfig selects the pool flavour and its size.
type PoolConfig struct {
	NofSectors int `yaml:"nof_sectors"`
	NofSlots   int `yaml:"nof_slots"`
	// Shared selects the reference-counted pool with asynchronous zeroing.
	Shared bool `yaml:"shared"`
}

// ExecutorConfig sizes the worker executor.
type ExecutorConfig struct {
	NumWorkers int   `yaml:"num_workers"`
	CPUs       []int `yaml:"cpus,omitempty"`
}

// PushgatewayConfig enables periodic pushes to a Prometheus Pushgateway.
type PushgatewayConfig struct {
	URL      string        `yaml:"url"`
	Job      string        `yaml:"job"`
	Interval time.Duration `yaml:"interval"`
}

// MetricsConfig controls the Prometheus registry.
type MetricsConfig struct {
	Enabled     bool              `yaml:"enabled"`
	Namespace   string            `yaml:"namespace"`
	Pushgateway PushgatewayConfig `yaml:"pushgateway"`
}

// DebugConfig controls debug probes.
type DebugConfig struct {
	Enabled bool `yaml:"enabled"`
}

// OFHConfig configures the fronthaul uplink writer.
type OFHConfig struct {
	// EAxCToPort maps an eAxC identifier to a grid port.
	EAxCToPort map[uint16]int `yaml:"eaxc_to_port"`
	// DropLogInterval logs one of every DropLogInterval dropped sections.
	DropLogInterval int `yaml:"drop_log_interval"`
}

// Config is the complete configuration.
type Config struct {
	Grid     GridConfig     `yaml:"grid"`
	Pool     PoolConfig     `yaml:"pool"`
	Executor ExecutorConfig `yaml:"executor"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Debug    DebugConfig    `yaml:"debug"`
	OFH      OFHConfig      `yaml:"ofh"`
}

// DefaultConfig returns a single-sector 100 MHz, 30 kHz SCS, four-port setup.
func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{
			NofPorts:   4,
			NofSymbols: api.MaxNSymbPerSlot,
			NofPRB:     273,
		},
		Pool: PoolConfig{
			NofSectors: 1,
			NofSlots:   4,
		},
		Executor: ExecutorConfig{
			NumWorkers: 2,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "hioload_ran",
			Pushgateway: PushgatewayConfig{
				Job:      "hioload_ran",
				Interval: 15 * time.Second,
			},
		},
		Debug: DebugConfig{Enabled: true},
		OFH: OFHConfig{
			EAxCToPort:      IdentityEAxCMap(4),
			DropLogInterval: 100,
		},
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("config: "+format+": %w", append(args, api.ErrInvalidArgument)...)
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	g := c.Grid
	switch {
	case g.NofPorts < 1 || g.NofPorts > api.MaxPorts:
		return invalid("grid.nof_ports %d outside [1, %d]", g.NofPorts, api.MaxPorts)
	case g.NofSymbols < 1 || g.NofSymbols > api.MaxNSymbPerSlot:
		return invalid("grid.nof_symbols %d outside [1, %d]", g.NofSymbols, api.MaxNSymbPerSlot)
	case g.NofPRB < 1 || g.NofPRB > api.MaxRB:
		return invalid("grid.nof_prb %d outside [1, %d]", g.NofPRB, api.MaxRB)
	case c.Pool.NofSectors < 1:
		return invalid("pool.nof_sectors %d", c.Pool.NofSectors)
	case c.Pool.NofSlots < 1:
		return invalid("pool.nof_slots %d", c.Pool.NofSlots)
	case c.Executor.NumWorkers < 0:
		return invalid("executor.num_workers %d", c.Executor.NumWorkers)
	case c.OFH.DropLogInterval < 0:
		return invalid("ofh.drop_log_interval %d", c.OFH.DropLogInterval)
	case c.Metrics.Pushgateway.URL != "" && c.Metrics.Pushgateway.Interval <= 0:
		return invalid("metrics.pushgateway.interval %v", c.Metrics.Pushgateway.Interval)
	}
	for _, cpu := range c.Executor.CPUs {
		if cpu < 0 {
			return invalid("executor.cpus contains %d", cpu)
		}
	}
	for eaxc, port := range c.OFH.EAxCToPort {
		if port < 0 || port >= g.NofPorts {
			return invalid("ofh.eaxc_to_port[%d] = %d outside [0, %d)", eaxc, port, g.NofPorts)
		}
	}
	return nil
}

// IdentityEAxCMap maps eAxC i to port i for the first nofPorts ports.
func IdentityEAxCMap(nofPorts int) map[uint16]int {
	m := make(map[uint16]int, nofPorts)
	for port := 0; port < nofPorts; port++ {
		m[uint16(port)] = port
	}
	return m
}

// ParseConfig decodes YAML over DefaultConfig and validates the result. Without
// an ofh.eaxc_to_port section every grid port gets the eAxC of the same number.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	cfg.OFH.EAxCToPort = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if cfg.OFH.EAxCToPort == nil {
		cfg.OFH.EAxCToPort = IdentityEAxCMap(cfg.Grid.NofPorts)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return ParseConfig(data)
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// ConfigStore holds the active configuration and notifies listeners on reload.
type ConfigStore struct {
	current   atomic.Pointer[Config]
	mu        sync.Mutex
	listeners []func(*Config)
}

// NewConfigStore returns a store holding cfg, which must be valid.
func NewConfigStore(cfg *Config) *ConfigStore {
	cs := &ConfigStore{}
	cs.current.Store(cfg)
	return cs
}

// Load returns the active configuration. It must not be modified.
func (cs *ConfigStore) Load() *Config {
	return cs.current.Load()
}

// Update validates cfg, makes it active and calls every listener synchronously.
func (cs *ConfigStore) Update(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.current.Store(cfg)
	for _, fn := range cs.listeners {
		fn(cfg)
	}
	return nil
}

// OnReload registers a listener called after each successful Update.
func (cs *ConfigStore) OnReload(fn func(*Config)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}
