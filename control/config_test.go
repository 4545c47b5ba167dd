package control

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/momentics/hioload-ran/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 273*api.NRE, cfg.Grid.NofSubc())
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
grid:
  nof_ports: 2
  nof_prb: 106
  lock_memory: true
pool:
  nof_sectors: 3
  nof_slots: 8
  shared: true
executor:
  num_workers: 4
  cpus: [2, 3]
metrics:
  pushgateway:
    url: http://localhost:9091
    interval: 5s
`))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Grid.NofPorts)
	assert.Equal(t, 106, cfg.Grid.NofPRB)
	assert.Equal(t, api.MaxNSymbPerSlot, cfg.Grid.NofSymbols, "unset fields keep defaults")
	assert.True(t, cfg.Grid.LockMemory)
	assert.Equal(t, PoolConfig{NofSectors: 3, NofSlots: 8, Shared: true}, cfg.Pool)
	assert.Equal(t, []int{2, 3}, cfg.Executor.CPUs)
	assert.Equal(t, 5*time.Second, cfg.Metrics.Pushgateway.Interval)
	assert.Equal(t, "hioload_ran", cfg.Metrics.Pushgateway.Job)
	assert.Equal(t, map[uint16]int{0: 0, 1: 1}, cfg.OFH.EAxCToPort)
}

func TestParseConfig_ExplicitEAxCMapReplacesDefault(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
ofh:
  eaxc_to_port: {16: 0, 17: 3}
`))
	require.NoError(t, err)
	assert.Equal(t, map[uint16]int{16: 0, 17: 3}, cfg.OFH.EAxCToPort)
	assert.Equal(t, 100, cfg.OFH.DropLogInterval)
}

func TestConfigValidation(t *testing.T) {
	cases := map[string]string{
		"ports":         "grid: {nof_ports: 65}",
		"symbols":       "grid: {nof_symbols: 15}",
		"prb":           "grid: {nof_prb: 276}",
		"sectors":       "pool: {nof_sectors: 0}",
		"slots":         "pool: {nof_slots: 0}",
		"workers":       "executor: {num_workers: -1}",
		"cpu":           "executor: {cpus: [-2]}",
		"eaxc port":     "ofh: {eaxc_to_port: {0: 4}}",
		"push interval": "metrics: {pushgateway: {url: 'http://x', interval: 0s}}",
		"drop log":      "ofh: {drop_log_interval: -1}",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, api.ErrInvalidArgument), "%v", err)
		})
	}

	_, err := ParseConfig([]byte("grid: [not, a, map]"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, api.ErrInvalidArgument))
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ran.yaml")
	data, err := DefaultConfig().Marshal()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestConfigStore(t *testing.T) {
	store := NewConfigStore(DefaultConfig())
	var seen []int
	store.OnReload(func(c *Config) { seen = append(seen, c.OFH.DropLogInterval) })

	next := DefaultConfig()
	next.OFH.DropLogInterval = 7
	require.NoError(t, store.Update(next))
	assert.Same(t, next, store.Load())

	bad := DefaultConfig()
	bad.Grid.NofPorts = 0
	require.Error(t, store.Update(bad))
	assert.Same(t, next, store.Load())
	assert.Equal(t, []int{7}, seen)
}
