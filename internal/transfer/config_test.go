// config_test.go - Config validation and batch sizing tests.
package transfer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidateWindows(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero hops", func(c *Config) { c.NumHops = 0 }},
		{"too many hops", func(c *Config) { c.NumHops = MaxHops + 1 }},
		{"no real splits", func(c *Config) { c.RealSplits = 0 }},
		{"no fake splits", func(c *Config) { c.FakeSplits = 0 }},
		{"splits exceed buckets", func(c *Config) { c.RealSplits = 64; c.FakeSplits = 65 }},
		{"reserve too low", func(c *Config) { c.ReservePercent = MinReservePercent - 1 }},
		{"reserve too high", func(c *Config) { c.ReservePercent = MaxReservePercent + 1 }},
		{"fee too high", func(c *Config) { c.FeeMultiplier = MaxFeeMultiplier + 1 }},
		{"budget too low", func(c *Config) { c.HopBudget = MinHopBudget - 1 }},
		{"budget too high", func(c *Config) { c.HopBudget = MaxHopBudget + 1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrValidation)
		})
	}
}

func TestMaxBatchSize(t *testing.T) {
	cfg := DefaultConfig()

	cfg.HopBudget = 220_000
	require.Equal(t, uint8(4), cfg.MaxBatchSize())

	cfg.HopBudget = MinHopBudget
	require.Equal(t, uint8(1), cfg.MaxBatchSize())

	cfg.HopBudget = MaxHopBudget
	require.Equal(t, uint8(8), cfg.MaxBatchSize())
}
