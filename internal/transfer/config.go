// config.go - Per-transfer configuration and its validation windows.
package transfer

import (
	"fmt"

	"blackout/internal/bloom"
)

// Configuration windows.
const (
	MaxHops           = 8
	MaxRecipients     = 6
	MinReservePercent = 10
	MaxReservePercent = 80
	MaxFeeMultiplier  = 1000
	MinHopBudget      = 100_000
	MaxHopBudget      = 500_000
)

// maxBatchCeiling caps how many hops one batch call may cover regardless of
// budget; batchHopCost is the budgeted work per hop inside a batch.
const (
	maxBatchCeiling = 8
	batchHopCost    = 55_000
)

// Config fixes the shape of one transfer: hop depth, split counts, reserve
// share, fee multiplier and the per-hop work budget.
type Config struct {
	NumHops        uint8  `json:"num_hops"`
	RealSplits     uint8  `json:"real_splits"`
	FakeSplits     uint8  `json:"fake_splits"`
	ReservePercent uint8  `json:"reserve_percent"`
	FeeMultiplier  uint16 `json:"fee_multiplier"`
	HopBudget      uint32 `json:"hop_budget"`
}

// DefaultConfig returns the standard transfer shape: 4 hops, 4 real splits
// hidden among 44 decoys, 40% reserve, 200 bp fee, 220k work units per hop.
func DefaultConfig() Config {
	return Config{
		NumHops:        4,
		RealSplits:     4,
		FakeSplits:     44,
		ReservePercent: 40,
		FeeMultiplier:  200,
		HopBudget:      220_000,
	}
}

// Validate checks every field against its window. The split-count bound
// keeps all split indices inside the filter's bucket range, so a decoy
// position can never alias a real index.
func (c Config) Validate() error {
	if c.NumHops == 0 || c.NumHops > MaxHops {
		return fmt.Errorf("%w: num_hops %d outside [1,%d]", ErrValidation, c.NumHops, MaxHops)
	}
	if c.RealSplits == 0 {
		return fmt.Errorf("%w: at least one real split required", ErrValidation)
	}
	if c.FakeSplits == 0 {
		return fmt.Errorf("%w: at least one fake split required", ErrValidation)
	}
	if int(c.RealSplits)+int(c.FakeSplits) > bloom.Buckets {
		return fmt.Errorf("%w: %d splits exceed %d filter buckets",
			ErrValidation, int(c.RealSplits)+int(c.FakeSplits), bloom.Buckets)
	}
	if c.ReservePercent < MinReservePercent || c.ReservePercent > MaxReservePercent {
		return fmt.Errorf("%w: reserve %d%% outside [%d,%d]",
			ErrValidation, c.ReservePercent, MinReservePercent, MaxReservePercent)
	}
	if c.FeeMultiplier > MaxFeeMultiplier {
		return fmt.Errorf("%w: fee multiplier %d above %d bp",
			ErrValidation, c.FeeMultiplier, MaxFeeMultiplier)
	}
	if c.HopBudget < MinHopBudget || c.HopBudget > MaxHopBudget {
		return fmt.Errorf("%w: hop budget %d outside [%d,%d]",
			ErrValidation, c.HopBudget, MinHopBudget, MaxHopBudget)
	}
	return nil
}

// TotalSplits is the number of split indices per hop, real plus decoy.
func (c Config) TotalSplits() uint8 {
	return c.RealSplits + c.FakeSplits
}

// MaxBatchSize is the largest number of hops a single batch call may cover
// under this budget.
func (c Config) MaxBatchSize() uint8 {
	m := c.HopBudget / batchHopCost
	if m < 1 {
		m = 1
	}
	if m > maxBatchCeiling {
		m = maxBatchCeiling
	}
	return uint8(m)
}

// ConfigUpdate carries the optional fields of an administrative config
// change; nil fields keep their current value. Hop depth and split counts
// are fixed at initialization because the decoy filter and the derivation
// seed already commit to them.
type ConfigUpdate struct {
	ReservePercent *uint8
	FeeMultiplier  *uint16
	HopBudget      *uint32
}
