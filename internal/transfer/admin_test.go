// admin_test.go - Config update and decoy reveal tests.
package transfer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func uint8p(v uint8) *uint8    { return &v }
func uint16p(v uint16) *uint16 { return &v }
func uint32p(v uint32) *uint32 { return &v }

func TestUpdateConfigByOwner(t *testing.T) {
	f := newFixture(t)
	handle := f.initialize(t, testAmount, DefaultConfig())

	err := f.engine.UpdateConfig(handle, f.owner, ConfigUpdate{
		ReservePercent: uint8p(50),
		FeeMultiplier:  uint16p(300),
		HopBudget:      uint32p(300_000),
	})
	require.NoError(t, err)

	st, err := f.engine.StateOf(handle)
	require.NoError(t, err)
	require.Equal(t, uint8(50), st.Config.ReservePercent)
	require.Equal(t, uint16(300), st.Config.FeeMultiplier)
	require.Equal(t, uint32(300_000), st.Config.HopBudget)
	// Transfer shape is not updatable.
	require.Equal(t, DefaultConfig().NumHops, st.Config.NumHops)
	require.Equal(t, DefaultConfig().RealSplits, st.Config.RealSplits)

	ev := f.sink.events[len(f.sink.events)-1].(ConfigUpdated)
	require.Equal(t, uint8(50), ev.Config.ReservePercent)
}

func TestUpdateConfigByOperator(t *testing.T) {
	f := newFixture(t)
	handle := f.initialize(t, testAmount, DefaultConfig())

	err := f.engine.UpdateConfig(handle, f.engine.Operator(), ConfigUpdate{
		FeeMultiplier: uint16p(150),
	})
	require.NoError(t, err)
}

func TestUpdateConfigUnauthorized(t *testing.T) {
	f := newFixture(t)
	handle := f.initialize(t, testAmount, DefaultConfig())

	err := f.engine.UpdateConfig(handle, addr(0xEE), ConfigUpdate{ReservePercent: uint8p(20)})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateConfigAfterStart(t *testing.T) {
	f := newFixture(t)
	handle := f.initialize(t, testAmount, DefaultConfig())

	pb, rb := f.hopProofs(t, handle, 0)
	require.NoError(t, f.engine.ExecuteHop(handle, 0, pb, rb))

	err := f.engine.UpdateConfig(handle, f.owner, ConfigUpdate{ReservePercent: uint8p(20)})
	require.ErrorIs(t, err, ErrReplayOrOrdering)
}

func TestUpdateConfigValidation(t *testing.T) {
	f := newFixture(t)
	handle := f.initialize(t, testAmount, DefaultConfig())

	err := f.engine.UpdateConfig(handle, f.owner, ConfigUpdate{ReservePercent: uint8p(5)})
	require.ErrorIs(t, err, ErrValidation)

	err = f.engine.UpdateConfig(handle, f.owner, ConfigUpdate{HopBudget: uint32p(1)})
	require.ErrorIs(t, err, ErrValidation)

	// Failed updates leave the config untouched.
	st, err := f.engine.StateOf(handle)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), st.Config)
}

func TestRevealFakeSplit(t *testing.T) {
	f := newFixture(t)
	cfg := DefaultConfig()
	handle := f.initialize(t, testAmount, cfg)

	require.NoError(t, f.engine.RevealFakeSplit(handle, 0, cfg.RealSplits))

	ev := f.sink.events[len(f.sink.events)-1].(FakeRevealed)
	require.Equal(t, uint8(0), ev.Hop)
	require.Equal(t, cfg.RealSplits, ev.Split)
	require.NotZero(t, ev.Address[0])

	// Read-only: the state is unchanged.
	st, err := f.engine.StateOf(handle)
	require.NoError(t, err)
	require.Equal(t, uint8(0), st.CurrentHop)
}

func TestRevealFakeSplitValidation(t *testing.T) {
	f := newFixture(t)
	cfg := DefaultConfig()
	handle := f.initialize(t, testAmount, cfg)

	// Hop out of range.
	require.ErrorIs(t, f.engine.RevealFakeSplit(handle, cfg.NumHops, cfg.RealSplits), ErrValidation)
	// Real index is not revealable.
	require.ErrorIs(t, f.engine.RevealFakeSplit(handle, 0, 0), ErrValidation)
	// Index past the decoy range.
	require.ErrorIs(t, f.engine.RevealFakeSplit(handle, 0, cfg.TotalSplits()), ErrValidation)
}
