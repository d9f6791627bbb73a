// hop_test.go - Single-hop execution tests.
package transfer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"blackout/internal/proof"
	"blackout/internal/stealth"
)

func TestExecuteHopAdvances(t *testing.T) {
	f := newFixture(t)
	handle := f.initialize(t, testAmount, DefaultConfig())

	pb, rb := f.hopProofs(t, handle, 0)
	require.NoError(t, f.engine.ExecuteHop(handle, 0, pb, rb))

	st, err := f.engine.StateOf(handle)
	require.NoError(t, err)
	require.Equal(t, uint8(1), st.CurrentHop)
	require.Equal(t, uint8(25), st.Progress())

	ev := f.sink.events[len(f.sink.events)-1]
	hop, ok := ev.(HopExecuted)
	require.True(t, ok)
	require.Equal(t, uint8(0), hop.Hop)
	require.Equal(t, st.HopAmount(), hop.AmountMoved)
}

func TestExecuteHopFundsSubAccounts(t *testing.T) {
	f := newFixture(t)
	handle := f.initialize(t, testAmount, DefaultConfig())
	st, err := f.engine.StateOf(handle)
	require.NoError(t, err)

	pb, rb := f.hopProofs(t, handle, 0)
	require.NoError(t, f.engine.ExecuteHop(handle, 0, pb, rb))

	// Every real sub-account keeps the fixed residue; decoys get nothing.
	for split := uint8(0); split < st.Config.RealSplits; split++ {
		a, _, err := stealth.Derive(st.Seed, 0, split, false)
		require.NoError(t, err)
		require.Equal(t, uint64(splitResidue), f.ledger.Balance([32]byte(a)))
	}
	for split := st.Config.RealSplits; split < st.Config.TotalSplits(); split++ {
		a, _, err := stealth.Derive(st.Seed, 0, split, true)
		require.NoError(t, err)
		require.Zero(t, f.ledger.Balance([32]byte(a)))
	}
}

func TestExecuteHopOrdering(t *testing.T) {
	f := newFixture(t)
	handle := f.initialize(t, testAmount, DefaultConfig())

	// Skipping ahead is an ordering violation.
	pb, rb := f.hopProofs(t, handle, 1)
	require.ErrorIs(t, f.engine.ExecuteHop(handle, 1, pb, rb), ErrReplayOrOrdering)

	pb, rb = f.hopProofs(t, handle, 0)
	require.NoError(t, f.engine.ExecuteHop(handle, 0, pb, rb))

	// Replaying the executed hop is rejected.
	require.ErrorIs(t, f.engine.ExecuteHop(handle, 0, pb, rb), ErrReplayOrOrdering)

	// An index past the configured depth is a validation failure.
	pb, rb = f.hopProofs(t, handle, 0)
	require.ErrorIs(t, f.engine.ExecuteHop(handle, DefaultConfig().NumHops, pb, rb), ErrValidation)
}

func TestExecuteHopStaleProof(t *testing.T) {
	f := newFixture(t)
	handle := f.initialize(t, testAmount, DefaultConfig())

	pb, rb := f.hopProofs(t, handle, 0)
	f.clock.Advance(time.Second) // challenge moves with the clock
	require.ErrorIs(t, f.engine.ExecuteHop(handle, 0, pb, rb), ErrProofRejected)

	// State must be untouched after the rejection.
	st, err := f.engine.StateOf(handle)
	require.NoError(t, err)
	require.Equal(t, uint8(0), st.CurrentHop)
}

func TestExecuteHopBudgetExhausted(t *testing.T) {
	f := newFixture(t)
	cfg := DefaultConfig()
	cfg.RealSplits = 100
	cfg.FakeSplits = 28
	cfg.HopBudget = MinHopBudget
	handle := f.initialize(t, testAmount, cfg)

	pb, rb := f.hopProofs(t, handle, 0)
	require.ErrorIs(t, f.engine.ExecuteHop(handle, 0, pb, rb), ErrResourceExhausted)
}

func TestExecuteHopRollsBackOnTransferFailure(t *testing.T) {
	f := newFixture(t)
	handle := f.initialize(t, testAmount, DefaultConfig())

	// Drain the pool behind the engine's back so the hop cannot be funded.
	pool := PoolAddress(handle)
	drain := addr(0xDD)
	require.NoError(t, f.ledger.Transfer(pool, drain, f.ledger.Balance(pool)))

	pb, rb := f.hopProofs(t, handle, 0)
	require.ErrorIs(t, f.engine.ExecuteHop(handle, 0, pb, rb), ErrTransferFailure)

	st, err := f.engine.StateOf(handle)
	require.NoError(t, err)
	require.Equal(t, uint8(0), st.CurrentHop)
	require.Zero(t, f.ledger.Balance(pool))
}

func TestHopAmountsComeFromStoredProof(t *testing.T) {
	f := newFixture(t)
	handle := f.initialize(t, testAmount, DefaultConfig())
	st, err := f.engine.StateOf(handle)
	require.NoError(t, err)

	want := proof.Verifier{}.ExtractSplits(st.Proof, st.HopAmount(), st.Config.RealSplits)
	var wantTotal uint64
	for _, s := range want {
		wantTotal += s
	}

	pb, rb := f.hopProofs(t, handle, 0)
	require.NoError(t, f.engine.ExecuteHop(handle, 0, pb, rb))

	ev := f.sink.events[len(f.sink.events)-1].(HopExecuted)
	require.Equal(t, wantTotal, ev.AmountMoved)
	require.Equal(t, st.HopAmount(), wantTotal)
}
