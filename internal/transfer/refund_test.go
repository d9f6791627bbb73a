// refund_test.go - Refund path tests.
package transfer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRefundReturnsPool(t *testing.T) {
	f := newFixture(t)
	handle := f.initialize(t, testAmount, DefaultConfig())
	pool := PoolAddress(handle)
	pooled := f.ledger.Balance(pool)
	ownerBefore := f.ledger.Balance(f.owner)

	require.NoError(t, f.engine.TriggerRefund(handle))

	refund := pooled * refundPercent / 100
	fee := pooled - refund
	require.Equal(t, ownerBefore+refund, f.ledger.Balance(f.owner))
	require.Equal(t, fee, f.ledger.Balance(f.engine.Operator()))
	require.Zero(t, f.ledger.Balance(pool))

	st, err := f.engine.StateOf(handle)
	require.NoError(t, err)
	require.True(t, st.Refunded)

	ev := f.sink.events[len(f.sink.events)-1].(RefundExecuted)
	require.Equal(t, refund, ev.Refunded)
	require.Equal(t, fee, ev.Fee)
}

func TestRefundImmediatelyAfterInitialize(t *testing.T) {
	f := newFixture(t)
	handle := f.initialize(t, testAmount, DefaultConfig())
	pooled := f.ledger.Balance(PoolAddress(handle))
	ownerBefore := f.ledger.Balance(f.owner)

	// No waiting period: the owner may reclaim the pool at any time before
	// the transfer completes.
	require.NoError(t, f.engine.TriggerRefund(handle))

	require.Equal(t, ownerBefore+pooled*refundPercent/100, f.ledger.Balance(f.owner))
	st, err := f.engine.StateOf(handle)
	require.NoError(t, err)
	require.True(t, st.Refunded)
}

func TestRefundMidTransfer(t *testing.T) {
	f := newFixture(t)
	handle := f.initialize(t, testAmount, DefaultConfig())

	pb, rb := f.hopProofs(t, handle, 0)
	require.NoError(t, f.engine.ExecuteHop(handle, 0, pb, rb))

	require.NoError(t, f.engine.TriggerRefund(handle))

	st, err := f.engine.StateOf(handle)
	require.NoError(t, err)
	require.True(t, st.Refunded)
}

func TestRefundIsTerminal(t *testing.T) {
	f := newFixture(t)
	handle := f.initialize(t, testAmount, DefaultConfig())
	require.NoError(t, f.engine.TriggerRefund(handle))

	require.ErrorIs(t, f.engine.TriggerRefund(handle), ErrReplayOrOrdering)
	pb, rb := f.hopProofs(t, handle, 0)
	require.ErrorIs(t, f.engine.ExecuteHop(handle, 0, pb, rb), ErrReplayOrOrdering)
	require.ErrorIs(t, f.engine.Finalize(handle, f.finalizeProof(t, handle)), ErrReplayOrOrdering)
}

func TestRefundDustFeeStaysWithOwner(t *testing.T) {
	f := newFixture(t)
	// Tiny transfer: the 5% fee lands under the dust floor.
	cfg := DefaultConfig()
	handle := f.initialize(t, 1_000, cfg)
	pool := PoolAddress(handle)
	pooled := f.ledger.Balance(pool)
	ownerBefore := f.ledger.Balance(f.owner)

	require.NoError(t, f.engine.TriggerRefund(handle))

	// Fee below the dust floor is swept back to the owner.
	require.Equal(t, ownerBefore+pooled, f.ledger.Balance(f.owner))
	require.Zero(t, f.ledger.Balance(f.engine.Operator()))
}
