// store_test.go - Persistence tests: round-trip, event log, restore.
package transfer

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "transfers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreStateRoundTrip(t *testing.T) {
	s := openTestStore(t)

	st := &State{
		Handle:     uuid.New(),
		Owner:      addr(0x01),
		Seed:       addr(0x02),
		Amount:     testAmount,
		TotalFees:  123,
		Config:     DefaultConfig(),
		Proof:      []byte{1, 2, 3},
		RangeProof: []byte{4, 5, 6},
		Recipients: [][32]byte{addr(0xA1)},
		CurrentHop: 2,
		BatchCount: 1,
		CreatedAt:  1_700_000_000,
		UpdatedAt:  1_700_000_100,
	}
	require.NoError(t, s.SaveState(st))

	got, err := s.LoadState(st.Handle)
	require.NoError(t, err)
	require.Equal(t, st, got)
}

func TestStoreLoadMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.LoadState(uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreEventsOrdered(t *testing.T) {
	s := openTestStore(t)
	handle := uuid.New()
	other := uuid.New()

	require.NoError(t, s.AppendEvent(handle, TransferInitialized{Handle: handle, Amount: 1}))
	require.NoError(t, s.AppendEvent(other, HopExecuted{Handle: other, Hop: 9}))
	require.NoError(t, s.AppendEvent(handle, HopExecuted{Handle: handle, Hop: 0}))
	require.NoError(t, s.AppendEvent(handle, TransferFinalized{Handle: handle}))

	events, err := s.Events(handle)
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, "transfer_initialized", events[0].Name)
	require.Equal(t, "hop_executed", events[1].Name)
	require.Equal(t, "transfer_finalized", events[2].Name)
}

func TestEngineRestoresFromStore(t *testing.T) {
	store := openTestStore(t)

	f := newFixture(t, WithStore(store))
	handle := f.initialize(t, testAmount, DefaultConfig())
	pb, rb := f.hopProofs(t, handle, 0)
	require.NoError(t, f.engine.ExecuteHop(handle, 0, pb, rb))

	// A fresh engine over the same store resumes mid-transfer.
	restored, err := NewEngine(f.engine.gate, f.ledger, WithStore(store), WithClock(f.clock.Now))
	require.NoError(t, err)

	st, err := restored.StateOf(handle)
	require.NoError(t, err)
	require.Equal(t, uint8(1), st.CurrentHop)

	pb, rb = f.hopProofs(t, handle, 1)
	require.NoError(t, restored.ExecuteHop(handle, 1, pb, rb))

	events, err := store.Events(handle)
	require.NoError(t, err)
	require.Len(t, events, 3) // initialized + two hops
}

func TestPersistFailureRollsBackState(t *testing.T) {
	store := openTestStore(t)
	f := newFixture(t, WithStore(store))
	handle := f.initialize(t, testAmount, DefaultConfig())

	before, err := f.engine.StateOf(handle)
	require.NoError(t, err)
	poolBefore := f.ledger.Balance(PoolAddress(handle))
	ownerBefore := f.ledger.Balance(f.owner)

	// Closing the store makes every persist fail. Each failing operation
	// must leave the state, including its timestamp, and the ledger exactly
	// as they were.
	require.NoError(t, store.Close())
	f.clock.Advance(30 * time.Second)

	pb, rb := f.hopProofs(t, handle, 0)
	require.Error(t, f.engine.ExecuteHop(handle, 0, pb, rb))
	require.Error(t, f.engine.ExecuteBatchHop(handle, 0))
	require.Error(t, f.engine.UpdateConfig(handle, f.owner, ConfigUpdate{ReservePercent: uint8p(50)}))
	require.Error(t, f.engine.TriggerRefund(handle))

	after, err := f.engine.StateOf(handle)
	require.NoError(t, err)
	require.Equal(t, before, after)
	require.Equal(t, poolBefore, f.ledger.Balance(PoolAddress(handle)))
	require.Equal(t, ownerBefore, f.ledger.Balance(f.owner))
}
