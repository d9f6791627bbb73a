// admin.go - Administrative operations: config update and decoy reveal.
package transfer

import (
	"fmt"

	"github.com/google/uuid"

	"blackout/internal/stealth"
)

// UpdateConfig applies a partial config change. Only the owner or the
// operator may call it, and only before the first hop has executed. The
// merged config must pass full validation.
func (e *Engine) UpdateConfig(handle uuid.UUID, caller [32]byte, upd ConfigUpdate) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.lookup(handle)
	if err != nil {
		return err
	}
	if caller != st.Owner && caller != e.operator {
		return fmt.Errorf("%w: caller is neither owner nor operator", ErrUnauthorized)
	}
	if err := checkActive(st); err != nil {
		return err
	}
	if st.CurrentHop != 0 {
		return fmt.Errorf("%w: transfer already started", ErrReplayOrOrdering)
	}

	next := st.Config
	if upd.ReservePercent != nil {
		next.ReservePercent = *upd.ReservePercent
	}
	if upd.FeeMultiplier != nil {
		next.FeeMultiplier = *upd.FeeMultiplier
	}
	if upd.HopBudget != nil {
		next.HopBudget = *upd.HopBudget
	}
	if err := next.Validate(); err != nil {
		return err
	}

	prev := st.Config
	prevUpdated := st.UpdatedAt
	st.Config = next
	now := e.now().Unix()
	st.UpdatedAt = now
	if err := e.persist(st); err != nil {
		st.Config = prev
		st.UpdatedAt = prevUpdated
		return err
	}

	e.emit(st, ConfigUpdated{Handle: handle, Config: next, Timestamp: now})
	e.log.Info().
		Str("handle", handle.String()).
		Uint8("reserve", next.ReservePercent).
		Uint32("budget", next.HopBudget).
		Msg("config updated")
	return nil
}

// RevealFakeSplit proves that a split index is a decoy: the index must fall
// in the decoy range, the filter must flag it, and the fake derivation must
// produce an address. The transfer state is not modified.
func (e *Engine) RevealFakeSplit(handle uuid.UUID, hop, split uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.lookup(handle)
	if err != nil {
		return err
	}
	if hop >= st.Config.NumHops {
		return fmt.Errorf("%w: hop %d out of range [0,%d)", ErrValidation, hop, st.Config.NumHops)
	}
	if split < st.Config.RealSplits || split >= st.Config.TotalSplits() {
		return fmt.Errorf("%w: split %d is not a decoy index", ErrValidation, split)
	}
	if !st.Filter.IsFake(hop, split) {
		return fmt.Errorf("%w: filter does not flag (%d,%d)", ErrFilterMismatch, hop, split)
	}
	addr, _, err := stealth.Derive(st.Seed, hop, split, true)
	if err != nil {
		return fmt.Errorf("%w: fake derivation failed for (%d,%d)", ErrFilterMismatch, hop, split)
	}

	now := e.now().Unix()
	e.emit(st, FakeRevealed{
		Handle:    handle,
		Hop:       hop,
		Split:     split,
		Address:   addr,
		Timestamp: now,
	})
	e.log.Info().
		Str("handle", handle.String()).
		Uint8("hop", hop).
		Uint8("split", split).
		Str("address", addr.String()).
		Msg("fake split revealed")
	return nil
}
