// hop.go - Single-hop execution and the shared split movement path.
package transfer

import (
	"fmt"

	"github.com/google/uuid"

	"blackout/internal/stealth"
)

// Hop work costs and the residue left at each funded sub-account; the rest
// of every split returns to the pool once the sub-account is recorded.
const (
	hopBaseCost  = 50_000
	hopSplitCost = 1_500
	splitResidue = 890
)

func hopCost(cfg Config) uint64 {
	return hopBaseCost + hopSplitCost*uint64(cfg.RealSplits)
}

// ledgerOp records one applied fund movement so a failed operation can be
// rolled back in reverse order.
type ledgerOp struct {
	from   [32]byte
	to     [32]byte
	amount uint64
}

// ExecuteHop advances the transfer by exactly one hop. The hop index must
// equal the current hop, the proof must bind to this call's challenge, and
// the range proof must cover the stored amount commitments. On any failure
// every fund movement of this call is rolled back.
func (e *Engine) ExecuteHop(handle uuid.UUID, hopIndex uint8, proofBytes, rangeProofBytes []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.lookup(handle)
	if err != nil {
		return err
	}
	if err := checkActive(st); err != nil {
		return err
	}
	if hopIndex >= st.Config.NumHops {
		return fmt.Errorf("%w: hop index %d out of range [0,%d)",
			ErrValidation, hopIndex, st.Config.NumHops)
	}
	if hopIndex != st.CurrentHop {
		return fmt.Errorf("%w: expected hop %d, got %d",
			ErrReplayOrOrdering, st.CurrentHop, hopIndex)
	}
	if cost := hopCost(st.Config); cost > uint64(st.Config.HopBudget) {
		return fmt.Errorf("%w: hop cost %d exceeds budget %d",
			ErrResourceExhausted, cost, st.Config.HopBudget)
	}

	now := e.now()
	ch := HopChallenge(now.Unix(), hopIndex, st.Owner, st.Seed)
	if err := classifyProofErr(e.gate.VerifyProof(proofBytes, ch)); err != nil {
		return err
	}
	if err := classifyProofErr(e.gate.VerifyRangeProof(rangeProofBytes, st.commitmentSlice(), ch)); err != nil {
		return err
	}

	// Split amounts come from the stored initialization proof, so a hop
	// moves the same amounts whether executed singly or inside a batch.
	splits := e.gate.ExtractSplits(st.Proof, st.HopAmount(), st.Config.RealSplits)

	var journal []ledgerOp
	moved, count, err := e.applySplits(st, hopIndex, splits, &journal)
	if err != nil {
		e.rollback(journal)
		return err
	}

	prevUpdated := st.UpdatedAt
	st.CurrentHop++
	st.UpdatedAt = now.Unix()
	if err := e.persist(st); err != nil {
		st.CurrentHop--
		st.UpdatedAt = prevUpdated
		e.rollback(journal)
		return err
	}

	e.emit(st, HopExecuted{
		Handle:      handle,
		Hop:         hopIndex,
		SplitsMoved: count,
		AmountMoved: moved,
		Progress:    st.Progress(),
		Timestamp:   now.Unix(),
	})
	e.log.Info().
		Str("handle", handle.String()).
		Uint8("hop", hopIndex).
		Int("splits", count).
		Uint64("moved", moved).
		Uint8("progress", st.Progress()).
		Msg("hop executed")
	return nil
}

// applySplits classifies every split index of one hop and moves the real
// amounts. Classification is dual-path: a real derivation is attempted
// first, and only if it fails is the decoy filter consulted; a flagged index
// is skipped, an unflagged failure is a filter mismatch. Decoy indices must
// be flagged in the filter. Funded sub-accounts keep a fixed residue and the
// remainder of each split returns to the pool.
func (e *Engine) applySplits(st *State, hop uint8, splits []uint64, journal *[]ledgerOp) (uint64, int, error) {
	pool := PoolAddress(st.Handle)
	var moved uint64
	count := 0
	for idx := uint8(0); idx < st.Config.TotalSplits(); idx++ {
		if idx >= st.Config.RealSplits {
			if !st.Filter.IsFake(hop, idx) {
				return 0, 0, fmt.Errorf("%w: decoy index %d not flagged at hop %d",
					ErrFilterMismatch, idx, hop)
			}
			continue
		}
		addr, _, err := stealth.Derive(st.Seed, hop, idx, false)
		if err != nil {
			if st.Filter.IsFake(hop, idx) {
				continue
			}
			return 0, 0, fmt.Errorf("%w: hop %d split %d underivable and not flagged",
				ErrFilterMismatch, hop, idx)
		}
		amount := splits[idx]
		if amount == 0 {
			continue
		}
		if err := e.transferOp(pool, [32]byte(addr), amount, journal); err != nil {
			return 0, 0, fmt.Errorf("%w: hop %d split %d: %v", ErrTransferFailure, hop, idx, err)
		}
		if amount > splitResidue {
			if err := e.transferOp([32]byte(addr), pool, amount-splitResidue, journal); err != nil {
				return 0, 0, fmt.Errorf("%w: hop %d split %d recovery: %v", ErrTransferFailure, hop, idx, err)
			}
		}
		moved += amount
		count++
	}
	return moved, count, nil
}

// transferOp applies one ledger transfer and journals it for rollback.
func (e *Engine) transferOp(from, to [32]byte, amount uint64, journal *[]ledgerOp) error {
	if err := e.ledger.Transfer(from, to, amount); err != nil {
		return err
	}
	*journal = append(*journal, ledgerOp{from: from, to: to, amount: amount})
	return nil
}

// rollback reverses journaled transfers latest-first. Reversals move funds
// that the forward ops just placed, so they cannot legitimately fail; a
// failure is logged and skipped.
func (e *Engine) rollback(journal []ledgerOp) {
	for i := len(journal) - 1; i >= 0; i-- {
		op := journal[i]
		if err := e.ledger.Transfer(op.to, op.from, op.amount); err != nil {
			e.log.Error().Err(err).Uint64("amount", op.amount).Msg("rollback transfer failed")
		}
	}
}
