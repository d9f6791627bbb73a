// batch.go - Multi-hop execution in one call.
package transfer

import (
	"fmt"

	"github.com/google/uuid"
)

// batchSetupCost is the fixed overhead of one batch call, budgeted on top of
// the per-hop cost.
const batchSetupCost = 50_000

// ExecuteBatchHop advances the transfer by up to MaxBatchSize hops in one
// call. The batch index must equal the transfer's batch counter. Hops are
// gated by the stored initialization proof, so the split amounts are
// identical to sequential single-hop execution. Any failure rolls back the
// whole batch; there is no partial commit.
func (e *Engine) ExecuteBatchHop(handle uuid.UUID, batchIndex uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.lookup(handle)
	if err != nil {
		return err
	}
	if err := checkActive(st); err != nil {
		return err
	}
	if batchIndex != st.BatchCount {
		return fmt.Errorf("%w: expected batch %d, got %d",
			ErrReplayOrOrdering, st.BatchCount, batchIndex)
	}
	remaining := st.Config.NumHops - st.CurrentHop
	if remaining == 0 {
		return fmt.Errorf("%w: all hops executed", ErrReplayOrOrdering)
	}
	size := st.Config.MaxBatchSize()
	if size > remaining {
		size = remaining
	}
	available := uint64(st.Config.HopBudget) * uint64(size)
	need := batchSetupCost + batchHopCost*uint64(size)
	if need > available {
		return fmt.Errorf("%w: batch needs %d work units, budget allows %d",
			ErrResourceExhausted, need, available)
	}
	if err := classifyProofErr(e.gate.VerifyProof(st.Proof, st.Challenge)); err != nil {
		return err
	}

	splits := e.gate.ExtractSplits(st.Proof, st.HopAmount(), st.Config.RealSplits)

	now := e.now()
	var journal []ledgerOp
	var movedTotal uint64
	splitCount := 0
	for h := uint8(0); h < size; h++ {
		moved, count, err := e.applySplits(st, st.CurrentHop+h, splits, &journal)
		if err != nil {
			e.rollback(journal)
			return err
		}
		movedTotal += moved
		splitCount += count
	}

	prevUpdated := st.UpdatedAt
	st.CurrentHop += size
	st.BatchCount++
	st.UpdatedAt = now.Unix()
	if err := e.persist(st); err != nil {
		st.CurrentHop -= size
		st.BatchCount--
		st.UpdatedAt = prevUpdated
		e.rollback(journal)
		return err
	}

	e.emit(st, BatchHopExecuted{
		Handle:      handle,
		BatchIndex:  batchIndex,
		Hops:        size,
		SplitsMoved: splitCount,
		AmountMoved: movedTotal,
		Progress:    st.Progress(),
		Timestamp:   now.Unix(),
	})
	e.log.Info().
		Str("handle", handle.String()).
		Uint32("batch", batchIndex).
		Uint8("hops", size).
		Uint64("moved", movedTotal).
		Uint8("progress", st.Progress()).
		Msg("batch executed")
	return nil
}
