// finalize.go - Payout distribution after the last hop.
package transfer

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"

	"blackout/internal/zkhash"
)

// recipientFloor is the minimum weighted payout per recipient; below
// n * floor the whole payout goes to the primary recipient.
const recipientFloor = 1_000_000

// Finalize closes a fully hopped transfer: verifies the final proof against
// the finalize challenge, pays the weighted distribution to the recipients,
// moves the reserve share to the operator and sweeps any residual pool
// balance to the primary recipient.
func (e *Engine) Finalize(handle uuid.UUID, proofBytes []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.lookup(handle)
	if err != nil {
		return err
	}
	if err := checkActive(st); err != nil {
		return err
	}
	if st.CurrentHop != st.Config.NumHops {
		return fmt.Errorf("%w: %d of %d hops executed",
			ErrReplayOrOrdering, st.CurrentHop, st.Config.NumHops)
	}

	now := e.now()
	ch := FinalizeChallenge(now.Unix(), st.Owner, st.Primary(), st.Seed)
	if err := classifyProofErr(e.gate.VerifyProof(proofBytes, ch)); err != nil {
		return err
	}

	pool := PoolAddress(handle)
	reserve := st.Amount * uint64(st.Config.ReservePercent) / 100
	payout := st.Amount - reserve
	amounts := distributePayout(payout, len(st.Recipients), proofBytes)

	var journal []ledgerOp
	for i, amount := range amounts {
		if amount == 0 {
			continue
		}
		if err := e.transferOp(pool, st.Recipients[i], amount, &journal); err != nil {
			e.rollback(journal)
			return fmt.Errorf("%w: recipient %d: %v", ErrTransferFailure, i, err)
		}
	}

	// The reserve tolerates a shortfall: hops leak a bounded residue, and a
	// short operator share must not strand the recipients' payout.
	if balance := e.ledger.Balance(pool); balance < reserve {
		e.log.Warn().
			Str("handle", handle.String()).
			Uint64("reserve", reserve).
			Uint64("balance", balance).
			Msg("reserve short, paying available balance")
		reserve = balance
	}
	if reserve > 0 {
		if err := e.transferOp(pool, e.operator, reserve, &journal); err != nil {
			e.log.Warn().Err(err).Str("handle", handle.String()).Msg("reserve transfer failed")
		}
	}
	if residual := e.ledger.Balance(pool); residual > 0 {
		if err := e.transferOp(pool, st.Primary(), residual, &journal); err != nil {
			e.log.Warn().Err(err).Str("handle", handle.String()).Msg("residual sweep failed")
		}
	}

	prevUpdated := st.UpdatedAt
	st.Completed = true
	st.UpdatedAt = now.Unix()
	if err := e.persist(st); err != nil {
		st.Completed = false
		st.UpdatedAt = prevUpdated
		e.rollback(journal)
		return err
	}

	e.emit(st, TransferFinalized{
		Handle:     handle,
		Recipients: len(st.Recipients),
		Payout:     payout,
		Reserve:    reserve,
		Timestamp:  now.Unix(),
	})
	e.log.Info().
		Str("handle", handle.String()).
		Uint64("payout", payout).
		Uint64("reserve", reserve).
		Int("recipients", len(st.Recipients)).
		Msg("transfer finalized")
	return nil
}

// distributePayout splits the payout across n recipients with weights drawn
// deterministically from the final proof bytes. Every recipient gets at
// least the floor plus a weighted share; the primary absorbs rounding. A
// payout below n * floor goes entirely to the primary.
func distributePayout(payout uint64, n int, proofBytes []byte) []uint64 {
	amounts := make([]uint64, n)
	if n == 0 || payout == 0 {
		return amounts
	}
	if payout < recipientFloor*uint64(n) {
		amounts[0] = payout
		return amounts
	}

	var seed [32]byte
	for i, b := range proofBytes {
		seed[i%32] ^= b
	}

	weights := make([]uint64, n)
	var totalWeight uint64
	for i := range weights {
		h := zkhash.Sum(seed[:], []byte{uint8(i)})
		weights[i] = binary.LittleEndian.Uint64(h[:8])%1000 + 1
		totalWeight += weights[i]
	}

	distributable := payout - recipientFloor*uint64(n)
	var assigned uint64
	for i := range amounts {
		share := distributable / totalWeight * weights[i]
		amounts[i] = recipientFloor + share
		assigned += share
	}
	amounts[0] += distributable - assigned
	return amounts
}
