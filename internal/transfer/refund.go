// refund.go - Returning pooled funds to the owner.
package transfer

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	refundPercent = 95
	operatorDust  = 1_000
)

// TriggerRefund returns the pool to the owner: 95% refund, 5% operator fee.
// It is available whenever the transfer is not in a terminal state; repeated
// calls fail closed and never double-pay. Fees below the dust floor stay
// with the refund, and a failed operator transfer downgrades to a warning
// with the stranded balance swept back to the owner.
func (e *Engine) TriggerRefund(handle uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.lookup(handle)
	if err != nil {
		return err
	}
	if err := checkActive(st); err != nil {
		return err
	}

	pool := PoolAddress(handle)
	balance := e.ledger.Balance(pool)
	if balance == 0 {
		return fmt.Errorf("%w: pool is empty", ErrTransferFailure)
	}
	refund := balance * refundPercent / 100
	fee := balance - refund

	var journal []ledgerOp
	if err := e.transferOp(pool, st.Owner, refund, &journal); err != nil {
		e.rollback(journal)
		return fmt.Errorf("%w: refund: %v", ErrTransferFailure, err)
	}
	if fee >= operatorDust {
		if err := e.transferOp(pool, e.operator, fee, &journal); err != nil {
			e.log.Warn().Err(err).Str("handle", handle.String()).Msg("operator fee transfer failed")
		}
	}
	if residual := e.ledger.Balance(pool); residual > 0 {
		if err := e.transferOp(pool, st.Owner, residual, &journal); err != nil {
			e.log.Warn().Err(err).Str("handle", handle.String()).Msg("residual sweep failed")
		}
	}

	now := e.now()
	prevUpdated := st.UpdatedAt
	st.Refunded = true
	st.UpdatedAt = now.Unix()
	if err := e.persist(st); err != nil {
		st.Refunded = false
		st.UpdatedAt = prevUpdated
		e.rollback(journal)
		return err
	}

	e.emit(st, RefundExecuted{
		Handle:    handle,
		Refunded:  refund,
		Fee:       fee,
		Timestamp: now.Unix(),
	})
	e.log.Info().
		Str("handle", handle.String()).
		Uint64("refunded", refund).
		Uint64("fee", fee).
		Msg("refund executed")
	return nil
}
