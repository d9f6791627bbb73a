// errors.go - Error taxonomy for transfer operations.
package transfer

import "errors"

// Every operation failure wraps exactly one of these sentinels, so callers
// can map outcomes with errors.Is without parsing messages.
var (
	// ErrValidation covers malformed or out-of-range inputs: zero amounts,
	// bad recipient counts, config values outside their windows, unknown
	// handles, hop indices past the configured depth.
	ErrValidation = errors.New("transfer: validation failed")

	// ErrProofRejected covers proofs that parse but do not verify against
	// the expected challenge or commitments.
	ErrProofRejected = errors.New("transfer: proof rejected")

	// ErrReplayOrOrdering covers out-of-order hop indices, stale batch
	// counters and operations against finalized or refunded transfers.
	ErrReplayOrOrdering = errors.New("transfer: replay or ordering violation")

	// ErrResourceExhausted is returned when a hop or batch cannot fit its
	// configured work budget.
	ErrResourceExhausted = errors.New("transfer: hop budget exhausted")

	// ErrTransferFailure covers failed fund movements; the operation that
	// observed it has rolled back any partial movement.
	ErrTransferFailure = errors.New("transfer: fund movement failed")

	// ErrFilterMismatch is returned when the decoy filter and the derivation
	// outcome disagree about a split index.
	ErrFilterMismatch = errors.New("transfer: decoy filter mismatch")

	// ErrUnauthorized is returned when a caller other than the transfer
	// owner or the operator attempts an administrative operation.
	ErrUnauthorized = errors.New("transfer: unauthorized caller")
)
