// commitments.go - Amount commitments carried by a proof.
package proof

import (
	"fmt"

	"blackout/internal/zkhash"
)

// NumAmountCommitments is the number of amount commitments a proof carries.
const NumAmountCommitments = 8

// AmountCommitments expands the proof's commitments section into the
// per-transfer amount commitments. Range proofs are checked against these.
func AmountCommitments(proof []byte) ([][32]byte, error) {
	if len(proof) != ProofSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidSize, len(proof), ProofSize)
	}
	section := proof[commitmentsStart:commitmentsEnd]
	out := make([][32]byte, NumAmountCommitments)
	for i := range out {
		out[i] = zkhash.Sum([]byte("commitment"), section, []byte{uint8(i)})
	}
	return out, nil
}
