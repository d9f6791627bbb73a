// gate.go - Boundary between the transfer engine and the proof system.
package proof

import "errors"

// Errors reported by the gate. Callers discriminate with errors.Is: a size or
// framing defect is a malformed input, a failed check is a rejected proof.
var (
	ErrInvalidSize = errors.New("proof: malformed blob")
	ErrRejected    = errors.New("proof: verification failed")
)

// Gate is the verification capability the transfer engine depends on. The
// engine never inspects proof bytes itself; everything it learns about a
// proof comes through this interface.
type Gate interface {
	// VerifyProof checks a 128-byte execution proof against the challenge it
	// must be bound to.
	VerifyProof(proof []byte, challenge [32]byte) error

	// VerifyRangeProof checks a 128-byte range proof against the transfer's
	// amount commitments and the same challenge.
	VerifyRangeProof(rangeProof []byte, commitments [][32]byte, challenge [32]byte) error

	// ExtractSplits derives the per-split amounts for one hop from a verified
	// proof. The returned slice has one entry per real split and sums exactly
	// to total.
	ExtractSplits(proof []byte, total uint64, realSplits uint8) []uint64
}
