// verifier.go - Structural verifier for the 128-byte proof blobs.
package proof

import (
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	"blackout/internal/zkhash"
)

// Proof blob layout.
const (
	ProofSize = 128

	sigOffset         = 0
	publicInputsStart = 2
	publicInputsEnd   = 34
	commitmentsStart  = 34
	commitmentsEnd    = 96
	bindingStart      = 96
)

// Range proof blob layout.
const (
	RangeProofSize = 128

	rangeHeaderEnd   = 4
	rangeFlagsOffset = 4
	rangeTagOffset   = 8
	rangeDigestStart = 12
	rangeDigestEnd   = 28
)

var (
	proofSignature = [2]byte{'P', 'S'}
	rangeHeader    = [4]byte{'P', '2', 'R', '1'}
)

// sumCheckTag marks a range proof whose commitments passed the sum check.
const sumCheckTag uint32 = 0x50534D43

// rangeFlagValid is the low nibble of the flags byte for a min/max-checked
// range proof.
const rangeFlagValid = 0x0A

// Verifier checks the structural integrity and challenge binding of proof
// blobs. The heavy cryptographic verification happens off-system; what
// arrives here is the succinct transcript, and the binding hash ties it to
// this transfer's challenge so a transcript can never be replayed across
// challenges.
type Verifier struct{}

var _ Gate = Verifier{}

// VerifyProof checks the blob's framing and recomputes the binding hash over
// challenge, public inputs and commitments. The comparison is constant time.
func (Verifier) VerifyProof(proof []byte, challenge [32]byte) error {
	if len(proof) != ProofSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidSize, len(proof), ProofSize)
	}
	if proof[sigOffset] != proofSignature[0] || proof[sigOffset+1] != proofSignature[1] {
		return fmt.Errorf("%w: bad signature", ErrInvalidSize)
	}
	binding := zkhash.Sum(
		challenge[:],
		proof[publicInputsStart:publicInputsEnd],
		proof[commitmentsStart:commitmentsEnd],
	)
	if subtle.ConstantTimeCompare(binding[:], proof[bindingStart:ProofSize]) != 1 {
		return fmt.Errorf("%w: binding hash mismatch", ErrRejected)
	}
	return nil
}

// VerifyRangeProof checks the framing, the sum-check tag, the min/max flag
// and the commitment digest of a range proof.
func (Verifier) VerifyRangeProof(rangeProof []byte, commitments [][32]byte, challenge [32]byte) error {
	if len(rangeProof) != RangeProofSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidSize, len(rangeProof), RangeProofSize)
	}
	for i := 0; i < rangeHeaderEnd; i++ {
		if rangeProof[i] != rangeHeader[i] {
			return fmt.Errorf("%w: bad range header", ErrInvalidSize)
		}
	}
	if rangeProof[rangeFlagsOffset]&0x0F != rangeFlagValid {
		return fmt.Errorf("%w: min/max check flag not set", ErrRejected)
	}
	if binary.LittleEndian.Uint32(rangeProof[rangeTagOffset:]) != sumCheckTag {
		return fmt.Errorf("%w: sum check tag missing", ErrRejected)
	}
	digest := commitmentDigest(challenge, commitments)
	if subtle.ConstantTimeCompare(digest[:], rangeProof[rangeDigestStart:rangeDigestEnd]) != 1 {
		return fmt.Errorf("%w: commitment digest mismatch", ErrRejected)
	}
	return nil
}

func commitmentDigest(challenge [32]byte, commitments [][32]byte) [16]byte {
	parts := make([][]byte, 0, len(commitments)+1)
	parts = append(parts, challenge[:])
	for i := range commitments {
		parts = append(parts, commitments[i][:])
	}
	sum := zkhash.Sum(parts...)
	var digest [16]byte
	copy(digest[:], sum[:16])
	return digest
}
