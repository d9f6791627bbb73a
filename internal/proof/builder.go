// builder.go - Assembles proof blobs for the prover side of the boundary.
package proof

import (
	"encoding/binary"

	"blackout/internal/zkhash"
)

// CommitmentsLen is the width of the commitments section of a proof blob.
const CommitmentsLen = commitmentsEnd - commitmentsStart

// Build assembles an execution proof bound to the given challenge. The blob
// it returns passes Verifier.VerifyProof for the same challenge and no other.
func Build(challenge, publicInputs [32]byte, commitments [CommitmentsLen]byte) []byte {
	blob := make([]byte, ProofSize)
	blob[sigOffset] = proofSignature[0]
	blob[sigOffset+1] = proofSignature[1]
	copy(blob[publicInputsStart:publicInputsEnd], publicInputs[:])
	copy(blob[commitmentsStart:commitmentsEnd], commitments[:])
	binding := zkhash.Sum(
		challenge[:],
		blob[publicInputsStart:publicInputsEnd],
		blob[commitmentsStart:commitmentsEnd],
	)
	copy(blob[bindingStart:], binding[:])
	return blob
}

// BuildRange assembles a range proof over the given amount commitments,
// bound to the challenge.
func BuildRange(challenge [32]byte, commitments [][32]byte) []byte {
	blob := make([]byte, RangeProofSize)
	copy(blob[:rangeHeaderEnd], rangeHeader[:])
	blob[rangeFlagsOffset] = rangeFlagValid
	binary.LittleEndian.PutUint32(blob[rangeTagOffset:], sumCheckTag)
	digest := commitmentDigest(challenge, commitments)
	copy(blob[rangeDigestStart:rangeDigestEnd], digest[:])
	return blob
}
