// extract.go - Deterministic per-split amount extraction from a proof.
package proof

import (
	"encoding/binary"

	"blackout/internal/zkhash"
)

// ExtractSplits derives the split amounts for a hop from the proof's
// commitments section. base = total/realSplits; each split but the last
// deviates from base by a bounded, proof-determined variance, and the last
// split absorbs the remainder so the amounts always sum to total exactly.
func (Verifier) ExtractSplits(proof []byte, total uint64, realSplits uint8) []uint64 {
	n := int(realSplits)
	if n == 0 {
		return nil
	}
	splits := make([]uint64, 0, n)
	if len(proof) != ProofSize || total == 0 {
		return make([]uint64, n)
	}

	base := total / uint64(n)
	maxVariance := base / 8
	if maxVariance == 0 {
		maxVariance = 1
	}
	commitments := proof[commitmentsStart:commitmentsEnd]

	remaining := total
	for i := 0; i < n-1; i++ {
		h := zkhash.Sum(commitments, []byte{uint8(i)})
		variance := binary.LittleEndian.Uint64(h[:8]) % maxVariance

		split := base
		if h[8]&1 == 0 {
			split += variance
		} else if split >= variance {
			split -= variance
		}

		// Leave at least one unit of headroom per remaining split.
		tail := uint64(n - 1 - i)
		headroom := uint64(0)
		if remaining > tail {
			headroom = remaining - tail
		}
		if split > headroom {
			split = headroom
		}
		splits = append(splits, split)
		remaining -= split
	}
	return append(splits, remaining)
}
