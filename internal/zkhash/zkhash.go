// zkhash.go - MiMC helpers shared by derivation, commitments and challenges.
package zkhash

import (
	"encoding/binary"

	"github.com/consensys/gnark-crypto/ecc/bw6-761/fr/mimc"
)

// chunkSize is the number of payload bytes packed per MiMC block. Keeping it
// below the field size guarantees every block decodes as a canonical element.
const chunkSize = 31

// Sum hashes the concatenation of the given byte strings with MiMC over the
// bw6-761 scalar field and returns the low 32 bytes of the digest. Each input
// is split into 31-byte chunks, each chunk left-padded to a full MiMC block.
func Sum(data ...[]byte) [32]byte {
	h := mimc.NewMiMC()
	var block [mimc.BlockSize]byte
	for _, d := range data {
		for len(d) > 0 {
			n := len(d)
			if n > chunkSize {
				n = chunkSize
			}
			for i := range block {
				block[i] = 0
			}
			copy(block[mimc.BlockSize-n:], d[:n])
			h.Write(block[:])
			d = d[n:]
		}
	}
	digest := h.Sum(nil)
	var out [32]byte
	copy(out[:], digest[len(digest)-32:])
	return out
}

// Uint64 hashes the inputs like Sum and folds the digest into a uint64.
func Uint64(data ...[]byte) uint64 {
	sum := Sum(data...)
	return binary.LittleEndian.Uint64(sum[:8])
}
