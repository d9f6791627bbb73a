// challenge.go - Challenge and account derivation for the proof boundary.
package transfer

import (
	"encoding/binary"

	"github.com/google/uuid"

	"blackout/internal/zkhash"
)

// DeriveSeed fixes the transfer's derivation seed from the handle, the
// initialization challenge and the owner. All sub-account addresses descend
// from it, so two transfers never share a sub-account.
func DeriveSeed(handle uuid.UUID, challenge, owner [32]byte) [32]byte {
	return zkhash.Sum([]byte("blackout-seed"), handle[:], challenge[:], owner[:])
}

// PoolAddress is the account holding a transfer's funds between hops.
func PoolAddress(handle uuid.UUID) [32]byte {
	return zkhash.Sum([]byte("pool"), handle[:])
}

// HopChallenge builds the 32-byte challenge a hop proof must bind to:
// timestamp, hop index, a slice of the owner and a slice of the seed.
func HopChallenge(timestamp int64, hop uint8, owner, seed [32]byte) [32]byte {
	var ch [32]byte
	binary.LittleEndian.PutUint64(ch[0:8], uint64(timestamp))
	binary.LittleEndian.PutUint64(ch[8:16], uint64(hop))
	copy(ch[16:24], owner[0:8])
	copy(ch[24:32], seed[24:32])
	return ch
}

// FinalizeChallenge builds the challenge for the final proof; the hop field
// is replaced by the primary recipient's leading bytes.
func FinalizeChallenge(timestamp int64, owner, primary, seed [32]byte) [32]byte {
	var ch [32]byte
	binary.LittleEndian.PutUint64(ch[0:8], uint64(timestamp))
	copy(ch[8:16], owner[0:8])
	copy(ch[16:24], primary[0:8])
	copy(ch[24:32], seed[24:32])
	return ch
}
