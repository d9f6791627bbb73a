// stealth.go - Deterministic one-time sub-account derivation for hop splits.
package stealth

import (
	"encoding/hex"
	"errors"

	"blackout/internal/zkhash"
)

// Address identifies a derived one-time sub-account.
type Address [32]byte

// String returns the hex form of the address.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Domain separation labels for real and decoy derivations. A real and a fake
// derivation can never collide because the label is part of the hash input.
const (
	labelReal = "split"
	labelFake = "fake"
)

// maxBumpAttempts bounds the disambiguation search per tuple.
const maxBumpAttempts = 256

// ErrDerivationExhausted is returned when no bump in [0,255] yields a usable
// address for a tuple. With a sound hash this is not reachable in practice.
var ErrDerivationExhausted = errors.New("stealth: bump search exhausted")

// Derive maps (seed, hop, split, isFake) to a sub-account address and the
// bump that disambiguated it. Bumps are searched from 255 downward; a
// candidate whose first byte is zero is rejected and the search continues.
// The same inputs always yield the same (address, bump) pair.
func Derive(seed [32]byte, hop, split uint8, isFake bool) (Address, uint8, error) {
	label := labelReal
	if isFake {
		label = labelFake
	}
	for i := 0; i < maxBumpAttempts; i++ {
		bump := uint8(255 - i)
		sum := zkhash.Sum([]byte(label), []byte{hop}, []byte{split}, seed[:], []byte{bump})
		if sum[0] == 0 {
			continue
		}
		return Address(sum), bump, nil
	}
	return Address{}, 0, ErrDerivationExhausted
}
