// bloom.go - Compact decoy filter marking which split indices are fake.
package bloom

// Size is the filter width in bytes; Buckets the number of bit positions.
const (
	Size    = 16
	Buckets = Size * 8
)

// Filter is a 128-bit map of decoy positions. A set bit at
// ((hop<<16)|split) mod 128 marks that (hop, split) as a fake split. Real
// split indices are kept below the decoy index range by configuration, so a
// set bit is never consulted for a real index.
type Filter [Size]byte

// Generate builds the filter for a transfer shape: for every hop in
// [0,numHops) and every decoy index in [realSplits, realSplits+fakeSplits),
// the corresponding position bit is set.
func Generate(numHops, realSplits, fakeSplits uint8) Filter {
	var f Filter
	for hop := uint8(0); hop < numHops; hop++ {
		for i := uint8(0); i < fakeSplits; i++ {
			f.set(position(hop, realSplits+i))
		}
	}
	return f
}

// IsFake reports whether the bit for (hop, split) is set.
func (f Filter) IsFake(hop, split uint8) bool {
	pos := position(hop, split)
	return f[pos/8]&(1<<(pos%8)) != 0
}

// SetBits returns the number of set positions, for diagnostics.
func (f Filter) SetBits() int {
	n := 0
	for _, b := range f {
		for b != 0 {
			n += int(b & 1)
			b >>= 1
		}
	}
	return n
}

func (f *Filter) set(pos uint32) {
	f[pos/8] |= 1 << (pos % 8)
}

func position(hop, split uint8) uint32 {
	return ((uint32(hop) << 16) | uint32(split)) % Buckets
}
