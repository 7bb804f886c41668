package polar

import (
	"fmt"
	"math/bits"
)

const (
	// BlockCount is the number of blocks in a section.
	BlockCount = 16 * 16 * 16
	// BiomeCount is the number of 4x4x4 biome cells in a section.
	BiomeCount = 4 * 4 * 4
)

// BitsPerEntry returns the number of bits needed to store indices into a palette of n entries. It
// is at least 1.
func BitsPerEntry(n int) int {
	if n <= 1 {
		return 1
	}
	return bits.Len(uint(n - 1))
}

// Pack packs values into longs with bitsPerEntry bits each. Entries never span two longs, the high
// bits of a long that cannot hold another entry are left zero.
func Pack(values []int32, bitsPerEntry int) []int64 {
	perLong := 64 / bitsPerEntry
	out := make([]int64, (len(values)+perLong-1)/perLong)
	mask := uint64(1)<<bitsPerEntry - 1
	for i, v := range values {
		out[i/perLong] |= int64((uint64(v) & mask) << ((i % perLong) * bitsPerEntry))
	}
	return out
}

// Unpack reverses Pack, returning count values.
func Unpack(longs []int64, bitsPerEntry, count int) ([]int32, error) {
	if bitsPerEntry < 1 || bitsPerEntry > 32 {
		return nil, fmt.Errorf("invalid bits per entry %d", bitsPerEntry)
	}
	perLong := 64 / bitsPerEntry
	if need := (count + perLong - 1) / perLong; len(longs) < need {
		return nil, fmt.Errorf("%d longs hold fewer than %d entries of %d bits", len(longs), count, bitsPerEntry)
	}
	mask := uint64(1)<<bitsPerEntry - 1
	out := make([]int32, count)
	for i := range out {
		out[i] = int32((uint64(longs[i/perLong]) >> ((i % perLong) * bitsPerEntry)) & mask)
	}
	return out, nil
}

// checkIndices returns an error if any value in data is not an index into a palette of n entries.
func checkIndices(data []int32, n int) error {
	for _, v := range data {
		if v < 0 || int(v) >= n {
			return fmt.Errorf("index %d outside palette of %d entries", v, n)
		}
	}
	return nil
}
