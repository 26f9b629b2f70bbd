package board

import "math/bits"

// Software bit extract/deposit. With the bitextract build tag the attack
// tables are indexed by pext directly instead of magic multiplication;
// both builds produce identical query results.

// pext extracts the bits of x at positions where mask has 1s, packed into
// the low bits of the result.
func pext(x, mask uint64) uint64 {
	var res uint64
	var idx uint
	m := mask
	for m != 0 {
		lsb := m & -m
		bit := uint(bits.TrailingZeros64(lsb))
		if (x>>bit)&1 != 0 {
			res |= 1 << idx
		}
		idx++
		m &= m - 1
	}
	return res
}

// pdep deposits the low bits of x into the positions of mask.
func pdep(x, mask uint64) uint64 {
	var res uint64
	var idx uint
	m := mask
	for m != 0 {
		lsb := m & -m
		bit := uint(bits.TrailingZeros64(lsb))
		if (x>>idx)&1 != 0 {
			res |= 1 << bit
		}
		idx++
		m &= m - 1
	}
	return res
}
