package board

import "math/bits"

// Magic-number search. Runs once per process inside initMagics (unless the
// bitextract build tag is set) and is re-exposed through FindMagic and
// VerifyMagic for tooling.

// MagicSeeds holds the per-rank search seeds; with them the table build
// is reproducible. Exported so tooling can record which seeds found a set
// of multipliers.
var MagicSeeds = [8]uint64{728, 10316, 55013, 32803, 12281, 15100, 16645, 255}

// Candidates whose product with the mask leaves fewer than magicTopBits set
// bits in the top byte are redrawn. Tunable heuristic; correctness only
// requires that the search converges.
const magicTopBits = 6

// prng is a small xorshift64* generator with a fixed seed.
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

// sparse returns a draw with roughly one bit in eight set. Useful magic
// multipliers are sparse.
func (p *prng) sparse() uint64 {
	return p.next() & p.next() & p.next()
}

// magicBuilder holds the scratch arrays for one table build. The arrays are
// sized for the largest window (rook on a corner, 2^12 subsets) and reused
// across squares; the epoch tags make stale slots from a failed candidate
// writable without clearing the table between attempts.
type magicBuilder struct {
	occupancy [4096]Bitboard
	reference [4096]Bitboard
	epoch     [4096]int32
	attempt   int32
}

// enumerate fills the scratch arrays with every occupancy subset of mask and
// its ray-walked attack set, returning the subset count.
func (b *magicBuilder) enumerate(pt PieceType, sq Square, mask Bitboard) int {
	size := 0
	mask.ForEachSubset(func(occ Bitboard) {
		b.occupancy[size] = occ
		b.reference[size] = slidingAttack(pt, sq, occ)
		size++
	})
	return size
}

// search draws candidate multipliers until one places every subset's attack
// set into m.Attacks without a genuine conflict. A slot whose epoch tag is
// older than the current attempt is free to overwrite; a current-epoch slot
// must already hold the identical attack set, otherwise the candidate is
// rejected. Returns the number of candidates tried.
func (b *magicBuilder) search(m *Magic, rng *prng, size int) int {
	attempts := 0
	for placed := 0; placed < size; {
		magic := rng.sparse()
		for bits.OnesCount64((magic*uint64(m.Mask))>>56) < magicTopBits {
			magic = rng.sparse()
		}
		m.Magic = magic
		attempts++
		b.attempt++
		for placed = 0; placed < size; placed++ {
			idx := (uint64(b.occupancy[placed]) * magic) >> m.Shift
			if b.epoch[idx] < b.attempt {
				b.epoch[idx] = b.attempt
				m.Attacks[idx] = b.reference[placed]
			} else if m.Attacks[idx] != b.reference[placed] {
				break
			}
		}
	}
	return attempts
}

// buildMagics fills the shared attack table for one piece type and hands
// each square its window. With bitextract builds the window is filled
// directly at pext positions; otherwise the seeded search finds a
// multiplier per square.
func buildMagics(pt PieceType, magics *[64]Magic, table []Bitboard) {
	b := &magicBuilder{}
	offset := 0
	for sq := A1; sq <= H8; sq++ {
		m := &magics[sq]
		m.Mask = relevantMask(pt, sq)
		m.Shift = uint8(64 - m.Mask.PopCount())
		size := b.enumerate(pt, sq, m.Mask)
		m.Attacks = table[offset : offset+size]

		if useBitExtract {
			for i := 0; i < size; i++ {
				m.Attacks[pext(uint64(b.occupancy[i]), uint64(m.Mask))] = b.reference[i]
			}
		} else {
			rng := newPRNG(MagicSeeds[sq.Rank()])
			b.search(m, rng, size)
		}
		offset += size
	}
}

// FindMagic runs the search for a single square starting from seed, without
// touching the package tables. It returns the multiplier found and the
// number of candidates tried.
func FindMagic(pt PieceType, sq Square, seed uint64) (uint64, int) {
	b := &magicBuilder{}
	m := Magic{Mask: relevantMask(pt, sq)}
	m.Shift = uint8(64 - m.Mask.PopCount())
	size := b.enumerate(pt, sq, m.Mask)
	m.Attacks = make([]Bitboard, size)
	attempts := b.search(&m, newPRNG(seed), size)
	return m.Magic, attempts
}

// VerifyMagic reports whether the multiplier is collision-free for the piece
// and square: every occupancy subset of the relevant mask must map to a slot
// holding exactly its attack set. Used to validate cached or published
// constants before trusting them.
func VerifyMagic(pt PieceType, sq Square, magic uint64) bool {
	mask := relevantMask(pt, sq)
	shift := uint(64 - mask.PopCount())
	table := make([]Bitboard, 1<<mask.PopCount())
	used := make([]bool, len(table))

	ok := true
	mask.ForEachSubset(func(occ Bitboard) {
		idx := (uint64(occ) * magic) >> shift
		ref := slidingAttack(pt, sq, occ)
		if !used[idx] {
			used[idx] = true
			table[idx] = ref
		} else if table[idx] != ref {
			ok = false
		}
	})
	return ok
}
