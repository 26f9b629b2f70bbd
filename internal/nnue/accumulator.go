package nnue

import "github.com/tabia-chess/tabia/internal/board"

// CacheState records how an accumulator half was produced, if at all.
type CacheState uint8

const (
	// Unset means the values carry no meaning and must not be read.
	Unset CacheState = iota

	// CachedRefreshed means the values were rebuilt from scratch from the
	// full set of active features.
	CachedRefreshed

	// CachedIncremental means the values were derived from a parent
	// accumulator by applying one dirty-piece record.
	CachedIncremental
)

// String returns the state name.
func (s CacheState) String() string {
	switch s {
	case Unset:
		return "Unset"
	case CachedRefreshed:
		return "CachedRefreshed"
	case CachedIncremental:
		return "CachedIncremental"
	default:
		return "Invalid"
	}
}

// Accumulator holds the first-layer sums for both perspectives, together
// with the king square each half was computed for. Halves are independent:
// one side can be refreshed while the other is updated incrementally.
type Accumulator struct {
	// Values holds the accumulated weights per perspective, len HalfDims.
	Values [2][]int16

	// State tracks per perspective whether Values may be read and how it
	// was produced.
	State [2]CacheState

	// KingSq is the king square each half was computed for, NoSquare when
	// the half has never been computed.
	KingSq [2]board.Square
}

// NewAccumulator creates an accumulator with both halves unset.
func NewAccumulator(halfDims int) *Accumulator {
	return &Accumulator{
		Values: [2][]int16{
			make([]int16, halfDims),
			make([]int16, halfDims),
		},
		State:  [2]CacheState{Unset, Unset},
		KingSq: [2]board.Square{board.NoSquare, board.NoSquare},
	}
}

// Computed reports whether the half for the given perspective holds
// usable values.
func (a *Accumulator) Computed(perspective board.Color) bool {
	return a.State[perspective] != Unset
}

// Reset marks both halves unset. Values are left in place and will be
// overwritten by the next refresh.
func (a *Accumulator) Reset() {
	a.State[0] = Unset
	a.State[1] = Unset
	a.KingSq[0] = board.NoSquare
	a.KingSq[1] = board.NoSquare
}

// CopyFrom copies values and metadata from another accumulator of the
// same dimensions.
func (a *Accumulator) CopyFrom(other *Accumulator) {
	copy(a.Values[0], other.Values[0])
	copy(a.Values[1], other.Values[1])
	a.State = other.State
	a.KingSq = other.KingSq
}

// MaxStackDepth bounds the accumulator stack, one entry per ply.
const MaxStackDepth = 256

// AccumulatorStack manages one accumulator per ply during a search or a
// game replay. The bottom entry describes the root position; Push clones
// the current top so an incremental update can start from its parent.
type AccumulatorStack struct {
	entries []Accumulator
	size    int
}

// NewAccumulatorStack creates a stack of accumulators sized for halfDims,
// with a single unset entry on it.
func NewAccumulatorStack(halfDims int) *AccumulatorStack {
	s := &AccumulatorStack{
		entries: make([]Accumulator, MaxStackDepth),
		size:    1,
	}
	for i := range s.entries {
		s.entries[i] = *NewAccumulator(halfDims)
	}
	return s
}

// Depth returns the number of live entries.
func (s *AccumulatorStack) Depth() int {
	return s.size
}

// Current returns the top accumulator.
func (s *AccumulatorStack) Current() *Accumulator {
	return &s.entries[s.size-1]
}

// Previous returns the accumulator below the top, or nil at the root.
func (s *AccumulatorStack) Previous() *Accumulator {
	if s.size <= 1 {
		return nil
	}
	return &s.entries[s.size-2]
}

// Push clones the top entry and makes the clone current.
func (s *AccumulatorStack) Push() {
	if s.size < MaxStackDepth {
		s.entries[s.size].CopyFrom(&s.entries[s.size-1])
		s.size++
	}
}

// Pop discards the top entry. The root entry is never popped.
func (s *AccumulatorStack) Pop() {
	if s.size > 1 {
		s.size--
	}
}

// Reset drops the stack back to a single unset entry.
func (s *AccumulatorStack) Reset() {
	s.size = 1
	s.entries[0].Reset()
}
