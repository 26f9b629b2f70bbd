package nnue

import "github.com/tabia-chess/tabia/internal/board"

// Transformer holds the first layer of the network: one row of HalfDims
// int16 weights per input feature, plus biases. It can rebuild an
// accumulator half from the full active feature set or derive it from a
// parent accumulator by adding and subtracting a handful of rows.
type Transformer struct {
	// HalfDims is the accumulator width per perspective.
	HalfDims int

	// Biases, len HalfDims.
	Biases []int16

	// Weights, row-major with one row of HalfDims values per feature,
	// len Dimensions*HalfDims.
	Weights []int16
}

// NewTransformer creates a transformer with zeroed weights.
func NewTransformer(halfDims int) *Transformer {
	return &Transformer{
		HalfDims: halfDims,
		Biases:   make([]int16, halfDims),
		Weights:  make([]int16, Dimensions*halfDims),
	}
}

// SeedWeights fills biases and weights with small deterministic values
// derived from seed, for tests and tooling that run without a trained
// network file. Magnitudes stay under 100, so a bias plus the at most 32
// active feature rows can never overflow int16.
func (t *Transformer) SeedWeights(seed uint64) {
	s := seed
	if s == 0 {
		s = 0x9E3779B97F4A7C15
	}
	next := func() int16 {
		s ^= s >> 12
		s ^= s << 25
		s ^= s >> 27
		return int16((s*0x2545F4914F6CDD1D)%199) - 99
	}
	for i := range t.Biases {
		t.Biases[i] = next()
	}
	for i := range t.Weights {
		t.Weights[i] = next()
	}
}

// row returns the weight row for one feature index.
func (t *Transformer) row(idx int) []int16 {
	offset := idx * t.HalfDims
	return t.Weights[offset : offset+t.HalfDims]
}

// Refresh rebuilds the accumulator half for the given perspective from
// scratch: biases plus the weight row of every active feature in pos.
// The half moves to CachedRefreshed and records the perspective's king
// square.
func (t *Transformer) Refresh(acc *Accumulator, pos *board.Position, perspective board.Color) {
	var active IndexList
	AppendActiveIndices(pos, perspective, &active)

	values := acc.Values[perspective]
	copy(values, t.Biases)
	for _, idx := range active.Slice() {
		row := t.row(idx)
		for i := range values {
			values[i] += row[i]
		}
	}

	acc.State[perspective] = CachedRefreshed
	acc.KingSq[perspective] = pos.KingSquare[perspective]
}

// Update derives the accumulator half for the given perspective from a
// computed parent: copy the parent values, subtract the removed rows and
// add the added ones. The half moves to CachedIncremental and keeps the
// parent's king square, since an incremental update implies the king did
// not move for this perspective.
func (t *Transformer) Update(acc, prev *Accumulator, perspective board.Color, removed, added *IndexList) {
	values := acc.Values[perspective]
	copy(values, prev.Values[perspective])

	for _, idx := range removed.Slice() {
		row := t.row(idx)
		for i := range values {
			values[i] -= row[i]
		}
	}
	for _, idx := range added.Slice() {
		row := t.row(idx)
		for i := range values {
			values[i] += row[i]
		}
	}

	acc.State[perspective] = CachedIncremental
	acc.KingSq[perspective] = prev.KingSq[perspective]
}

// Updater drives a transformer and an accumulator stack through a game,
// choosing per perspective between an incremental update and a full
// refresh for every move.
type Updater struct {
	Transformer *Transformer
	Stack       *AccumulatorStack
}

// NewUpdater creates an updater with a fresh stack sized for t.
func NewUpdater(t *Transformer) *Updater {
	return &Updater{
		Transformer: t,
		Stack:       NewAccumulatorStack(t.HalfDims),
	}
}

// Reset drops the stack and refreshes both halves of the root entry
// for pos.
func (u *Updater) Reset(pos *board.Position) {
	u.Stack.Reset()
	acc := u.Stack.Current()
	u.Transformer.Refresh(acc, pos, board.White)
	u.Transformer.Refresh(acc, pos, board.Black)
}

// Advance pushes one ply and brings both halves up to date for pos,
// which must already have dp applied. A half is refreshed when the
// record moves that side's king, when the parent half was never
// computed, or when a refresh would touch fewer rows than the update;
// otherwise it is updated incrementally from the parent.
func (u *Updater) Advance(pos *board.Position, dp *board.DirtyPiece) {
	u.Stack.Push()
	acc := u.Stack.Current()
	prev := u.Stack.Previous()

	for _, perspective := range [2]board.Color{board.White, board.Black} {
		if prev == nil || !prev.Computed(perspective) || RequiresRefresh(dp, perspective) {
			u.Transformer.Refresh(acc, pos, perspective)
			continue
		}
		if UpdateCost(dp) >= RefreshCost(pos) {
			u.Transformer.Refresh(acc, pos, perspective)
			continue
		}

		var removed, added IndexList
		AppendChangedIndices(perspective, pos.KingSquare[perspective], dp, &removed, &added)
		u.Transformer.Update(acc, prev, perspective, &removed, &added)
	}
}

// Retract pops one ply, restoring the parent accumulator.
func (u *Updater) Retract() {
	u.Stack.Pop()
}
