package bytescan

import "math"

const (
	// PageSize is the granularity slices are sized in.
	PageSize = 0x1000

	// DefaultSliceSize is the amount of memory a single scan step covers.
	DefaultSliceSize = PageSize * 10
)

// Slice is the half-open range [Start, End).
type Slice struct {
	Start Address
	End   Address
}

// Len returns the number of bytes in the slice.
func (s Slice) Len() uint64 {
	if s.End <= s.Start {
		return 0
	}
	return uint64(s.End - s.Start)
}

// Empty reports whether the slice covers no bytes.
func (s Slice) Empty() bool {
	return s.End <= s.Start
}

// SliceSequence splits [start, end) into consecutive slices of step bytes.
// The last slice is cut at end. A range with end < start is treated as the
// empty range at start.
type SliceSequence struct {
	start Address
	end   Address
	step  uint64
}

// NewSliceSequence returns the sequence for [start, end). A zero step means
// DefaultSliceSize.
func NewSliceSequence(start, end Address, step uint64) SliceSequence {
	if end < start {
		end = start
	}
	if step == 0 {
		step = DefaultSliceSize
	}
	return SliceSequence{start: start, end: end, step: step}
}

// Range returns the covered range.
func (s SliceSequence) Range() Slice {
	return Slice{Start: s.start, End: s.end}
}

// Step returns the slice size.
func (s SliceSequence) Step() uint64 {
	return s.step
}

// Count returns how many slices Begin yields before reaching the end.
func (s SliceSequence) Count() uint64 {
	n := uint64(s.end - s.start)
	return n/s.step + min(n%s.step, 1)
}

// Begin returns an iterator positioned on the first slice.
func (s SliceSequence) Begin() SliceIter {
	it := SliceIter{
		cur:  Slice{Start: s.start, End: addSat(s.start, s.step)},
		end:  s.end,
		step: s.step,
	}
	it.normalize()
	return it
}

// EndIter returns the terminal iterator, positioned on {end, end}.
func (s SliceSequence) EndIter() SliceIter {
	return SliceIter{cur: Slice{Start: s.end, End: s.end}, end: s.end, step: s.step}
}

// SliceIter walks a SliceSequence forward. Once it reaches the end it stays
// on the empty slice {end, end} no matter how often Next is called.
type SliceIter struct {
	cur  Slice
	end  Address
	step uint64
}

// Current returns the slice the iterator is on.
func (it SliceIter) Current() Slice {
	return it.cur
}

// Done reports whether the iterator reached the terminal empty slice.
func (it SliceIter) Done() bool {
	return it.cur.Start == it.end && it.cur.End == it.end
}

// Next advances to the following slice.
func (it *SliceIter) Next() {
	it.cur.Start = addSat(it.cur.Start, it.step)
	it.cur.End = addSat(it.cur.End, it.step)
	it.normalize()
}

func (it *SliceIter) normalize() {
	if it.cur.Start > it.end {
		it.cur.Start = it.end
	}
	if it.cur.End > it.end {
		it.cur.End = it.end
	}
}

func addSat(a Address, n uint64) Address {
	if uint64(a) > math.MaxUint64-n {
		return math.MaxUint64
	}
	return a + Address(n)
}
