// Package prefilter finds candidate positions for a masked byte pattern by
// searching for its longest fully-compared literal run.
//
// A candidate position p can only match if the anchor bytes occur at
// p+Offset, so a scanner may jump straight to the next anchor occurrence
// instead of testing every position with the masked compare.
package prefilter

import (
	"github.com/coregx/ahocorasick"
	"github.com/coregx/coregex/simd"
)

// Finder locates the next occurrence of an anchor literal.
type Finder interface {
	// Next returns the smallest index i >= at where the anchor starts in
	// haystack, or -1.
	Next(haystack []byte, at int) int
	// Offset is the anchor position inside the pattern.
	Offset() int
	// Len is the anchor length.
	Len() int
}

// Anchor returns the longest run of bytes whose mask is 0x00. The earliest
// run wins ties. A pattern without any fully-compared byte returns a nil lit.
func Anchor(pattern, mask []byte) (offset int, lit []byte) {
	bestOff, bestLen := 0, 0
	runOff, runLen := 0, 0
	for i := range mask {
		if mask[i] != 0x00 {
			runLen = 0
			continue
		}
		if runLen == 0 {
			runOff = i
		}
		runLen++
		if runLen > bestLen {
			bestOff, bestLen = runOff, runLen
		}
	}
	if bestLen == 0 {
		return 0, nil
	}
	return bestOff, pattern[bestOff : bestOff+bestLen]
}

// New builds a Finder for the pattern, or returns nil when the pattern has
// no literal anchor.
func New(pattern, mask []byte) Finder {
	off, lit := Anchor(pattern, mask)
	switch len(lit) {
	case 0:
		return nil
	case 1:
		return &byteFinder{off: off, b: lit[0]}
	}

	builder := ahocorasick.NewBuilder()
	builder.AddPattern(lit)
	auto, err := builder.Build()
	if err != nil {
		return &literalFinder{off: off, lit: append([]byte(nil), lit...)}
	}
	return &automatonFinder{off: off, n: len(lit), auto: auto}
}

type byteFinder struct {
	off int
	b   byte
}

func (f *byteFinder) Next(haystack []byte, at int) int {
	if at >= len(haystack) {
		return -1
	}
	i := simd.Memchr(haystack[at:], f.b)
	if i < 0 {
		return -1
	}
	return at + i
}

func (f *byteFinder) Offset() int { return f.off }
func (f *byteFinder) Len() int    { return 1 }

type automatonFinder struct {
	off  int
	n    int
	auto *ahocorasick.Automaton
}

func (f *automatonFinder) Next(haystack []byte, at int) int {
	if at+f.n > len(haystack) {
		return -1
	}
	m := f.auto.Find(haystack, at)
	if m == nil {
		return -1
	}
	return m.Start
}

func (f *automatonFinder) Offset() int { return f.off }
func (f *automatonFinder) Len() int    { return f.n }

// literalFinder backs up the automaton when it cannot be built.
type literalFinder struct {
	off int
	lit []byte
}

func (f *literalFinder) Next(haystack []byte, at int) int {
	if at+len(f.lit) > len(haystack) {
		return -1
	}
	i := simd.Memmem(haystack[at:], f.lit)
	if i < 0 {
		return -1
	}
	return at + i
}

func (f *literalFinder) Offset() int { return f.off }
func (f *literalFinder) Len() int    { return len(f.lit) }
