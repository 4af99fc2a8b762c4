package bytescan

import (
	"github.com/zhuweiyou/bytescan/internal/maskcmp"
	"github.com/zhuweiyou/bytescan/internal/prefilter"
)

// Transform turns a value found by a description into the value recorded
// for its UID. Transforms run in the order they were added, each one
// receiving the previous one's output; the first receives the match address.
type Transform func(d *Description, v Address) Address

// DescriptionStats counts the work a description has done.
type DescriptionStats struct {
	// Comparisons is the number of masked compares performed.
	Comparisons uint64
	// Matches is the number of positions the pattern matched.
	Matches uint64
	// Discarded is the number of transformed matches the shared result refused.
	Discarded uint64
	// Slices is the number of slices entered.
	Slices uint64
}

// Description is the scan cursor of one pattern over one range. It is built
// by a Builder, advanced by Step until its range is exhausted or its UID is
// finished, and then thrown away.
type Description struct {
	uid        string
	source     string
	pattern    Pattern
	mem        Memory
	scanRange  Slice
	slices     SliceSequence
	cursor     SliceIter
	lastPos    Address
	transforms []Transform
	shared     *SharedResult
	finder     prefilter.Finder
	inert      bool
	stats      DescriptionStats
}

func newDescription(uid, source string, p Pattern, mem Memory, start, end Address, sliceSize uint64,
	transforms []Transform, shared *SharedResult, usePrefilter bool) *Description {

	d := &Description{
		uid:        uid,
		source:     source,
		pattern:    p,
		mem:        mem,
		scanRange:  Slice{Start: start, End: end},
		transforms: append([]Transform(nil), transforms...),
		shared:     shared,
		lastPos:    start,
	}

	// Invalid ranges scan as "not found" without touching memory.
	if start == 0 || end == 0 || start >= end {
		d.inert = true
	}

	d.slices = NewSliceSequence(start, end, sliceSize)
	d.cursor = d.slices.Begin()
	if usePrefilter && !d.inert {
		d.finder = prefilter.New(p.Bytes, p.Mask)
	}
	return d
}

// UID returns the logical identifier the description reports into.
func (d *Description) UID() string { return d.uid }

// Source returns the pattern as it was given to the builder. Raw patterns
// are rendered in AOB form.
func (d *Description) Source() string { return d.source }

// Pattern returns the parsed pattern.
func (d *Description) Pattern() Pattern { return d.pattern }

// Memory returns the memory the description scans. Transforms use it to
// read values around a match.
func (d *Description) Memory() Memory { return d.mem }

// Range returns the scan range.
func (d *Description) Range() Slice { return d.scanRange }

// LastPosition returns the next candidate address the description will test.
func (d *Description) LastPosition() Address { return d.lastPos }

// CurrentSlice returns the slice the next Step will scan.
func (d *Description) CurrentSlice() Slice { return d.cursor.Current() }

// Shared returns the result bucket of the description's UID.
func (d *Description) Shared() *SharedResult { return d.shared }

// Stats returns the work counters. It must not be called while a Step of
// the same description is running.
func (d *Description) Stats() DescriptionStats { return d.stats }

// Exhausted reports whether every slice has been scanned.
func (d *Description) Exhausted() bool {
	return d.inert || d.cursor.Done()
}

// Step scans the current slice and moves to the next one. It returns true
// while more slices remain and the UID is not finished.
//
// Candidates are tested in ascending address order starting at the resume
// position. A match is passed through the transforms and appended to the
// shared result; if another description finished the UID in the meantime
// the value is discarded and the step stops early.
func (d *Description) Step() bool {
	if d == nil || d.inert || d.shared == nil {
		return false
	}
	if d.shared.Finished() || d.cursor.Done() {
		return false
	}

	cur := d.cursor.Current()
	d.stats.Slices++

	n := Address(d.pattern.Len())
	data, base := d.mem.Data, d.mem.Base
	pos := d.lastPos

	for pos+n <= cur.End {
		if d.shared.Finished() {
			d.lastPos = pos
			return false
		}

		if d.finder != nil {
			next, ok := d.nextCandidate(pos, cur.End)
			if !ok {
				pos = max(pos, cur.End+1-n)
				break
			}
			pos = next
		}

		d.stats.Comparisons++
		if !maskcmp.Equal(data[pos-base:], d.pattern.Bytes, d.pattern.Mask) {
			pos++
			continue
		}
		d.stats.Matches++

		v := pos
		for _, t := range d.transforms {
			v = t(d, v)
		}

		appended, finished := d.shared.TryAppend(v, d)
		if !appended {
			d.stats.Discarded++
		}
		if finished {
			d.lastPos = pos
			return false
		}
		pos++
	}

	d.lastPos = pos
	d.cursor.Next()
	return !d.cursor.Done()
}

// nextCandidate jumps to the next position whose literal anchor matches.
// Only positions p with p+len(pattern) <= end are considered.
func (d *Description) nextCandidate(pos, end Address) (Address, bool) {
	n := Address(d.pattern.Len())
	aoff := d.finder.Offset()
	lo := int(pos-d.mem.Base) + aoff
	hi := int(end-n-d.mem.Base) + aoff + d.finder.Len()

	i := d.finder.Next(d.mem.Data[:hi], lo)
	if i < 0 {
		return 0, false
	}
	return d.mem.Base + Address(i-aoff), true
}
