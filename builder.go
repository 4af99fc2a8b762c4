package bytescan

// Builder accumulates everything a Description needs. Obtain one from
// State.PatternBuilder; its setters return the builder so calls can be
// chained, and Clone lets a shared base configuration (UID, transforms,
// mode) be specialised per concrete pattern.
type Builder struct {
	state *State

	uid        string
	text       string
	raw        []byte
	rawMask    string
	hasRaw     bool
	hasMask    bool
	ignoreCase bool

	mem      Memory
	start    Address
	end      Address
	startSet bool
	endSet   bool

	mode       ScanMode
	transforms []Transform
}

// SetPattern sets an AOB text pattern.
func (b *Builder) SetPattern(pattern string) *Builder {
	b.text = pattern
	b.hasRaw = false
	return b
}

// SetPatternRaw sets raw pattern bytes. Pair it with SetMask; without a
// mask every byte is compared.
func (b *Builder) SetPatternRaw(raw []byte) *Builder {
	b.raw = append([]byte(nil), raw...)
	b.hasRaw = true
	return b
}

// SetMask sets the 'x'/'?' mask of a raw pattern.
func (b *Builder) SetMask(mask string) *Builder {
	b.rawMask = mask
	b.hasMask = true
	return b
}

// SetUID sets the logical identifier. Without one the pattern text is used.
func (b *Builder) SetUID(uid string) *Builder {
	b.uid = uid
	return b
}

// SetIgnoreCase makes ASCII letters in the pattern match either case.
func (b *Builder) SetIgnoreCase(ignore bool) *Builder {
	b.ignoreCase = ignore
	return b
}

// SetMemory sets the memory to scan. Unless SetScanStart/SetScanEnd are
// used the whole memory is scanned.
func (b *Builder) SetMemory(m Memory) *Builder {
	b.mem = m
	return b
}

// SetScanStart sets the first address to scan.
func (b *Builder) SetScanStart(a Address) *Builder {
	b.start = a
	b.startSet = true
	return b
}

// SetScanEnd sets the address one past the last byte to scan.
func (b *Builder) SetScanEnd(a Address) *Builder {
	b.end = a
	b.endSet = true
	return b
}

// SetScanMode sets the scan mode used when the UID is first registered.
func (b *Builder) SetScanMode(m ScanMode) *Builder {
	b.mode = m
	return b
}

// StopOnFirstMatch is SetScanMode(ScanFirst).
func (b *Builder) StopOnFirstMatch() *Builder {
	return b.SetScanMode(ScanFirst)
}

// AddTransform appends a transform to the chain.
func (b *Builder) AddTransform(t Transform) *Builder {
	b.transforms = append(b.transforms, t)
	return b
}

// Clone returns an independent copy of the builder.
func (b *Builder) Clone() *Builder {
	c := *b
	c.raw = append([]byte(nil), b.raw...)
	c.transforms = append([]Transform(nil), b.transforms...)
	return &c
}

func (b *Builder) parse() (Pattern, error) {
	var (
		p   Pattern
		err error
	)
	switch {
	case b.hasRaw && b.hasMask:
		p, err = ParseRawPattern(b.raw, b.rawMask)
	case b.hasRaw:
		p, err = ParseRawPattern(b.raw, exactMask(len(b.raw)))
	default:
		p, err = ParsePattern(b.text)
	}
	if err != nil {
		return p, err
	}
	if p.Len() == 0 {
		return p, ErrEmptyPattern
	}
	if b.ignoreCase {
		p = p.FoldCase()
	}
	return p, nil
}

func exactMask(n int) string {
	mask := make([]byte, n)
	for i := range mask {
		mask[i] = 'x'
	}
	return string(mask)
}

// Build parses the pattern and returns the description. A pattern that
// fails to parse or is empty returns an error and registers nothing. On
// success the UID's shared result is looked up in the state, or created
// with the builder's scan mode.
func (b *Builder) Build() (*Description, error) {
	p, err := b.parse()
	if err != nil {
		return nil, err
	}

	source := b.text
	if b.hasRaw {
		source = p.String()
	}
	uid := b.uid
	if uid == "" {
		uid = source
	}

	start, end := b.mem.Start(), b.mem.End()
	if b.startSet {
		start = clamp(b.start, b.mem.Start(), b.mem.End())
	}
	if b.endSet {
		end = clamp(b.end, b.mem.Start(), b.mem.End())
	}

	var (
		shared       *SharedResult
		sliceSize    uint64 = DefaultSliceSize
		usePrefilter        = true
	)
	if b.state != nil {
		shared = b.state.sharedFor(uid, b.mode)
		sliceSize = b.state.opts.sliceSize
		usePrefilter = b.state.opts.prefilter
	} else {
		shared = newSharedResult(b.mode, nil)
	}

	return newDescription(uid, source, p, b.mem, start, end, sliceSize, b.transforms, shared, usePrefilter), nil
}
