// Package maskcmp compares byte buffers under a wildcard mask.
//
// A mask byte is the set of bits to ignore: 0xFF skips the byte entirely,
// 0xF0 and 0x0F skip one nibble and 0x00 compares every bit. Every kernel in
// this package returns the same answer for the same input; the wider ones are
// unrolled SWAR loops that only process more words per iteration. No kernel
// uses vector instructions. The active kernel is picked once at init
// from the CPU features reported by golang.org/x/sys/cpu and can be forced with
// the BYTESCAN_COMPARE environment variable or SetKind.
package maskcmp

import (
	"os"
	"strings"
	"sync/atomic"
)

// Kind identifies a compare kernel.
type Kind uint8

const (
	// KindByte compares one byte per iteration. It is the reference kernel.
	KindByte Kind = iota
	// KindWord compares one 64-bit word per iteration.
	KindWord
	// KindWord2x compares two 64-bit words per iteration (unrolled SWAR).
	KindWord2x
	// KindWord4x compares four 64-bit words per iteration (unrolled SWAR).
	KindWord4x
)

// String returns the name used by ParseKind and BYTESCAN_COMPARE.
func (k Kind) String() string {
	switch k {
	case KindByte:
		return "byte"
	case KindWord:
		return "word"
	case KindWord2x:
		return "word2x"
	case KindWord4x:
		return "word4x"
	default:
		return "unknown"
	}
}

// ParseKind parses a kernel name.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "byte":
		return KindByte, true
	case "word":
		return KindWord, true
	case "word2x":
		return KindWord2x, true
	case "word4x":
		return KindWord4x, true
	default:
		return KindWord, false
	}
}

// EnvKind is the environment variable consulted at init.
const EnvKind = "BYTESCAN_COMPARE"

var (
	// set by the per-arch init before selectKind runs
	hasWord2x bool
	hasWord4x bool

	detectedKind Kind
	activeKind   atomic.Uint32
)

func selectKind() {
	detectedKind = KindWord
	switch {
	case hasWord4x:
		detectedKind = KindWord4x
	case hasWord2x:
		detectedKind = KindWord2x
	}

	kind := detectedKind
	if override := os.Getenv(EnvKind); override != "" {
		if k, ok := ParseKind(override); ok {
			kind = k
		}
	}
	activeKind.Store(uint32(kind))
}

// ActiveKind returns the kernel used by Equal.
func ActiveKind() Kind {
	return Kind(activeKind.Load())
}

// DetectedKind returns the kernel chosen from CPU features, ignoring overrides.
func DetectedKind() Kind {
	return detectedKind
}

// SetKind forces the kernel used by Equal and returns the previous one.
func SetKind(k Kind) Kind {
	return Kind(activeKind.Swap(uint32(k)))
}

// Equal reports whether a and b match on the first len(mask) bytes, ignoring
// the bits set in mask. Both a and b must hold at least len(mask) bytes.
func Equal(a, b, mask []byte) bool {
	switch Kind(activeKind.Load()) {
	case KindWord4x:
		return Word4x(a, b, mask)
	case KindWord2x:
		return Word2x(a, b, mask)
	case KindByte:
		return Bytewise(a, b, mask)
	default:
		return Word(a, b, mask)
	}
}

// Func returns the kernel for k.
func Func(k Kind) func(a, b, mask []byte) bool {
	switch k {
	case KindWord4x:
		return Word4x
	case KindWord2x:
		return Word2x
	case KindByte:
		return Bytewise
	default:
		return Word
	}
}
