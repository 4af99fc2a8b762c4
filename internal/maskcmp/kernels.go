package maskcmp

import "encoding/binary"

// Bytewise is the reference kernel.
func Bytewise(a, b, mask []byte) bool {
	n := len(mask)
	a, b = a[:n], b[:n]
	for i := 0; i < n; i++ {
		if (a[i]^b[i])&^mask[i] != 0 {
			return false
		}
	}
	return true
}

// Word compares 8 bytes at a time using unaligned little-endian loads and
// finishes the remainder byte by byte.
func Word(a, b, mask []byte) bool {
	n := len(mask)
	a, b = a[:n], b[:n]

	i := 0
	for ; i+8 <= n; i += 8 {
		if !word(a[i:], b[i:], mask[i:]) {
			return false
		}
	}
	for ; i < n; i++ {
		if (a[i]^b[i])&^mask[i] != 0 {
			return false
		}
	}
	return true
}

// Word2x is unrolled SWAR: two 64-bit words per iteration folded into one
// test.
// The tail shorter than 16 bytes goes through Word.
func Word2x(a, b, mask []byte) bool {
	n := len(mask)
	a, b = a[:n], b[:n]

	i := 0
	for ; i+16 <= n; i += 16 {
		d0 := diff(a[i:], b[i:], mask[i:])
		d1 := diff(a[i+8:], b[i+8:], mask[i+8:])
		if d0|d1 != 0 {
			return false
		}
	}
	return Word(a[i:], b[i:], mask[i:])
}

// Word4x is unrolled SWAR: four 64-bit words per iteration. The tail shorter than 32 bytes
// goes through Word.
func Word4x(a, b, mask []byte) bool {
	n := len(mask)
	a, b = a[:n], b[:n]

	i := 0
	for ; i+32 <= n; i += 32 {
		d0 := diff(a[i:], b[i:], mask[i:])
		d1 := diff(a[i+8:], b[i+8:], mask[i+8:])
		d2 := diff(a[i+16:], b[i+16:], mask[i+16:])
		d3 := diff(a[i+24:], b[i+24:], mask[i+24:])
		if d0|d1|d2|d3 != 0 {
			return false
		}
	}
	return Word(a[i:], b[i:], mask[i:])
}

// diff returns the differing, non-ignored bits of the next 8 bytes.
func diff(a, b, mask []byte) uint64 {
	x := binary.LittleEndian.Uint64(a)
	y := binary.LittleEndian.Uint64(b)
	m := binary.LittleEndian.Uint64(mask)
	return (x ^ y) &^ m
}

func word(a, b, mask []byte) bool {
	return diff(a, b, mask) == 0
}
