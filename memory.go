package bytescan

import (
	"encoding/binary"
	"unsafe"
)

// Memory is a readable byte range and the address of its first byte.
// The caller keeps Data valid and unchanged for as long as a scan runs.
type Memory struct {
	Base Address
	Data []byte
}

// NewMemory returns a view of data based at its real address, so that match
// addresses can be handed to code that dereferences them.
func NewMemory(data []byte) Memory {
	return Memory{
		Base: Address(uintptr(unsafe.Pointer(unsafe.SliceData(data)))),
		Data: data,
	}
}

// MemoryAt returns a view of data based at an arbitrary address, typically a
// region copied out of another process.
func MemoryAt(base Address, data []byte) Memory {
	return Memory{Base: base, Data: data}
}

// Start returns the first address of the range.
func (m Memory) Start() Address { return m.Base }

// End returns the address one past the last byte.
func (m Memory) End() Address { return m.Base + Address(len(m.Data)) }

// Len returns the number of bytes in the range.
func (m Memory) Len() int { return len(m.Data) }

// Contains reports whether n bytes starting at a lie inside the range.
func (m Memory) Contains(a Address, n int) bool {
	if n < 0 || a < m.Base {
		return false
	}
	off := uint64(a - m.Base)
	return off <= uint64(len(m.Data)) && uint64(n) <= uint64(len(m.Data))-off
}

// Bytes returns the bytes in [start, end) if the whole span is inside the range.
func (m Memory) Bytes(start, end Address) ([]byte, bool) {
	if end < start || !m.Contains(start, int(end-start)) {
		return nil, false
	}
	off := int(start - m.Base)
	return m.Data[off : off+int(end-start)], true
}

// Sub returns the part of the range that overlaps [start, end).
func (m Memory) Sub(start, end Address) Memory {
	start = clamp(start, m.Start(), m.End())
	end = clamp(end, start, m.End())
	off := int(start - m.Base)
	return Memory{Base: start, Data: m.Data[off : off+int(end-start)]}
}

func clamp(a, lo, hi Address) Address {
	return max(lo, min(a, hi))
}

func (m Memory) read(a Address, n int) ([]byte, bool) {
	if !m.Contains(a, n) {
		return nil, false
	}
	off := int(a - m.Base)
	return m.Data[off : off+n], true
}

// ReadUint8 reads one byte at a.
func (m Memory) ReadUint8(a Address) (uint8, bool) {
	b, ok := m.read(a, 1)
	if !ok {
		return 0, false
	}
	return b[0], true
}

// ReadUint16 reads a little-endian uint16 at a.
func (m Memory) ReadUint16(a Address) (uint16, bool) {
	b, ok := m.read(a, 2)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint16(b), true
}

// ReadUint32 reads a little-endian uint32 at a.
func (m Memory) ReadUint32(a Address) (uint32, bool) {
	b, ok := m.read(a, 4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

// ReadInt32 reads a little-endian int32 at a.
func (m Memory) ReadInt32(a Address) (int32, bool) {
	v, ok := m.ReadUint32(a)
	return int32(v), ok
}

// ReadUint64 reads a little-endian uint64 at a.
func (m Memory) ReadUint64(a Address) (uint64, bool) {
	b, ok := m.read(a, 8)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b), true
}

// ReadPointer reads a native-width little-endian pointer at a.
func (m Memory) ReadPointer(a Address) (Address, bool) {
	if PointerSize == 4 {
		v, ok := m.ReadUint32(a)
		return Address(v), ok
	}
	v, ok := m.ReadUint64(a)
	return Address(v), ok
}
