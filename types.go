package bytescan

import (
	"fmt"
	"strings"
	"unsafe"
)

// Address is a location inside a scanned range. It is wide enough for any
// pointer on the supported platforms.
type Address uint64

// PointerSize is the width in bytes of a native pointer.
const PointerSize = int(unsafe.Sizeof(uintptr(0)))

// String returns the hexadecimal representation of the address
func (a Address) String() string {
	return fmt.Sprintf("0x%X", uint64(a))
}

// Match is a single hit reported to a MatchHandler.
type Match struct {
	Address Address
	Data    []byte
}

// Content returns the data as a UTF-8 string, replacing invalid UTF-8 sequences
func (m Match) Content() string {
	return strings.ToValidUTF8(string(m.Data), "")
}

// MatchHandler is called for each match found during scanning.
// Return false to stop the scan, true to continue.
type MatchHandler func(match Match) bool

// ScanOptions configures a handler-driven scan.
type ScanOptions struct {
	// Pattern to search for (AOB format)
	Pattern string
	// Whether ASCII letters in the pattern match either case
	IgnoreCase bool
	// Stop after the first match
	First bool
	// Minimum address to start scanning from (inclusive)
	MinAddress Address
	// Maximum address to scan to (exclusive)
	MaxAddress Address
	// Handler called for each match found
	Handler MatchHandler
}
