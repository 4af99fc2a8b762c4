//go:build windows

package bytescan

import (
	"context"
	"fmt"
	"slices"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Scanner scans the memory of another process.
type Scanner struct {
	pid           uint32
	processHandle windows.Handle
	opts          []Option
}

// NewScanner opens the process for reading. The options are applied to
// every State the scanner creates.
func NewScanner(pid uint32, opts ...Option) (*Scanner, error) {
	hProcess, err := windows.OpenProcess(
		windows.PROCESS_VM_READ|windows.PROCESS_QUERY_INFORMATION,
		false,
		pid,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open process: %w", err)
	}

	return &Scanner{
		pid:           pid,
		processHandle: hProcess,
		opts:          opts,
	}, nil
}

// Close closes the process handle
func (s *Scanner) Close() error {
	if s.processHandle != 0 {
		windows.CloseHandle(s.processHandle)
		s.processHandle = 0
	}
	return nil
}

// PID returns the process ID that this scanner is attached to
func (s *Scanner) PID() uint32 {
	return s.pid
}

// Regions copies every committed readable region intersecting
// [minAddr, maxAddr) out of the process. Each region keeps its address in
// the target process as its base.
func (s *Scanner) Regions(ctx context.Context, minAddr, maxAddr Address) ([]Memory, error) {
	if maxAddr <= minAddr {
		return nil, fmt.Errorf("%w: [%s, %s)", ErrInvalidRange, minAddr, maxAddr)
	}

	var (
		mbi     windows.MemoryBasicInformation
		regions []Memory
	)
	address := uint64(minAddr)

	for address < uint64(maxAddr) {
		select {
		case <-ctx.Done():
			return regions, ctx.Err()
		default:
		}

		if err := windows.VirtualQueryEx(s.processHandle, uintptr(address), &mbi, unsafe.Sizeof(mbi)); err != nil {
			break
		}

		baseAddr := uint64(mbi.BaseAddress)
		regionSize := uint64(mbi.RegionSize)

		if isReadableRegion(&mbi) {
			if m, ok := s.readRegion(max(baseAddr, uint64(minAddr)), min(baseAddr+regionSize, uint64(maxAddr))); ok {
				regions = append(regions, m)
			}
		}

		address = baseAddr + regionSize
		if regionSize == 0 {
			address++
		}
	}

	return regions, nil
}

func isReadableRegion(mbi *windows.MemoryBasicInformation) bool {
	isReadable := mbi.Protect&(windows.PAGE_READONLY|windows.PAGE_READWRITE|
		windows.PAGE_EXECUTE_READ|windows.PAGE_EXECUTE_READWRITE) != 0
	isGuarded := mbi.Protect&windows.PAGE_GUARD != 0
	isCommitted := mbi.State == windows.MEM_COMMIT

	return isReadable && !isGuarded && isCommitted
}

func (s *Scanner) readRegion(start, end uint64) (Memory, bool) {
	if end <= start {
		return Memory{}, false
	}

	buffer := make([]byte, end-start)
	var bytesRead uintptr
	err := windows.ReadProcessMemory(s.processHandle, uintptr(start), &buffer[0],
		uintptr(len(buffer)), &bytesRead)
	if err != nil || bytesRead == 0 {
		return Memory{}, false
	}
	return MemoryAt(Address(start), buffer[:bytesRead]), true
}

// ScanState reads the regions in [minAddr, maxAddr) and calls build once
// per region with a State bound to it, so several UIDs can be searched in
// a single pass. The returned map holds every UID's values across all
// regions in ascending order.
func (s *Scanner) ScanState(ctx context.Context, minAddr, maxAddr Address, build func(*State) error) (map[string][]Address, error) {
	regions, err := s.Regions(ctx, minAddr, maxAddr)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]Address)
	for _, region := range regions {
		st := NewState(region, s.opts...)
		if err := build(st); err != nil {
			return nil, err
		}
		if _, err := Scan(ctx, st); err != nil {
			return out, err
		}
		for _, uid := range st.UIDs() {
			out[uid] = append(out[uid], st.Result(uid).All()...)
		}
	}
	for uid := range out {
		slices.Sort(out[uid])
	}
	return out, nil
}

// Scan searches the process for opts.Pattern and calls opts.Handler for
// each match in ascending address order. Every region gets its own
// description under one UID, so with opts.First the first region to report
// a match ends the search in all of them.
func (s *Scanner) Scan(ctx context.Context, opts ScanOptions) error {
	if _, err := ParsePattern(opts.Pattern); err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}

	regions, err := s.Regions(ctx, opts.MinAddress, opts.MaxAddress)
	if err != nil {
		return err
	}
	if len(regions) == 0 {
		return nil
	}

	st := NewState(regions[0], s.opts...)
	var n int
	for _, region := range regions {
		b := st.PatternBuilder().
			SetPattern(opts.Pattern).
			SetIgnoreCase(opts.IgnoreCase).
			SetMemory(region)
		if opts.First {
			b.StopOnFirstMatch()
		}
		d, err := b.Build()
		if err != nil {
			return fmt.Errorf("invalid pattern: %w", err)
		}
		n = d.Pattern().Len()
		st.AddPattern(d)
	}

	if _, err := Scan(ctx, st); err != nil {
		return err
	}

	addrs := st.Result(opts.Pattern).All()
	slices.Sort(addrs)
	for _, addr := range addrs {
		if opts.Handler == nil {
			break
		}
		if !opts.Handler(Match{Address: addr, Data: regionBytes(regions, addr, n)}) {
			return nil
		}
	}
	return nil
}

func regionBytes(regions []Memory, addr Address, n int) []byte {
	i, _ := slices.BinarySearchFunc(regions, addr, func(m Memory, a Address) int {
		switch {
		case m.End() <= a:
			return -1
		case m.Start() > a:
			return 1
		}
		return 0
	})
	if i >= len(regions) {
		return nil
	}
	data, ok := regions[i].Bytes(addr, addr+Address(n))
	if !ok {
		return nil
	}
	return append([]byte(nil), data...)
}
