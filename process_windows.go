//go:build windows

package bytescan

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

// ErrProcessNotFound is returned when no running process has the name.
var ErrProcessNotFound = errors.New("process not found")

// Process is one entry of the system process list.
type Process struct {
	PID  uint32
	Name string
}

// Processes returns a snapshot of the running processes.
func Processes() ([]Process, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, fmt.Errorf("process snapshot: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	entry := windows.ProcessEntry32{}
	entry.Size = uint32(unsafe.Sizeof(entry))

	var procs []Process
	for err = windows.Process32First(snapshot, &entry); err == nil; err = windows.Process32Next(snapshot, &entry) {
		procs = append(procs, Process{
			PID:  entry.ProcessID,
			Name: windows.UTF16ToString(entry.ExeFile[:]),
		})
	}
	if !errors.Is(err, windows.ERROR_NO_MORE_FILES) {
		return nil, fmt.Errorf("process list: %w", err)
	}
	return procs, nil
}

// FindProcessesByName returns the IDs of every process whose executable
// name equals name, ignoring case.
func FindProcessesByName(name string) ([]uint32, error) {
	procs, err := Processes()
	if err != nil {
		return nil, err
	}
	var pids []uint32
	for _, p := range procs {
		if strings.EqualFold(p.Name, name) {
			pids = append(pids, p.PID)
		}
	}
	if len(pids) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrProcessNotFound, name)
	}
	return pids, nil
}
