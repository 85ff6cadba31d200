//go:build windows

// Package target_windows attaches to Windows processes and implements
// target.Handle over Read/WriteProcessMemory, with the module list
// taken from Toolhelp32 snapshots.
package target_windows

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/Moonlight-Companies/gologger/logger"
	"golang.org/x/sys/windows"

	"memprobe/target"
)

// Handle is a live attachment to one Windows process. Access is
// serialized internally with a mutex, so one Handle may be shared
// between goroutines; Close releases the OS handle and invalidates it.
type Handle struct {
	handle windows.Handle
	pid    uint32
	base   target.Address
	log    *logger.Logger

	mu     sync.Mutex
	closed bool
}

var _ target.Handle = (*Handle)(nil)

func (h *Handle) Pid() int {
	return int(h.pid)
}

// BaseAddress returns the load address of the target's main module,
// captured at attach time.
func (h *Handle) BaseAddress() target.Address {
	return h.base
}

func (h *Handle) ReadRaw(addr target.Address, size target.Size) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, target.ErrHandleInvalid
	}
	if size == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, size)
	var read uintptr
	err := windows.ReadProcessMemory(h.handle, uintptr(addr), &buf[0], uintptr(size), &read)
	if err != nil {
		return nil, fmt.Errorf("ReadProcessMemory pid %d at %s: %w", h.pid, addr, err)
	}
	if read != uintptr(size) {
		return nil, fmt.Errorf("ReadProcessMemory pid %d at %s: %d of %s: %w",
			h.pid, addr, read, size, target.ErrShortRead)
	}
	return buf, nil
}

func (h *Handle) WriteRaw(addr target.Address, data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return target.ErrHandleInvalid
	}
	if len(data) == 0 {
		return nil
	}

	var written uintptr
	err := windows.WriteProcessMemory(h.handle, uintptr(addr), &data[0], uintptr(len(data)), &written)
	if err != nil {
		return fmt.Errorf("WriteProcessMemory pid %d at %s: %w", h.pid, addr, err)
	}
	if written != uintptr(len(data)) {
		return fmt.Errorf("WriteProcessMemory pid %d at %s: wrote %d of %d bytes",
			h.pid, addr, written, len(data))
	}
	return nil
}

func (h *Handle) ListModules() ([]target.ModuleInfo, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, target.ErrHandleInvalid
	}
	return readModules(h.pid)
}

func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	err := windows.CloseHandle(h.handle)
	h.handle = 0
	h.log.Infoln("detached")
	return err
}

// readModules walks a TH32CS_SNAPMODULE snapshot of the target.
func readModules(pid uint32) ([]target.ModuleInfo, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, pid)
	if err != nil {
		return nil, fmt.Errorf("module snapshot for pid %d: %w", pid, err)
	}
	defer windows.CloseHandle(snap)

	var entry windows.ModuleEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	if err := windows.Module32First(snap, &entry); err != nil {
		return nil, fmt.Errorf("Module32First for pid %d: %w", pid, err)
	}

	var mods []target.ModuleInfo
	for {
		mods = append(mods, target.ModuleInfo{
			Name: windows.UTF16ToString(entry.Module[:]),
			Base: target.Address(entry.ModBaseAddr),
			Size: uint64(entry.ModBaseSize),
		})
		if err := windows.Module32Next(snap, &entry); err != nil {
			break
		}
	}
	return mods, nil
}
