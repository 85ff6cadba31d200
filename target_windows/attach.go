//go:build windows

package target_windows

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"golang.org/x/sys/windows"

	"memprobe/target"
)

// openAccess covers reads, writes and the module queries the rest of
// the module needs. Injection-grade rights are deliberately absent.
const openAccess = windows.PROCESS_VM_READ |
	windows.PROCESS_VM_WRITE |
	windows.PROCESS_VM_OPERATION |
	windows.PROCESS_QUERY_INFORMATION

// Attach finds a running process by executable name (case-insensitive)
// and opens a handle to it. No match fails with
// target.ErrProcessNotFound; a refused OpenProcess fails with
// target.ErrAccessDenied.
func Attach(name string) (*Handle, error) {
	pid, err := findPid(name)
	if err != nil {
		return nil, err
	}
	return AttachPid(pid)
}

// AttachPid opens a handle to a known PID.
func AttachPid(pid uint32) (*Handle, error) {
	osHandle, err := windows.OpenProcess(openAccess, false, pid)
	if err != nil {
		return nil, fmt.Errorf("OpenProcess pid %d: %v: %w", pid, err, target.ErrAccessDenied)
	}

	h := &Handle{
		handle: osHandle,
		pid:    pid,
		log:    logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("target-%d", pid))),
	}

	// Main module base: Toolhelp32 reports the executable's own
	// module first.
	if mods, err := readModules(pid); err == nil && len(mods) > 0 {
		h.base = mods[0].Base
	}

	h.log.Infoln("attached, base", h.base.String())
	return h, nil
}

// findPid walks a process snapshot for the first executable whose
// name matches.
func findPid(name string) (uint32, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return 0, fmt.Errorf("process snapshot: %w", err)
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	if err := windows.Process32First(snap, &entry); err != nil {
		return 0, fmt.Errorf("Process32First: %w", err)
	}

	for {
		if strings.EqualFold(windows.UTF16ToString(entry.ExeFile[:]), name) {
			return entry.ProcessID, nil
		}
		if err := windows.Process32Next(snap, &entry); err != nil {
			break
		}
	}
	return 0, fmt.Errorf("%q: %w", name, target.ErrProcessNotFound)
}
