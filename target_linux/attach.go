//go:build linux

package target_linux

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"memprobe/target"
)

// Attach finds a running process by name (comm or exe basename,
// lowest PID wins for determinism) and opens a handle to it. A name
// with no match fails with target.ErrProcessNotFound; a match we lack
// permission to touch fails with target.ErrAccessDenied.
func Attach(name string) (*Handle, error) {
	pid, err := findPid(name)
	if err != nil {
		return nil, err
	}
	return attachPid(pid, name)
}

// AttachPid opens a handle to a known PID.
func AttachPid(pid int) (*Handle, error) {
	name, err := commName(pid)
	if err != nil {
		return nil, fmt.Errorf("pid %d: %w", pid, target.ErrProcessNotFound)
	}
	return attachPid(pid, name)
}

func attachPid(pid int, name string) (*Handle, error) {
	// process_vm_readv needs the same access ptrace does; a signal-0
	// probe surfaces permission problems at attach time instead of on
	// the first read.
	if err := unix.Kill(pid, 0); err != nil {
		if errors.Is(err, unix.EPERM) {
			return nil, fmt.Errorf("pid %d: %w", pid, target.ErrAccessDenied)
		}
		return nil, fmt.Errorf("pid %d: %w", pid, target.ErrProcessNotFound)
	}
	return newHandle(pid, name)
}

// findPid scans /proc for the lowest PID whose comm or exe basename
// equals name.
func findPid(name string) (int, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return 0, fmt.Errorf("read /proc: %w", err)
	}

	self := os.Getpid()
	best := -1
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil || pid <= 0 || pid == self {
			continue
		}
		comm, err := commName(pid)
		if err != nil {
			continue
		}
		if comm != name {
			exe, _ := os.Readlink(filepath.Join("/proc", e.Name(), "exe"))
			if exe == "" || filepath.Base(exe) != name {
				continue
			}
		}
		if best < 0 || pid < best {
			best = pid
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("%q: %w", name, target.ErrProcessNotFound)
	}
	return best, nil
}

func commName(pid int) (string, error) {
	comm, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "comm"))
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(comm), "\n"), nil
}
