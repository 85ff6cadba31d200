//go:build windows

// Package attach gives the cmd tools one platform-neutral entry point
// for opening a target process.
package attach

import (
	"memprobe/target"
	"memprobe/target_windows"
)

// ByName attaches to the first process matching name.
func ByName(name string) (target.Handle, error) {
	return target_windows.Attach(name)
}

// ByPid attaches to a known PID.
func ByPid(pid int) (target.Handle, error) {
	return target_windows.AttachPid(uint32(pid))
}
