//go:build linux

// Package attach gives the cmd tools one platform-neutral entry point
// for opening a target process.
package attach

import (
	"memprobe/target"
	"memprobe/target_linux"
)

// ByName attaches to the first process matching name.
func ByName(name string) (target.Handle, error) {
	return target_linux.Attach(name)
}

// ByPid attaches to a known PID.
func ByPid(pid int) (target.Handle, error) {
	return target_linux.AttachPid(pid)
}
