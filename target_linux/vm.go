//go:build linux

package target_linux

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"memprobe/target"
)

// vmRead copies size bytes out of pid's address space with the
// process_vm_readv syscall. All-or-nothing: a partial copy is
// reported as an error, never as a short buffer.
func vmRead(pid int, addr target.Address, size target.Size) ([]byte, error) {
	buf := make([]byte, size)

	localIov := unix.Iovec{
		Base: &buf[0],
		Len:  uint64(size),
	}
	remoteIov := unix.RemoteIovec{
		Base: uintptr(addr),
		Len:  int(size),
	}

	n, _, errno := unix.Syscall6(
		unix.SYS_PROCESS_VM_READV,
		uintptr(pid),
		uintptr(unsafe.Pointer(&localIov)),
		uintptr(1),
		uintptr(unsafe.Pointer(&remoteIov)),
		uintptr(1),
		uintptr(0),
	)
	if errno != 0 {
		return nil, fmt.Errorf("process_vm_readv pid %d at %s: %w", pid, addr, errno)
	}
	if target.Size(n) != size {
		return nil, fmt.Errorf("process_vm_readv pid %d at %s: %d of %s: %w",
			pid, addr, n, size, target.ErrShortRead)
	}
	return buf, nil
}

// vmWrite copies data into pid's address space with process_vm_writev.
func vmWrite(pid int, addr target.Address, data []byte) error {
	localIov := unix.Iovec{
		Base: &data[0],
		Len:  uint64(len(data)),
	}
	remoteIov := unix.RemoteIovec{
		Base: uintptr(addr),
		Len:  len(data),
	}

	n, _, errno := unix.Syscall6(
		unix.SYS_PROCESS_VM_WRITEV,
		uintptr(pid),
		uintptr(unsafe.Pointer(&localIov)),
		uintptr(1),
		uintptr(unsafe.Pointer(&remoteIov)),
		uintptr(1),
		uintptr(0),
	)
	if errno != 0 {
		return fmt.Errorf("process_vm_writev pid %d at %s: %w", pid, addr, errno)
	}
	if int(n) != len(data) {
		return fmt.Errorf("process_vm_writev pid %d at %s: wrote %d of %d bytes", pid, addr, n, len(data))
	}
	return nil
}
