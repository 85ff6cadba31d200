// Package snapshot provides a target.Handle backed by a captured
// byte region instead of a live process. It serves offline analysis
// of dumped memory and gives tests a deterministic target.
package snapshot

import (
	"fmt"
	"sync"

	"memprobe/target"
)

// Region is an in-memory span of target address space starting at a
// fixed base. It implements target.Handle; reads and writes are
// bounds-checked against the captured data.
type Region struct {
	base    target.Address
	data    []byte
	modules []target.ModuleInfo
	pid     int

	mu     sync.Mutex
	closed bool
}

var _ target.Handle = (*Region)(nil)

// NewRegion creates a Region holding data at base. The modules, if
// any, are what ListModules reports; they normally describe spans
// inside the region so scans can resolve them.
func NewRegion(base target.Address, data []byte, modules ...target.ModuleInfo) *Region {
	return &Region{
		base:    base,
		data:    data,
		modules: modules,
	}
}

// Base returns the address of the first captured byte.
func (r *Region) Base() target.Address {
	return r.base
}

// Len returns the captured extent in bytes.
func (r *Region) Len() int {
	return len(r.data)
}

func (r *Region) Pid() int {
	return r.pid
}

func (r *Region) ListModules() ([]target.ModuleInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, target.ErrHandleInvalid
	}
	out := make([]target.ModuleInfo, len(r.modules))
	copy(out, r.modules)
	return out, nil
}

// span bounds-checks [addr, addr+size) against the captured data and
// returns the starting offset. Callers hold the mutex.
func (r *Region) span(addr target.Address, size target.Size) (uint64, error) {
	if addr < r.base {
		return 0, fmt.Errorf("address %s below region base %s", addr, r.base)
	}
	// Subtraction form so addresses near the top of the 64-bit space
	// cannot wrap the check.
	off := uint64(addr - r.base)
	if off > uint64(len(r.data)) || uint64(size) > uint64(len(r.data))-off {
		return 0, fmt.Errorf("range %s+%s exceeds region end %s",
			addr, size, r.base+target.Address(len(r.data)))
	}
	return off, nil
}

func (r *Region) ReadRaw(addr target.Address, size target.Size) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, target.ErrHandleInvalid
	}
	off, err := r.span(addr, size)
	if err != nil {
		return nil, err
	}
	out := make([]byte, size)
	copy(out, r.data[off:])
	return out, nil
}

func (r *Region) WriteRaw(addr target.Address, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return target.ErrHandleInvalid
	}
	off, err := r.span(addr, target.Size(len(data)))
	if err != nil {
		return err
	}
	copy(r.data[off:], data)
	return nil
}

func (r *Region) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}
