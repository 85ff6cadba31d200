// Package mem layers typed access on top of a target.Handle: scalar
// reads and writes with a fixed little-endian layout, contiguous
// array reads, string decoding, and pointer-chain resolution.
//
// An Accessor is stateless. It never caches, never retries, and holds
// no position; every call stands alone against the handle.
package mem

import (
	"encoding/binary"
	"fmt"

	"memprobe/target"
)

// Accessor performs typed memory operations through a Handle.
type Accessor struct {
	h       target.Handle
	ptrSize target.Size
}

// Option configures an Accessor.
type Option func(*Accessor)

// WithPointerSize sets the width of pointers in the target's address
// space. 8 (the default) and 4 are supported; pointer reads and chain
// hops use this width.
func WithPointerSize(n uint) Option {
	return func(a *Accessor) {
		a.ptrSize = target.Size(n)
	}
}

// New creates an Accessor over the given handle.
func New(h target.Handle, opts ...Option) *Accessor {
	a := &Accessor{
		h:       h,
		ptrSize: 8,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handle returns the underlying process handle.
func (a *Accessor) Handle() target.Handle {
	return a.h
}

// ReadBytes copies size bytes from the target starting at addr.
// All-or-nothing, same contract as Handle.ReadRaw; exposed as the
// stable operation for opaque blobs.
func (a *Accessor) ReadBytes(addr target.Address, size target.Size) ([]byte, error) {
	return a.h.ReadRaw(addr, size)
}

// WriteBytes copies data into the target starting at addr.
func (a *Accessor) WriteBytes(addr target.Address, data []byte) error {
	return a.h.WriteRaw(addr, data)
}

// ReadPointer reads a pointer-width value at addr and returns it as
// an Address. A 4-byte pointer is zero-extended.
func (a *Accessor) ReadPointer(addr target.Address) (target.Address, error) {
	data, err := a.h.ReadRaw(addr, a.ptrSize)
	if err != nil {
		return 0, err
	}
	if a.ptrSize == 4 {
		return target.Address(binary.LittleEndian.Uint32(data)), nil
	}
	return target.Address(binary.LittleEndian.Uint64(data)), nil
}

// Resolve walks an offset chain starting at base: each hop reads a
// pointer at current+offset and makes the value the new current
// address. An empty chain returns base unchanged.
//
// All-or-nothing: the first hop that cannot be read fails the whole
// resolve, no partial address is returned. A dereferenced value of
// zero is not rejected here; it propagates to the next hop, where the
// read fails on its own if zero is unmapped.
func (a *Accessor) Resolve(base target.Address, offsets ...int64) (target.Address, error) {
	current := base
	for i, off := range offsets {
		addr := current + target.Address(off)
		ptr, err := a.ReadPointer(addr)
		if err != nil {
			return 0, fmt.Errorf("resolve: hop %d at %s (base %s + %#x): %w",
				i, addr, current, uint64(off), err)
		}
		current = ptr
	}
	return current, nil
}
