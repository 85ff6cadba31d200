package mem

import (
	"encoding/binary"
	"fmt"
	"math"

	"memprobe/target"
)

// Scalar is the closed set of types with a defined fixed-width
// little-endian layout in target memory. Anything outside this set is
// rejected at compile time; there is no reflection fallback.
type Scalar interface {
	uint8 | uint16 | uint32 | uint64 |
		int8 | int16 | int32 | int64 |
		float32 | float64
}

func sizeOf[T Scalar]() target.Size {
	var v T
	switch any(v).(type) {
	case uint8, int8:
		return 1
	case uint16, int16:
		return 2
	case uint32, int32, float32:
		return 4
	default:
		return 8
	}
}

func decode[T Scalar](data []byte) T {
	var v T
	switch p := any(&v).(type) {
	case *uint8:
		*p = data[0]
	case *int8:
		*p = int8(data[0])
	case *uint16:
		*p = binary.LittleEndian.Uint16(data)
	case *int16:
		*p = int16(binary.LittleEndian.Uint16(data))
	case *uint32:
		*p = binary.LittleEndian.Uint32(data)
	case *int32:
		*p = int32(binary.LittleEndian.Uint32(data))
	case *uint64:
		*p = binary.LittleEndian.Uint64(data)
	case *int64:
		*p = int64(binary.LittleEndian.Uint64(data))
	case *float32:
		*p = math.Float32frombits(binary.LittleEndian.Uint32(data))
	case *float64:
		*p = math.Float64frombits(binary.LittleEndian.Uint64(data))
	}
	return v
}

func encode[T Scalar](data []byte, v T) {
	switch v := any(v).(type) {
	case uint8:
		data[0] = v
	case int8:
		data[0] = byte(v)
	case uint16:
		binary.LittleEndian.PutUint16(data, v)
	case int16:
		binary.LittleEndian.PutUint16(data, uint16(v))
	case uint32:
		binary.LittleEndian.PutUint32(data, v)
	case int32:
		binary.LittleEndian.PutUint32(data, uint32(v))
	case uint64:
		binary.LittleEndian.PutUint64(data, v)
	case int64:
		binary.LittleEndian.PutUint64(data, uint64(v))
	case float32:
		binary.LittleEndian.PutUint32(data, math.Float32bits(v))
	case float64:
		binary.LittleEndian.PutUint64(data, math.Float64bits(v))
	}
}

// Read reads one scalar of type T at addr.
func Read[T Scalar](a *Accessor, addr target.Address) (T, error) {
	data, err := a.h.ReadRaw(addr, sizeOf[T]())
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](data), nil
}

// ReadAt resolves the offset chain from base, then reads one scalar
// of type T at the resolved address. With no offsets it reads at base
// directly.
func ReadAt[T Scalar](a *Accessor, base target.Address, offsets ...int64) (T, error) {
	addr, err := a.Resolve(base, offsets...)
	if err != nil {
		var zero T
		return zero, err
	}
	return Read[T](a, addr)
}

// Write encodes v to its fixed-width layout and writes it at addr.
func Write[T Scalar](a *Accessor, addr target.Address, v T) error {
	data := make([]byte, sizeOf[T]())
	encode(data, v)
	return a.h.WriteRaw(addr, data)
}

// WriteAt resolves the offset chain from base, then writes v at the
// resolved address.
func WriteAt[T Scalar](a *Accessor, base target.Address, v T, offsets ...int64) error {
	addr, err := a.Resolve(base, offsets...)
	if err != nil {
		return err
	}
	return Write(a, addr, v)
}

// ReadSlice reads count contiguous scalars of type T starting at
// addr, stride sizeof(T), as a single underlying read. No partial
// slice is ever returned.
func ReadSlice[T Scalar](a *Accessor, addr target.Address, count int) ([]T, error) {
	if count < 0 {
		return nil, fmt.Errorf("read slice at %s: negative count %d", addr, count)
	}
	if count == 0 {
		return nil, nil
	}
	stride := sizeOf[T]()
	if count > math.MaxInt/int(stride) {
		return nil, fmt.Errorf("read slice at %s: count %d overflows byte size", addr, count)
	}
	data, err := a.h.ReadRaw(addr, target.Size(count)*stride)
	if err != nil {
		return nil, err
	}
	out := make([]T, count)
	for i := range out {
		out[i] = decode[T](data[target.Size(i)*stride:])
	}
	return out, nil
}

// WriteSlice writes the values contiguously starting at addr as a
// single underlying write.
func WriteSlice[T Scalar](a *Accessor, addr target.Address, values []T) error {
	if len(values) == 0 {
		return nil
	}
	stride := sizeOf[T]()
	data := make([]byte, target.Size(len(values))*stride)
	for i, v := range values {
		encode(data[target.Size(i)*stride:], v)
	}
	return a.h.WriteRaw(addr, data)
}
