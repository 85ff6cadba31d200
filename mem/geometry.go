package mem

import (
	"memprobe/target"
)

// ReadMatrix4x4 reads 16 contiguous float32 values at addr in memory
// order, which for the matrices this module consumes is row-major.
func (a *Accessor) ReadMatrix4x4(addr target.Address) (target.Matrix4x4, error) {
	var m target.Matrix4x4
	vals, err := ReadSlice[float32](a, addr, 16)
	if err != nil {
		return m, err
	}
	copy(m[:], vals)
	return m, nil
}

// ReadVector3 reads three contiguous float32 values at addr.
func (a *Accessor) ReadVector3(addr target.Address) (target.Vector3, error) {
	vals, err := ReadSlice[float32](a, addr, 3)
	if err != nil {
		return target.Vector3{}, err
	}
	return target.Vector3{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// ReadVector2 reads two contiguous float32 values at addr.
func (a *Accessor) ReadVector2(addr target.Address) (target.Vector2, error) {
	vals, err := ReadSlice[float32](a, addr, 2)
	if err != nil {
		return target.Vector2{}, err
	}
	return target.Vector2{X: vals[0], Y: vals[1]}, nil
}

// WriteVector3 writes the three components contiguously at addr.
func (a *Accessor) WriteVector3(addr target.Address, v target.Vector3) error {
	return WriteSlice(a, addr, []float32{v.X, v.Y, v.Z})
}

// WriteVector2 writes the two components contiguously at addr.
func (a *Accessor) WriteVector2(addr target.Address, v target.Vector2) error {
	return WriteSlice(a, addr, []float32{v.X, v.Y})
}

// WriteMatrix4x4 writes all 16 elements contiguously at addr.
func (a *Accessor) WriteMatrix4x4(addr target.Address, m target.Matrix4x4) error {
	return WriteSlice(a, addr, m[:])
}
