// Package w2s projects world-space 3D points through a camera's
// view-projection matrix into screen pixel coordinates.
package w2s

import (
	"memprobe/target"
)

// API selects the graphics-API convention the source matrix was built
// with. The two ecosystems differ in clip-space Z range ([0,1] for
// DirectX, [-1,1] for OpenGL) and handedness; the 2D pixel result is
// currently identical, but the branches stay separate so depth or
// culling logic based on clip.z has a place to diverge.
type API int

const (
	DirectX API = iota
	OpenGL
)

// wEpsilon guards the perspective divide: clip.w at or below this is
// treated as behind-the-camera and rejected rather than divided.
const wEpsilon = 1e-5

// Project maps a world point to screen pixels through a row-major
// 4x4 view-projection matrix. It returns false when the point is
// behind (or at) the camera plane; points that land outside the
// viewport still project successfully with out-of-range coordinates.
func Project(m target.Matrix4x4, world target.Vector3, width, height int, api API) (target.Vector2, bool) {
	// Row-major homogeneous product: row i of clip = row i of m
	// dotted with [x y z 1].
	clipX := m[0]*world.X + m[1]*world.Y + m[2]*world.Z + m[3]
	clipY := m[4]*world.X + m[5]*world.Y + m[6]*world.Z + m[7]
	clipW := m[12]*world.X + m[13]*world.Y + m[14]*world.Z + m[15]

	if clipW <= wEpsilon {
		return target.Vector2{}, false
	}

	ndcX := clipX / clipW
	ndcY := clipY / clipW

	halfW := float32(width) / 2
	halfH := float32(height) / 2

	screen := target.Vector2{
		X: halfW * (1 + ndcX),
	}
	switch api {
	case OpenGL:
		// GL's NDC Y also points up; screen origin stays top-left, so
		// the same flip applies. Kept distinct from the DirectX
		// branch: the conventions only coincide in 2D.
		screen.Y = halfH * (1 - ndcY)
	default:
		// DirectX: Y flipped, origin top-left.
		screen.Y = halfH * (1 - ndcY)
	}
	return screen, true
}
