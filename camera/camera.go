// Package camera provides the rigid camera transform written by the
// reserved camera resources.
//
// Matrices use golang.org/x/image/math/f32 conventions: f32.Mat4 is row
// major and transforms column vectors. Cameras look down -Z with +Y up.
package camera

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
	"golang.org/x/image/math/f32"
)

// MatrixSize is the size in bytes of a packed f32.Mat4.
const MatrixSize = 16 * 4

// Camera is a position plus an orientation.
type Camera struct {
	Position f32.Vec3
	Rotation Quat
}

// Identity returns a camera at the origin looking down -Z.
func Identity() Camera {
	return Camera{Rotation: IdentityQuat()}
}

// New returns a camera with the given placement. The rotation is
// normalized; a zero rotation becomes the identity.
func New(position f32.Vec3, rotation Quat) Camera {
	return Camera{Position: position, Rotation: normalizeQuat(rotation)}
}

// Forward returns the unit view direction.
func (c Camera) Forward() f32.Vec3 {
	return rotate(c.Rotation, f32.Vec3{0, 0, -1})
}

// Right returns the unit right vector.
func (c Camera) Right() f32.Vec3 {
	return rotate(c.Rotation, f32.Vec3{1, 0, 0})
}

// Up returns the unit up vector.
func (c Camera) Up() f32.Vec3 {
	return rotate(c.Rotation, f32.Vec3{0, 1, 0})
}

// Matrix returns the camera-to-world transform.
func (c Camera) Matrix() f32.Mat4 {
	r := rotationMatrix(c.Rotation)
	p := c.Position
	return f32.Mat4{
		r[0], r[1], r[2], p[0],
		r[3], r[4], r[5], p[1],
		r[6], r[7], r[8], p[2],
		0, 0, 0, 1,
	}
}

// ViewMatrix returns the world-to-camera transform, the inverse of Matrix.
// The inverse of a rigid transform is the transposed rotation with the
// translation rotated back.
func (c Camera) ViewMatrix() f32.Mat4 {
	r := rotationMatrix(c.Rotation)
	p := c.Position
	tx := -(r[0]*p[0] + r[3]*p[1] + r[6]*p[2])
	ty := -(r[1]*p[0] + r[4]*p[1] + r[7]*p[2])
	tz := -(r[2]*p[0] + r[5]*p[1] + r[8]*p[2])
	return f32.Mat4{
		r[0], r[3], r[6], tx,
		r[1], r[4], r[7], ty,
		r[2], r[5], r[8], tz,
		0, 0, 0, 1,
	}
}

// LookAt returns the camera turned to face target, keeping its position.
// If target coincides with the position, or the view direction is
// parallel to up, the camera is returned unchanged.
func (c Camera) LookAt(target, up f32.Vec3) Camera {
	f, ok := normalize(sub(target, c.Position))
	if !ok {
		return c
	}
	r, ok := normalize(cross(f, up))
	if !ok {
		return c
	}
	u := cross(r, f)
	// Columns are right, up and back (-forward).
	m := [9]float32{
		r[0], u[0], -f[0],
		r[1], u[1], -f[1],
		r[2], u[2], -f[2],
	}
	c.Rotation = quatFromMatrix(m)
	return c
}

// Bytes packs m column-major as little-endian float32, the layout WGSL
// expects for mat4x4<f32>.
func Bytes(m f32.Mat4) []byte {
	buf := make([]byte, MatrixSize)
	for col := range 4 {
		for row := range 4 {
			off := (col*4 + row) * 4
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(m[row*4+col]))
		}
	}
	return buf
}

func sub(a, b f32.Vec3) f32.Vec3 {
	return f32.Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func cross(a, b f32.Vec3) f32.Vec3 {
	return f32.Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize(v f32.Vec3) (f32.Vec3, bool) {
	l := math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l < 1e-6 {
		return v, false
	}
	return f32.Vec3{v[0] / l, v[1] / l, v[2] / l}, true
}
