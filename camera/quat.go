package camera

import (
	"github.com/chewxy/math32"
	"golang.org/x/image/math/f32"
)

// Quat is a rotation quaternion stored as (x, y, z, w).
type Quat = f32.Vec4

// IdentityQuat returns the quaternion of no rotation.
func IdentityQuat() Quat {
	return Quat{0, 0, 0, 1}
}

// QuatFromAxisAngle returns the rotation of angle radians about axis.
// A zero axis yields the identity.
func QuatFromAxisAngle(axis f32.Vec3, angle float32) Quat {
	n, ok := normalize(axis)
	if !ok {
		return IdentityQuat()
	}
	s := math32.Sin(angle / 2)
	return Quat{n[0] * s, n[1] * s, n[2] * s, math32.Cos(angle / 2)}
}

// MulQuat returns a*b, the rotation b followed by a.
func MulQuat(a, b Quat) Quat {
	return Quat{
		a[3]*b[0] + a[0]*b[3] + a[1]*b[2] - a[2]*b[1],
		a[3]*b[1] - a[0]*b[2] + a[1]*b[3] + a[2]*b[0],
		a[3]*b[2] + a[0]*b[1] - a[1]*b[0] + a[2]*b[3],
		a[3]*b[3] - a[0]*b[0] - a[1]*b[1] - a[2]*b[2],
	}
}

func normalizeQuat(q Quat) Quat {
	l := math32.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if l < 1e-6 {
		return IdentityQuat()
	}
	return Quat{q[0] / l, q[1] / l, q[2] / l, q[3] / l}
}

// rotationMatrix returns the row-major 3x3 rotation of a unit quaternion.
func rotationMatrix(q Quat) [9]float32 {
	x, y, z, w := q[0], q[1], q[2], q[3]
	return [9]float32{
		1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w),
		2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w),
		2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y),
	}
}

func rotate(q Quat, v f32.Vec3) f32.Vec3 {
	m := rotationMatrix(q)
	return f32.Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

// quatFromMatrix converts a row-major rotation matrix (Shepperd's method).
func quatFromMatrix(m [9]float32) Quat {
	trace := m[0] + m[4] + m[8]
	var q Quat
	switch {
	case trace > 0:
		s := math32.Sqrt(trace+1) * 2
		q = Quat{(m[7] - m[5]) / s, (m[2] - m[6]) / s, (m[3] - m[1]) / s, s / 4}
	case m[0] > m[4] && m[0] > m[8]:
		s := math32.Sqrt(1+m[0]-m[4]-m[8]) * 2
		q = Quat{s / 4, (m[1] + m[3]) / s, (m[2] + m[6]) / s, (m[7] - m[5]) / s}
	case m[4] > m[8]:
		s := math32.Sqrt(1+m[4]-m[0]-m[8]) * 2
		q = Quat{(m[1] + m[3]) / s, s / 4, (m[5] + m[7]) / s, (m[2] - m[6]) / s}
	default:
		s := math32.Sqrt(1+m[8]-m[0]-m[4]) * 2
		q = Quat{(m[2] + m[6]) / s, (m[5] + m[7]) / s, s / 4, (m[3] - m[1]) / s}
	}
	return normalizeQuat(q)
}
