package geom

import (
	"github.com/go-gl/mathgl/mgl64"
)

// IntegrateQuat advances q by the angular velocity w over dt. The result is not normalized.
func IntegrateQuat(q mgl64.Quat, w mgl64.Vec3, dt float64, angularFactor mgl64.Vec3) mgl64.Quat {
	ax, ay, az := w[0]*angularFactor[0], w[1]*angularFactor[1], w[2]*angularFactor[2]
	bx, by, bz, bw := q.V[0], q.V[1], q.V[2], q.W
	halfDt := dt * 0.5

	return mgl64.Quat{
		W: bw + halfDt*(-ax*bx-ay*by-az*bz),
		V: mgl64.Vec3{
			bx + halfDt*(ax*bw+ay*bz-az*by),
			by + halfDt*(ay*bw+az*bx-ax*bz),
			bz + halfDt*(az*bw+ax*by-ay*bx),
		},
	}
}

// NormalizeFast renormalizes a quaternion that is already close to unit length,
// using a first order approximation of 1/sqrt.
func NormalizeFast(q mgl64.Quat) mgl64.Quat {
	f := (3.0 - q.Dot(q)) / 2.0
	return mgl64.Quat{W: q.W * f, V: q.V.Mul(f)}
}

// Slerp interpolates along the shortest arc between a and b.
func Slerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatSlerp(a, b, t)
}

// Lerp interpolates positions linearly.
func Lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// RotationMatrix returns the 3x3 rotation matrix of a unit quaternion.
func RotationMatrix(q mgl64.Quat) mgl64.Mat3 {
	return q.Mat4().Mat3()
}

// ScaleInertia computes R * diag(d) * R^T, the world frame form of a diagonal local tensor.
func ScaleInertia(q mgl64.Quat, d mgl64.Vec3) mgl64.Mat3 {
	r := RotationMatrix(q)
	return r.Mul3(mgl64.Diag3(d)).Mul3(r.Transpose())
}
