package geom

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a rigid frame: rotation by Quaternion followed by translation by Position.
type Transform struct {
	Position   mgl64.Vec3
	Quaternion mgl64.Quat
}

func IdentityTransform() Transform {
	return Transform{Quaternion: mgl64.QuatIdent()}
}

func NewTransform(position mgl64.Vec3, q mgl64.Quat) Transform {
	return Transform{Position: position, Quaternion: q}
}

func (t Transform) PointToLocal(p mgl64.Vec3) mgl64.Vec3 {
	return PointToLocalFrame(t.Position, t.Quaternion, p)
}

func (t Transform) PointToWorld(p mgl64.Vec3) mgl64.Vec3 {
	return PointToWorldFrame(t.Position, t.Quaternion, p)
}

func (t Transform) VectorToLocal(v mgl64.Vec3) mgl64.Vec3 {
	return VectorToLocalFrame(t.Quaternion, v)
}

func (t Transform) VectorToWorld(v mgl64.Vec3) mgl64.Vec3 {
	return VectorToWorldFrame(t.Quaternion, v)
}

func PointToLocalFrame(position mgl64.Vec3, q mgl64.Quat, worldPoint mgl64.Vec3) mgl64.Vec3 {
	return q.Conjugate().Rotate(worldPoint.Sub(position))
}

func PointToWorldFrame(position mgl64.Vec3, q mgl64.Quat, localPoint mgl64.Vec3) mgl64.Vec3 {
	return q.Rotate(localPoint).Add(position)
}

func VectorToWorldFrame(q mgl64.Quat, localVector mgl64.Vec3) mgl64.Vec3 {
	return q.Rotate(localVector)
}

func VectorToLocalFrame(q mgl64.Quat, worldVector mgl64.Vec3) mgl64.Vec3 {
	return q.Conjugate().Rotate(worldVector)
}
