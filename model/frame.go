package model

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// Frame places a shape's local coordinates in the world. A zero Orientation
// is read as the identity rotation, so the zero Frame sits at the origin.
type Frame struct {
	Position    r3.Vector
	Orientation mgl64.Quat
	// Velocity is a constant world-space velocity; zero for stationary shapes.
	Velocity r3.Vector
}

// At returns a stationary, unrotated frame at position.
func At(position r3.Vector) Frame {
	return Frame{Position: position, Orientation: mgl64.QuatIdent()}
}

// Moving returns an unrotated frame at position with the given velocity.
func Moving(position, velocity r3.Vector) Frame {
	return Frame{Position: position, Orientation: mgl64.QuatIdent(), Velocity: velocity}
}

// Rotated returns a copy of f whose orientation is a rotation of angle
// radians about axis.
func (f Frame) Rotated(angle float64, axis r3.Vector) Frame {
	q := mgl64.QuatRotate(angle, toVec3(axis.Normalize()))
	f.Orientation = q.Mul(f.rotation()).Normalize()
	return f
}

// ToWorld maps a local vector to world coordinates.
func (f Frame) ToWorld(local r3.Vector) r3.Vector {
	return f.Position.Add(f.Rotate(local))
}

// ToLocal maps a world vector to local coordinates.
func (f Frame) ToLocal(world r3.Vector) r3.Vector {
	d := world.Sub(f.Position)
	q := f.rotation()
	if isIdentity(q) {
		return d
	}
	return fromVec3(q.Inverse().Rotate(toVec3(d)))
}

// Rotate applies the orientation to a direction without translating it.
func (f Frame) Rotate(v r3.Vector) r3.Vector {
	q := f.rotation()
	if isIdentity(q) {
		return v
	}
	return fromVec3(q.Rotate(toVec3(v)))
}

// Translated returns a copy of f moved by delta.
func (f Frame) Translated(delta r3.Vector) Frame {
	f.Position = f.Position.Add(delta)
	return f
}

func (f Frame) rotation() mgl64.Quat {
	if f.Orientation == (mgl64.Quat{}) {
		return mgl64.QuatIdent()
	}
	return f.Orientation
}

func isIdentity(q mgl64.Quat) bool {
	return q == mgl64.QuatIdent()
}

func toVec3(v r3.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromVec3(v mgl64.Vec3) r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}
