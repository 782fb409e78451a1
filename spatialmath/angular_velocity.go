package spatialmath

import (
	"github.com/golang/geo/r3"
)

// AngularVelocity contains angular velocity in rad/s across x/y/z axes, as reported by a gyroscope.
type AngularVelocity r3.Vector

// R3ToAngVel converts an r3.Vector to an AngularVelocity.
func R3ToAngVel(vec r3.Vector) AngularVelocity {
	return AngularVelocity(vec)
}

// R3 returns the angular velocity as an r3.Vector.
func (av AngularVelocity) R3() r3.Vector {
	return r3.Vector(av)
}

// OrientationToAngularVel calculates the constant angular velocity which produces the given orientation
// change over a time difference.
func OrientationToAngularVel(o Orientation, dt float64) AngularVelocity {
	return R3ToAngVel(LogMap(o.RotationMatrix()).Mul(1 / dt))
}

// RotMatToAngVel calculates an angular velocity based on an orientation change expressed in rotation matrices
// over a time difference.
func RotMatToAngVel(diffRm RotationMatrix, dt float64) AngularVelocity {
	return OrientationToAngularVel(&diffRm, dt)
}

// AngVelToRotMat returns the orientation change produced by holding av for dt.
func AngVelToRotMat(av AngularVelocity, dt float64) *RotationMatrix {
	return ExpMap(av.R3().Mul(dt))
}
