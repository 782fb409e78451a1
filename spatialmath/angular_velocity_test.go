package spatialmath

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestConversions(t *testing.T) {
	dt := 0.5

	for _, rate := range []struct {
		TestName    string
		AngularRate r3.Vector
	}{
		{"unitary roll", r3.Vector{X: 1, Y: 0, Z: 0}},
		{"unitary pitch", r3.Vector{X: 0, Y: 1, Z: 0}},
		{"unitary yaw", r3.Vector{X: 0, Y: 0, Z: 1}},
		{"roll", r3.Vector{X: 2, Y: 0, Z: 0}},
		{"pitch", r3.Vector{X: 0, Y: 4, Z: 0}},
		{"yaw", r3.Vector{X: 0, Y: 0, Z: 5}},
		{"mixed", r3.Vector{X: 1, Y: -2, Z: 0.5}},
	} {
		t.Run(rate.TestName, func(t *testing.T) {
			diffRm := AngVelToRotMat(R3ToAngVel(rate.AngularRate), dt)
			av := RotMatToAngVel(*diffRm, dt)
			test.That(t, av.X, test.ShouldAlmostEqual, rate.AngularRate.X)
			test.That(t, av.Y, test.ShouldAlmostEqual, rate.AngularRate.Y)
			test.That(t, av.Z, test.ShouldAlmostEqual, rate.AngularRate.Z)
			test.That(t, av.R3(), test.ShouldResemble, r3.Vector(av))
		})
	}
}
