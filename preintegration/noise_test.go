package preintegration

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestNewNoiseModel(t *testing.T) {
	gyro := mgl64.Mat3{1e-4, 1e-6, 0, 1e-6, 2e-4, 0, 0, 0, 3e-4}
	accel := diag(r3.Vector{X: 1e-2, Y: 1e-2, Z: 1e-2})
	nm, err := NewNoiseModel(gyro, accel)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, nm.Gyro(), test.ShouldResemble, gyro)
	test.That(t, nm.Accel(), test.ShouldResemble, accel)
	test.That(t, nm.gyroCov.At(0, 1), test.ShouldEqual, 1e-6)

	_, err = NewNoiseModel(mgl64.Mat3{}, mgl64.Mat3{})
	test.That(t, err, test.ShouldBeNil)

	for _, tc := range []struct {
		name  string
		gyro  mgl64.Mat3
		accel mgl64.Mat3
		msg   string
	}{
		{"asymmetric gyro", mgl64.Mat3{1e-4, 1e-5, 0, 0, 1e-4, 0, 0, 0, 1e-4}, accel, "invalid gyroscope noise covariance: covariance is not symmetric"},
		{"negative accel", gyro, diag(r3.Vector{X: -1, Y: 1, Z: 1}), "invalid accelerometer noise covariance: covariance is not positive semidefinite"},
		{"indefinite accel", gyro, mgl64.Mat3{1, 2, 0, 2, 1, 0, 0, 0, 1}, "not positive semidefinite"},
		{"nan gyro", mgl64.Mat3{math.NaN(), 0, 0, 0, 1, 0, 0, 0, 1}, accel, "covariance must be finite"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewNoiseModel(tc.gyro, tc.accel)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.msg)
		})
	}
}

func TestNewIsotropicNoiseModel(t *testing.T) {
	nm, err := NewIsotropicNoiseModel(0.1, 0.2)
	test.That(t, err, test.ShouldBeNil)
	for i := 0; i < 3; i++ {
		test.That(t, nm.Gyro().At(i, i), test.ShouldAlmostEqual, 0.01)
		test.That(t, nm.Accel().At(i, i), test.ShouldAlmostEqual, 0.04)
	}
	test.That(t, nm.Gyro().At(0, 2), test.ShouldEqual, 0.0)
}
