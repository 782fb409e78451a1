package utils

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestConfigValidationErrors(t *testing.T) {
	err := NewConfigValidationFieldRequiredError("imu.noise", "sample_rate_hz")
	test.That(t, err.Error(), test.ShouldEqual, `error validating "imu.noise": "sample_rate_hz" is required`)

	cause := errors.New("must be positive")
	err = NewConfigValidationError("imu.noise", cause)
	test.That(t, errors.Is(err, cause), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "must be positive")
}

func TestNewUnexpectedTypeError(t *testing.T) {
	for _, tc := range []struct {
		name     string
		expected interface{}
		actual   interface{}
		errStr   string
	}{
		{"one", "exp1", "actual1", `expected string but got string`},
		{"two", 1, "actual2", `expected int but got string`},
		{"three", nil, "actual3", `expected <nil> but got string`},
		{"four", []float64{}, 4, `expected []float64 but got int`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := NewUnexpectedTypeError(tc.expected, tc.actual)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.errStr)
		})
	}
}

func TestMath(t *testing.T) {
	test.That(t, Square(3), test.ShouldEqual, 9.0)
	test.That(t, Float64AlmostEqual(1, 1.05, 0.1), test.ShouldBeTrue)
	test.That(t, Float64AlmostEqual(1, 1.2, 0.1), test.ShouldBeFalse)
	test.That(t, IsFinite(1, -2, 0), test.ShouldBeTrue)
	test.That(t, IsFinite(), test.ShouldBeTrue)
	test.That(t, IsFinite(1, math.NaN()), test.ShouldBeFalse)
	test.That(t, IsFinite(math.Inf(-1)), test.ShouldBeFalse)
}
