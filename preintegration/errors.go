package preintegration

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/preintegration/utils"
)

var (
	// ErrNonPositiveTimeStep is returned when a sample's time step is zero or negative.
	ErrNonPositiveTimeStep = errors.New("time step must be positive")
	// ErrNonFiniteMeasurement is returned when a sample contains a NaN or infinite value.
	ErrNonFiniteMeasurement = errors.New("measurement must be finite")
	// ErrSingularCovariance is returned when the covariance cannot be inverted.
	ErrSingularCovariance = errors.New("covariance is not positive definite")
)

// checkSample rejects samples that would silently corrupt the state.
func checkSample(omega, acc r3.Vector, dt float64) error {
	if !utils.IsFinite(dt) {
		return errors.Wrapf(ErrNonFiniteMeasurement, "time step %v", dt)
	}
	if dt <= 0 {
		return errors.Wrapf(ErrNonPositiveTimeStep, "got %v", dt)
	}
	if !utils.IsFinite(omega.X, omega.Y, omega.Z) {
		return errors.Wrapf(ErrNonFiniteMeasurement, "angular velocity %v", omega)
	}
	if !utils.IsFinite(acc.X, acc.Y, acc.Z) {
		return errors.Wrapf(ErrNonFiniteMeasurement, "linear acceleration %v", acc)
	}
	return nil
}
