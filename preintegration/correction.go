package preintegration

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/preintegration/spatialmath"
)

// Deltas are preintegrated position, velocity and rotation changes.
type Deltas struct {
	P r3.Vector
	V r3.Vector
	R *spatialmath.RotationMatrix
}

// Corrected returns the deltas the state would hold had the gyroscope and accelerometer biases
// subtracted from every sample been larger by dBiasGyro and dBiasAcc, to first order, without
// integrating the samples again.
func (s *State) Corrected(dBiasGyro, dBiasAcc r3.Vector) Deltas {
	return Deltas{
		P: s.deltaP.
			Add(spatialmath.TransformR3(s.jPBiasGyro, dBiasGyro)).
			Add(spatialmath.TransformR3(s.jPBiasAcc, dBiasAcc)),
		V: s.deltaV.
			Add(spatialmath.TransformR3(s.jVBiasGyro, dBiasGyro)).
			Add(spatialmath.TransformR3(s.jVBiasAcc, dBiasAcc)),
		R: s.deltaR.MatMul(*spatialmath.ExpMap(spatialmath.TransformR3(s.jRBiasGyro, dBiasGyro))),
	}
}

// Information returns the inverse of the covariance, the weight an optimizer gives the
// preintegrated constraint.
func (s *State) Information() (*mat.SymDense, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(s.covariance); !ok {
		return nil, ErrSingularCovariance
	}
	info := mat.NewSymDense(stateDim, nil)
	if err := chol.InverseTo(info); err != nil {
		return nil, errors.Wrap(ErrSingularCovariance, err.Error())
	}
	return info, nil
}
