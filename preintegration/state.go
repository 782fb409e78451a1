// Package preintegration summarizes a stream of bias-corrected inertial measurements into a single
// relative motion constraint: the accumulated position, velocity and rotation change between two
// instants, their first order sensitivity to gyroscope and accelerometer bias, and the covariance of
// the accumulated error state.
//
// The 9-dimensional error state is stacked as position, velocity, rotation tangent, in that order.
package preintegration

import (
	"github.com/edaniels/golog"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/preintegration/spatialmath"
)

// Offsets of the error state blocks.
const (
	posIdx = 0
	velIdx = 3
	rotIdx = 6

	stateDim = 9
	noiseDim = 3
)

// State is the preintegrated effect of all inertial measurements consumed since construction or
// the last Reset. It is not safe for concurrent mutation; its accessors return copies so any number
// of readers may use it once integration has stopped.
type State struct {
	noise  *NoiseModel
	logger golog.Logger

	deltaP r3.Vector
	deltaV r3.Vector
	deltaR *spatialmath.RotationMatrix

	// There is no accelerometer term for rotation: orientation only integrates the gyroscope.
	jPBiasGyro, jPBiasAcc mgl64.Mat3
	jVBiasGyro, jVBiasAcc mgl64.Mat3
	jRBiasGyro            mgl64.Mat3

	covariance  *mat.SymDense
	elapsedTime float64
}

// NewState returns a state with nothing integrated yet. A nil logger uses the global logger.
func NewState(noise *NoiseModel, logger golog.Logger) (*State, error) {
	if noise == nil {
		return nil, errors.New("noise model is required")
	}
	if logger == nil {
		logger = golog.Global()
	}
	s := &State{
		noise:      noise,
		logger:     logger,
		covariance: mat.NewSymDense(stateDim, nil),
	}
	s.Reset()
	return s, nil
}

// Reset returns the state to zero motion, identity rotation, zero Jacobians, zero covariance and
// zero elapsed time.
func (s *State) Reset() {
	s.deltaP = r3.Vector{}
	s.deltaV = r3.Vector{}
	s.deltaR = spatialmath.NewIdentityRotationMatrix()

	s.jPBiasGyro = mgl64.Mat3{}
	s.jPBiasAcc = mgl64.Mat3{}
	s.jVBiasGyro = mgl64.Mat3{}
	s.jVBiasAcc = mgl64.Mat3{}
	s.jRBiasGyro = mgl64.Mat3{}

	s.covariance.Zero()
	s.elapsedTime = 0
}

// Update integrates one sample: the bias-corrected angular velocity and linear acceleration measured
// at the start of the interval, and the interval length dt.
//
// Samples with a non-positive or non-finite dt, or with non-finite measurements, are rejected and the
// state is left unchanged, so that the caller can drop the sample and carry on.
func (s *State) Update(omega, acc r3.Vector, dt float64) error {
	if err := checkSample(omega, acc, dt); err != nil {
		s.logger.Warnw("rejected inertial sample", "omega", omega, "acc", acc, "dt", dt, "error", err)
		return err
	}
	s.logger.Debugw("preintegrating inertial sample", "omega", omega, "acc", acc, "dt", dt)

	dt2 := dt * dt
	dR := spatialmath.ExpMap(omega.Mul(dt))
	dRT := dR.Transpose().Mat3()
	jr := spatialmath.RightJacobian(omega.Mul(dt))

	// Everything below reads the rotation from before this step.
	r := s.deltaR.Mat3()
	rSkewAcc := r.Mul3(spatialmath.Skew(acc))

	// err_k+1 = A*err_k + Bg*err_gyro + Ca*err_acc
	a := identity(stateDim)
	setBlock(a, rotIdx, rotIdx, dRT)
	setBlock(a, velIdx, rotIdx, rSkewAcc.Mul(-dt))
	setBlock(a, posIdx, rotIdx, rSkewAcc.Mul(-0.5*dt2))
	setBlock(a, posIdx, velIdx, mgl64.Ident3().Mul(dt))

	bg := mat.NewDense(stateDim, noiseDim, nil)
	setBlock(bg, rotIdx, 0, jr.Mul(dt))

	ca := mat.NewDense(stateDim, noiseDim, nil)
	setBlock(ca, velIdx, 0, r.Mul(dt))
	setBlock(ca, posIdx, 0, r.Mul(0.5*dt2))

	var cov, gyroTerm, accTerm mat.Dense
	cov.Product(a, s.covariance, a.T())
	gyroTerm.Product(bg, s.noise.gyroCov, bg.T())
	accTerm.Product(ca, s.noise.accelCov, ca.T())
	cov.Add(&cov, &gyroTerm)
	cov.Add(&cov, &accTerm)

	deltaR, err := spatialmath.NormalizeRotation(r.Mul3(dR.Mat3()))
	if err != nil {
		return errors.Wrap(err, "cannot renormalize accumulated rotation")
	}

	// Position first, then velocity, then rotation: each reads the previous step's values of the ones
	// after it.
	s.jPBiasAcc = s.jPBiasAcc.Add(s.jVBiasAcc.Mul(dt)).Sub(r.Mul(0.5 * dt2))
	s.jPBiasGyro = s.jPBiasGyro.Add(s.jVBiasGyro.Mul(dt)).Sub(rSkewAcc.Mul3(s.jRBiasGyro).Mul(0.5 * dt2))
	s.jVBiasAcc = s.jVBiasAcc.Sub(r.Mul(dt))
	s.jVBiasGyro = s.jVBiasGyro.Sub(rSkewAcc.Mul3(s.jRBiasGyro).Mul(dt))
	s.jRBiasGyro = dRT.Mul3(s.jRBiasGyro).Sub(jr.Mul(dt))

	rAcc := s.deltaR.Mul(acc)
	s.deltaP = s.deltaP.Add(s.deltaV.Mul(dt)).Add(rAcc.Mul(0.5 * dt2))
	s.deltaV = s.deltaV.Add(rAcc.Mul(dt))
	s.deltaR = deltaR

	symmetrizeInto(s.covariance, &cov)
	s.elapsedTime += dt
	return nil
}

// Clone returns a deep copy of the state sharing only the immutable noise model and the logger.
func (s *State) Clone() *State {
	c := *s
	c.deltaR = s.DeltaR()
	c.covariance = s.Covariance()
	return &c
}

// DeltaP returns the accumulated position change.
func (s *State) DeltaP() r3.Vector {
	return s.deltaP
}

// DeltaV returns the accumulated velocity change.
func (s *State) DeltaV() r3.Vector {
	return s.deltaV
}

// DeltaR returns a copy of the accumulated rotation change.
func (s *State) DeltaR() *spatialmath.RotationMatrix {
	rm := *s.deltaR
	return &rm
}

// JPBiasGyro returns the Jacobian of the position change with respect to gyroscope bias.
func (s *State) JPBiasGyro() mgl64.Mat3 {
	return s.jPBiasGyro
}

// JPBiasAcc returns the Jacobian of the position change with respect to accelerometer bias.
func (s *State) JPBiasAcc() mgl64.Mat3 {
	return s.jPBiasAcc
}

// JVBiasGyro returns the Jacobian of the velocity change with respect to gyroscope bias.
func (s *State) JVBiasGyro() mgl64.Mat3 {
	return s.jVBiasGyro
}

// JVBiasAcc returns the Jacobian of the velocity change with respect to accelerometer bias.
func (s *State) JVBiasAcc() mgl64.Mat3 {
	return s.jVBiasAcc
}

// JRBiasGyro returns the Jacobian of the rotation change, as a right tangent perturbation, with
// respect to gyroscope bias.
func (s *State) JRBiasGyro() mgl64.Mat3 {
	return s.jRBiasGyro
}

// Covariance returns a copy of the 9x9 covariance of the stacked position, velocity and rotation
// errors.
func (s *State) Covariance() *mat.SymDense {
	c := mat.NewSymDense(stateDim, nil)
	c.CopySym(s.covariance)
	return c
}

// ElapsedTime returns the sum of all time steps consumed since the last reset.
func (s *State) ElapsedTime() float64 {
	return s.elapsedTime
}

func identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// setBlock writes the 3x3 block b into dst with its top left corner at (row, col).
func setBlock(dst *mat.Dense, row, col int, b mgl64.Mat3) {
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			dst.Set(row+r, col+c, b.At(r, c))
		}
	}
}

// symmetrizeInto stores (m + m^T) / 2 into dst, removing the asymmetry floating point error leaves
// behind.
func symmetrizeInto(dst *mat.SymDense, m mat.Matrix) {
	n := dst.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			dst.SetSym(i, j, 0.5*(m.At(i, j)+m.At(j, i)))
		}
	}
}
