package preintegration

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/preintegration/utils"
)

const (
	symmetryTolerance = 1e-12
	psdTolerance      = 1e-12
)

// NoiseModel holds the discrete-time measurement noise covariances of the gyroscope and the
// accelerometer. It is immutable once built and safe to share between states and goroutines.
type NoiseModel struct {
	gyro, accel       mgl64.Mat3
	gyroCov, accelCov *mat.SymDense
}

// NewNoiseModel returns a noise model for the given gyroscope and accelerometer covariances. Both
// must be symmetric and positive semidefinite.
func NewNoiseModel(gyro, accel mgl64.Mat3) (*NoiseModel, error) {
	gyroCov, err := covarianceFromMat3(gyro)
	if err != nil {
		return nil, errors.Wrap(err, "invalid gyroscope noise covariance")
	}
	accelCov, err := covarianceFromMat3(accel)
	if err != nil {
		return nil, errors.Wrap(err, "invalid accelerometer noise covariance")
	}
	return &NoiseModel{gyro: gyro, accel: accel, gyroCov: gyroCov, accelCov: accelCov}, nil
}

// NewDiagonalNoiseModel returns a noise model with independent per-axis variances.
func NewDiagonalNoiseModel(gyroVariance, accelVariance r3.Vector) (*NoiseModel, error) {
	return NewNoiseModel(diag(gyroVariance), diag(accelVariance))
}

// NewIsotropicNoiseModel returns a noise model from per-axis standard deviations that are the same
// on every axis.
func NewIsotropicNoiseModel(gyroSigma, accelSigma float64) (*NoiseModel, error) {
	g := utils.Square(gyroSigma)
	a := utils.Square(accelSigma)
	return NewDiagonalNoiseModel(r3.Vector{X: g, Y: g, Z: g}, r3.Vector{X: a, Y: a, Z: a})
}

// Gyro returns the gyroscope measurement covariance.
func (nm *NoiseModel) Gyro() mgl64.Mat3 {
	return nm.gyro
}

// Accel returns the accelerometer measurement covariance.
func (nm *NoiseModel) Accel() mgl64.Mat3 {
	return nm.accel
}

func diag(v r3.Vector) mgl64.Mat3 {
	return mgl64.Mat3{v.X, 0, 0, 0, v.Y, 0, 0, 0, v.Z}
}

func covarianceFromMat3(m mgl64.Mat3) (*mat.SymDense, error) {
	if !utils.IsFinite(m[:]...) {
		return nil, errors.New("covariance must be finite")
	}
	sym := mat.NewSymDense(3, nil)
	for r := 0; r < 3; r++ {
		for c := r; c < 3; c++ {
			if !utils.Float64AlmostEqual(m.At(r, c), m.At(c, r), symmetryTolerance) {
				return nil, errors.Errorf("covariance is not symmetric at (%d, %d)", r, c)
			}
			sym.SetSym(r, c, m.At(r, c))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, false); !ok {
		return nil, errors.New("covariance eigen decomposition failed")
	}
	values := eig.Values(nil)
	scale := math.Max(1, floats.Max(values))
	if minValue := floats.Min(values); minValue < -psdTolerance*scale {
		return nil, errors.Errorf("covariance is not positive semidefinite, smallest eigenvalue %v", minValue)
	}
	return sym, nil
}
