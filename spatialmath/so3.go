package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Below this squared angle the closed forms of the exponential map and its Jacobian lose precision
// (and divide by zero at the origin), so their Taylor expansions are used instead.
const smallAngleSq = 1e-8

// R3ToVec3 converts an r3.Vector to an mgl64.Vec3.
func R3ToVec3(v r3.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// Vec3ToR3 converts an mgl64.Vec3 to an r3.Vector.
func Vec3ToR3(v mgl64.Vec3) r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

// TransformR3 returns m*v.
func TransformR3(m mgl64.Mat3, v r3.Vector) r3.Vector {
	return Vec3ToR3(m.Mul3x1(R3ToVec3(v)))
}

// Skew returns the cross product matrix of v, so that Skew(v)*x == v.Cross(x).
func Skew(v r3.Vector) mgl64.Mat3 {
	return mgl64.Mat3FromRows(
		mgl64.Vec3{0, -v.Z, v.Y},
		mgl64.Vec3{v.Z, 0, -v.X},
		mgl64.Vec3{-v.Y, v.X, 0},
	)
}

// ExpMap maps a rotation vector (axis scaled by angle in radians) to its rotation matrix using the
// Rodrigues formula.
func ExpMap(v r3.Vector) *RotationMatrix {
	k := Skew(v)
	k2 := k.Mul3(k)
	thetaSq := v.Norm2()

	var a, b float64
	if thetaSq < smallAngleSq {
		a = 1 - thetaSq/6
		b = 0.5 - thetaSq/24
	} else {
		theta := math.Sqrt(thetaSq)
		a = math.Sin(theta) / theta
		b = (1 - math.Cos(theta)) / thetaSq
	}
	return rotationMatrixFromMat3(mgl64.Ident3().Add(k.Mul(a)).Add(k2.Mul(b)))
}

// LogMap is the inverse of ExpMap, returning a rotation vector with angle in [0, pi].
func LogMap(rm *RotationMatrix) r3.Vector {
	q := rm.Quaternion()
	imag := r3.Vector{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
	n := imag.Norm()

	var scale float64
	if n < 1e-10 {
		scale = 2 / q.Real
	} else {
		scale = 2 * math.Atan2(n, q.Real) / n
	}
	return imag.Mul(scale)
}

// RightJacobian returns the right Jacobian of SO(3) at v, relating a small change of the rotation
// vector to a rotation perturbation applied on the right of ExpMap(v).
func RightJacobian(v r3.Vector) mgl64.Mat3 {
	k := Skew(v)
	k2 := k.Mul3(k)
	thetaSq := v.Norm2()

	var b, c float64
	if thetaSq < smallAngleSq {
		b = 0.5 - thetaSq/24
		c = 1.0/6 - thetaSq/120
	} else {
		theta := math.Sqrt(thetaSq)
		b = (1 - math.Cos(theta)) / thetaSq
		c = (theta - math.Sin(theta)) / (thetaSq * theta)
	}
	return mgl64.Ident3().Sub(k.Mul(b)).Add(k2.Mul(c))
}

// NormalizeRotation projects a nearly orthonormal matrix onto the closest rotation using its SVD.
func NormalizeRotation(m mgl64.Mat3) (*RotationMatrix, error) {
	data := make([]float64, 0, 9)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			data = append(data, m.At(r, c))
		}
	}
	if !allFinite(data) {
		return nil, errors.New("cannot normalize rotation with non-finite elements")
	}

	var svd mat.SVD
	if ok := svd.Factorize(mat.NewDense(3, 3, data), mat.SVDFull); !ok {
		return nil, errors.New("rotation normalization failed to factorize")
	}
	var u, v, r mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	r.Mul(&u, v.T())
	if mat.Det(&r) < 0 {
		// reflection: flip the direction of the smallest singular value
		for i := 0; i < 3; i++ {
			u.Set(i, 2, -u.At(i, 2))
		}
		r.Mul(&u, v.T())
	}
	return NewRotationMatrix(r.RawMatrix().Data)
}

func allFinite(s []float64) bool {
	return !floats.HasNaN(s) && !math.IsInf(floats.Max(s), 1) && !math.IsInf(floats.Min(s), -1)
}
