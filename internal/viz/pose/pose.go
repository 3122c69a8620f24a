// Package pose builds the 4x4 viewpoint transforms cached alongside
// point-cloud actors.
package pose

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// MatrixValidationTolerance is the tolerance for checking rotation matrix validity.
const MatrixValidationTolerance = 0.01

// Sensor is the acquisition viewpoint of a cloud: where the sensor sat and
// which way it faced.
type Sensor struct {
	Origin      r3.Vec
	Orientation quat.Number
}

// IdentitySensor returns a sensor at the origin with no rotation.
func IdentitySensor() Sensor {
	return Sensor{Orientation: quat.Number{Real: 1}}
}

// IsIdentity reports whether s carries no translation and no rotation. A zero
// quaternion counts as "unset" and therefore as identity.
func (s Sensor) IsIdentity() bool {
	if s.Origin != (r3.Vec{}) {
		return false
	}
	q := s.Orientation
	if quat.Abs(q) == 0 {
		return true
	}
	return q.Imag == 0 && q.Jmag == 0 && q.Kmag == 0
}

// Transform returns the row-major homogeneous transform for s.
func (s Sensor) Transform() *mat.Dense {
	q := s.Orientation
	n := quat.Abs(q)
	if n == 0 {
		q = quat.Number{Real: 1}
	} else {
		q = quat.Scale(1/n, q)
	}
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	return mat.NewDense(4, 4, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y), s.Origin.X,
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x), s.Origin.Y,
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y), s.Origin.Z,
		0, 0, 0, 1,
	})
}

// Identity returns a fresh 4x4 identity transform.
func Identity() *mat.Dense {
	return IdentitySensor().Transform()
}

// IsValidTransform checks that m is a 4x4 rigid transform: proper rotation
// block (det ≈ 1) and a [0 0 0 1] last row.
func IsValidTransform(m mat.Matrix) bool {
	if m == nil {
		return false
	}
	if r, c := m.Dims(); r != 4 || c != 4 {
		return false
	}

	rot := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rot.Set(i, j, m.At(i, j))
		}
	}
	if math.Abs(mat.Det(rot)-1.0) > MatrixValidationTolerance {
		return false
	}

	if m.At(3, 0) != 0 || m.At(3, 1) != 0 || m.At(3, 2) != 0 || math.Abs(m.At(3, 3)-1.0) > 0.001 {
		return false
	}
	return true
}

// Array flattens m into the row-major [16]float64 layout used on the wire.
func Array(m mat.Matrix) [16]float64 {
	var out [16]float64
	if m == nil {
		return out
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i*4+j] = m.At(i, j)
		}
	}
	return out
}
