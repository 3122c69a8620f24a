package pose

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestIdentity(t *testing.T) {
	id := Identity()
	want := mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
	if !mat.Equal(id, want) {
		t.Errorf("Identity() = %v, want identity", mat.Formatted(id))
	}
	if !IsValidTransform(id) {
		t.Error("identity should be a valid transform")
	}
}

func TestSensor_ZeroValueIsIdentity(t *testing.T) {
	var s Sensor
	if !s.IsIdentity() {
		t.Error("zero Sensor should report identity")
	}
	if !mat.Equal(s.Transform(), Identity()) {
		t.Error("zero Sensor should produce the identity transform")
	}
}

func TestSensor_Transform(t *testing.T) {
	// 90 degrees about Z, translated.
	half := math.Pi / 4
	s := Sensor{
		Origin:      r3.Vec{X: 1, Y: 2, Z: 3},
		Orientation: quat.Number{Real: math.Cos(half), Kmag: math.Sin(half)},
	}
	if s.IsIdentity() {
		t.Fatal("rotated sensor reported identity")
	}

	got := s.Transform()
	want := mat.NewDense(4, 4, []float64{
		0, -1, 0, 1,
		1, 0, 0, 2,
		0, 0, 1, 3,
		0, 0, 0, 1,
	})
	if !mat.EqualApprox(got, want, 1e-12) {
		t.Errorf("Transform() =\n%v\nwant\n%v", mat.Formatted(got), mat.Formatted(want))
	}
	if !IsValidTransform(got) {
		t.Error("rotation transform should be valid")
	}
}

func TestSensor_TransformNormalisesQuaternion(t *testing.T) {
	s := Sensor{Orientation: quat.Number{Real: 2}}
	if !mat.EqualApprox(s.Transform(), Identity(), 1e-12) {
		t.Error("scaled identity quaternion should normalise to identity")
	}
}

func TestIsValidTransform(t *testing.T) {
	tests := []struct {
		name string
		m    mat.Matrix
		want bool
	}{
		{"nil", nil, false},
		{"wrong dims", mat.NewDense(3, 3, nil), false},
		{"reflection", mat.NewDense(4, 4, []float64{
			-1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			0, 0, 0, 1,
		}), false},
		{"bad last row", mat.NewDense(4, 4, []float64{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			0, 0, 1, 1,
		}), false},
		{"identity", Identity(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidTransform(tt.m); got != tt.want {
				t.Errorf("IsValidTransform() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArray(t *testing.T) {
	s := Sensor{Origin: r3.Vec{X: 4, Y: 5, Z: 6}}
	a := Array(s.Transform())
	if a[3] != 4 || a[7] != 5 || a[11] != 6 || a[15] != 1 {
		t.Errorf("unexpected translation column in %v", a)
	}
	if Array(nil) != ([16]float64{}) {
		t.Error("Array(nil) should be zero")
	}
}
