package shapes

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/pointviz/internal/viz/cloud"
	"github.com/banshee-data/pointviz/internal/viz/scene"
)

func TestSphere_Topology(t *testing.T) {
	pd := Sphere(r3.Vec{X: 1, Y: 2, Z: 3}, 2, 10, 10)

	// Two poles plus nine rings of ten.
	if got := pd.NumPoints(); got != 92 {
		t.Errorf("NumPoints = %d, want 92", got)
	}
	// Two caps of ten plus eight bands of twenty triangles.
	if pd.Polys.Count != 180 {
		t.Errorf("triangle count = %d, want 180", pd.Polys.Count)
	}
	if pd.Topology != scene.TopologyPolygon {
		t.Errorf("Topology = %v", pd.Topology)
	}

	for i := 0; i < pd.NumPoints(); i++ {
		v := r3.Vec{
			X: float64(pd.Points[3*i]) - 1,
			Y: float64(pd.Points[3*i+1]) - 2,
			Z: float64(pd.Points[3*i+2]) - 3,
		}
		if d := r3.Norm(v); math.Abs(d-2) > 1e-5 {
			t.Fatalf("point %d at distance %f from centre, want 2", i, d)
		}
	}

	pd.Polys.Each(func(i int, ids []int64) {
		for _, id := range ids {
			if id < 0 || int(id) >= pd.NumPoints() {
				t.Fatalf("triangle %d references vertex %d", i, id)
			}
		}
	})
}

func TestSphere_ClampsResolution(t *testing.T) {
	pd := Sphere(r3.Vec{}, 1, 0, 1)
	if got := pd.NumPoints(); got != 2+2*3 {
		t.Errorf("NumPoints = %d, want 8", got)
	}
}

func TestLine(t *testing.T) {
	pd := Line(r3.Vec{X: 1}, r3.Vec{Y: 2})
	if pd.NumPoints() != 2 || pd.Lines.Count != 1 {
		t.Errorf("line: points=%d cells=%d", pd.NumPoints(), pd.Lines.Count)
	}
	if pd.Points[4] != 2 {
		t.Errorf("endpoint y = %v, want 2", pd.Points[4])
	}
}

func TestPolygon(t *testing.T) {
	sq := cloud.FromPoints([]cloud.Point{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0}})
	pd, err := Polygon(sq)
	if err != nil {
		t.Fatal(err)
	}
	if pd.Polys.Count != 1 || pd.Polys.Len() != 5 {
		t.Errorf("polygon cells = %v", pd.Polys)
	}

	if _, err := Polygon(cloud.FromPoints(make([]cloud.Point, 2))); err != ErrTooFewVertices {
		t.Errorf("err = %v, want ErrTooFewVertices", err)
	}
	bad := cloud.FromPoints([]cloud.Point{{X: 0, Y: 0, Z: 0}, {X: float32(math.NaN()), Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}})
	if _, err := Polygon(bad); err == nil {
		t.Error("expected error for non-finite vertex")
	}
}
