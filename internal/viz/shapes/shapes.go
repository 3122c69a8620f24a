// Package shapes generates polygonal datasets for the annotative primitives:
// spheres, line segments and outline polygons.
package shapes

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/pointviz/internal/viz/cells"
	"github.com/banshee-data/pointviz/internal/viz/cloud"
	"github.com/banshee-data/pointviz/internal/viz/scene"
)

// MinResolution is the smallest usable sphere resolution on either axis.
const MinResolution = 3

// Sphere tessellates a UV sphere. phiRes counts latitude steps from pole to
// pole and thetaRes counts longitude steps. The poles are single vertices.
func Sphere(center r3.Vec, radius float64, phiRes, thetaRes int) *scene.PolyData {
	phiRes = max(phiRes, MinResolution)
	thetaRes = max(thetaRes, MinResolution)

	rings := phiRes - 1
	pts := make([]float32, 0, 3*(2+rings*thetaRes))
	push := func(v r3.Vec) {
		pts = append(pts, float32(v.X), float32(v.Y), float32(v.Z))
	}

	push(r3.Add(center, r3.Vec{Z: radius}))
	push(r3.Add(center, r3.Vec{Z: -radius}))
	for i := 1; i <= rings; i++ {
		phi := math.Pi * float64(i) / float64(phiRes)
		sp, cp := math.Sincos(phi)
		for j := 0; j < thetaRes; j++ {
			theta := 2 * math.Pi * float64(j) / float64(thetaRes)
			st, ct := math.Sincos(theta)
			push(r3.Add(center, r3.Scale(radius, r3.Vec{X: sp * ct, Y: sp * st, Z: cp})))
		}
	}

	ringStart := func(i int) int64 { return int64(2 + i*thetaRes) }
	ntri := 2*thetaRes + 2*thetaRes*(rings-1)
	b := cells.NewBuilder(ntri, 3*ntri)
	tri := func(a, c, d int64) {
		b.BeginPolygon(3)
		b.PushIndex(a)
		b.PushIndex(c)
		b.PushIndex(d)
	}
	for j := 0; j < thetaRes; j++ {
		jn := (j + 1) % thetaRes
		tri(0, ringStart(0)+int64(j), ringStart(0)+int64(jn))
	}
	for i := 0; i < rings-1; i++ {
		for j := 0; j < thetaRes; j++ {
			jn := (j + 1) % thetaRes
			a, c := ringStart(i)+int64(j), ringStart(i)+int64(jn)
			d, e := ringStart(i+1)+int64(j), ringStart(i+1)+int64(jn)
			tri(a, d, c)
			tri(c, d, e)
		}
	}
	last := ringStart(rings - 1)
	for j := 0; j < thetaRes; j++ {
		jn := (j + 1) % thetaRes
		tri(1, last+int64(jn), last+int64(j))
	}
	polys, _ := b.Array()

	return &scene.PolyData{Points: pts, Polys: polys, Topology: scene.TopologyPolygon}
}

// Line returns a single segment from p1 to p2.
func Line(p1, p2 r3.Vec) *scene.PolyData {
	return &scene.PolyData{
		Points: []float32{
			float32(p1.X), float32(p1.Y), float32(p1.Z),
			float32(p2.X), float32(p2.Y), float32(p2.Z),
		},
		Lines:    cells.Segments(1),
		Topology: scene.TopologyLines,
	}
}

// ErrTooFewVertices is returned for outlines with fewer than three corners.
var ErrTooFewVertices = errors.New("shapes: polygon needs at least 3 vertices")

// Polygon returns a single closed outline through every point of b in order.
// Non-finite points are rejected.
func Polygon(b *cloud.Buffer) (*scene.PolyData, error) {
	if b.Len() < 3 {
		return nil, ErrTooFewVertices
	}
	if !b.IsDense() {
		return nil, errors.New("shapes: polygon vertices must be finite")
	}
	pts := cloud.PackPositions(nil, b.Points, nil, 0)

	bld := cells.NewBuilder(1, b.Len())
	bld.BeginPolygon(b.Len())
	for i := range b.Points {
		bld.PushIndex(int64(i))
	}
	polys, _ := bld.Array()

	return &scene.PolyData{Points: pts, Polys: polys, Topology: scene.TopologyPolygon}, nil
}
