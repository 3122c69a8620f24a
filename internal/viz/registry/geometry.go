package registry

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/pointviz/internal/viz/scene"
)

// Geometry tags what a record was created from so that updates can check
// they apply. The set of implementations is closed.
type Geometry interface {
	Kind() string
	isGeometry()
}

type PointCloud struct {
	// Handler names the geometry handler that produced the positions.
	Handler string
}

type PolygonMesh struct {
	Topology scene.Topology
}

type Normals struct {
	Level int
	Scale float32
}

type Polygon struct {
	// Parts counts the outlines merged into the actor.
	Parts int
}

type Line struct{}

type Arrow struct{}

type Sphere struct {
	Center     r3.Vec
	Radius     float64
	Resolution [2]int // phi, theta
}

type Text struct {
	Text string
}

func (PointCloud) Kind() string  { return "point_cloud" }
func (PolygonMesh) Kind() string { return "polygon_mesh" }
func (Normals) Kind() string     { return "normals" }
func (Polygon) Kind() string     { return "polygon" }
func (Line) Kind() string        { return "line" }
func (Arrow) Kind() string       { return "arrow" }
func (Sphere) Kind() string      { return "sphere" }
func (Text) Kind() string        { return "text" }

func (PointCloud) isGeometry()  {}
func (PolygonMesh) isGeometry() {}
func (Normals) isGeometry()     {}
func (Polygon) isGeometry()     {}
func (Line) isGeometry()        {}
func (Arrow) isGeometry()       {}
func (Sphere) isGeometry()      {}
func (Text) isGeometry()        {}
