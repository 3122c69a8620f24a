// Package scene is the renderer-facing model: polygonal datasets, actors
// with visual properties, and the Renderer interface that attaches actors to
// viewport panes.
package scene

import (
	"github.com/banshee-data/pointviz/internal/viz/cells"
)

// Topology records which cell array carries a dataset's primary geometry.
type Topology int

const (
	TopologyNone Topology = iota
	TopologyVertices
	TopologyLines
	TopologyPolygon
	TopologyStrips
)

// String returns the string representation of a Topology.
func (t Topology) String() string {
	switch t {
	case TopologyVertices:
		return "vertices"
	case TopologyLines:
		return "lines"
	case TopologyPolygon:
		return "polygon"
	case TopologyStrips:
		return "strips"
	default:
		return "none"
	}
}

// PolyData is a polygonal dataset: interleaved xyz positions, optional
// interleaved rgb colours (one triple per point), and cell arrays over the
// point indices.
type PolyData struct {
	Points []float32
	Colors []uint8

	Verts  cells.CellArray
	Lines  cells.CellArray
	Polys  cells.CellArray
	Strips cells.CellArray

	Topology Topology
}

// NumPoints returns the number of positions.
func (pd *PolyData) NumPoints() int {
	if pd == nil {
		return 0
	}
	return len(pd.Points) / 3
}

// HasColors reports whether every point carries a colour.
func (pd *PolyData) HasColors() bool {
	return pd != nil && len(pd.Colors) > 0 && len(pd.Colors) == len(pd.Points)
}

// Primary returns the cell array selected by Topology.
func (pd *PolyData) Primary() cells.CellArray {
	switch pd.Topology {
	case TopologyVertices:
		return pd.Verts
	case TopologyLines:
		return pd.Lines
	case TopologyPolygon:
		return pd.Polys
	case TopologyStrips:
		return pd.Strips
	default:
		return cells.CellArray{}
	}
}

// AppendPolyData returns a new dataset holding the union of a and b. Cell
// indices of b are shifted past the points of a. Colours survive only when
// both inputs carry them. The topology of a wins unless a is empty.
func AppendPolyData(a, b *PolyData) *PolyData {
	off := int64(a.NumPoints())
	out := &PolyData{
		Points:   make([]float32, 0, len(a.Points)+len(b.Points)),
		Verts:    appendCells(a.Verts, b.Verts, off),
		Lines:    appendCells(a.Lines, b.Lines, off),
		Polys:    appendCells(a.Polys, b.Polys, off),
		Strips:   appendCells(a.Strips, b.Strips, off),
		Topology: a.Topology,
	}
	if out.Topology == TopologyNone || a.NumPoints() == 0 {
		out.Topology = b.Topology
	}
	out.Points = append(append(out.Points, a.Points...), b.Points...)
	if a.HasColors() && b.HasColors() {
		out.Colors = make([]uint8, 0, len(a.Colors)+len(b.Colors))
		out.Colors = append(append(out.Colors, a.Colors...), b.Colors...)
	}
	return out
}

func appendCells(a, b cells.CellArray, off int64) cells.CellArray {
	if a.Count == 0 && b.Count == 0 {
		return cells.CellArray{}
	}
	data := make([]int64, 0, len(a.Data)+len(b.Data))
	data = append(data, a.Data...)
	b.Each(func(_ int, ids []int64) {
		data = append(data, int64(len(ids)))
		for _, id := range ids {
			data = append(data, id+off)
		}
	})
	return cells.CellArray{Data: data, Count: a.Count + b.Count}
}
