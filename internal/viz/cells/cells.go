// Package cells builds the flat connectivity arrays renderers consume:
// per cell a count followed by that many vertex indices.
package cells

import (
	"errors"
	"fmt"

	"github.com/banshee-data/pointviz/internal/viz/cloud"
)

// Polygon is an ordered list of vertex indices in the original point index
// space. By convention the last stored index closes the loop and duplicates
// the first, so it is not emitted.
type Polygon []int

// CellArray is a flat count/indices encoding plus the number of cells.
type CellArray struct {
	Data  []int64
	Count int
}

// Each calls fn with the indices of every cell in order. The slice passed to
// fn aliases Data.
func (c CellArray) Each(fn func(i int, ids []int64)) {
	off := 0
	for i := 0; i < c.Count && off < len(c.Data); i++ {
		n := int(c.Data[off])
		off++
		fn(i, c.Data[off:off+n])
		off += n
	}
}

// Len returns the total length of the encoding.
func (c CellArray) Len() int { return len(c.Data) }

// ErrIncomplete is returned by Builder.Array when the last polygon received
// fewer indices than BeginPolygon declared.
var ErrIncomplete = errors.New("cells: incomplete polygon")

// Builder assembles a CellArray one polygon at a time.
type Builder struct {
	data    []int64
	count   int
	pending int
}

// NewBuilder returns a builder pre-sized for the given number of polygons
// and total index count.
func NewBuilder(polygons, totalIndices int) *Builder {
	return &Builder{data: make([]int64, 0, polygons+totalIndices)}
}

// BeginPolygon starts a cell of n indices. Starting a new cell before the
// previous one received all its indices is a programming error.
func (b *Builder) BeginPolygon(n int) {
	if b.pending != 0 {
		panic(fmt.Sprintf("cells: BeginPolygon with %d indices still pending", b.pending))
	}
	b.data = append(b.data, int64(n))
	b.count++
	b.pending = n
}

// PushIndex appends one index to the current cell.
func (b *Builder) PushIndex(i int64) {
	if b.pending == 0 {
		panic("cells: PushIndex outside a polygon")
	}
	b.data = append(b.data, i)
	b.pending--
}

// Array returns the finished encoding.
func (b *Builder) Array() (CellArray, error) {
	if b.pending != 0 {
		return CellArray{}, fmt.Errorf("%w: %d indices missing", ErrIncomplete, b.pending)
	}
	return CellArray{Data: b.data, Count: b.count}, nil
}

// BuildPolygons encodes polys through lookup. Each polygon emits
// len(p)-1 indices. A polygon referring to a point outside the lookup or to
// a rejected point is an error.
func BuildPolygons(polys []Polygon, lookup cloud.Lookup, points int) (CellArray, error) {
	total := 0
	for _, p := range polys {
		if len(p) < 2 {
			return CellArray{}, fmt.Errorf("polygon with %d indices has nothing to draw", len(p))
		}
		total += len(p) - 1
	}

	b := NewBuilder(len(polys), total)
	for pi, p := range polys {
		b.BeginPolygon(len(p) - 1)
		for _, orig := range p[:len(p)-1] {
			if orig < 0 || orig >= points {
				return CellArray{}, fmt.Errorf("polygon %d: index %d out of range [0,%d)", pi, orig, points)
			}
			j, ok := lookup.Map(orig)
			if !ok {
				return CellArray{}, fmt.Errorf("polygon %d: index %d refers to an invalid point", pi, orig)
			}
			b.PushIndex(int64(j))
		}
	}
	return b.Array()
}

// Vertices writes n single-vertex cells (1, i) into dst, reusing its
// capacity.
func Vertices(dst []int64, n int) CellArray {
	if cap(dst) < 2*n {
		dst = make([]int64, 2*n)
	} else {
		dst = dst[:2*n]
	}
	for i := 0; i < n; i++ {
		dst[2*i] = 1
		dst[2*i+1] = int64(i)
	}
	return CellArray{Data: dst, Count: n}
}

// Segments returns n two-vertex line cells (2, 2j, 2j+1) over a vertex array
// that stores segment endpoints pairwise.
func Segments(n int) CellArray {
	data := make([]int64, 3*n)
	for j := 0; j < n; j++ {
		data[3*j] = 2
		data[3*j+1] = int64(2 * j)
		data[3*j+2] = int64(2*j + 1)
	}
	return CellArray{Data: data, Count: n}
}
