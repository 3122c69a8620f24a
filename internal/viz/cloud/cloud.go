// Package cloud holds the dense point containers consumed by the visualizer
// together with the index remapping and buffer packing that turn them into
// renderer vertex arrays.
package cloud

import (
	"fmt"
	"math"

	"github.com/banshee-data/pointviz/internal/viz/pose"
)

// Point is a single 3D position.
type Point struct {
	X, Y, Z float32
}

// IsFinite reports whether every coordinate is neither NaN nor infinite.
func (p Point) IsFinite() bool {
	return isFinite32(p.X) && isFinite32(p.Y) && isFinite32(p.Z)
}

// Add returns p + n*scale using float32 arithmetic.
func (p Point) Add(n Point, scale float32) Point {
	return Point{X: p.X + n.X*scale, Y: p.Y + n.Y*scale, Z: p.Z + n.Z*scale}
}

func isFinite32(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Buffer is a dense, row-major array of points with a declared layout.
// Height 1 denotes an unorganized cloud.
type Buffer struct {
	Points []Point
	Width  int
	Height int

	// Sensor is the acquisition viewpoint. The zero value means identity.
	Sensor pose.Sensor
}

// FromPoints wraps pts as an unorganized buffer.
func FromPoints(pts []Point) *Buffer {
	return &Buffer{Points: pts, Width: len(pts), Height: 1}
}

// NewOrganized wraps pts as a width x height buffer.
func NewOrganized(width, height int, pts []Point) (*Buffer, error) {
	b := &Buffer{Points: pts, Width: width, Height: height}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Len returns the number of points.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Points)
}

// Organized reports whether the buffer has a real 2D layout.
func (b *Buffer) Organized() bool {
	return b != nil && b.Width > 1 && b.Height > 1
}

// At returns the point at (row, col).
func (b *Buffer) At(row, col int) Point {
	return b.Points[row*b.Width+col]
}

// IsDense reports whether every point is finite.
func (b *Buffer) IsDense() bool {
	for _, p := range b.Points {
		if !p.IsFinite() {
			return false
		}
	}
	return true
}

// SameShape reports whether b and o declare the same layout.
func (b *Buffer) SameShape(o *Buffer) bool {
	return b.Width == o.Width && b.Height == o.Height && len(b.Points) == len(o.Points)
}

// Validate checks that the element count matches the declared extent.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("nil point buffer")
	}
	if b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("negative extent %dx%d", b.Width, b.Height)
	}
	if len(b.Points) != b.Width*b.Height {
		return fmt.Errorf("point count %d does not match extent %dx%d", len(b.Points), b.Width, b.Height)
	}
	return nil
}

// RGB is an 8-bit colour triple.
type RGB struct {
	R, G, B uint8
}

// Colors is an interleaved per-point colour array with 3 (RGB) or 4 (RGBA)
// channels. Alpha is dropped when packed.
type Colors struct {
	Data     []uint8
	Channels int
}

// RGBColors builds a 3-channel Colors from a slice of triples.
func RGBColors(c []RGB) *Colors {
	data := make([]uint8, 0, 3*len(c))
	for _, v := range c {
		data = append(data, v.R, v.G, v.B)
	}
	return &Colors{Data: data, Channels: 3}
}

// Uniform returns n copies of c.
func Uniform(n int, c RGB) *Colors {
	data := make([]uint8, 3*n)
	for i := 0; i < n; i++ {
		data[3*i], data[3*i+1], data[3*i+2] = c.R, c.G, c.B
	}
	return &Colors{Data: data, Channels: 3}
}

// Len returns the number of colour tuples.
func (c *Colors) Len() int {
	if c == nil || c.Channels == 0 {
		return 0
	}
	return len(c.Data) / c.Channels
}

// At returns the i-th colour without alpha.
func (c *Colors) At(i int) RGB {
	o := i * c.Channels
	return RGB{R: c.Data[o], G: c.Data[o+1], B: c.Data[o+2]}
}

// Validate checks the channel layout and that the array holds exactly n tuples.
func (c *Colors) Validate(n int) error {
	if c.Channels != 3 && c.Channels != 4 {
		return fmt.Errorf("colour channels must be 3 or 4, got %d", c.Channels)
	}
	if len(c.Data)%c.Channels != 0 {
		return fmt.Errorf("colour data length %d is not a multiple of %d", len(c.Data), c.Channels)
	}
	if c.Len() != n {
		return fmt.Errorf("colour count %d does not match point count %d", c.Len(), n)
	}
	return nil
}
