package cloud

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/banshee-data/pointviz/internal/viz/pose"
)

// Field describes a named value embedded in each packed point record.
type Field struct {
	Name   string
	Offset int // byte offset within the record
	Size   int // bytes
}

// Packed is an array of fixed-stride point records with named fields, the
// layout produced by sensor drivers that interleave xyz with colour and
// intensity. Positions are little-endian float32; the rgb/rgba field is four
// bytes in b, g, r, a order.
type Packed struct {
	Data   []byte
	Stride int
	Fields []Field
	Width  int
	Height int

	// Dense promises every point is finite, so no filtering is needed.
	Dense  bool
	Sensor pose.Sensor
}

// XYZRGBFields is the common 16-byte x, y, z, rgb layout.
var XYZRGBFields = []Field{
	{Name: "x", Offset: 0, Size: 4},
	{Name: "y", Offset: 4, Size: 4},
	{Name: "z", Offset: 8, Size: 4},
	{Name: "rgb", Offset: 12, Size: 4},
}

// Len returns the number of records.
func (p *Packed) Len() int {
	return p.Width * p.Height
}

// FieldIndex returns the index of the named field, or -1.
func (p *Packed) FieldIndex(name string) int {
	for i, f := range p.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Validate checks the record layout against the data length.
func (p *Packed) Validate() error {
	if p.Stride <= 0 {
		return fmt.Errorf("record stride must be positive, got %d", p.Stride)
	}
	if len(p.Data) != p.Len()*p.Stride {
		return fmt.Errorf("data length %d does not match %d records of %d bytes", len(p.Data), p.Len(), p.Stride)
	}
	for _, f := range p.Fields {
		if f.Offset < 0 || f.Offset+f.Size > p.Stride {
			return fmt.Errorf("field %q at offset %d size %d exceeds stride %d", f.Name, f.Offset, f.Size, p.Stride)
		}
	}
	for _, name := range []string{"x", "y", "z"} {
		if i := p.FieldIndex(name); i < 0 || p.Fields[i].Size != 4 {
			return fmt.Errorf("missing float32 field %q", name)
		}
	}
	return nil
}

// Buffer decodes the x, y and z fields into a dense point buffer.
func (p *Packed) Buffer() (*Buffer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ox := p.Fields[p.FieldIndex("x")].Offset
	oy := p.Fields[p.FieldIndex("y")].Offset
	oz := p.Fields[p.FieldIndex("z")].Offset

	pts := make([]Point, p.Len())
	for i := range pts {
		rec := p.Data[i*p.Stride : (i+1)*p.Stride]
		pts[i] = Point{
			X: math.Float32frombits(binary.LittleEndian.Uint32(rec[ox:])),
			Y: math.Float32frombits(binary.LittleEndian.Uint32(rec[oy:])),
			Z: math.Float32frombits(binary.LittleEndian.Uint32(rec[oz:])),
		}
	}
	return &Buffer{Points: pts, Width: p.Width, Height: p.Height, Sensor: p.Sensor}, nil
}

// Colors extracts the embedded rgb (or, failing that, rgba) field. The
// second return is false when the records carry no colour.
func (p *Packed) Colors() (*Colors, bool) {
	idx := p.FieldIndex("rgb")
	if idx < 0 {
		idx = p.FieldIndex("rgba")
	}
	if idx < 0 || p.Fields[idx].Size < 3 {
		return nil, false
	}
	off := p.Fields[idx].Offset

	data := make([]uint8, 3*p.Len())
	for i := 0; i < p.Len(); i++ {
		rec := p.Data[i*p.Stride+off:]
		data[3*i] = rec[2]
		data[3*i+1] = rec[1]
		data[3*i+2] = rec[0]
	}
	return &Colors{Data: data, Channels: 3}, true
}

// Validity returns the filter implied by the Dense flag.
func (p *Packed) Validity() Validity {
	if p.Dense {
		return AllValid
	}
	return Finite()
}

// EncodeXYZRGB packs points and colours into XYZRGBFields records. It is the
// inverse of Buffer/Colors and is mostly useful for fixtures and synthetic
// sources.
func EncodeXYZRGB(b *Buffer, c *Colors) *Packed {
	const stride = 16
	data := make([]byte, stride*b.Len())
	for i, pt := range b.Points {
		rec := data[i*stride:]
		binary.LittleEndian.PutUint32(rec[0:], math.Float32bits(pt.X))
		binary.LittleEndian.PutUint32(rec[4:], math.Float32bits(pt.Y))
		binary.LittleEndian.PutUint32(rec[8:], math.Float32bits(pt.Z))
		if c != nil && i < c.Len() {
			col := c.At(i)
			rec[12], rec[13], rec[14], rec[15] = col.B, col.G, col.R, 255
		}
	}
	return &Packed{
		Data:   data,
		Stride: stride,
		Fields: XYZRGBFields,
		Width:  b.Width,
		Height: b.Height,
		Dense:  b.IsDense(),
		Sensor: b.Sensor,
	}
}
