package cloud

import "math"

// NormalSampleIndices returns the flat indices whose normals are drawn at
// the given level. Organized buffers are sampled on a 2D grid with stride
// floor(sqrt(level)) on both axes; unorganized buffers take every level-th
// point. level must be at least 1.
func NormalSampleIndices(b *Buffer, level int) []int {
	if b.Len() == 0 || level < 1 {
		return nil
	}

	if b.Organized() {
		step := int(math.Sqrt(float64(level)))
		if step < 1 {
			step = 1
		}
		cols := (b.Width-1)/step + 1
		rows := (b.Height-1)/step + 1
		idx := make([]int, 0, cols*rows)
		for y := 0; y < b.Height; y += step {
			for x := 0; x < b.Width; x += step {
				idx = append(idx, y*b.Width+x)
			}
		}
		return idx
	}

	n := (b.Len()-1)/level + 1
	idx := make([]int, n)
	for j := range idx {
		idx[j] = j * level
	}
	return idx
}

// PackNormalSegments returns, for each sampled index, the segment start
// (the point) and end (point + normal*scale) as six float32 values.
func PackNormalSegments(points, normals *Buffer, idx []int, scale float32) []float32 {
	out := make([]float32, 0, 6*len(idx))
	for _, i := range idx {
		p := points.Points[i]
		e := p.Add(normals.Points[i], scale)
		out = append(out, p.X, p.Y, p.Z, e.X, e.Y, e.Z)
	}
	return out
}
