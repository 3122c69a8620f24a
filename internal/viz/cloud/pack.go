package cloud

// PackPositions writes the accepted points as interleaved xyz float32 values.
// dst is reused when its capacity allows, so repeated updates of the same
// cloud do not reallocate. The result always has length 3*accepted (or
// 3*len(points) when lookup is nil).
func PackPositions(dst []float32, points []Point, lookup Lookup, accepted int) []float32 {
	if lookup == nil {
		accepted = len(points)
	}
	dst = resizeFloat32(dst, 3*accepted)

	if lookup == nil {
		for i, p := range points {
			dst[3*i] = p.X
			dst[3*i+1] = p.Y
			dst[3*i+2] = p.Z
		}
		return dst
	}

	for i, p := range points {
		j := lookup[i]
		if j < 0 {
			continue
		}
		o := 3 * int(j)
		dst[o] = p.X
		dst[o+1] = p.Y
		dst[o+2] = p.Z
	}
	return dst
}

// PackColors writes the accepted colours as interleaved RGB bytes, dropping
// alpha. It follows the same slot assignment as PackPositions so vertex i and
// colour i always describe the same source point.
func PackColors(dst []uint8, c *Colors, lookup Lookup, accepted int) []uint8 {
	n := c.Len()
	if lookup == nil {
		accepted = n
	}
	dst = resizeUint8(dst, 3*accepted)

	for i := 0; i < n; i++ {
		j := int32(i)
		if lookup != nil {
			j = lookup[i]
			if j < 0 {
				continue
			}
		}
		src := i * c.Channels
		o := 3 * int(j)
		dst[o] = c.Data[src]
		dst[o+1] = c.Data[src+1]
		dst[o+2] = c.Data[src+2]
	}
	return dst
}

func resizeFloat32(s []float32, n int) []float32 {
	if cap(s) < n {
		return make([]float32, n)
	}
	return s[:n]
}

func resizeUint8(s []uint8, n int) []uint8 {
	if cap(s) < n {
		return make([]uint8, n)
	}
	return s[:n]
}
