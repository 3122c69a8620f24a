package cloud

// Lookup maps an original point index to its compacted vertex index. A nil
// Lookup is the identity. Entries for rejected points hold -1.
type Lookup []int32

// Identity reports whether l is the identity mapping.
func (l Lookup) Identity() bool { return l == nil }

// Map returns the compacted index of original index i and whether i was
// accepted.
func (l Lookup) Map(i int) (int32, bool) {
	if l == nil {
		return int32(i), true
	}
	if i < 0 || i >= len(l) {
		return -1, false
	}
	j := l[i]
	return j, j >= 0
}

// Compact computes which points survive v and where each lands in the
// compacted vertex array. Compacted indices are assigned in increasing
// original order starting at 0. The dense fast path returns a nil Lookup.
//
// A filter that rejects everything is not an error; it yields a zero count.
func Compact(points []Point, v Validity) (Lookup, int, error) {
	if err := v.Check(len(points)); err != nil {
		return nil, 0, err
	}
	if v.mode == ValidityAll {
		return nil, len(points), nil
	}

	lookup := make(Lookup, len(points))
	var next int32
	for i, p := range points {
		if v.accepts(i, p) {
			lookup[i] = next
			next++
		} else {
			lookup[i] = -1
		}
	}
	return lookup, int(next), nil
}
