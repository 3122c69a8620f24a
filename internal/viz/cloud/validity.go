package cloud

import "fmt"

// ValidityMode selects how points are accepted into packed geometry.
type ValidityMode int

const (
	// ValidityAll accepts every point without inspecting it.
	ValidityAll ValidityMode = iota
	// ValidityMask accepts points whose mask entry is true.
	ValidityMask
	// ValidityFinite accepts points whose coordinates are all finite.
	ValidityFinite
)

// String returns the string representation of a ValidityMode.
func (m ValidityMode) String() string {
	switch m {
	case ValidityAll:
		return "all"
	case ValidityMask:
		return "mask"
	case ValidityFinite:
		return "finite"
	default:
		return "unknown"
	}
}

// Validity is the per-call point acceptance filter. Only one mode can be
// active at a time.
type Validity struct {
	mode ValidityMode
	mask []bool
}

// AllValid is the dense fast path.
var AllValid = Validity{}

// Mask accepts point i when m[i] is true. A nil mask means AllValid.
func Mask(m []bool) Validity {
	if m == nil {
		return AllValid
	}
	return Validity{mode: ValidityMask, mask: m}
}

// MaskBytes accepts point i when m[i] is non-zero.
func MaskBytes(m []uint8) Validity {
	if m == nil {
		return AllValid
	}
	b := make([]bool, len(m))
	for i, v := range m {
		b[i] = v != 0
	}
	return Validity{mode: ValidityMask, mask: b}
}

// Finite accepts only points with finite coordinates.
func Finite() Validity {
	return Validity{mode: ValidityFinite}
}

// Mode returns the active mode.
func (v Validity) Mode() ValidityMode { return v.mode }

// Check validates the filter against a cloud of n points.
func (v Validity) Check(n int) error {
	if v.mode == ValidityMask && len(v.mask) != n {
		return fmt.Errorf("mask length %d does not match point count %d", len(v.mask), n)
	}
	return nil
}

func (v Validity) accepts(i int, p Point) bool {
	switch v.mode {
	case ValidityMask:
		return v.mask[i]
	case ValidityFinite:
		return p.IsFinite()
	default:
		return true
	}
}
