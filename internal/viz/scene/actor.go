package scene

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Color is an 8-bit RGB colour.
type Color struct {
	R, G, B uint8
}

// Representation selects how surfaces are drawn.
type Representation int

const (
	RepresentationSurface Representation = iota
	RepresentationWireframe
	RepresentationPoints
)

// Interpolation selects the shading model.
type Interpolation int

const (
	InterpolationFlat Interpolation = iota
	InterpolationGouraud
)

// Properties are the visual attributes of an actor.
type Properties struct {
	Color            Color
	Representation   Representation
	Interpolation    Interpolation
	ScalarVisibility bool // draw per-point colours instead of Color
	BackfaceCulling  bool
	EdgeVisibility   bool
	Shading          bool
}

// ArrowPlacement selects which endpoints of a leader carry arrow heads.
type ArrowPlacement int

const (
	ArrowAtBoth ArrowPlacement = iota
	ArrowAtPoint1
)

// Leader is a 2D overlay arrow between two world positions.
type Leader struct {
	From, To   r3.Vec
	Filled     bool
	Placement  ArrowPlacement
	AutoLabel  bool // label the arrow with its length
	LabelColor *Color
}

// Billboard is text that always faces the camera of one pane.
type Billboard struct {
	Text     string
	Position r3.Vec
	Scale    float64
	Pane     int
}

// Kind distinguishes the three actor flavours.
type Kind int

const (
	KindGeometry Kind = iota
	KindLeader
	KindFollower
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindGeometry:
		return "geometry"
	case KindLeader:
		return "leader"
	case KindFollower:
		return "follower"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Actor is a renderable scene object. Exactly one of Geometry, Leader and
// Billboard is set, matching Kind.
type Actor struct {
	Kind      Kind
	Geometry  *PolyData
	Leader    *Leader
	Billboard *Billboard
	Props     Properties

	// UserMatrix is an optional 4x4 model transform.
	UserMatrix *mat.Dense

	revision uint64
}

// NewGeometryActor wraps a polygonal dataset.
func NewGeometryActor(pd *PolyData) *Actor {
	return &Actor{Kind: KindGeometry, Geometry: pd, Props: Properties{ScalarVisibility: pd.HasColors()}}
}

// NewLeaderActor wraps an overlay arrow.
func NewLeaderActor(l Leader) *Actor {
	return &Actor{Kind: KindLeader, Leader: &l}
}

// NewFollowerActor wraps a camera-facing text billboard.
func NewFollowerActor(b Billboard) *Actor {
	return &Actor{Kind: KindFollower, Billboard: &b}
}

// Revision counts how many times the actor was marked modified.
func (a *Actor) Revision() uint64 { return a.revision }

// Renderer attaches actors to viewport panes. Pane indices start at 1;
// viewport 0 addresses every pane.
type Renderer interface {
	Viewports() int
	AddActor(a *Actor, viewport int) error
	RemoveActor(a *Actor, viewport int) error
	// Modified signals that an attached actor's data changed in place.
	Modified(a *Actor) error
}
