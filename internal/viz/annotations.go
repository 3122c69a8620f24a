package viz

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/pointviz/internal/viz/cloud"
	"github.com/banshee-data/pointviz/internal/viz/registry"
	"github.com/banshee-data/pointviz/internal/viz/scene"
	"github.com/banshee-data/pointviz/internal/viz/shapes"
)

// ArrowStyle selects how an arrow and its length label are drawn.
type ArrowStyle struct {
	Color Color
	// LabelColor, when set, colours the length label separately from the line.
	LabelColor *Color
	// DisplayLength, when set, puts the head at the first point and turns
	// the length label on or off.
	DisplayLength *bool
}

// BasicArrow is a filled arrow with a length label in a single colour.
func BasicArrow(c Color) ArrowStyle {
	return ArrowStyle{Color: c}
}

// LengthArrow is a filled arrow pointing at the first point whose length
// label is shown only when display is true.
func LengthArrow(c Color, display bool) ArrowStyle {
	return ArrowStyle{Color: c, DisplayLength: &display}
}

// DualColorArrow draws the line and the length label in different colours.
func DualColorArrow(line, label Color) ArrowStyle {
	return ArrowStyle{Color: line, LabelColor: &label}
}

func (s ArrowStyle) leader(p1, p2 r3.Vec) scene.Leader {
	l := scene.Leader{From: p1, To: p2, Filled: true, AutoLabel: true}
	if s.DisplayLength != nil {
		l.Placement = scene.ArrowAtPoint1
		l.AutoLabel = *s.DisplayLength
	}
	if s.LabelColor != nil {
		c := *s.LabelColor
		l.LabelColor = &c
	}
	return l
}

func finiteVec(p r3.Vec) bool {
	for _, f := range []float64{p.X, p.Y, p.Z} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func (v *Visualizer) admitShape(op, id string) (registry.ShapeRecord, bool, error) {
	rec, live := v.shapes.Get(id)
	if live && PolicyOf(op) == PolicyReject {
		return rec, true, duplicate(op, "shape", id)
	}
	return rec, live, nil
}

func (v *Visualizer) attachShape(op, id string, actor *scene.Actor, g registry.Geometry, viewport int) error {
	if err := v.r.AddActor(actor, viewport); err != nil {
		return renderFailed(op, id, err)
	}
	v.shapes.Insert(id, registry.ShapeRecord{Actor: actor, Viewport: viewport, Geometry: g})
	return nil
}

// AddPolygon draws the closed outline through pts. When id is already a
// live polygon the new outline is merged into it and both are drawn by a
// single actor.
func (v *Visualizer) AddPolygon(id string, pts *cloud.Buffer, c Color, viewport int) error {
	const op = "AddPolygon"
	v.mu.Lock()
	defer v.mu.Unlock()

	pd, err := shapes.Polygon(pts)
	if err != nil {
		return invalid(op, id, err)
	}
	old, live, err := v.admitShape(op, id)
	if err != nil {
		return err
	}
	parts := 1
	if live {
		prev, ok := old.Geometry.(registry.Polygon)
		if !ok {
			return topology(op, id, "cannot merge a polygon into a %s", old.Geometry.Kind())
		}
		pd = scene.AppendPolyData(old.Actor.Geometry, pd)
		parts += prev.Parts
	}

	actor := scene.NewGeometryActor(pd)
	actor.Props.Representation = scene.RepresentationWireframe
	actor.Props.Color = c
	actor.Props.ScalarVisibility = false

	if err := v.r.AddActor(actor, viewport); err != nil {
		return renderFailed(op, id, err)
	}
	if live {
		if err := v.r.RemoveActor(old.Actor, old.Viewport); err != nil {
			_ = v.r.RemoveActor(actor, viewport)
			return renderFailed(op, id, err)
		}
	}
	v.shapes.Insert(id, registry.ShapeRecord{Actor: actor, Viewport: viewport, Geometry: registry.Polygon{Parts: parts}})
	return nil
}

// AddLine draws a segment from p1 to p2.
func (v *Visualizer) AddLine(id string, p1, p2 r3.Vec, c Color, viewport int) error {
	const op = "AddLine"
	v.mu.Lock()
	defer v.mu.Unlock()

	if !finiteVec(p1) || !finiteVec(p2) {
		return invalidf(op, id, "line endpoints must be finite")
	}
	if _, _, err := v.admitShape(op, id); err != nil {
		return err
	}

	actor := scene.NewGeometryActor(shapes.Line(p1, p2))
	actor.Props.Representation = scene.RepresentationWireframe
	actor.Props.Color = c
	return v.attachShape(op, id, actor, registry.Line{}, viewport)
}

// AddArrow draws an overlay arrow from p1 to p2.
func (v *Visualizer) AddArrow(id string, p1, p2 r3.Vec, style ArrowStyle, viewport int) error {
	const op = "AddArrow"
	v.mu.Lock()
	defer v.mu.Unlock()

	if !finiteVec(p1) || !finiteVec(p2) {
		return invalidf(op, id, "arrow endpoints must be finite")
	}
	if _, _, err := v.admitShape(op, id); err != nil {
		return err
	}

	actor := scene.NewLeaderActor(style.leader(p1, p2))
	actor.Props.Color = style.Color
	return v.attachShape(op, id, actor, registry.Arrow{}, viewport)
}

func (v *Visualizer) sphereData(center r3.Vec, radius float64) (*scene.PolyData, registry.Sphere) {
	phi, theta := v.opts.SpherePhiResolution, v.opts.SphereThetaResolution
	return shapes.Sphere(center, radius, phi, theta),
		registry.Sphere{Center: center, Radius: radius, Resolution: [2]int{phi, theta}}
}

func checkSphere(op, id string, center r3.Vec, radius float64) error {
	if !finiteVec(center) {
		return invalidf(op, id, "sphere centre must be finite")
	}
	if math.IsNaN(radius) || math.IsInf(radius, 0) || radius < 0 {
		return invalidf(op, id, "sphere radius must be finite and non-negative, got %v", radius)
	}
	return nil
}

// AddSphere draws a tessellated sphere.
func (v *Visualizer) AddSphere(id string, center r3.Vec, radius float64, c Color, viewport int) error {
	const op = "AddSphere"
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := checkSphere(op, id, center, radius); err != nil {
		return err
	}
	if _, _, err := v.admitShape(op, id); err != nil {
		return err
	}

	pd, g := v.sphereData(center, radius)
	actor := scene.NewGeometryActor(pd)
	actor.Props.Representation = scene.RepresentationSurface
	actor.Props.Interpolation = scene.InterpolationFlat
	actor.Props.Color = c
	return v.attachShape(op, id, actor, g, viewport)
}

// UpdateSphere moves, resizes and recolours a live sphere in place.
func (v *Visualizer) UpdateSphere(id string, center r3.Vec, radius float64, c Color) error {
	const op = "UpdateSphere"
	v.mu.Lock()
	defer v.mu.Unlock()

	rec, ok := v.shapes.Get(id)
	if !ok {
		return notFound(op, "sphere", id)
	}
	if _, isSphere := rec.Geometry.(registry.Sphere); !isSphere {
		return topology(op, id, "cannot update a %s as a sphere", rec.Geometry.Kind())
	}
	if err := checkSphere(op, id, center, radius); err != nil {
		return err
	}

	pd, g := v.sphereData(center, radius)
	*rec.Actor.Geometry = *pd
	rec.Actor.Props.Color = c
	rec.Geometry = g
	v.shapes.Insert(id, rec)

	if err := v.r.Modified(rec.Actor); err != nil {
		return renderFailed(op, id, err)
	}
	return nil
}

// textTargets returns the registry IDs and panes a text billboard occupies.
// Viewport 0 places one billboard per pane: the first under tid, pane i
// under tid followed by i asterisks.
func textTargets(tid string, viewport, panes int) ([]string, []int) {
	if viewport != 0 {
		return []string{tid}, []int{viewport}
	}
	ids := make([]string, panes)
	idx := make([]int, panes)
	for i := 1; i <= panes; i++ {
		ids[i-1] = tid
		if i > 1 {
			ids[i-1] = tid + strings.Repeat("*", i)
		}
		idx[i-1] = i
	}
	return ids, idx
}

// AddText3D places camera-facing text at pos. An empty id defaults to the
// text itself.
func (v *Visualizer) AddText3D(text string, pos r3.Vec, scale float64, c Color, id string, viewport int) error {
	const op = "AddText3D"
	v.mu.Lock()
	defer v.mu.Unlock()

	tid := id
	if tid == "" {
		tid = text
	}
	if tid == "" {
		return invalidf(op, tid, "text and id are both empty")
	}
	if !finiteVec(pos) {
		return invalidf(op, tid, "text position must be finite")
	}
	if viewport < 0 || viewport > v.r.Viewports() {
		return invalidf(op, tid, "no viewport %d", viewport)
	}

	ids, panes := textTargets(tid, viewport, v.r.Viewports())
	for _, sid := range ids {
		if _, _, err := v.admitShape(op, sid); err != nil {
			return err
		}
	}

	actors := make([]*scene.Actor, len(ids))
	for i, pane := range panes {
		a := scene.NewFollowerActor(scene.Billboard{Text: text, Position: pos, Scale: scale, Pane: pane})
		a.Props.Color = c
		if err := v.r.AddActor(a, pane); err != nil {
			for _, prev := range actors[:i] {
				_ = v.r.RemoveActor(prev, prev.Billboard.Pane)
			}
			return renderFailed(op, tid, err)
		}
		actors[i] = a
	}
	for i, sid := range ids {
		v.shapes.Insert(sid, registry.ShapeRecord{Actor: actors[i], Viewport: panes[i], Geometry: registry.Text{Text: text}})
	}
	return nil
}

// RemoveShape detaches and forgets a shape ID.
func (v *Visualizer) RemoveShape(id string) error {
	const op = "RemoveShape"
	v.mu.Lock()
	defer v.mu.Unlock()

	rec, ok := v.shapes.Get(id)
	if !ok {
		return notFound(op, "shape", id)
	}
	if err := v.r.RemoveActor(rec.Actor, rec.Viewport); err != nil {
		return renderFailed(op, id, err)
	}
	v.shapes.Remove(id)
	return nil
}
