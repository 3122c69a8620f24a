package viz

import (
	"fmt"
	"io"

	"github.com/banshee-data/pointviz/internal/viz/scene"
)

// Entry describes one live ID.
type Entry struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Actor    string `json:"actor"`
	Viewport int    `json:"viewport"`
	Points   int    `json:"points"`
	Cells    int    `json:"cells"`
	Revision uint64 `json:"revision"`
}

// Snapshot is a point-in-time listing of both registries, sorted by ID.
type Snapshot struct {
	Clouds []Entry `json:"clouds"`
	Shapes []Entry `json:"shapes"`
}

func entry(id, kind string, a *scene.Actor, viewport int) Entry {
	e := Entry{ID: id, Kind: kind, Actor: a.Kind.String(), Viewport: viewport, Revision: a.Revision()}
	if a.Geometry != nil {
		e.Points = a.Geometry.NumPoints()
		e.Cells = a.Geometry.Primary().Count
	}
	return e
}

// Snapshot lists every live ID.
func (v *Visualizer) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := Snapshot{
		Clouds: make([]Entry, 0, v.clouds.Len()),
		Shapes: make([]Entry, 0, v.shapes.Len()),
	}
	for _, id := range v.clouds.IDs() {
		rec, _ := v.clouds.Get(id)
		s.Clouds = append(s.Clouds, entry(id, rec.Geometry.Kind(), rec.Actor, rec.Viewport))
	}
	for _, id := range v.shapes.IDs() {
		rec, _ := v.shapes.Get(id)
		s.Shapes = append(s.Shapes, entry(id, rec.Geometry.Kind(), rec.Actor, rec.Viewport))
	}
	return s
}

// PlotPane draws a top-down PNG of the actors attached to pane. The lock is
// held while plotting because updates rewrite geometry in place.
func (v *Visualizer) PlotPane(w io.Writer, pane int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return scene.PlotTopDown(w, fmt.Sprintf("Pane %d", pane), v.actorsIn(pane))
}

// actorsIn returns the live actors attached to pane, clouds first. Callers
// hold v.mu.
func (v *Visualizer) actorsIn(pane int) []*scene.Actor {
	var out []*scene.Actor
	for _, id := range v.clouds.IDs() {
		if rec, _ := v.clouds.Get(id); rec.Viewport == 0 || rec.Viewport == pane {
			out = append(out, rec.Actor)
		}
	}
	for _, id := range v.shapes.IDs() {
		if rec, _ := v.shapes.Get(id); rec.Viewport == 0 || rec.Viewport == pane {
			out = append(out, rec.Actor)
		}
	}
	return out
}
