// Package viz turns point buffers and shape parameters into renderer actors
// and tracks them under caller-chosen IDs so scenes can be updated
// incrementally from frame to frame.
package viz

import (
	"sync"

	"github.com/banshee-data/pointviz/internal/config"
	"github.com/banshee-data/pointviz/internal/viz/registry"
	"github.com/banshee-data/pointviz/internal/viz/scene"
)

// Color is an 8-bit RGB colour.
type Color = scene.Color

// Common colours.
var (
	Gray  = Color{R: 128, G: 128, B: 128}
	White = Color{R: 255, G: 255, B: 255}
	Red   = Color{R: 255}
	Green = Color{G: 255}
	Blue  = Color{B: 255}
)

// Policy is what an add operation does when its ID is already live.
type Policy int

const (
	// PolicyReject leaves the live object alone and fails.
	PolicyReject Policy = iota
	// PolicyMerge combines the new geometry with the live object's.
	PolicyMerge
	// PolicyReplace detaches the live object and installs the new one.
	PolicyReplace
)

// String returns the string representation of a Policy.
func (p Policy) String() string {
	switch p {
	case PolicyReject:
		return "reject"
	case PolicyMerge:
		return "merge"
	case PolicyReplace:
		return "replace"
	default:
		return "unknown"
	}
}

var policies = map[string]Policy{
	"AddPointCloud":         PolicyReplace,
	"AddPointCloudGeometry": PolicyReplace,
	"AddPointCloudNormals":  PolicyReject,
	"AddPolygonMesh":        PolicyReject,
	"AddPackedPolygonMesh":  PolicyReject,
	"AddPolygon":            PolicyMerge,
	"AddLine":               PolicyReject,
	"AddArrow":              PolicyReject,
	"AddSphere":             PolicyReject,
	"AddText3D":             PolicyReject,
}

// PolicyOf returns the duplicate policy of the add operation op. Unknown
// operations reject.
func PolicyOf(op string) Policy {
	if p, ok := policies[op]; ok {
		return p
	}
	return PolicyReject
}

// Options tune shape generation.
type Options struct {
	SpherePhiResolution   int
	SphereThetaResolution int
}

// DefaultOptions returns the stock tessellation settings.
func DefaultOptions() Options {
	return OptionsFromConfig(config.EmptyViewerConfig())
}

// OptionsFromConfig reads the scene settings from cfg.
func OptionsFromConfig(cfg *config.ViewerConfig) Options {
	return Options{
		SpherePhiResolution:   cfg.GetSpherePhiResolution(),
		SphereThetaResolution: cfg.GetSphereThetaResolution(),
	}
}

// Visualizer owns the cloud and shape registries and applies every add,
// update and remove to its renderer. Scene mutations are expected to come
// from a single goroutine; the mutex only lets diagnostics read a
// consistent view.
type Visualizer struct {
	mu     sync.Mutex
	r      scene.Renderer
	opts   Options
	clouds *registry.Registry[registry.CloudRecord]
	shapes *registry.Registry[registry.ShapeRecord]
}

// New returns a Visualizer drawing into r.
func New(r scene.Renderer, opts Options) *Visualizer {
	return &Visualizer{
		r:      r,
		opts:   opts,
		clouds: registry.New[registry.CloudRecord](),
		shapes: registry.New[registry.ShapeRecord](),
	}
}

// View runs fn while no scene mutation is in progress.
func (v *Visualizer) View(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn()
}

// Renderer returns the renderer the visualizer draws into.
func (v *Visualizer) Renderer() scene.Renderer { return v.r }

// HasCloud reports whether id is live in the cloud registry.
func (v *Visualizer) HasCloud(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.clouds.Contains(id)
}

// HasShape reports whether id is live in the shape registry.
func (v *Visualizer) HasShape(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.shapes.Contains(id)
}

// CloudActor returns the actor behind a cloud ID.
func (v *Visualizer) CloudActor(id string) (*scene.Actor, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	rec, ok := v.clouds.Get(id)
	return rec.Actor, ok
}

// ShapeActor returns the actor behind a shape ID.
func (v *Visualizer) ShapeActor(id string) (*scene.Actor, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	rec, ok := v.shapes.Get(id)
	return rec.Actor, ok
}
