// Package registry tracks which scene actor each caller-chosen ID refers to.
package registry

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/pointviz/internal/viz/scene"
)

// Registry maps string IDs to records. It has no eviction, capacity bound
// or expiry; records live until removed or overwritten.
type Registry[R any] struct {
	records map[string]R
}

// New returns an empty registry.
func New[R any]() *Registry[R] {
	return &Registry[R]{records: make(map[string]R)}
}

// Get returns the record for id.
func (r *Registry[R]) Get(id string) (R, bool) {
	rec, ok := r.records[id]
	return rec, ok
}

// Insert stores rec under id, replacing any previous record.
func (r *Registry[R]) Insert(id string, rec R) {
	r.records[id] = rec
}

// Contains reports whether id is live.
func (r *Registry[R]) Contains(id string) bool {
	_, ok := r.records[id]
	return ok
}

// Remove deletes id and reports whether it was present.
func (r *Registry[R]) Remove(id string) bool {
	_, ok := r.records[id]
	delete(r.records, id)
	return ok
}

// Len returns the number of live IDs.
func (r *Registry[R]) Len() int {
	return len(r.records)
}

// IDs returns the live IDs in sorted order.
func (r *Registry[R]) IDs() []string {
	ids := make([]string, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CloudRecord is the state kept for a point cloud, mesh or normals ID.
type CloudRecord struct {
	Actor *scene.Actor
	// Viewport the actor was attached to.
	Viewport int
	// Cells is the reusable vertex-cell backing store for point clouds.
	Cells []int64
	// Pose is the cached sensor viewpoint transform.
	Pose     *mat.Dense
	Geometry Geometry
}

// ShapeRecord is the state kept for an annotative shape ID.
type ShapeRecord struct {
	Actor    *scene.Actor
	Viewport int
	Geometry Geometry
}
