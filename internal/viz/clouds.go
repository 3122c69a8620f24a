package viz

import (
	"github.com/banshee-data/pointviz/internal/viz/cells"
	"github.com/banshee-data/pointviz/internal/viz/cloud"
	"github.com/banshee-data/pointviz/internal/viz/registry"
	"github.com/banshee-data/pointviz/internal/viz/scene"
)

const xyzHandler = "PointCloudGeometryHandlerXYZ"

func (v *Visualizer) admitCloud(op, id string) (registry.CloudRecord, bool, error) {
	rec, live := v.clouds.Get(id)
	if live && PolicyOf(op) == PolicyReject {
		return rec, true, duplicate(op, "PointCloud", id)
	}
	return rec, live, nil
}

func checkCloud(op, id string, pts *cloud.Buffer, colors *cloud.Colors, valid cloud.Validity) error {
	if err := pts.Validate(); err != nil {
		return invalid(op, id, err)
	}
	if colors != nil {
		if err := colors.Validate(pts.Len()); err != nil {
			return invalid(op, id, err)
		}
	}
	if err := valid.Check(pts.Len()); err != nil {
		return invalid(op, id, err)
	}
	return nil
}

// AddPointCloud draws pts as a vertex cloud under id. Points rejected by
// valid are left out and the rest are packed contiguously in their original
// order. colors, when non-nil, must hold one colour per point. If id is
// already live its actor is replaced.
func (v *Visualizer) AddPointCloud(id string, pts *cloud.Buffer, colors *cloud.Colors, valid cloud.Validity, viewport int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.addCloud("AddPointCloud", id, pts, colors, valid, xyzHandler, viewport)
}

// AddPointCloudGeometry draws the positions selected by h. Non-finite
// positions are skipped.
func (v *Visualizer) AddPointCloudGeometry(id string, h cloud.GeometryHandler, colors *cloud.Colors, viewport int) error {
	const op = "AddPointCloudGeometry"
	v.mu.Lock()
	defer v.mu.Unlock()

	if h == nil {
		return invalidf(op, id, "nil geometry handler")
	}
	if !h.Capable() {
		return invalidf(op, id, "geometry handler %s is not capable of handling the input", h.Name())
	}
	g := h.Geometry()
	valid := cloud.AllValid
	if !g.IsDense() {
		valid = cloud.Finite()
	}
	return v.addCloud(op, id, g, colors, valid, h.Name(), viewport)
}

func (v *Visualizer) addCloud(op, id string, pts *cloud.Buffer, colors *cloud.Colors, valid cloud.Validity, handler string, viewport int) error {
	if err := checkCloud(op, id, pts, colors, valid); err != nil {
		return err
	}
	old, live, err := v.admitCloud(op, id)
	if err != nil {
		return err
	}

	lookup, n, err := cloud.Compact(pts.Points, valid)
	if err != nil {
		return invalid(op, id, err)
	}
	pd := &scene.PolyData{
		Points:   cloud.PackPositions(nil, pts.Points, lookup, n),
		Verts:    cells.Vertices(nil, n),
		Topology: scene.TopologyVertices,
	}
	if colors != nil {
		pd.Colors = cloud.PackColors(nil, colors, lookup, n)
	}

	actor := scene.NewGeometryActor(pd)
	actor.Props.Color = White
	actor.Props.Representation = scene.RepresentationPoints
	actor.UserMatrix = pts.Sensor.Transform()

	if err := v.r.AddActor(actor, viewport); err != nil {
		return renderFailed(op, id, err)
	}
	if live {
		if err := v.r.RemoveActor(old.Actor, old.Viewport); err != nil {
			_ = v.r.RemoveActor(actor, viewport)
			return renderFailed(op, id, err)
		}
	}
	v.clouds.Insert(id, registry.CloudRecord{
		Actor:    actor,
		Viewport: viewport,
		Cells:    pd.Verts.Data,
		Pose:     actor.UserMatrix,
		Geometry: registry.PointCloud{Handler: handler},
	})
	return nil
}

// UpdatePointCloud replaces the positions and colours of a live cloud in
// place, reusing its backing stores. The cached pose is kept.
func (v *Visualizer) UpdatePointCloud(id string, pts *cloud.Buffer, colors *cloud.Colors, valid cloud.Validity) error {
	const op = "UpdatePointCloud"
	v.mu.Lock()
	defer v.mu.Unlock()

	rec, ok := v.clouds.Get(id)
	if !ok {
		return notFound(op, "PointCloud", id)
	}
	if _, isCloud := rec.Geometry.(registry.PointCloud); !isCloud {
		return topology(op, id, "cannot update a %s as a point cloud", rec.Geometry.Kind())
	}
	if err := checkCloud(op, id, pts, colors, valid); err != nil {
		return err
	}

	lookup, n, err := cloud.Compact(pts.Points, valid)
	if err != nil {
		return invalid(op, id, err)
	}
	pd := rec.Actor.Geometry
	pd.Points = cloud.PackPositions(pd.Points, pts.Points, lookup, n)
	if colors != nil {
		pd.Colors = cloud.PackColors(pd.Colors, colors, lookup, n)
	} else {
		pd.Colors = nil
	}
	pd.Verts = cells.Vertices(rec.Cells, n)
	rec.Actor.Props.ScalarVisibility = colors != nil
	rec.Cells = pd.Verts.Data
	v.clouds.Insert(id, rec)

	if err := v.r.Modified(rec.Actor); err != nil {
		return renderFailed(op, id, err)
	}
	return nil
}

// AddPointCloudNormals draws a line segment from sampled points along their
// normals, scaled by scale. Organized clouds are sampled on a grid with
// stride floor(sqrt(level)); unorganized clouds take every level-th point.
func (v *Visualizer) AddPointCloudNormals(id string, pts, normals *cloud.Buffer, level int, scale float32, viewport int) error {
	const op = "AddPointCloudNormals"
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := pts.Validate(); err != nil {
		return invalid(op, id, err)
	}
	if err := normals.Validate(); err != nil {
		return invalid(op, id, err)
	}
	if !pts.SameShape(normals) {
		return invalidf(op, id, "the number of points differs from the number of normals")
	}
	if level < 1 {
		return invalidf(op, id, "level must be at least 1, got %d", level)
	}
	if _, _, err := v.admitCloud(op, id); err != nil {
		return err
	}

	idx := cloud.NormalSampleIndices(pts, level)
	pd := &scene.PolyData{
		Points:   cloud.PackNormalSegments(pts, normals, idx, scale),
		Lines:    cells.Segments(len(idx)),
		Topology: scene.TopologyLines,
	}
	actor := scene.NewGeometryActor(pd)
	actor.Props.Color = White
	actor.UserMatrix = pts.Sensor.Transform()

	if err := v.r.AddActor(actor, viewport); err != nil {
		return renderFailed(op, id, err)
	}
	v.clouds.Insert(id, registry.CloudRecord{
		Actor:    actor,
		Viewport: viewport,
		Pose:     actor.UserMatrix,
		Geometry: registry.Normals{Level: level, Scale: scale},
	})
	return nil
}

// RemovePointCloud detaches and forgets a cloud, mesh or normals ID.
func (v *Visualizer) RemovePointCloud(id string) error {
	const op = "RemovePointCloud"
	v.mu.Lock()
	defer v.mu.Unlock()

	rec, ok := v.clouds.Get(id)
	if !ok {
		return notFound(op, "PointCloud", id)
	}
	if err := v.r.RemoveActor(rec.Actor, rec.Viewport); err != nil {
		return renderFailed(op, id, err)
	}
	v.clouds.Remove(id)
	return nil
}
