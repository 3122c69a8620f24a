package viz

import (
	"github.com/banshee-data/pointviz/internal/viz/cells"
	"github.com/banshee-data/pointviz/internal/viz/cloud"
	"github.com/banshee-data/pointviz/internal/viz/registry"
	"github.com/banshee-data/pointviz/internal/viz/scene"
)

func meshProps(p *scene.Properties) {
	p.Representation = scene.RepresentationSurface
	p.Interpolation = scene.InterpolationFlat
	p.BackfaceCulling = false
	p.EdgeVisibility = false
	p.Shading = false
}

// buildMesh packs pts and encodes polys against the compacted vertex
// order. A single polygon becomes one polygon cell and several become
// strips, unless strips is set, which keeps strip topology for any count.
// dst is only written once every check has passed.
func buildMesh(op, id string, pts *cloud.Buffer, colors *cloud.Colors, valid cloud.Validity, polys []cells.Polygon, strips bool, dst *scene.PolyData) error {
	if pts.Len() == 0 {
		return invalidf(op, id, "empty point cloud")
	}
	if len(polys) == 0 {
		return invalidf(op, id, "0 polygons")
	}
	if err := checkCloud(op, id, pts, colors, valid); err != nil {
		return err
	}

	lookup, n, err := cloud.Compact(pts.Points, valid)
	if err != nil {
		return invalid(op, id, err)
	}
	ca, err := cells.BuildPolygons(polys, lookup, pts.Len())
	if err != nil {
		return invalid(op, id, err)
	}

	dst.Points = cloud.PackPositions(dst.Points, pts.Points, lookup, n)
	if colors != nil {
		dst.Colors = cloud.PackColors(dst.Colors, colors, lookup, n)
	} else {
		dst.Colors = nil
	}
	dst.Polys, dst.Strips = cells.CellArray{}, cells.CellArray{}
	if strips || len(polys) > 1 {
		dst.Strips = ca
		dst.Topology = scene.TopologyStrips
	} else {
		dst.Polys = ca
		dst.Topology = scene.TopologyPolygon
	}
	return nil
}

// AddPolygonMesh draws a surface over pts. Each polygon lists point indices
// in the original index space with a trailing closing index that is not
// emitted. Polygons may not refer to points rejected by valid.
func (v *Visualizer) AddPolygonMesh(id string, pts *cloud.Buffer, colors *cloud.Colors, valid cloud.Validity, polys []cells.Polygon, viewport int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.addMesh("AddPolygonMesh", id, pts, colors, valid, polys, viewport)
}

// AddPackedPolygonMesh is AddPolygonMesh over packed point records. Colours
// come from the embedded rgb or rgba field when present, and non-finite
// points are filtered unless the records are marked dense.
func (v *Visualizer) AddPackedPolygonMesh(id string, p *cloud.Packed, polys []cells.Polygon, viewport int) error {
	const op = "AddPackedPolygonMesh"
	v.mu.Lock()
	defer v.mu.Unlock()

	if p == nil {
		return invalidf(op, id, "nil packed cloud")
	}
	pts, err := p.Buffer()
	if err != nil {
		return invalid(op, id, err)
	}
	colors, _ := p.Colors()
	return v.addMesh(op, id, pts, colors, p.Validity(), polys, viewport)
}

func (v *Visualizer) addMesh(op, id string, pts *cloud.Buffer, colors *cloud.Colors, valid cloud.Validity, polys []cells.Polygon, viewport int) error {
	if _, _, err := v.admitCloud(op, id); err != nil {
		return err
	}
	pd := &scene.PolyData{}
	if err := buildMesh(op, id, pts, colors, valid, polys, false, pd); err != nil {
		return err
	}

	actor := scene.NewGeometryActor(pd)
	meshProps(&actor.Props)
	actor.Props.Color = White
	actor.UserMatrix = pts.Sensor.Transform()

	if err := v.r.AddActor(actor, viewport); err != nil {
		return renderFailed(op, id, err)
	}
	v.clouds.Insert(id, registry.CloudRecord{
		Actor:    actor,
		Viewport: viewport,
		Pose:     actor.UserMatrix,
		Geometry: registry.PolygonMesh{Topology: pd.Topology},
	})
	return nil
}

// UpdatePolygonMesh rebuilds the points, colours and cells of a live
// multi-polygon mesh in place. The mesh keeps strip topology even when the
// update carries a single polygon.
func (v *Visualizer) UpdatePolygonMesh(id string, pts *cloud.Buffer, colors *cloud.Colors, valid cloud.Validity, polys []cells.Polygon) error {
	const op = "UpdatePolygonMesh"
	v.mu.Lock()
	defer v.mu.Unlock()

	rec, ok := v.clouds.Get(id)
	if !ok {
		return notFound(op, "PolygonMesh", id)
	}
	mesh, isMesh := rec.Geometry.(registry.PolygonMesh)
	if !isMesh {
		return topology(op, id, "cannot update a %s as a polygon mesh", rec.Geometry.Kind())
	}
	if len(polys) == 0 {
		return invalidf(op, id, "0 polygons")
	}
	if mesh.Topology != scene.TopologyStrips {
		return topology(op, id, "mesh was built as %s, only strip meshes can be updated", mesh.Topology)
	}

	if err := buildMesh(op, id, pts, colors, valid, polys, true, rec.Actor.Geometry); err != nil {
		return err
	}
	rec.Actor.Props.ScalarVisibility = colors != nil

	if err := v.r.Modified(rec.Actor); err != nil {
		return renderFailed(op, id, err)
	}
	return nil
}
