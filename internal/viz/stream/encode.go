package stream

import (
	"gonum.org/v1/gonum/spatial/r3"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/banshee-data/pointviz/internal/version"
	"github.com/banshee-data/pointviz/internal/viz/scene"
)

func encodeHello(clientID string, viewports int) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"type":           EventHello.String(),
		"client_id":      clientID,
		"viewports":      viewports,
		"server_version": version.Version,
	})
}

func encodeEvent(seq uint64, t EventType, actorID uint64, viewport int, a *scene.Actor, snapshot bool) (*structpb.Struct, error) {
	m := map[string]interface{}{
		"seq":      seq,
		"type":     t.String(),
		"actor_id": actorID,
		"viewport": viewport,
	}
	if snapshot {
		m["snapshot"] = true
	}
	if t != EventRemove {
		m["actor"] = actorFields(a)
	}
	return structpb.NewStruct(m)
}

func actorFields(a *scene.Actor) map[string]interface{} {
	p := a.Props
	m := map[string]interface{}{
		"kind":     a.Kind.String(),
		"revision": a.Revision(),
		"color":    colorList(p.Color),
		"props": map[string]interface{}{
			"representation":    int(p.Representation),
			"interpolation":     int(p.Interpolation),
			"scalar_visibility": p.ScalarVisibility,
			"backface_culling":  p.BackfaceCulling,
			"edge_visibility":   p.EdgeVisibility,
			"shading":           p.Shading,
		},
	}
	if a.UserMatrix != nil {
		raw := a.UserMatrix.RawMatrix()
		vals := make([]interface{}, 0, 16)
		for i := 0; i < raw.Rows; i++ {
			for j := 0; j < raw.Cols; j++ {
				vals = append(vals, raw.Data[i*raw.Stride+j])
			}
		}
		m["user_matrix"] = vals
	}

	switch a.Kind {
	case scene.KindGeometry:
		pd := a.Geometry
		g := map[string]interface{}{
			"topology": pd.Topology.String(),
			"points":   floatList(pd.Points),
			"cells":    intList(pd.Primary().Data),
		}
		if pd.HasColors() {
			g["colors"] = byteList(pd.Colors)
		}
		m["geometry"] = g
	case scene.KindLeader:
		l := a.Leader
		lm := map[string]interface{}{
			"from":       vecList(l.From),
			"to":         vecList(l.To),
			"filled":     l.Filled,
			"placement":  int(l.Placement),
			"auto_label": l.AutoLabel,
		}
		if l.LabelColor != nil {
			lm["label_color"] = colorList(*l.LabelColor)
		}
		m["leader"] = lm
	case scene.KindFollower:
		b := a.Billboard
		m["billboard"] = map[string]interface{}{
			"text":     b.Text,
			"position": vecList(b.Position),
			"scale":    b.Scale,
			"pane":     b.Pane,
		}
	}
	return m
}

func colorList(c scene.Color) []interface{} {
	return []interface{}{int(c.R), int(c.G), int(c.B)}
}

func vecList(v r3.Vec) []interface{} {
	return []interface{}{v.X, v.Y, v.Z}
}

func floatList(s []float32) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

func intList(s []int64) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

func byteList(s []uint8) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = int(v)
	}
	return out
}
