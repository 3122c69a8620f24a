package viz

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/pointviz/internal/viz/cloud"
	"github.com/banshee-data/pointviz/internal/viz/scene"
)

func TestAddSphere_Duplicate(t *testing.T) {
	logs := captureLogs(t)
	v, m := newTestViz(t, 1)

	require.NoError(t, v.AddSphere("s", r3.Vec{X: 1}, 0.5, Red, 0))
	first, _ := v.ShapeActor("s")

	err := v.AddSphere("s", r3.Vec{X: 9}, 2, Blue, 0)
	require.True(t, errors.Is(err, ErrDuplicateID), "got %v", err)

	after, _ := v.ShapeActor("s")
	assert.Same(t, first, after)
	assert.Equal(t, Red, after.Props.Color)
	assert.Equal(t, 1, m.Count())
	require.Len(t, *logs, 1)
	assert.True(t, strings.HasPrefix((*logs)[0], "WARN [AddSphere]"), (*logs)[0])
	assert.Contains(t, (*logs)[0], "<s>")
}

func TestAddSphere_Properties(t *testing.T) {
	v, _ := newTestViz(t, 1)
	require.NoError(t, v.AddSphere("s", r3.Vec{}, 1, Green, 0))
	a, _ := v.ShapeActor("s")

	assert.Equal(t, scene.RepresentationSurface, a.Props.Representation)
	assert.Equal(t, scene.InterpolationFlat, a.Props.Interpolation)
	assert.False(t, a.Props.ScalarVisibility)
	// Default resolution 10x10: two poles plus nine rings of ten.
	assert.Equal(t, 92, a.Geometry.NumPoints())

	err := v.AddSphere("neg", r3.Vec{}, -1, Green, 0)
	assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
}

func TestUpdateSphere(t *testing.T) {
	v, _ := newTestViz(t, 1)

	err := v.UpdateSphere("s", r3.Vec{}, 1, Red)
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	require.NoError(t, v.AddSphere("s", r3.Vec{}, 1, Red, 0))
	a, _ := v.ShapeActor("s")
	require.NoError(t, v.UpdateSphere("s", r3.Vec{Z: 10}, 2, Blue))

	after, _ := v.ShapeActor("s")
	assert.Same(t, a, after, "update must not replace the actor")
	assert.Equal(t, Blue, a.Props.Color)
	assert.Equal(t, uint64(1), a.Revision())
	// The north pole is the first vertex.
	assert.Equal(t, []float32{0, 0, 12}, a.Geometry.Points[:3])

	require.NoError(t, v.AddLine("l", r3.Vec{}, r3.Vec{X: 1}, Gray, 0))
	err = v.UpdateSphere("l", r3.Vec{}, 1, Red)
	assert.True(t, errors.Is(err, ErrTopology), "got %v", err)
}

func square(x float32) *cloud.Buffer {
	return cloud.FromPoints([]cloud.Point{{X: x, Y: 0, Z: 0}, {X: x + 1, Y: 0, Z: 0}, {X: x + 1, Y: 1, Z: 0}, {X: x, Y: 1, Z: 0}})
}

func TestAddPolygon_Merge(t *testing.T) {
	v, m := newTestViz(t, 1)

	require.NoError(t, v.AddPolygon("p", square(0), Gray, 0))
	first, _ := v.ShapeActor("p")
	require.NoError(t, v.AddPolygon("p", square(5), Gray, 0))
	merged, _ := v.ShapeActor("p")

	assert.NotSame(t, first, merged)
	assert.Empty(t, m.Attached(first))
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, 8, merged.Geometry.NumPoints())
	assert.Equal(t, 2, merged.Geometry.Polys.Count)
	assert.Equal(t, []int64{4, 0, 1, 2, 3, 4, 4, 5, 6, 7}, merged.Geometry.Polys.Data)
	assert.Equal(t, scene.RepresentationWireframe, merged.Props.Representation)
	assert.False(t, merged.Props.ScalarVisibility)

	snap := v.Snapshot()
	require.Len(t, snap.Shapes, 1)
	assert.Equal(t, "polygon", snap.Shapes[0].Kind)
}

func TestAddPolygon_Errors(t *testing.T) {
	v, _ := newTestViz(t, 1)

	err := v.AddPolygon("p", cloud.FromPoints(make([]cloud.Point, 2)), Gray, 0)
	assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)

	require.NoError(t, v.AddSphere("s", r3.Vec{}, 1, Red, 0))
	err = v.AddPolygon("s", square(0), Gray, 0)
	assert.True(t, errors.Is(err, ErrTopology), "got %v", err)
}

func TestAddLine(t *testing.T) {
	logs := captureLogs(t)
	v, _ := newTestViz(t, 1)

	require.NoError(t, v.AddLine("l", r3.Vec{}, r3.Vec{X: 1, Y: 1}, Gray, 0))
	a, _ := v.ShapeActor("l")
	assert.Equal(t, Gray, a.Props.Color)
	assert.Equal(t, scene.TopologyLines, a.Geometry.Topology)

	err := v.AddLine("l", r3.Vec{}, r3.Vec{X: 2}, Gray, 0)
	assert.True(t, errors.Is(err, ErrDuplicateID), "got %v", err)
	assert.True(t, strings.HasPrefix((*logs)[0], "WARN [AddLine]"), (*logs)[0])
}

func TestAddArrow_Styles(t *testing.T) {
	v, _ := newTestViz(t, 1)
	p1, p2 := r3.Vec{}, r3.Vec{X: 3}

	require.NoError(t, v.AddArrow("basic", p1, p2, BasicArrow(Red), 0))
	require.NoError(t, v.AddArrow("hidden", p1, p2, LengthArrow(Green, false), 0))
	require.NoError(t, v.AddArrow("dual", p1, p2, DualColorArrow(Blue, White), 0))

	basic, _ := v.ShapeActor("basic")
	assert.Equal(t, scene.KindLeader, basic.Kind)
	assert.True(t, basic.Leader.Filled)
	assert.True(t, basic.Leader.AutoLabel)
	assert.Equal(t, scene.ArrowAtBoth, basic.Leader.Placement)
	assert.Equal(t, Red, basic.Props.Color)

	hidden, _ := v.ShapeActor("hidden")
	assert.False(t, hidden.Leader.AutoLabel)
	assert.Equal(t, scene.ArrowAtPoint1, hidden.Leader.Placement)

	dual, _ := v.ShapeActor("dual")
	require.NotNil(t, dual.Leader.LabelColor)
	assert.Equal(t, White, *dual.Leader.LabelColor)
	assert.Equal(t, Blue, dual.Props.Color)

	err := v.AddArrow("basic", p1, p2, BasicArrow(Red), 0)
	assert.True(t, errors.Is(err, ErrDuplicateID), "got %v", err)
}

func TestAddText3D_AllPanes(t *testing.T) {
	v, m := newTestViz(t, 3)

	require.NoError(t, v.AddText3D("hello", r3.Vec{Z: 1}, 0.2, White, "t", 0))
	for pane, id := range map[int]string{1: "t", 2: "t**", 3: "t***"} {
		a, ok := v.ShapeActor(id)
		require.True(t, ok, "missing %q", id)
		assert.Equal(t, []int{pane}, m.Attached(a))
		assert.Equal(t, pane, a.Billboard.Pane)
		assert.Equal(t, "hello", a.Billboard.Text)
	}
	assert.Equal(t, 3, m.Count())

	err := v.AddText3D("again", r3.Vec{}, 1, White, "t", 0)
	assert.True(t, errors.Is(err, ErrDuplicateID), "got %v", err)
	assert.Equal(t, 3, m.Count())
}

func TestAddText3D_SinglePane(t *testing.T) {
	v, m := newTestViz(t, 2)

	require.NoError(t, v.AddText3D("label", r3.Vec{}, 1, White, "", 2))
	a, ok := v.ShapeActor("label")
	require.True(t, ok, "empty id should default to the text")
	assert.Equal(t, []int{2}, m.Attached(a))
	assert.False(t, v.HasShape("label**"))

	err := v.AddText3D("", r3.Vec{}, 1, White, "", 1)
	assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
	err = v.AddText3D("x", r3.Vec{}, 1, White, "", 3)
	assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
}

func TestRemoveShape(t *testing.T) {
	v, m := newTestViz(t, 1)
	require.NoError(t, v.AddSphere("s", r3.Vec{}, 1, Red, 0))
	require.NoError(t, v.RemoveShape("s"))
	assert.False(t, v.HasShape("s"))
	assert.Zero(t, m.Count())
	assert.True(t, errors.Is(v.RemoveShape("s"), ErrNotFound))

	// The ID is free again.
	require.NoError(t, v.AddSphere("s", r3.Vec{}, 1, Red, 0))
}
