package cells

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/pointviz/internal/viz/cloud"
)

func TestBuildPolygons_ClosingDuplicate(t *testing.T) {
	ca, err := BuildPolygons([]Polygon{{0, 1, 2, 0}}, nil, 3)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int64{3, 0, 1, 2}, ca.Data); diff != "" {
		t.Errorf("cells mismatch (-want +got):\n%s", diff)
	}
	if ca.Count != 1 {
		t.Errorf("Count = %d, want 1", ca.Count)
	}
}

func TestBuildPolygons_Length(t *testing.T) {
	polys := []Polygon{{0, 1, 2, 0}, {1, 2, 3, 4, 1}, {3, 4}}
	ca, err := BuildPolygons(polys, nil, 5)
	if err != nil {
		t.Fatal(err)
	}
	// sum(s_i) = 4 + 5 + 2: one count slot plus s_i-1 indices each.
	if ca.Len() != 11 {
		t.Errorf("Len = %d, want 11", ca.Len())
	}
	var counts []int
	ca.Each(func(_ int, ids []int64) { counts = append(counts, len(ids)) })
	if diff := cmp.Diff([]int{3, 4, 1}, counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildPolygons_Lookup(t *testing.T) {
	lookup, _, err := cloud.Compact(make([]cloud.Point, 4), cloud.Mask([]bool{true, false, true, true}))
	if err != nil {
		t.Fatal(err)
	}
	ca, err := BuildPolygons([]Polygon{{0, 2, 3, 0}}, lookup, 4)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int64{3, 0, 1, 2}, ca.Data); diff != "" {
		t.Errorf("cells mismatch (-want +got):\n%s", diff)
	}

	if _, err := BuildPolygons([]Polygon{{0, 1, 2, 0}}, lookup, 4); err == nil {
		t.Error("expected error for polygon referring to masked point")
	}
	if _, err := BuildPolygons([]Polygon{{0, 9, 2, 0}}, nil, 4); err == nil {
		t.Error("expected error for out-of-range index")
	}
	if _, err := BuildPolygons([]Polygon{{0}}, nil, 4); err == nil {
		t.Error("expected error for degenerate polygon")
	}
}

func TestBuilder_Incomplete(t *testing.T) {
	b := NewBuilder(1, 3)
	b.BeginPolygon(3)
	b.PushIndex(0)
	if _, err := b.Array(); !errors.Is(err, ErrIncomplete) {
		t.Errorf("Array() error = %v, want ErrIncomplete", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("BeginPolygon over a pending polygon should panic")
		}
	}()
	b.BeginPolygon(2)
}

func TestVertices_Reuse(t *testing.T) {
	dst := make([]int64, 0, 16)
	ca := Vertices(dst, 3)
	if diff := cmp.Diff([]int64{1, 0, 1, 1, 1, 2}, ca.Data); diff != "" {
		t.Errorf("vertex cells mismatch (-want +got):\n%s", diff)
	}
	if &ca.Data[0] != &dst[:1][0] {
		t.Error("Vertices reallocated despite sufficient capacity")
	}
}

func TestSegments(t *testing.T) {
	ca := Segments(2)
	if diff := cmp.Diff([]int64{2, 0, 1, 2, 2, 3}, ca.Data); diff != "" {
		t.Errorf("segment cells mismatch (-want +got):\n%s", diff)
	}
	if ca.Count != 2 {
		t.Errorf("Count = %d, want 2", ca.Count)
	}
}
