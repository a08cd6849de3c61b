package region

import "testing"

func TestUnionRectangleIntoEmptyRegion(t *testing.T) {
	reg := New()
	reg.UnionRectangle(Rect{5, 1, 9, 2})

	if len(reg.Rectangles) != 1 || reg.Rectangles[0] != (Rect{5, 1, 9, 2}) {
		t.Fatalf("unexpected rectangles: %+v", reg.Rectangles)
	}
	if reg.Extents != (Rect{5, 1, 9, 2}) {
		t.Fatalf("unexpected extents: %+v", reg.Extents)
	}
}

// TestUnionRectangleBandSplitOnTopOverlap mirrors the worked example: a
// region holding {2,3,7,7} unioned with {1,2,4,4} splits into three bands.
func TestUnionRectangleBandSplitOnTopOverlap(t *testing.T) {
	reg := FromRect(Rect{2, 3, 7, 7})
	reg.UnionRectangle(Rect{1, 2, 4, 4})

	want := []Rect{
		{1, 2, 4, 3},
		{1, 3, 7, 4},
		{2, 4, 7, 7},
	}
	if len(reg.Rectangles) != len(want) {
		t.Fatalf("got %d rectangles, want %d: %+v", len(reg.Rectangles), len(want), reg.Rectangles)
	}
	for i := range want {
		if reg.Rectangles[i] != want[i] {
			t.Fatalf("rectangle %d = %+v, want %+v (full: %+v)", i, reg.Rectangles[i], want[i], reg.Rectangles)
		}
	}
	if reg.Extents != (Rect{1, 2, 7, 7}) {
		t.Fatalf("unexpected extents: %+v", reg.Extents)
	}
}

// TestUnionRectangleDisjointGap unions two rectangles that share no edge,
// producing two independent bands with no fusion.
func TestUnionRectangleDisjointGap(t *testing.T) {
	reg := FromRect(Rect{0, 0, 10, 10})
	reg.UnionRectangle(Rect{0, 20, 10, 30})

	if len(reg.Rectangles) != 2 {
		t.Fatalf("expected 2 disjoint bands, got %+v", reg.Rectangles)
	}
	if reg.Extents != (Rect{0, 0, 10, 30}) {
		t.Fatalf("unexpected extents: %+v", reg.Extents)
	}
}

// TestUnionRectangleAdjacentBandsFuse checks that simplify merges two bands
// whose breakdown becomes identical once touching.
func TestUnionRectangleAdjacentBandsFuse(t *testing.T) {
	reg := FromRect(Rect{0, 0, 10, 5})
	reg.UnionRectangle(Rect{0, 5, 10, 10})

	if len(reg.Rectangles) != 1 {
		t.Fatalf("expected bands to fuse into one, got %+v", reg.Rectangles)
	}
	if reg.Rectangles[0] != (Rect{0, 0, 10, 10}) {
		t.Fatalf("unexpected fused rectangle: %+v", reg.Rectangles[0])
	}
}

// TestUnionRectangleContainedIsNoOp checks that unioning a rectangle fully
// covered by an existing band leaves the region unchanged.
func TestUnionRectangleContainedIsNoOp(t *testing.T) {
	reg := FromRect(Rect{0, 0, 10, 10})
	reg.UnionRectangle(Rect{2, 0, 8, 10})

	if len(reg.Rectangles) != 1 || reg.Rectangles[0] != (Rect{0, 0, 10, 10}) {
		t.Fatalf("expected no-op, got %+v", reg.Rectangles)
	}
}

func TestIntersectRectangleSingleRect(t *testing.T) {
	reg := FromRect(Rect{0, 0, 10, 10})
	out := reg.IntersectRectangle(Rect{5, 5, 15, 15})

	if len(out.Rectangles) != 1 || out.Rectangles[0] != (Rect{5, 5, 10, 10}) {
		t.Fatalf("unexpected intersection: %+v", out.Rectangles)
	}
}

func TestIntersectRectangleNoOverlapIsEmpty(t *testing.T) {
	reg := FromRect(Rect{0, 0, 10, 10})
	out := reg.IntersectRectangle(Rect{20, 20, 30, 30})

	if !out.IsEmpty() {
		t.Fatalf("expected empty intersection, got %+v", out.Rectangles)
	}
}

func TestIntersectRectangleMultiBand(t *testing.T) {
	reg := FromRect(Rect{2, 3, 7, 7})
	reg.UnionRectangle(Rect{1, 2, 4, 4})

	out := reg.IntersectRectangle(Rect{0, 0, 3, 10})

	var area int32
	for _, r := range out.Rectangles {
		area += (r.Right - r.Left) * (r.Bottom - r.Top)
	}
	if area <= 0 {
		t.Fatalf("expected non-empty intersection, got %+v", out.Rectangles)
	}
	for _, r := range out.Rectangles {
		if r.Left < 0 || r.Right > 3 {
			t.Fatalf("intersection escaped clip rectangle: %+v", r)
		}
	}
}

// TestBandsAreSortedAndNonOverlapping is a structural invariant check run
// after a sequence of unions: every band is sorted left-to-right with no
// overlap, and bands are ordered top-to-bottom.
func TestBandsAreSortedAndNonOverlapping(t *testing.T) {
	reg := New()
	for _, r := range []Rect{
		{0, 0, 10, 10},
		{20, 0, 30, 10},
		{5, 15, 25, 20},
		{0, 5, 5, 8},
	} {
		reg.UnionRectangle(r)
	}

	bands := splitBands(reg.Rectangles)
	prevBottom := int32(-1 << 30)
	for _, band := range bands {
		if band[0].Top < prevBottom {
			t.Fatalf("bands out of top-to-bottom order: %+v", bands)
		}
		prevBottom = band[0].Bottom
		for i := 1; i < len(band); i++ {
			if band[i].Left < band[i-1].Right {
				t.Fatalf("band not sorted/non-overlapping: %+v", band)
			}
		}
	}
}

func TestUnionCommutativeExtents(t *testing.T) {
	a := FromRect(Rect{0, 0, 10, 10})
	a.UnionRectangle(Rect{5, 5, 20, 20})

	b := FromRect(Rect{5, 5, 20, 20})
	b.UnionRectangle(Rect{0, 0, 10, 10})

	if a.Extents != b.Extents {
		t.Fatalf("union extents not order-independent: %+v vs %+v", a.Extents, b.Extents)
	}
}
