package region

// Region is a set of non-overlapping rectangles stored as a flat slice
// grouped into bands: a maximal run of consecutive rectangles sharing the
// same Top/Bottom, sorted left-to-right within the band, with bands sorted
// top-to-bottom. Extents caches the bounding rectangle of the whole set.
type Region struct {
	Extents    Rect
	Rectangles []Rect
}

// New returns an empty region.
func New() *Region {
	return &Region{}
}

// FromRect returns a region containing exactly one rectangle.
func FromRect(r Rect) *Region {
	return &Region{Extents: r, Rectangles: []Rect{r}}
}

// IsEmpty reports whether the region has no rectangles.
func (reg *Region) IsEmpty() bool {
	return len(reg.Rectangles) == 0
}

// Clone returns a deep copy of the region.
func (reg *Region) Clone() *Region {
	out := &Region{Extents: reg.Extents, Rectangles: make([]Rect, len(reg.Rectangles))}
	copy(out.Rectangles, reg.Rectangles)
	return out
}

// UnionRectangle inserts r into the region, maintaining canonical
// band-decomposed form.
func (reg *Region) UnionRectangle(r Rect) {
	if len(reg.Rectangles) == 0 {
		*reg = *FromRect(r)
		return
	}

	dst := make([]Rect, 0, len(reg.Rectangles)+1)

	appendRectAboveExtents(r, reg.Extents, &dst)

	bands := splitBands(reg.Rectangles)
	for i, band := range bands {
		var topInterBand int32
		if band[0].Bottom <= r.Top || r.Bottom <= band[0].Top || rectInBand(band, r) {
			// r is entirely below, above, or already contained in this band.
			dst = append(dst, band...)
			topInterBand = r.Top
		} else {
			mergeBandWithRect(r, band, &dst)
			topInterBand = band[0].Bottom
		}

		if i+1 < len(bands) {
			next := bands[i+1]
			appendGapBetweenBands(r, band, next, &dst, topInterBand)
		}
	}

	appendRectBelowExtents(r, reg.Extents, &dst)

	reg.Rectangles = dst
	reg.Extents = reg.Extents.Union(r)

	reg.simplify()
}

// IntersectRectangle returns a new region containing the parts of reg that
// lie within r.
func (reg *Region) IntersectRectangle(r Rect) *Region {
	switch len(reg.Rectangles) {
	case 0:
		return New()
	case 1:
		if out, ok := reg.Extents.Intersect(r); ok {
			return FromRect(out)
		}
		return New()
	default:
		var rects []Rect
		for _, cand := range reg.Rectangles {
			if cand.Top > r.Bottom {
				break
			}
			if out, ok := cand.Intersect(r); ok {
				rects = append(rects, out)
			}
		}
		out := &Region{Rectangles: rects, Extents: unionAll(rects)}
		out.simplify()
		return out
	}
}

func unionAll(rects []Rect) Rect {
	var out Rect
	for _, r := range rects {
		out = out.Union(r)
	}
	return out
}

// appendRectAboveExtents emits the slice of r that lies strictly above the
// region's current extents, as a new standalone band.
func appendRectAboveExtents(r, extents Rect, dst *[]Rect) {
	if r.Top < extents.Top {
		*dst = append(*dst, Rect{
			Top:    r.Top,
			Bottom: min32(extents.Top, r.Bottom),
			Left:   r.Left,
			Right:  r.Right,
		})
	}
}

// appendRectBelowExtents emits the slice of r that lies strictly below the
// region's current extents, as a new standalone band.
func appendRectBelowExtents(r, extents Rect, dst *[]Rect) {
	if extents.Bottom < r.Bottom {
		*dst = append(*dst, Rect{
			Top:    max32(extents.Bottom, r.Top),
			Bottom: r.Bottom,
			Left:   r.Left,
			Right:  r.Right,
		})
	}
}

// mergeBandWithRect splits band vertically around r (above-slice,
// merge-slice, below-slice) and writes the resulting sub-bands to dst.
func mergeBandWithRect(r Rect, band []Rect, dst *[]Rect) {
	bandTop, bandBottom := band[0].Top, band[0].Bottom

	if bandTop < r.Top {
		copyBand(band, bandTop, r.Top, dst)
	}

	copyBandMerged(band, max32(r.Top, bandTop), min32(r.Bottom, bandBottom), r, dst)

	if r.Bottom < bandBottom {
		copyBand(band, r.Bottom, bandBottom, dst)
	}
}

// appendGapBetweenBands emits a new band for the slice of r that falls in
// the vertical gap between two non-adjacent bands.
func appendGapBetweenBands(r Rect, band, next []Rect, dst *[]Rect, topInterBand int32) {
	bandBottom := band[0].Bottom
	nextTop := next[0].Top

	if nextTop != bandBottom && bandBottom < r.Bottom && r.Top < nextTop {
		*dst = append(*dst, Rect{
			Top:    topInterBand,
			Bottom: min32(nextTop, r.Bottom),
			Left:   r.Left,
			Right:  r.Right,
		})
	}
}

// rectInBand reports whether r is already fully covered by a single
// rectangle of band (band is sorted left-to-right).
func rectInBand(band []Rect, r Rect) bool {
	if r.Top < band[0].Top || band[0].Bottom < r.Bottom {
		return false
	}
	for _, b := range band {
		if b.Left <= r.Left {
			if r.Right <= b.Right {
				return true
			}
		} else {
			return false
		}
	}
	return false
}

// copyBand copies band's left/right breakdown unchanged onto [top, bottom).
func copyBand(band []Rect, top, bottom int32, dst *[]Rect) {
	for _, b := range band {
		*dst = append(*dst, Rect{Top: top, Bottom: bottom, Left: b.Left, Right: b.Right})
	}
}

// copyBandMerged writes band's left/right breakdown on [top, bottom),
// coalescing whichever items overlap merge's horizontal extent into one
// rectangle spanning the union of their lefts/rights.
func copyBandMerged(band []Rect, top, bottom int32, merge Rect, dst *[]Rect) {
	i := 0
	for i < len(band) && band[i].Right < merge.Left {
		*dst = append(*dst, Rect{Top: top, Bottom: bottom, Left: band[i].Left, Right: band[i].Right})
		i++
	}
	band = band[i:]

	left := merge.Left
	if len(band) > 0 {
		left = min32(band[0].Left, merge.Left)
	}
	right := merge.Right

	for len(band) > 0 {
		if band[0].Right >= merge.Right {
			if band[0].Left < merge.Right {
				right = band[0].Right
				band = band[1:]
			}
			break
		}
		band = band[1:]
	}

	*dst = append(*dst, Rect{Top: top, Bottom: bottom, Left: left, Right: right})

	copyBand(band, top, bottom, dst)
}

// splitBands partitions a canonical, top-sorted rectangle slice into bands.
func splitBands(rects []Rect) [][]Rect {
	var bands [][]Rect
	for len(rects) > 0 {
		b := currentBand(rects)
		bands = append(bands, b)
		rects = rects[len(b):]
	}
	return bands
}

// currentBand returns the maximal prefix of rects sharing rects[0].Top.
func currentBand(rects []Rect) []Rect {
	top := rects[0].Top
	for i := 1; i < len(rects); i++ {
		if rects[i].Top != top {
			return rects[:i]
		}
	}
	return rects
}

// simplify fuses consecutive bands whose bottoms/tops touch and whose
// internal left/right breakdown is identical.
func (reg *Region) simplify() {
	if len(reg.Rectangles) < 2 {
		return
	}

	start := 0
	for {
		cur := currentBand(reg.Rectangles[start:])
		if start+len(cur) >= len(reg.Rectangles) {
			break
		}
		next := currentBand(reg.Rectangles[start+len(cur):])

		if cur[0].Bottom == next[0].Top && bandsEqual(cur, next) {
			firstLen, secondLen := len(cur), len(next)
			secondBottom := next[0].Bottom

			removeFrom := start + firstLen
			reg.Rectangles = append(reg.Rectangles[:removeFrom], reg.Rectangles[removeFrom+secondLen:]...)

			for i := start; i < start+firstLen; i++ {
				reg.Rectangles[i].Bottom = secondBottom
			}
		} else {
			start += len(cur)
		}
	}
}

func bandsEqual(a, b []Rect) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Left != b[i].Left || a[i].Right != b[i].Right {
			return false
		}
	}
	return true
}
