package selection

import "github.com/javiermolinar/quorum/internal/slot"

// Rect is the on-screen rectangle of a cell, in terminal cells.
type Rect struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.Left + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Top + r.Height }

// Center returns the centre point of the rectangle.
func (r Rect) Center() (x, y float64) {
	return float64(r.Left) + float64(r.Width)/2, float64(r.Top) + float64(r.Height)/2
}

// Contains reports whether the point (x, y) falls inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.Left && x < r.Right() && y >= r.Top && y < r.Bottom()
}

// bounds is the bounding box of two rects, edges inclusive.
type bounds struct {
	minX, minY, maxX, maxY float64
}

func boundingBox(a, b Rect) bounds {
	return bounds{
		minX: float64(min(a.Left, b.Left)),
		minY: float64(min(a.Top, b.Top)),
		maxX: float64(max(a.Right(), b.Right())),
		maxY: float64(max(a.Bottom(), b.Bottom())),
	}
}

func (b bounds) containsCenter(r Rect) bool {
	cx, cy := r.Center()
	return cx >= b.minX && cx <= b.maxX && cy >= b.minY && cy <= b.maxY
}

// geometry maps cell keys to their last rendered rectangle. Registration order
// is kept so hit testing is deterministic when rects overlap.
type geometry struct {
	rects map[slot.Key]Rect
	order []slot.Key
}

func newGeometry() *geometry {
	return &geometry{rects: make(map[slot.Key]Rect)}
}

func (g *geometry) register(k slot.Key, r Rect) {
	if _, ok := g.rects[k]; !ok {
		g.order = append(g.order, k)
	}
	g.rects[k] = r
}

func (g *geometry) reset() {
	g.rects = make(map[slot.Key]Rect)
	g.order = nil
}

func (g *geometry) lookup(k slot.Key) (Rect, bool) {
	r, ok := g.rects[k]
	return r, ok
}

func (g *geometry) hit(x, y int) (slot.Key, bool) {
	for _, k := range g.order {
		if g.rects[k].Contains(x, y) {
			return k, true
		}
	}
	return slot.Key{}, false
}
