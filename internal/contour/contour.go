// Package contour traces the borders of a binary mask and records how they
// nest.
//
// Tracing follows Suzuki and Abe, "Topological Structural Analysis of
// Digitized Binary Images by Border Following" (1985): foreground pixels are
// 8-connected, background pixels 4-connected. Every border is either the
// outer border of a foreground component or the border of a hole inside
// one, and every border knows its immediate enclosing border.
package contour

import (
	"image"
)

// NoParent marks a top-level node.
const NoParent = -1

// Mask is a binary image: Bits[y*Width+x] is true for foreground pixels.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// NewMask allocates an empty mask.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Bits: make([]bool, width*height)}
}

// Get reports whether (x, y) is foreground. Out of range is background.
func (m *Mask) Get(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Bits[y*m.Width+x]
}

// Node is one traced border.
type Node struct {
	// Points is the closed border chain in tracing order, in mask
	// coordinates. A single isolated pixel has one point.
	Points []image.Point
	// Parent is the index of the immediately enclosing node, or NoParent.
	Parent int
	// Hole is true for the border of a hole (an enclosed background
	// region) and false for the outer border of a foreground component.
	Hole bool
}

// Bounds returns the tight bounding rectangle of the border points.
func (n Node) Bounds() image.Rectangle {
	if len(n.Points) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: n.Points[0], Max: n.Points[0].Add(image.Pt(1, 1))}
	for _, p := range n.Points[1:] {
		r = r.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	return r
}

// Forest holds every traced border in discovery order (raster scan of the
// first pixel of each border).
type Forest []Node

// Roots returns the indices of the top-level nodes in discovery order.
func (f Forest) Roots() []int {
	var roots []int
	for i, n := range f {
		if n.Parent == NoParent {
			roots = append(roots, i)
		}
	}
	return roots
}

// Children returns the indices of the nodes whose immediate parent is i.
func (f Forest) Children(i int) []int {
	var kids []int
	for j, n := range f {
		if n.Parent == i {
			kids = append(kids, j)
		}
	}
	return kids
}

// neighbourhood offsets, counterclockwise on screen starting east.
var dirs = [8]image.Point{
	{1, 0}, {1, -1}, {0, -1}, {-1, -1},
	{-1, 0}, {-1, 1}, {0, 1}, {1, 1},
}

func dirOf(from, to image.Point) int {
	d := to.Sub(from)
	for i, o := range dirs {
		if o == d {
			return i
		}
	}
	return -1
}

// label grid with a one-pixel background frame. Values: 0 background,
// 1 unvisited foreground, +-n for pixels on border n.
type grid struct {
	w, h int // padded size
	v    []int32
}

func (g *grid) at(p image.Point) int32 { return g.v[p.Y*g.w+p.X] }

func (g *grid) set(p image.Point, val int32) { g.v[p.Y*g.w+p.X] = val }

// Trace extracts the border forest of m.
func Trace(m *Mask) Forest {
	g := &grid{w: m.Width + 2, h: m.Height + 2}
	g.v = make([]int32, g.w*g.h)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Bits[y*m.Width+x] {
				g.v[(y+1)*g.w+x+1] = 1
			}
		}
	}

	var forest Forest
	// Border numbers start at 2; 1 is the frame, which behaves as a hole
	// with no parent.
	nbd := int32(1)
	parentOf := func(lnbd int32, hole bool) int {
		if lnbd <= 1 {
			return NoParent
		}
		prev := forest[lnbd-2]
		if prev.Hole == hole {
			return prev.Parent
		}
		return int(lnbd - 2)
	}

	for y := 1; y < g.h-1; y++ {
		lnbd := int32(1)
		for x := 1; x < g.w-1; x++ {
			p := image.Pt(x, y)
			cur := g.at(p)
			if cur == 0 {
				continue
			}

			var from image.Point
			hole := false
			switch {
			case cur == 1 && g.at(image.Pt(x-1, y)) == 0:
				from = image.Pt(x-1, y)
			case cur >= 1 && g.at(image.Pt(x+1, y)) == 0:
				from = image.Pt(x+1, y)
				hole = true
				if cur > 1 {
					lnbd = cur
				}
			default:
				if cur != 1 {
					lnbd = abs32(cur)
				}
				continue
			}

			nbd++
			forest = append(forest, Node{Parent: parentOf(lnbd, hole), Hole: hole})
			pts := follow(g, p, from, nbd)
			for i := range pts {
				pts[i] = pts[i].Sub(image.Pt(1, 1))
			}
			forest[nbd-2].Points = pts

			if v := g.at(p); v != 1 {
				lnbd = abs32(v)
			}
		}
	}
	return forest
}

// follow walks one border starting at start, whose background neighbour
// from marks the side the border was entered from, labelling the grid with
// nbd. It returns the border chain in padded coordinates.
func follow(g *grid, start, from image.Point, nbd int32) []image.Point {
	// Search clockwise from `from` for the first foreground neighbour.
	d0 := dirOf(start, from)
	first := image.Point{}
	found := false
	for k := 0; k < 8; k++ {
		q := start.Add(dirs[(d0-k+8)%8])
		if g.at(q) != 0 {
			first, found = q, true
			break
		}
	}
	if !found {
		g.set(start, -nbd)
		return []image.Point{start}
	}

	pts := []image.Point{start}
	prev, curr := first, start
	for {
		// Search counterclockwise around curr, starting after prev.
		dp := dirOf(curr, prev)
		var next image.Point
		eastZero := false
		for k := 1; k <= 8; k++ {
			d := (dp + k) % 8
			q := curr.Add(dirs[d])
			if g.at(q) != 0 {
				next = q
				break
			}
			if d == 0 {
				eastZero = true
			}
		}

		switch {
		case eastZero:
			g.set(curr, -nbd)
		case g.at(curr) == 1:
			g.set(curr, nbd)
		}

		if next == start && curr == first {
			break
		}
		prev, curr = curr, next
		pts = append(pts, curr)
	}
	return pts
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
