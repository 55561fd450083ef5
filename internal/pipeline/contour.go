package pipeline

import (
	"image"
	"math"
	"sort"
)

// darkCutoff is the grayscale threshold below which a pixel counts as wall
// ink.
const darkCutoff = 128

// bitGrid is a dense binary raster.
type bitGrid struct {
	w, h int
	bits []bool
}

func newBitGrid(w, h int) *bitGrid {
	return &bitGrid{w: w, h: h, bits: make([]bool, w*h)}
}

func (g *bitGrid) at(x, y int) bool {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return false
	}
	return g.bits[y*g.w+x]
}

func (g *bitGrid) set(x, y int, v bool) {
	g.bits[y*g.w+x] = v
}

// binarize thresholds a grayscale raster into a wall-ink mask.
func binarize(img *image.Gray, cutoff uint8) *bitGrid {
	b := img.Bounds()
	grid := newBitGrid(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()]
		for x, v := range row {
			if v < cutoff {
				grid.set(x, y, true)
			}
		}
	}
	return grid
}

// mooreDirections orders the 8-neighborhood clockwise starting east.
var mooreDirections = [8]image.Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// findExternalContours traces the outer boundary of every connected
// foreground component using Moore neighbor tracing. Interior holes are not
// traced; each component yields exactly one contour.
func findExternalContours(grid *bitGrid) [][]image.Point {
	visited := newBitGrid(grid.w, grid.h)
	var contours [][]image.Point

	for y := 0; y < grid.h; y++ {
		for x := 0; x < grid.w; x++ {
			if !grid.at(x, y) || visited.at(x, y) {
				continue
			}
			contour := traceBoundary(grid, image.Pt(x, y))
			floodVisit(grid, visited, image.Pt(x, y))
			if len(contour) >= 3 {
				contours = append(contours, contour)
			}
		}
	}
	return contours
}

// traceBoundary walks the component outline clockwise from its
// topmost-leftmost pixel. The walk terminates when it re-enters the start
// pixel from the original direction, or after a full-raster worth of steps
// as a hard stop against pathological masks.
func traceBoundary(grid *bitGrid, start image.Point) []image.Point {
	contour := []image.Point{start}

	// The scan reaches start from the west, so the initial backtrack
	// direction points west.
	cur := start
	dir := 4 // west
	maxSteps := grid.w * grid.h

	for step := 0; step < maxSteps; step++ {
		found := false
		// Search clockwise starting just past the backtrack direction.
		for i := 1; i <= 8; i++ {
			d := (dir + i) % 8
			next := cur.Add(mooreDirections[d])
			if grid.at(next.X, next.Y) {
				cur = next
				// New backtrack: the direction pointing at the previous
				// pixel.
				dir = (d + 4) % 8
				found = true
				break
			}
		}
		if !found {
			// Isolated pixel.
			return contour
		}
		if cur == start && len(contour) > 2 {
			return contour
		}
		contour = append(contour, cur)
	}
	return contour
}

// floodVisit marks every pixel of the component containing p as visited.
func floodVisit(grid, visited *bitGrid, p image.Point) {
	stack := []image.Point{p}
	visited.set(p.X, p.Y, true)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range mooreDirections {
			n := cur.Add(d)
			if grid.at(n.X, n.Y) && !visited.at(n.X, n.Y) {
				visited.set(n.X, n.Y, true)
				stack = append(stack, n)
			}
		}
	}
}

// simplifyContour runs Douglas-Peucker with the given tolerance in pixels.
func simplifyContour(points []image.Point, epsilon float64) []image.Point {
	if len(points) <= 2 {
		return points
	}

	// Find the point farthest from the chord between the endpoints.
	first, last := points[0], points[len(points)-1]
	var maxDist float64
	maxIdx := 0
	for i := 1; i < len(points)-1; i++ {
		d := perpendicularDistance(points[i], first, last)
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	if maxDist <= epsilon {
		return []image.Point{first, last}
	}

	left := simplifyContour(points[:maxIdx+1], epsilon)
	right := simplifyContour(points[maxIdx:], epsilon)
	return append(left[:len(left)-1], right...)
}

func perpendicularDistance(p, a, b image.Point) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	norm := math.Hypot(dx, dy)
	if norm == 0 {
		return math.Hypot(float64(p.X-a.X), float64(p.Y-a.Y))
	}
	return math.Abs(dx*float64(a.Y-p.Y)-float64(a.X-p.X)*dy) / norm
}

// contourPerimeter sums edge lengths around the closed contour, in pixels.
func contourPerimeter(points []image.Point) float64 {
	if len(points) < 2 {
		return 0
	}
	var per float64
	for i := range points {
		j := (i + 1) % len(points)
		per += math.Hypot(float64(points[j].X-points[i].X), float64(points[j].Y-points[i].Y))
	}
	return per
}

// convexHull computes the convex hull of a point set (Andrew's monotone
// chain), returned counterclockwise without the closing point.
func convexHull(points []image.Point) []image.Point {
	if len(points) < 3 {
		return points
	}

	pts := append([]image.Point(nil), points...)
	sortPoints(pts)

	cross := func(o, a, b image.Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	var hull []image.Point
	// Lower hull.
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// Upper hull.
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

func sortPoints(pts []image.Point) {
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
}
