package raster

import (
	"image"
	"math"
)

// Contour is an ordered polygon of pixel coordinates.
type Contour []image.Point

// PolygonArea returns the absolute shoelace area of the contour.
func PolygonArea(c Contour) float64 {
	if len(c) < 3 {
		return 0
	}
	var sum float64
	for i := range c {
		j := (i + 1) % len(c)
		sum += float64(c[i].X)*float64(c[j].Y) - float64(c[j].X)*float64(c[i].Y)
	}
	return math.Abs(sum) / 2
}

// Perimeter returns the closed arc length of the contour.
func Perimeter(c Contour) float64 {
	if len(c) < 2 {
		return 0
	}
	var sum float64
	for i := range c {
		j := (i + 1) % len(c)
		sum += math.Hypot(float64(c[j].X-c[i].X), float64(c[j].Y-c[i].Y))
	}
	return sum
}

// BoundingRect returns the axis-aligned bounding box of the contour.
func BoundingRect(c Contour) image.Rectangle {
	if len(c) == 0 {
		return image.Rectangle{}
	}
	r := image.Rect(c[0].X, c[0].Y, c[0].X+1, c[0].Y+1)
	for _, p := range c[1:] {
		if p.X < r.Min.X {
			r.Min.X = p.X
		}
		if p.Y < r.Min.Y {
			r.Min.Y = p.Y
		}
		if p.X+1 > r.Max.X {
			r.Max.X = p.X + 1
		}
		if p.Y+1 > r.Max.Y {
			r.Max.Y = p.Y + 1
		}
	}
	return r
}

// LargestContour traces the outer boundary of the largest connected
// foreground region of bin using Moore neighbor tracing. Returns false
// when the image has no foreground.
func LargestContour(bin *image.Gray) (Contour, bool) {
	l := LabelComponents(bin)
	best, ok := l.Largest()
	if !ok {
		return nil, false
	}
	return traceBoundary(l, best.ID), true
}

// ComponentContour traces the outer boundary of one labeled component.
func ComponentContour(l *Labeling, id int32) Contour {
	return traceBoundary(l, id)
}

func traceBoundary(l *Labeling, id int32) Contour {
	at := func(x, y int) bool {
		if x < 0 || y < 0 || x >= l.W || y >= l.H {
			return false
		}
		return l.Labels[y*l.W+x] == id
	}

	// Find the top-left-most pixel of the component.
	start := image.Point{X: -1}
	for y := 0; y < l.H && start.X < 0; y++ {
		for x := 0; x < l.W; x++ {
			if l.Labels[y*l.W+x] == id {
				start = image.Point{X: x, Y: y}
				break
			}
		}
	}
	if start.X < 0 {
		return nil
	}

	// Clockwise Moore neighborhood starting east.
	dirs := [8]image.Point{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	contour := Contour{start}
	cur := start
	dir := 6 // entered from above
	for {
		found := false
		for i := 0; i < 8; i++ {
			d := (dir + 1 + i) % 8
			nxt := image.Point{X: cur.X + dirs[d].X, Y: cur.Y + dirs[d].Y}
			if at(nxt.X, nxt.Y) {
				cur = nxt
				dir = (d + 4) % 8
				found = true
				break
			}
		}
		if !found {
			break // isolated pixel
		}
		if cur == start && len(contour) > 1 {
			break
		}
		contour = append(contour, cur)
		if len(contour) > 2*len(l.Labels) {
			break
		}
	}
	return contour
}

// ApproxPolygon simplifies a closed contour with the Douglas-Peucker
// algorithm at the given tolerance.
func ApproxPolygon(c Contour, epsilon float64) Contour {
	if len(c) < 3 {
		return append(Contour(nil), c...)
	}
	// Split at two far-apart points so the recursion sees two open
	// polylines. The exact farthest pair is quadratic, so long contours
	// use the x+y extremes instead.
	var ai, bi int
	if len(c) > 600 {
		minS, maxS := math.MaxInt32, math.MinInt32
		for i, p := range c {
			s := p.X + p.Y
			if s < minS {
				minS, ai = s, i
			}
			if s > maxS {
				maxS, bi = s, i
			}
		}
	} else {
		maxD := -1.0
		for i := range c {
			for j := i + 1; j < len(c); j++ {
				d := dist2(c[i], c[j])
				if d > maxD {
					maxD, ai, bi = d, i, j
				}
			}
		}
	}
	if ai > bi {
		ai, bi = bi, ai
	}
	if ai == bi {
		return append(Contour(nil), c...)
	}
	first := douglasPeucker(c[ai:bi+1], epsilon)
	var second Contour
	second = append(second, c[bi:]...)
	second = append(second, c[:ai+1]...)
	second = douglasPeucker(second, epsilon)
	out := append(Contour(nil), first...)
	if len(second) > 2 {
		out = append(out, second[1:len(second)-1]...)
	}
	return out
}

func douglasPeucker(pts Contour, epsilon float64) Contour {
	if len(pts) < 3 {
		return append(Contour(nil), pts...)
	}
	a, b := pts[0], pts[len(pts)-1]
	maxD, idx := -1.0, 0
	for i := 1; i < len(pts)-1; i++ {
		d := pointLineDist(pts[i], a, b)
		if d > maxD {
			maxD, idx = d, i
		}
	}
	if maxD <= epsilon {
		return Contour{a, b}
	}
	left := douglasPeucker(pts[:idx+1], epsilon)
	right := douglasPeucker(pts[idx:], epsilon)
	return append(left[:len(left)-1], right...)
}

func pointLineDist(p, a, b image.Point) float64 {
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	l := math.Hypot(dx, dy)
	if l == 0 {
		return math.Hypot(float64(p.X-a.X), float64(p.Y-a.Y))
	}
	return math.Abs(dx*float64(a.Y-p.Y)-dy*float64(a.X-p.X)) / l
}

func dist2(a, b image.Point) float64 {
	dx, dy := float64(a.X-b.X), float64(a.Y-b.Y)
	return dx*dx + dy*dy
}

// ConvexHull returns the convex hull of the points in counter-clockwise
// order (Andrew monotone chain).
func ConvexHull(pts []image.Point) Contour {
	if len(pts) < 3 {
		return append(Contour(nil), pts...)
	}
	sorted := append([]image.Point(nil), pts...)
	// Sort by x then y.
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0; j-- {
			if sorted[j].X < sorted[j-1].X || (sorted[j].X == sorted[j-1].X && sorted[j].Y < sorted[j-1].Y) {
				sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
			} else {
				break
			}
		}
	}
	cross := func(o, a, b image.Point) int64 {
		return int64(a.X-o.X)*int64(b.Y-o.Y) - int64(a.Y-o.Y)*int64(b.X-o.X)
	}
	var hull Contour
	for _, p := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	if len(hull) > 1 {
		hull = hull[:len(hull)-1]
	}
	return hull
}

// RotatedRect is a minimum-area bounding rectangle.
type RotatedRect struct {
	Cx, Cy float64
	W, H   float64
	// Angle in degrees in (-90, 0]: the rotation of the rectangle edge
	// considered "width", matching the usual minAreaRect convention.
	Angle float64
}

// MinAreaRect computes the minimum-area rectangle enclosing the given
// points using rotating calipers over the convex hull. Returns false for
// fewer than 3 non-collinear points.
func MinAreaRect(pts []image.Point) (RotatedRect, bool) {
	hull := ConvexHull(pts)
	if len(hull) < 3 {
		return RotatedRect{}, false
	}
	best := RotatedRect{}
	bestArea := math.Inf(1)
	for i := range hull {
		j := (i + 1) % len(hull)
		ex := float64(hull[j].X - hull[i].X)
		ey := float64(hull[j].Y - hull[i].Y)
		el := math.Hypot(ex, ey)
		if el == 0 {
			continue
		}
		ux, uy := ex/el, ey/el // edge direction
		vx, vy := -uy, ux      // normal
		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			pu := float64(p.X)*ux + float64(p.Y)*uy
			pv := float64(p.X)*vx + float64(p.Y)*vy
			minU, maxU = math.Min(minU, pu), math.Max(maxU, pu)
			minV, maxV = math.Min(minV, pv), math.Max(maxV, pv)
		}
		w := maxU - minU
		h := maxV - minV
		area := w * h
		if area < bestArea {
			bestArea = area
			cu := (minU + maxU) / 2
			cv := (minV + maxV) / 2
			angle := math.Atan2(uy, ux) * 180 / math.Pi
			// Normalize into (-90, 0]: a half turn keeps the axes, a
			// quarter turn swaps width and height.
			for angle <= -90 {
				angle += 180
			}
			for angle > 90 {
				angle -= 180
			}
			if angle > 0 {
				angle -= 90
				w, h = h, w
			}
			best = RotatedRect{
				Cx:    cu*ux + cv*vx,
				Cy:    cu*uy + cv*vy,
				W:     w,
				H:     h,
				Angle: angle,
			}
		}
	}
	return best, true
}

// ForegroundPoints collects the coordinates of all non-zero pixels,
// sampled at the given step to bound the point count.
func ForegroundPoints(bin *image.Gray, step int) []image.Point {
	if step < 1 {
		step = 1
	}
	b := bin.Bounds()
	var pts []image.Point
	for y := 0; y < b.Dy(); y += step {
		i := bin.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < b.Dx(); x += step {
			if bin.Pix[i] != 0 {
				pts = append(pts, image.Point{X: x, Y: y})
			}
			i += step
		}
	}
	return pts
}
