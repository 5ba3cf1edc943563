package raster

import (
	"image"
	"math"
	"sort"
)

// LineSegment is a detected straight segment in pixel coordinates.
type LineSegment struct {
	X1, Y1, X2, Y2 int
}

// Length returns the Euclidean length of the segment.
func (l LineSegment) Length() float64 {
	return math.Hypot(float64(l.X2-l.X1), float64(l.Y2-l.Y1))
}

// AngleDeg returns the segment angle in degrees in [0, 180).
func (l LineSegment) AngleDeg() float64 {
	a := math.Atan2(float64(l.Y2-l.Y1), float64(l.X2-l.X1)) * 180 / math.Pi
	if a < 0 {
		a += 180
	}
	return a
}

// HoughLinesP extracts line segments from a binary edge map with a
// progressive probabilistic Hough transform: edge pixels vote in a
// (theta, rho) accumulator and, once a cell reaches threshold, the
// segment is traced along the supporting direction allowing gaps up to
// maxGap; segments shorter than minLen are discarded. Consumed pixels
// stop voting, so each edge contributes to at most one segment.
func HoughLinesP(edges *image.Gray, threshold int, minLen, maxGap float64) []LineSegment {
	b := edges.Bounds()
	w, h := b.Dx(), b.Dy()
	alive := make([]bool, w*h)
	var points []image.Point
	for y := 0; y < h; y++ {
		i := edges.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			if edges.Pix[i] != 0 {
				alive[y*w+x] = true
				points = append(points, image.Point{X: x, Y: y})
			}
			i++
		}
	}
	if len(points) == 0 {
		return nil
	}

	const numAngle = 180
	maxRho := int(math.Hypot(float64(w), float64(h))) + 1
	acc := make([]int32, numAngle*(2*maxRho+1))
	sinT := make([]float64, numAngle)
	cosT := make([]float64, numAngle)
	for t := 0; t < numAngle; t++ {
		rad := float64(t) * math.Pi / 180
		sinT[t] = math.Sin(rad)
		cosT[t] = math.Cos(rad)
	}

	var segments []LineSegment
	for _, p := range points {
		if !alive[p.Y*w+p.X] {
			continue
		}
		// Vote.
		bestT, bestV := -1, int32(0)
		for t := 0; t < numAngle; t++ {
			rho := int(math.Round(float64(p.X)*cosT[t] + float64(p.Y)*sinT[t]))
			idx := t*(2*maxRho+1) + rho + maxRho
			acc[idx]++
			if acc[idx] > bestV {
				bestV = acc[idx]
				bestT = t
			}
		}
		if bestV < int32(threshold) {
			continue
		}

		// Walk along the line direction from this pixel in both senses.
		dx, dy := -sinT[bestT], cosT[bestT]
		ends := [2]image.Point{}
		for sense := 0; sense < 2; sense++ {
			sx, sy := dx, dy
			if sense == 1 {
				sx, sy = -dx, -dy
			}
			fx, fy := float64(p.X), float64(p.Y)
			last := p
			gap := 0.0
			for {
				fx += sx
				fy += sy
				ix, iy := int(math.Round(fx)), int(math.Round(fy))
				if ix < 0 || iy < 0 || ix >= w || iy >= h {
					break
				}
				if onEdge(alive, w, h, ix, iy) {
					last = image.Point{X: ix, Y: iy}
					gap = 0
				} else {
					gap++
					if gap > maxGap {
						break
					}
				}
			}
			ends[sense] = last
		}
		seg := LineSegment{X1: ends[1].X, Y1: ends[1].Y, X2: ends[0].X, Y2: ends[0].Y}
		if seg.Length() < minLen {
			continue
		}
		segments = append(segments, seg)

		// Retire the supporting pixels so they stop voting.
		n := int(seg.Length()) + 1
		for i := 0; i <= n; i++ {
			f := float64(i) / float64(n)
			ix := int(math.Round(float64(seg.X1) + f*float64(seg.X2-seg.X1)))
			iy := int(math.Round(float64(seg.Y1) + f*float64(seg.Y2-seg.Y1)))
			for oy := -1; oy <= 1; oy++ {
				for ox := -1; ox <= 1; ox++ {
					nx, ny := ix+ox, iy+oy
					if nx >= 0 && ny >= 0 && nx < w && ny < h {
						alive[ny*w+nx] = false
					}
				}
			}
		}
	}
	return segments
}

func onEdge(alive []bool, w, h, x, y int) bool {
	for oy := -1; oy <= 1; oy++ {
		for ox := -1; ox <= 1; ox++ {
			nx, ny := x+ox, y+oy
			if nx >= 0 && ny >= 0 && nx < w && ny < h && alive[ny*w+nx] {
				return true
			}
		}
	}
	return false
}

// Circle is a detected circle.
type Circle struct {
	Cx, Cy int
	R      float64
	Votes  int
}

// HoughCircles finds circles of radius minR..maxR on a gradient-
// magnitude image: pixels above magThreshold vote for candidate centers
// along their gradient direction (both senses), centers are selected by
// vote count with a minimum separation of minDist, and each center's
// radius is the median supporter distance. votesFrac scales the
// acceptance threshold relative to the smallest circumference.
func HoughCircles(g *image.Gray, magThreshold float64, minR, maxR, minDist int, votesFrac float64) []Circle {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return nil
	}
	at := func(x, y int) float64 {
		return float64(g.Pix[g.PixOffset(b.Min.X+x, b.Min.Y+y)])
	}

	acc := make([]int32, w*h)
	type edgePt struct {
		x, y   int
		gx, gy float64
	}
	var pts []edgePt
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			m := math.Hypot(gx, gy)
			if m < magThreshold {
				continue
			}
			ux, uy := gx/m, gy/m
			pts = append(pts, edgePt{x: x, y: y, gx: ux, gy: uy})
			for sense := -1.0; sense <= 1.0; sense += 2.0 {
				for r := minR; r <= maxR; r += 2 {
					cx := int(math.Round(float64(x) + sense*ux*float64(r)))
					cy := int(math.Round(float64(y) + sense*uy*float64(r)))
					if cx >= 0 && cy >= 0 && cx < w && cy < h {
						acc[cy*w+cx]++
					}
				}
			}
		}
	}
	if len(pts) == 0 {
		return nil
	}

	minVotes := int32(votesFrac * 2 * math.Pi * float64(minR))
	if minVotes < 8 {
		minVotes = 8
	}
	type cand struct {
		x, y int
		v    int32
	}
	var cands []cand
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if acc[y*w+x] >= minVotes {
				cands = append(cands, cand{x: x, y: y, v: acc[y*w+x]})
			}
		}
	}
	// Strongest first, suppress near-duplicates.
	sort.Slice(cands, func(i, j int) bool { return cands[i].v > cands[j].v })
	var circles []Circle
	for _, c := range cands {
		tooClose := false
		for _, cc := range circles {
			if math.Hypot(float64(c.x-cc.Cx), float64(c.y-cc.Cy)) < float64(minDist) {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}
		// Median supporter distance is the radius estimate.
		var dists []float64
		for _, p := range pts {
			d := math.Hypot(float64(p.x-c.x), float64(p.y-c.y))
			if d >= float64(minR)-2 && d <= float64(maxR)+2 {
				dists = append(dists, d)
			}
		}
		if len(dists) < int(minVotes) {
			continue
		}
		sort.Float64s(dists)
		circles = append(circles, Circle{Cx: c.x, Cy: c.y, R: dists[len(dists)/2], Votes: int(c.v)})
	}
	return circles
}
