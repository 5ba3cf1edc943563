package raster

import (
	"image"
	"math"
	"testing"
)

func TestLargestContourOfRectangle(t *testing.T) {
	bin := image.NewGray(image.Rect(0, 0, 60, 50))
	fillRectGray(bin, image.Rect(10, 10, 40, 30), 255)
	bin.Pix[45*bin.Stride+50] = 255 // small distractor

	c, ok := LargestContour(bin)
	if !ok {
		t.Fatalf("expected a contour")
	}
	if got := BoundingRect(c); got != image.Rect(10, 10, 40, 30) {
		t.Fatalf("contour bounds = %v", got)
	}
	// Boundary runs through pixel centers, so the enclosed polygon is one
	// pixel short of the fill on each axis.
	if area := PolygonArea(c); math.Abs(area-29*19) > 1e-9 {
		t.Fatalf("contour area = %v, want %v", area, 29*19)
	}
}

func TestApproxPolygonFindsFourCorners(t *testing.T) {
	bin := image.NewGray(image.Rect(0, 0, 80, 60))
	fillRectGray(bin, image.Rect(15, 10, 65, 50), 255)

	c, ok := LargestContour(bin)
	if !ok {
		t.Fatalf("expected a contour")
	}
	approx := ApproxPolygon(c, 0.02*Perimeter(c))
	if len(approx) != 4 {
		t.Fatalf("approximated polygon has %d vertices, want 4", len(approx))
	}
	corners := map[image.Point]bool{}
	for _, p := range approx {
		corners[p] = true
	}
	for _, want := range []image.Point{{15, 10}, {64, 10}, {64, 49}, {15, 49}} {
		if !corners[want] {
			t.Fatalf("missing corner %v in %v", want, approx)
		}
	}
}

func TestConvexHullDropsInterior(t *testing.T) {
	pts := []image.Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {5, 5}, {3, 7}}
	hull := ConvexHull(pts)
	if len(hull) != 4 {
		t.Fatalf("hull has %d vertices, want 4", len(hull))
	}
	for _, p := range hull {
		if p == (image.Point{5, 5}) || p == (image.Point{3, 7}) {
			t.Fatalf("interior point %v leaked into the hull", p)
		}
	}
}

func TestMinAreaRectAxisAligned(t *testing.T) {
	pts := []image.Point{{0, 0}, {100, 0}, {100, 40}, {0, 40}}
	r, ok := MinAreaRect(pts)
	if !ok {
		t.Fatalf("expected a rectangle")
	}
	if r.Angle != 0 {
		t.Fatalf("axis-aligned angle = %v, want 0", r.Angle)
	}
	if math.Abs(r.W-100) > 1e-9 || math.Abs(r.H-40) > 1e-9 {
		t.Fatalf("size = %v x %v, want 100 x 40", r.W, r.H)
	}
	if math.Abs(r.Cx-50) > 1e-9 || math.Abs(r.Cy-20) > 1e-9 {
		t.Fatalf("center = (%v,%v), want (50,20)", r.Cx, r.Cy)
	}
}

func TestMinAreaRectTiltedAngle(t *testing.T) {
	theta := -20 * math.Pi / 180
	cos, sin := math.Cos(theta), math.Sin(theta)
	base := [][2]float64{{-60, -25}, {60, -25}, {60, 25}, {-60, 25}}
	var pts []image.Point
	for _, p := range base {
		x := p[0]*cos - p[1]*sin + 200
		y := p[0]*sin + p[1]*cos + 200
		pts = append(pts, image.Point{X: int(math.Round(x)), Y: int(math.Round(y))})
	}

	r, ok := MinAreaRect(pts)
	if !ok {
		t.Fatalf("expected a rectangle")
	}
	if r.Angle <= -90 || r.Angle > 0 {
		t.Fatalf("angle %v outside (-90, 0]", r.Angle)
	}
	if math.Abs(r.Angle-(-20)) > 1 {
		t.Fatalf("angle = %v, want about -20", r.Angle)
	}
	if math.Abs(r.W-120) > 2 || math.Abs(r.H-50) > 2 {
		t.Fatalf("size = %v x %v, want about 120 x 50", r.W, r.H)
	}
}

func TestForegroundPointsSampling(t *testing.T) {
	bin := image.NewGray(image.Rect(0, 0, 20, 20))
	fillRectGray(bin, image.Rect(0, 0, 20, 20), 255)

	all := ForegroundPoints(bin, 1)
	if len(all) != 400 {
		t.Fatalf("full sampling found %d points, want 400", len(all))
	}
	sampled := ForegroundPoints(bin, 2)
	if len(sampled) != 100 {
		t.Fatalf("step-2 sampling found %d points, want 100", len(sampled))
	}
}
