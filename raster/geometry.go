package raster

import (
	"errors"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// ErrDegenerateQuad is returned when a perspective mapping cannot be
// solved because the control points are collinear or coincident.
var ErrDegenerateQuad = errors.New("raster: degenerate quadrilateral")

// Rotate90CCW rotates a quarter turn counter-clockwise. Width and height
// swap.
func Rotate90CCW(src image.Image) *image.NRGBA {
	return imaging.Rotate90(src)
}

// Rotate90CW rotates a quarter turn clockwise. Width and height swap.
func Rotate90CW(src image.Image) *image.NRGBA {
	return imaging.Rotate270(src)
}

// Rotate180 rotates a half turn. Dimensions are preserved.
func Rotate180(src image.Image) *image.NRGBA {
	return imaging.Rotate180(src)
}

// RotateAbout rotates src by angle degrees counter-clockwise about its
// center, keeping the original canvas size. Pixels sampled outside the
// source replicate the nearest border pixel, so no artificial frame is
// introduced.
func RotateAbout(src *image.NRGBA, angle float64) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	rad := angle * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	cx, cy := float64(w-1)/2, float64(h-1)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Inverse mapping into the source frame.
			dx := float64(x) - cx
			dy := float64(y) - cy
			sx := cos*dx - sin*dy + cx
			sy := sin*dx + cos*dy + cy
			r, g, bl, a := bilinearReplicate(src, sx, sy)
			i := dst.PixOffset(x, y)
			dst.Pix[i] = r
			dst.Pix[i+1] = g
			dst.Pix[i+2] = bl
			dst.Pix[i+3] = a
		}
	}
	return dst
}

func bilinearReplicate(src *image.NRGBA, x, y float64) (r, g, b, a uint8) {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	x0 := clampInt(int(math.Floor(x)), 0, w-1)
	y0 := clampInt(int(math.Floor(y)), 0, h-1)
	x1 := clampInt(x0+1, 0, w-1)
	y1 := clampInt(y0+1, 0, h-1)
	fx := x - math.Floor(x)
	fy := y - math.Floor(y)
	if x < 0 {
		fx = 0
	}
	if y < 0 {
		fy = 0
	}
	sample := func(px, py int) (float64, float64, float64, float64) {
		i := src.PixOffset(bounds.Min.X+px, bounds.Min.Y+py)
		return float64(src.Pix[i]), float64(src.Pix[i+1]), float64(src.Pix[i+2]), float64(src.Pix[i+3])
	}
	r00, g00, b00, a00 := sample(x0, y0)
	r10, g10, b10, a10 := sample(x1, y0)
	r01, g01, b01, a01 := sample(x0, y1)
	r11, g11, b11, a11 := sample(x1, y1)
	lerp2 := func(v00, v10, v01, v11 float64) uint8 {
		top := v00 + (v10-v00)*fx
		bot := v01 + (v11-v01)*fx
		return clampU8(top + (bot-top)*fy)
	}
	return lerp2(r00, r10, r01, r11), lerp2(g00, g10, g01, g11),
		lerp2(b00, b10, b01, b11), lerp2(a00, a10, a01, a11)
}

// Homography is a 3x3 projective transform in row-major order.
type Homography [9]float64

// Apply maps a source point through the homography.
func (m Homography) Apply(x, y float64) (float64, float64) {
	w := m[6]*x + m[7]*y + m[8]
	if w == 0 {
		w = 1e-12
	}
	return (m[0]*x + m[1]*y + m[2]) / w, (m[3]*x + m[4]*y + m[5]) / w
}

// SolveHomography finds the projective transform mapping the four src
// points onto the four dst points by Gaussian elimination of the 8x8
// system. Collinear or duplicate control points yield
// ErrDegenerateQuad.
func SolveHomography(src, dst [4][2]float64) (Homography, error) {
	var a [8][9]float64
	for i := 0; i < 4; i++ {
		sx, sy := src[i][0], src[i][1]
		dx, dy := dst[i][0], dst[i][1]
		a[2*i] = [9]float64{sx, sy, 1, 0, 0, 0, -dx * sx, -dx * sy, dx}
		a[2*i+1] = [9]float64{0, 0, 0, sx, sy, 1, -dy * sx, -dy * sy, dy}
	}
	// Forward elimination with partial pivoting.
	for col := 0; col < 8; col++ {
		pivot := col
		for r := col + 1; r < 8; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-10 {
			return Homography{}, ErrDegenerateQuad
		}
		a[col], a[pivot] = a[pivot], a[col]
		for r := col + 1; r < 8; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c < 9; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}
	var sol [8]float64
	for r := 7; r >= 0; r-- {
		v := a[r][8]
		for c := r + 1; c < 8; c++ {
			v -= a[r][c] * sol[c]
		}
		sol[r] = v / a[r][r]
	}
	return Homography{sol[0], sol[1], sol[2], sol[3], sol[4], sol[5], sol[6], sol[7], 1}, nil
}

// WarpPerspective maps the quadrilateral quad in src onto an outW x outH
// rectangle. quad must be ordered top-left, top-right, bottom-right,
// bottom-left.
func WarpPerspective(src *image.NRGBA, quad [4][2]float64, outW, outH int) (*image.NRGBA, error) {
	if outW < 1 || outH < 1 {
		return nil, ErrDegenerateQuad
	}
	dstQuad := [4][2]float64{
		{0, 0},
		{float64(outW - 1), 0},
		{float64(outW - 1), float64(outH - 1)},
		{0, float64(outH - 1)},
	}
	// Invert the mapping: for each destination pixel find its source.
	inv, err := SolveHomography(dstQuad, quad)
	if err != nil {
		return nil, err
	}
	dst := image.NewNRGBA(image.Rect(0, 0, outW, outH))
	for y := 0; y < outH; y++ {
		for x := 0; x < outW; x++ {
			sx, sy := inv.Apply(float64(x), float64(y))
			r, g, b, a := bilinearReplicate(src, sx, sy)
			i := dst.PixOffset(x, y)
			dst.Pix[i] = r
			dst.Pix[i+1] = g
			dst.Pix[i+2] = b
			dst.Pix[i+3] = a
		}
	}
	return dst, nil
}

// OrderQuad orders four corner points top-left, top-right, bottom-right,
// bottom-left using the coordinate sum/difference heuristics: the
// top-left corner minimizes x+y, the bottom-right maximizes x+y, the
// top-right minimizes y-x and the bottom-left maximizes y-x.
func OrderQuad(pts [4][2]float64) [4][2]float64 {
	var out [4][2]float64
	minSum, maxSum := math.Inf(1), math.Inf(-1)
	minDiff, maxDiff := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		sum := p[0] + p[1]
		diff := p[1] - p[0]
		if sum < minSum {
			minSum = sum
			out[0] = p
		}
		if sum > maxSum {
			maxSum = sum
			out[2] = p
		}
		if diff < minDiff {
			minDiff = diff
			out[1] = p
		}
		if diff > maxDiff {
			maxDiff = diff
			out[3] = p
		}
	}
	return out
}

// ScaleToWidth downsamples src to at most maxW pixels wide, preserving
// aspect ratio. Images already narrow enough are returned as copies.
func ScaleToWidth(src image.Image, maxW int) *image.NRGBA {
	b := src.Bounds()
	if b.Dx() <= maxW {
		return NRGBA(src)
	}
	return imaging.Resize(src, maxW, 0, imaging.Lanczos)
}
