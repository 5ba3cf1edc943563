package raster

import (
	"image"
	"math"
)

// Canny computes a binary edge map with the usual pipeline: Sobel
// gradients, non-maximum suppression along the quantized gradient
// direction, then double-threshold hysteresis. Edge pixels are 255.
func Canny(g *image.Gray, low, high float64) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w < 3 || h < 3 {
		return dst
	}
	at := func(x, y int) float64 {
		return float64(g.Pix[g.PixOffset(b.Min.X+x, b.Min.Y+y)])
	}

	mag := make([]float64, w*h)
	dir := make([]uint8, w*h) // 0=E/W 1=NE/SW 2=N/S 3=NW/SE
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			mag[y*w+x] = math.Hypot(gx, gy)
			angle := math.Atan2(gy, gx) * 180 / math.Pi
			if angle < 0 {
				angle += 180
			}
			switch {
			case angle < 22.5 || angle >= 157.5:
				dir[y*w+x] = 0
			case angle < 67.5:
				dir[y*w+x] = 1
			case angle < 112.5:
				dir[y*w+x] = 2
			default:
				dir[y*w+x] = 3
			}
		}
	}

	// Non-maximum suppression.
	var offsets = [4][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}}
	const (
		weak   = 1
		strong = 2
	)
	cls := make([]uint8, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			m := mag[y*w+x]
			if m < low {
				continue
			}
			o := offsets[dir[y*w+x]]
			if m < mag[(y+o[1])*w+x+o[0]] || m < mag[(y-o[1])*w+x-o[0]] {
				continue
			}
			if m >= high {
				cls[y*w+x] = strong
			} else {
				cls[y*w+x] = weak
			}
		}
	}

	// Hysteresis: weak edges survive only when connected to a strong one.
	stack := make([]int, 0, w)
	for i, c := range cls {
		if c == strong {
			stack = append(stack, i)
			dst.Pix[(i/w)*dst.Stride+i%w] = 255
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if cls[j] == weak {
					cls[j] = strong
					dst.Pix[ny*dst.Stride+nx] = 255
					stack = append(stack, j)
				}
			}
		}
	}
	return dst
}
