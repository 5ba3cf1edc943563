package raster

import "image"

// Kernel is a structuring element for the morphological operators.
type Kernel struct {
	W, H int
	mask []bool // row-major, true = active
}

// At reports whether the element at (x, y) is active.
func (k Kernel) At(x, y int) bool {
	if x < 0 || y < 0 || x >= k.W || y >= k.H {
		return false
	}
	return k.mask[y*k.W+x]
}

// RectKernel builds a full rectangular structuring element.
func RectKernel(w, h int) Kernel {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	mask := make([]bool, w*h)
	for i := range mask {
		mask[i] = true
	}
	return Kernel{W: w, H: h, mask: mask}
}

// EllipseKernel builds an elliptical structuring element inscribed in a
// w x h box.
func EllipseKernel(w, h int) Kernel {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	mask := make([]bool, w*h)
	rx := float64(w-1) / 2
	ry := float64(h-1) / 2
	if rx == 0 {
		rx = 0.5
	}
	if ry == 0 {
		ry = 0.5
	}
	cx, cy := float64(w-1)/2, float64(h-1)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := (float64(x) - cx) / rx
			dy := (float64(y) - cy) / ry
			if dx*dx+dy*dy <= 1.0+1e-9 {
				mask[y*w+x] = true
			}
		}
	}
	return Kernel{W: w, H: h, mask: mask}
}

// Erode replaces each pixel with the minimum over the kernel
// neighborhood, repeated iterations times. Windows clamp at the borders.
func Erode(g *image.Gray, k Kernel, iterations int) *image.Gray {
	return morph(g, k, iterations, true)
}

// Dilate replaces each pixel with the maximum over the kernel
// neighborhood, repeated iterations times.
func Dilate(g *image.Gray, k Kernel, iterations int) *image.Gray {
	return morph(g, k, iterations, false)
}

// Open erodes then dilates, removing bright specks smaller than the
// kernel. iterations applies to both halves.
func Open(g *image.Gray, k Kernel, iterations int) *image.Gray {
	return Dilate(Erode(g, k, iterations), k, iterations)
}

// Close dilates then erodes, filling dark gaps smaller than the kernel.
func Close(g *image.Gray, k Kernel, iterations int) *image.Gray {
	return Erode(Dilate(g, k, iterations), k, iterations)
}

func morph(g *image.Gray, k Kernel, iterations int, min bool) *image.Gray {
	if iterations < 1 {
		iterations = 1
	}
	src := CloneGray(g)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	ax := k.W / 2
	ay := k.H / 2
	for it := 0; it < iterations; it++ {
		dst := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				var best uint8
				if min {
					best = 255
				}
				for ky := 0; ky < k.H; ky++ {
					sy := y + ky - ay
					if sy < 0 || sy >= h {
						continue
					}
					row := sy * src.Stride
					for kx := 0; kx < k.W; kx++ {
						if !k.mask[ky*k.W+kx] {
							continue
						}
						sx := x + kx - ax
						if sx < 0 || sx >= w {
							continue
						}
						v := src.Pix[row+sx]
						if min {
							if v < best {
								best = v
							}
						} else if v > best {
							best = v
						}
					}
				}
				dst.Pix[y*dst.Stride+x] = best
			}
		}
		src = dst
	}
	return src
}
