package raster

import "image"

// Inpaint fills the masked region of n (mask non-zero = hole) by
// diffusing surrounding pixels inward: holes are filled from their known
// boundary in successive rings, then smoothed with radius averaging
// passes restricted to the filled area so the patch blends into its
// surroundings.
func Inpaint(n *image.NRGBA, mask *image.Gray, radius int) *image.NRGBA {
	b := n.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := CloneNRGBA(n)
	mb := mask.Bounds()

	unknown := make([]bool, w*h)
	hole := make([]bool, w*h)
	count := 0
	for y := 0; y < h; y++ {
		mi := mask.PixOffset(mb.Min.X, mb.Min.Y+y)
		for x := 0; x < w; x++ {
			if mask.Pix[mi] != 0 {
				unknown[y*w+x] = true
				hole[y*w+x] = true
				count++
			}
			mi++
		}
	}
	if count == 0 {
		return dst
	}

	// Ring-by-ring fill from the known boundary.
	for count > 0 {
		filledAny := false
		var ring []int
		for i, u := range unknown {
			if !u {
				continue
			}
			x, y := i%w, i/w
			var sr, sg, sb float64
			nKnown := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					if unknown[ny*w+nx] {
						continue
					}
					pi := dst.PixOffset(nx, ny)
					sr += float64(dst.Pix[pi])
					sg += float64(dst.Pix[pi+1])
					sb += float64(dst.Pix[pi+2])
					nKnown++
				}
			}
			if nKnown == 0 {
				continue
			}
			pi := dst.PixOffset(x, y)
			dst.Pix[pi] = clampU8(sr / float64(nKnown))
			dst.Pix[pi+1] = clampU8(sg / float64(nKnown))
			dst.Pix[pi+2] = clampU8(sb / float64(nKnown))
			dst.Pix[pi+3] = 0xff
			ring = append(ring, i)
			filledAny = true
		}
		for _, i := range ring {
			unknown[i] = false
			count--
		}
		if !filledAny {
			// Fully enclosed by other unknowns cannot happen, but guard
			// against a mask covering the whole image.
			break
		}
	}

	// Relaxation passes blend the filled area with its surroundings.
	passes := radius
	if passes < 1 {
		passes = 1
	}
	for p := 0; p < passes; p++ {
		next := CloneNRGBA(dst)
		for i, isHole := range hole {
			if !isHole {
				continue
			}
			x, y := i%w, i/w
			var sr, sg, sb float64
			cnt := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					pi := dst.PixOffset(nx, ny)
					sr += float64(dst.Pix[pi])
					sg += float64(dst.Pix[pi+1])
					sb += float64(dst.Pix[pi+2])
					cnt++
				}
			}
			pi := next.PixOffset(x, y)
			next.Pix[pi] = clampU8(sr / float64(cnt))
			next.Pix[pi+1] = clampU8(sg / float64(cnt))
			next.Pix[pi+2] = clampU8(sb / float64(cnt))
		}
		dst = next
	}
	return dst
}

// InpaintGray is Inpaint for grayscale images.
func InpaintGray(g *image.Gray, mask *image.Gray, radius int) *image.Gray {
	return Gray(Inpaint(NRGBA(g), mask, radius))
}
