package raster

import "image"

// DrawLineMask stamps a thick line onto a binary mask. Width is the
// stroke diameter in pixels.
func DrawLineMask(mask *image.Gray, x1, y1, x2, y2, width int) {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	r := width / 2
	stamp := func(cx, cy int) {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if dx*dx+dy*dy > r*r+r {
					continue
				}
				x, y := cx+dx, cy+dy
				if x >= 0 && y >= 0 && x < w && y < h {
					mask.Pix[y*mask.Stride+x] = 255
				}
			}
		}
	}
	// Bresenham walk.
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy
	x, y := x1, y1
	for {
		stamp(x, y)
		if x == x2 && y == y2 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// ApplyMaskWhite paints every masked pixel white. Used by border
// masking, which blanks everything outside the detected document
// interior without altering dimensions.
func ApplyMaskWhite(n *image.NRGBA, mask *image.Gray) *image.NRGBA {
	b := n.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := CloneNRGBA(n)
	mb := mask.Bounds()
	for y := 0; y < h; y++ {
		mi := mask.PixOffset(mb.Min.X, mb.Min.Y+y)
		di := dst.PixOffset(0, y)
		for x := 0; x < w; x++ {
			if mask.Pix[mi] != 0 {
				dst.Pix[di] = 255
				dst.Pix[di+1] = 255
				dst.Pix[di+2] = 255
			}
			mi++
			di += 4
		}
	}
	return dst
}

// BlendMasked returns base with the masked pixels taken from overlay.
// Both images must share dimensions with the mask.
func BlendMasked(base, overlay *image.NRGBA, mask *image.Gray) *image.NRGBA {
	b := base.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := CloneNRGBA(base)
	ob := overlay.Bounds()
	mb := mask.Bounds()
	for y := 0; y < h; y++ {
		mi := mask.PixOffset(mb.Min.X, mb.Min.Y+y)
		oi := overlay.PixOffset(ob.Min.X, ob.Min.Y+y)
		di := dst.PixOffset(0, y)
		for x := 0; x < w; x++ {
			if mask.Pix[mi] != 0 {
				dst.Pix[di] = overlay.Pix[oi]
				dst.Pix[di+1] = overlay.Pix[oi+1]
				dst.Pix[di+2] = overlay.Pix[oi+2]
			}
			mi++
			oi += 4
			di += 4
		}
	}
	return dst
}

// PasteGray copies region src into dst at the given rectangle. The
// rectangle is clamped to both images.
func PasteGray(dst *image.Gray, src *image.Gray, at image.Rectangle) {
	db := dst.Bounds()
	sb := src.Bounds()
	for y := 0; y < at.Dy() && y < sb.Dy(); y++ {
		ty := at.Min.Y + y
		if ty < 0 || ty >= db.Dy() {
			continue
		}
		for x := 0; x < at.Dx() && x < sb.Dx(); x++ {
			tx := at.Min.X + x
			if tx < 0 || tx >= db.Dx() {
				continue
			}
			dst.Pix[ty*dst.Stride+tx] = src.Pix[y*src.Stride+x]
		}
	}
}

// SubGray extracts a copy of the rectangle from g.
func SubGray(g *image.Gray, r image.Rectangle) *image.Gray {
	b := g.Bounds()
	r = r.Intersect(image.Rect(0, 0, b.Dx(), b.Dy()))
	dst := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		si := g.PixOffset(b.Min.X+r.Min.X, b.Min.Y+r.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+r.Dx()], g.Pix[si:si+r.Dx()])
	}
	return dst
}
