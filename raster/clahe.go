package raster

import "image"

// CLAHE applies contrast-limited adaptive histogram equalization.
// The image is divided into tilesX x tilesY tiles; each tile's histogram
// is clipped at clipLimit times the uniform bin height before
// equalization, and per-pixel mappings are bilinearly interpolated
// between the four surrounding tile transforms.
func CLAHE(g *image.Gray, clipLimit float64, tilesX, tilesY int) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return CloneGray(g)
	}
	if tilesX < 1 {
		tilesX = 1
	}
	if tilesY < 1 {
		tilesY = 1
	}
	if tilesX > w {
		tilesX = w
	}
	if tilesY > h {
		tilesY = h
	}

	tileW := (w + tilesX - 1) / tilesX
	tileH := (h + tilesY - 1) / tilesY

	// Build a clipped equalization lookup per tile.
	luts := make([][256]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := clampInt(x0+tileW, 0, w), clampInt(y0+tileH, 0, h)
			var hist [256]int
			count := 0
			for y := y0; y < y1; y++ {
				i := g.PixOffset(b.Min.X+x0, b.Min.Y+y)
				for x := x0; x < x1; x++ {
					hist[g.Pix[i]]++
					count++
					i++
				}
			}
			if count == 0 {
				continue
			}
			// Clip and redistribute the excess uniformly.
			limit := int(clipLimit * float64(count) / 256)
			if limit < 1 {
				limit = 1
			}
			excess := 0
			for v := 0; v < 256; v++ {
				if hist[v] > limit {
					excess += hist[v] - limit
					hist[v] = limit
				}
			}
			share := excess / 256
			rem := excess % 256
			for v := 0; v < 256; v++ {
				hist[v] += share
				if v < rem {
					hist[v]++
				}
			}
			cdf := 0
			scale := 255.0 / float64(count)
			for v := 0; v < 256; v++ {
				cdf += hist[v]
				luts[ty*tilesX+tx][v] = clampU8(float64(cdf) * scale)
			}
		}
	}

	// Interpolate between neighboring tile transforms.
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		fy := (float64(y) - float64(tileH)/2 + 0.5) / float64(tileH)
		ty0 := int(fy)
		if fy < 0 {
			ty0 = -1
		}
		wy := fy - float64(ty0)
		ty1 := ty0 + 1
		ty0c := clampInt(ty0, 0, tilesY-1)
		ty1c := clampInt(ty1, 0, tilesY-1)
		si := g.PixOffset(b.Min.X, b.Min.Y+y)
		di := y * dst.Stride
		for x := 0; x < w; x++ {
			fx := (float64(x) - float64(tileW)/2 + 0.5) / float64(tileW)
			tx0 := int(fx)
			if fx < 0 {
				tx0 = -1
			}
			wx := fx - float64(tx0)
			tx1 := tx0 + 1
			tx0c := clampInt(tx0, 0, tilesX-1)
			tx1c := clampInt(tx1, 0, tilesX-1)

			v := g.Pix[si]
			v00 := float64(luts[ty0c*tilesX+tx0c][v])
			v10 := float64(luts[ty0c*tilesX+tx1c][v])
			v01 := float64(luts[ty1c*tilesX+tx0c][v])
			v11 := float64(luts[ty1c*tilesX+tx1c][v])
			top := v00 + (v10-v00)*wx
			bot := v01 + (v11-v01)*wx
			dst.Pix[di] = clampU8(top + (bot-top)*wy)
			si++
			di++
		}
	}
	return dst
}
