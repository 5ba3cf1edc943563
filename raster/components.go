package raster

import "image"

// Component is one connected region of a binary image.
type Component struct {
	ID     int32
	Area   int
	Rect   image.Rectangle
	Cx, Cy float64
}

// Labeling holds the per-pixel labels and the component table produced
// by LabelComponents. Label 0 is background.
type Labeling struct {
	W, H       int
	Labels     []int32
	Components []Component
}

// LabelComponents runs 8-connected component labeling over the non-zero
// pixels of bin using a two-pass union-find sweep.
func LabelComponents(bin *image.Gray) *Labeling {
	b := bin.Bounds()
	w, h := b.Dx(), b.Dy()
	labels := make([]int32, w*h)
	parent := []int32{0} // parent[0] unused sentinel

	find := func(x int32) int32 {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int32) {
		ra, rb := find(a), find(b)
		if ra != rb {
			if ra < rb {
				parent[rb] = ra
			} else {
				parent[ra] = rb
			}
		}
	}

	next := int32(0)
	for y := 0; y < h; y++ {
		si := bin.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			if bin.Pix[si] == 0 {
				si++
				continue
			}
			var neighbors [4]int32
			n := 0
			if x > 0 && labels[y*w+x-1] != 0 {
				neighbors[n] = labels[y*w+x-1]
				n++
			}
			if y > 0 {
				if labels[(y-1)*w+x] != 0 {
					neighbors[n] = labels[(y-1)*w+x]
					n++
				}
				if x > 0 && labels[(y-1)*w+x-1] != 0 {
					neighbors[n] = labels[(y-1)*w+x-1]
					n++
				}
				if x < w-1 && labels[(y-1)*w+x+1] != 0 {
					neighbors[n] = labels[(y-1)*w+x+1]
					n++
				}
			}
			if n == 0 {
				next++
				parent = append(parent, next)
				labels[y*w+x] = next
			} else {
				minL := neighbors[0]
				for i := 1; i < n; i++ {
					if neighbors[i] < minL {
						minL = neighbors[i]
					}
				}
				labels[y*w+x] = minL
				for i := 0; i < n; i++ {
					union(minL, neighbors[i])
				}
			}
			si++
		}
	}

	// Second pass: resolve labels and accumulate stats.
	remap := make(map[int32]int32)
	var comps []Component
	type acc struct {
		sumX, sumY int64
	}
	var sums []acc
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			l := labels[y*w+x]
			if l == 0 {
				continue
			}
			root := find(l)
			id, ok := remap[root]
			if !ok {
				id = int32(len(comps) + 1)
				remap[root] = id
				comps = append(comps, Component{
					ID:   id,
					Rect: image.Rect(x, y, x+1, y+1),
				})
				sums = append(sums, acc{})
			}
			labels[y*w+x] = id
			c := &comps[id-1]
			c.Area++
			if x < c.Rect.Min.X {
				c.Rect.Min.X = x
			}
			if y < c.Rect.Min.Y {
				c.Rect.Min.Y = y
			}
			if x+1 > c.Rect.Max.X {
				c.Rect.Max.X = x + 1
			}
			if y+1 > c.Rect.Max.Y {
				c.Rect.Max.Y = y + 1
			}
			sums[id-1].sumX += int64(x)
			sums[id-1].sumY += int64(y)
		}
	}
	for i := range comps {
		comps[i].Cx = float64(sums[i].sumX) / float64(comps[i].Area)
		comps[i].Cy = float64(sums[i].sumY) / float64(comps[i].Area)
	}
	return &Labeling{W: w, H: h, Labels: labels, Components: comps}
}

// Largest returns the component with the biggest area, or false when the
// image had no foreground.
func (l *Labeling) Largest() (Component, bool) {
	if len(l.Components) == 0 {
		return Component{}, false
	}
	best := l.Components[0]
	for _, c := range l.Components[1:] {
		if c.Area > best.Area {
			best = c
		}
	}
	return best, true
}

// Mask renders the pixels of one component as a 255-valued binary image.
func (l *Labeling) Mask(id int32) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, l.W, l.H))
	for i, lab := range l.Labels {
		if lab == id {
			dst.Pix[(i/l.W)*dst.Stride+i%l.W] = 255
		}
	}
	return dst
}

// MaskWhere renders every component accepted by keep into one mask.
func (l *Labeling) MaskWhere(keep func(Component) bool) *image.Gray {
	take := make([]bool, len(l.Components)+1)
	for _, c := range l.Components {
		if keep(c) {
			take[c.ID] = true
		}
	}
	dst := image.NewGray(image.Rect(0, 0, l.W, l.H))
	for i, lab := range l.Labels {
		if lab != 0 && take[lab] {
			dst.Pix[(i/l.W)*dst.Stride+i%l.W] = 255
		}
	}
	return dst
}

// FilterArea keeps only components with area >= minArea, returning the
// filtered binary image and the number of kept and removed components.
func FilterArea(bin *image.Gray, minArea int) (filtered *image.Gray, kept, removed int) {
	l := LabelComponents(bin)
	for _, c := range l.Components {
		if c.Area >= minArea {
			kept++
		} else {
			removed++
		}
	}
	filtered = l.MaskWhere(func(c Component) bool { return c.Area >= minArea })
	return filtered, kept, removed
}
