package raster

import (
	"image"
	"testing"
)

func countNonZero(g *image.Gray) int {
	n := 0
	for _, p := range g.Pix {
		if p != 0 {
			n++
		}
	}
	return n
}

func TestOpenRemovesSpeck(t *testing.T) {
	bin := image.NewGray(image.Rect(0, 0, 60, 60))
	fillRectGray(bin, image.Rect(10, 10, 40, 40), 255) // solid block
	bin.Pix[50*bin.Stride+50] = 255                    // isolated speck

	opened := Open(bin, RectKernel(3, 3), 1)
	if opened.Pix[50*opened.Stride+50] != 0 {
		t.Fatalf("opening should remove the isolated speck")
	}
	if opened.Pix[25*opened.Stride+25] != 255 {
		t.Fatalf("opening should keep the block interior")
	}
}

func TestCloseFillsHole(t *testing.T) {
	bin := image.NewGray(image.Rect(0, 0, 60, 60))
	fillRectGray(bin, image.Rect(10, 10, 50, 50), 255)
	bin.Pix[30*bin.Stride+30] = 0 // pinhole

	closed := Close(bin, RectKernel(3, 3), 1)
	if closed.Pix[30*closed.Stride+30] != 255 {
		t.Fatalf("closing should fill the pinhole")
	}
}

func TestErodeDilateArea(t *testing.T) {
	bin := image.NewGray(image.Rect(0, 0, 40, 40))
	fillRectGray(bin, image.Rect(10, 10, 30, 30), 255) // 20x20

	eroded := Erode(bin, RectKernel(3, 3), 1)
	if got := countNonZero(eroded); got != 18*18 {
		t.Fatalf("erosion area = %d, want %d", got, 18*18)
	}

	dilated := Dilate(bin, RectKernel(3, 3), 1)
	if got := countNonZero(dilated); got != 22*22 {
		t.Fatalf("dilation area = %d, want %d", got, 22*22)
	}
}

func TestEllipseKernelShape(t *testing.T) {
	k := EllipseKernel(7, 7)
	if !k.At(3, 3) {
		t.Fatalf("ellipse kernel must include its center")
	}
	if k.At(0, 0) {
		t.Fatalf("ellipse kernel should exclude the corner")
	}
}
