package raster

import (
	"image/color"
	"math"
	"testing"
)

func TestLabExtremes(t *testing.T) {
	L, a, b := RGBToLab(255, 255, 255)
	if L < 250 {
		t.Fatalf("white L = %v, want near 255", L)
	}
	if math.Abs(a-128) > 3 || math.Abs(b-128) > 3 {
		t.Fatalf("white chroma = (%v,%v), want near neutral 128", a, b)
	}

	L, _, _ = RGBToLab(0, 0, 0)
	if L > 5 {
		t.Fatalf("black L = %v, want near 0", L)
	}

	_, a, _ = RGBToLab(255, 0, 0)
	if a < 150 {
		t.Fatalf("red a = %v, want well above neutral", a)
	}
}

func TestLabRoundTrip(t *testing.T) {
	cases := [][3]uint8{
		{200, 150, 100},
		{30, 60, 90},
		{128, 128, 128},
		{255, 255, 255},
		{10, 200, 40},
	}
	for _, c := range cases {
		L, a, b := RGBToLab(c[0], c[1], c[2])
		r, g, bl := LabToRGB(L, a, b)
		if abs(int(r)-int(c[0])) > 3 || abs(int(g)-int(c[1])) > 3 || abs(int(bl)-int(c[2])) > 3 {
			t.Fatalf("round trip %v -> (%d,%d,%d)", c, r, g, bl)
		}
	}
}

func TestRGBToHSV(t *testing.T) {
	h, s, v := RGBToHSV(255, 0, 0)
	if h != 0 || s != 255 || v != 255 {
		t.Fatalf("red hsv = (%v,%v,%v)", h, s, v)
	}
	_, s, v = RGBToHSV(255, 255, 255)
	if s != 0 || v != 255 {
		t.Fatalf("white hsv sat=%v val=%v", s, v)
	}
	h, _, _ = RGBToHSV(0, 255, 0)
	if math.Abs(h-120) > 1 {
		t.Fatalf("green hue = %v, want 120", h)
	}
}

func TestHSVMaskSelectsBrightDesaturated(t *testing.T) {
	n := nrgbaFilled(20, 20, color.NRGBA{R: 200, G: 30, B: 30, A: 255})
	for y := 5; y < 10; y++ {
		for x := 5; x < 10; x++ {
			n.SetNRGBA(x, y, color.NRGBA{R: 230, G: 230, B: 230, A: 255})
		}
	}

	mask := HSVMask(n, func(sat, val float64) bool {
		return sat < 50 && val > 200
	})
	if mask.Pix[7*mask.Stride+7] != 255 {
		t.Fatalf("bright patch should be masked")
	}
	if mask.Pix[0] != 0 {
		t.Fatalf("saturated background should not be masked")
	}
}

func TestGrayWorldBalanceEqualizesCast(t *testing.T) {
	n := nrgbaFilled(32, 32, color.NRGBA{R: 200, G: 150, B: 100, A: 255})
	out := GrayWorldBalance(n)

	r, g, b := ChannelMeans(out)
	if math.Abs(r-g) > 3 || math.Abs(g-b) > 3 {
		t.Fatalf("channel means still apart: %v %v %v", r, g, b)
	}
}

func TestWithLightnessBrightens(t *testing.T) {
	n := nrgbaFilled(16, 16, color.NRGBA{R: 90, G: 90, B: 90, A: 255})
	l := Lightness(n)
	for i := range l.Pix {
		v := int(l.Pix[i]) + 40
		if v > 255 {
			v = 255
		}
		l.Pix[i] = uint8(v)
	}

	out := WithLightness(n, l)
	got := out.NRGBAAt(8, 8)
	if got.R <= 90 {
		t.Fatalf("lightness boost did not brighten: %+v", got)
	}
	if abs(int(got.R)-int(got.G)) > 4 || abs(int(got.G)-int(got.B)) > 4 {
		t.Fatalf("gray pixel drifted off neutral: %+v", got)
	}
}
