package imageio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func testImage() *image.NRGBA {
	n := image.NewNRGBA(image.Rect(0, 0, 24, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 24; x++ {
			n.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 12), B: 77, A: 255})
		}
	}
	return n
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src := testImage()
	for _, format := range []string{"png", "tiff", "bmp"} {
		var buf bytes.Buffer
		if err := Encode(&buf, src, format); err != nil {
			t.Fatalf("%s encode: %v", format, err)
		}
		img, got, err := DecodeBytes(buf.Bytes())
		if err != nil {
			t.Fatalf("%s decode: %v", format, err)
		}
		if got != format {
			t.Fatalf("sniffed %q, want %q", got, format)
		}
		if img.Bounds() != src.Bounds() {
			t.Fatalf("%s bounds = %v", format, img.Bounds())
		}
	}
}

func TestJPEGRoundTripIsClose(t *testing.T) {
	src := testImage()
	var buf bytes.Buffer
	if err := Encode(&buf, src, "jpeg"); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}
	img, format, err := DecodeBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("jpeg decode: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("sniffed %q", format)
	}
	r0, g0, b0, _ := src.At(12, 8).RGBA()
	r1, g1, b1, _ := img.At(12, 8).RGBA()
	for _, d := range []int32{
		int32(r0>>8) - int32(r1>>8),
		int32(g0>>8) - int32(g1>>8),
		int32(b0>>8) - int32(b1>>8),
	} {
		if d < -16 || d > 16 {
			t.Fatalf("jpeg drifted too far: %d", d)
		}
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testImage(), "webp"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestEncodeDecodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.png")
	if err := EncodeFile(path, testImage()); err != nil {
		t.Fatalf("encode file: %v", err)
	}
	img, format, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("decode file: %v", err)
	}
	if format != "png" || img.Bounds().Dx() != 24 {
		t.Fatalf("round trip gave %s %v", format, img.Bounds())
	}

	if err := EncodeFile(filepath.Join(dir, "page.xyz"), testImage()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("unknown extension should fail, got %v", err)
	}
}

func TestDecodeFileRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junk.png")
	if err := os.WriteFile(path, []byte("not an image at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := DecodeFile(path); err == nil {
		t.Fatalf("expected decode failure")
	}
}

func TestValidateBounds(t *testing.T) {
	if err := ValidateBounds(1024, 512); err != nil {
		t.Fatalf("expected valid bounds, got %v", err)
	}
	if err := ValidateBounds(0, 10); err == nil {
		t.Fatalf("expected error for zero width")
	}
	if err := ValidateBounds(MaxDimension+1, 4); !errors.Is(err, ErrPixelBudget) {
		t.Fatalf("expected dimension limit error, got %v", err)
	}
	width := 20000
	height := int(MaxImagePixels/int64(width)) + 1
	if height > MaxDimension {
		t.Fatalf("test precondition height %d > dimension limit", height)
	}
	if err := ValidateBounds(width, height); !errors.Is(err, ErrPixelBudget) {
		t.Fatalf("expected pixel limit error, got %v", err)
	}
}

func TestBudgetCharges(t *testing.T) {
	b := NewBudget()
	if err := b.Charge(8000, 8000); err != nil {
		t.Fatalf("first page should fit: %v", err)
	}
	// Keep charging 64MP pages until the 250MP document budget runs out.
	var err error
	for i := 0; i < 10 && err == nil; i++ {
		err = b.Charge(8000, 8000)
	}
	if !errors.Is(err, ErrPixelBudget) {
		t.Fatalf("budget never ran out, last err %v", err)
	}
}

func TestFormatForExtension(t *testing.T) {
	cases := map[string]string{
		".PNG": "png", "jpg": "jpeg", ".jpeg": "jpeg",
		".tif": "tiff", "bmp": "bmp", ".pdf": "", "": "",
	}
	for ext, want := range cases {
		if got := FormatForExtension(ext); got != want {
			t.Fatalf("FormatForExtension(%q) = %q, want %q", ext, got, want)
		}
	}
}

func TestPdftoppmArgs(t *testing.T) {
	args := pdftoppmArgs("in.pdf", "/tmp/out/page", PDFOptions{DPI: 300, FirstPage: 2, LastPage: 5})
	want := []string{"-png", "-r", "300", "-f", "2", "-l", "5", "in.pdf", "/tmp/out/page"}
	if len(args) != len(want) {
		t.Fatalf("args = %v", args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestSortPageFiles(t *testing.T) {
	paths := []string{"d/page-10.png", "d/page-2.png", "d/page-1.png"}
	sortPageFiles(paths)
	if paths[0] != "d/page-1.png" || paths[2] != "d/page-10.png" {
		t.Fatalf("sorted = %v", paths)
	}
}
