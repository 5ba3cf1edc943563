// Package imageio loads and saves page images. It registers the four
// raster formats the pipeline accepts (PNG, JPEG, TIFF, BMP), validates
// decoded dimensions against resource limits before pixels are touched,
// and shells out to pdftoppm for PDF input.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrUnsupportedFormat is returned for file types outside the accepted
// set.
var ErrUnsupportedFormat = errors.New("imageio: unsupported image format")

// DecodeBytes decodes an image held in memory. The header is inspected
// first so oversized images are rejected before their pixels are
// allocated.
func DecodeBytes(data []byte) (image.Image, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("imageio: decode header: %w", err)
	}
	if err := ValidateBounds(cfg.Width, cfg.Height); err != nil {
		return nil, format, err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, format, fmt.Errorf("imageio: decode: %w", err)
	}
	return img, format, nil
}

// DecodeFile decodes the image at path and validates its bounds.
func DecodeFile(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("imageio: open: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, "", fmt.Errorf("imageio: decode header %s: %w", filepath.Base(path), err)
	}
	if err := ValidateBounds(cfg.Width, cfg.Height); err != nil {
		return nil, "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", fmt.Errorf("imageio: rewind: %w", err)
	}
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, format, fmt.Errorf("imageio: decode %s: %w", filepath.Base(path), err)
	}
	return img, format, nil
}

// Encode writes img to w in the named format ("png", "jpeg", "tiff" or
// "bmp"). JPEG quality is fixed at 95, appropriate for an OCR
// intermediate where compression artifacts cost accuracy.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "png":
		return png.Encode(w, img)
	case "jpeg", "jpg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case "tiff", "tif":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case "bmp":
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// EncodeFile writes img to path, picking the format from the extension.
func EncodeFile(path string, img image.Image) error {
	format := FormatForExtension(filepath.Ext(path))
	if format == "" {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageio: create: %w", err)
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FormatForExtension maps a file extension (with or without the dot)
// onto a format name, or "" when unsupported.
func FormatForExtension(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		return "png"
	case "jpg", "jpeg":
		return "jpeg"
	case "tif", "tiff":
		return "tiff"
	case "bmp":
		return "bmp"
	}
	return ""
}
