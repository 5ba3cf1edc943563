package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/wudi/scankit/imageio"
)

// loadPages reads an image or PDF from disk into page images, charging
// the document pixel budget.
func (a *app) loadPages(ctx context.Context, path string) ([]image.Image, error) {
	budget := imageio.NewBudget()

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		dir, err := os.MkdirTemp("", "scankit-pdf-*")
		if err != nil {
			return nil, fmt.Errorf("tempdir: %w", err)
		}
		defer os.RemoveAll(dir)

		paths, err := imageio.RasterizePDF(ctx, path, dir, imageio.PDFOptions{
			DPI:    a.cfg.Pipeline.OutputDPI,
			Logger: a.log,
		})
		if err != nil {
			return nil, err
		}
		pages := make([]image.Image, 0, len(paths))
		for _, p := range paths {
			img, _, err := imageio.DecodeFile(p)
			if err != nil {
				return nil, err
			}
			b := img.Bounds()
			if err := budget.Charge(b.Dx(), b.Dy()); err != nil {
				return nil, err
			}
			pages = append(pages, img)
		}
		return pages, nil
	}

	img, _, err := imageio.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if err := budget.Charge(b.Dx(), b.Dy()); err != nil {
		return nil, err
	}
	return []image.Image{img}, nil
}

// outputPath derives the per-page output file name: page suffix only
// for multi-page documents.
func outputPath(base string, page, total int) string {
	if total <= 1 {
		return base
	}
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s_p%03d%s", strings.TrimSuffix(base, ext), page+1, ext)
}
