package imageio

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/wudi/scankit/observability"
)

// PDFOptions controls pdftoppm rasterization.
type PDFOptions struct {
	// DPI is the render resolution; 0 means 300, the usual OCR density.
	DPI int
	// FirstPage/LastPage bound the page range when non-zero (1-based,
	// inclusive).
	FirstPage int
	LastPage  int
	Logger    observability.Logger
}

func (o PDFOptions) withDefaults() PDFOptions {
	if o.DPI <= 0 {
		o.DPI = 300
	}
	if o.Logger == nil {
		o.Logger = observability.NopLogger{}
	}
	return o
}

// RasterizePDF renders the pages of the PDF at src into destDir as PNG
// files via pdftoppm and returns their paths in page order. The caller
// owns destDir and its cleanup. Cancellation of ctx kills the
// subprocess.
func RasterizePDF(ctx context.Context, src, destDir string, opts PDFOptions) ([]string, error) {
	opts = opts.withDefaults()
	prefix := filepath.Join(destDir, "page")

	args := pdftoppmArgs(src, prefix, opts)
	opts.Logger.Info("rasterizing pdf",
		observability.String("src", filepath.Base(src)),
		observability.Int("dpi", opts.DPI))

	out, err := exec.CommandContext(ctx, "pdftoppm", args...).CombinedOutput()
	if err != nil {
		opts.Logger.Error("pdftoppm failed",
			observability.Error("err", err),
			observability.String("output", strings.TrimSpace(string(out))))
		return nil, fmt.Errorf("imageio: pdftoppm: %w", err)
	}

	pages, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("imageio: glob pages: %w", err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("imageio: pdftoppm produced no pages for %s", filepath.Base(src))
	}
	sortPageFiles(pages)

	opts.Logger.Info("pdf rasterized",
		observability.String("src", filepath.Base(src)),
		observability.Int("pages", len(pages)))
	return pages, nil
}

func pdftoppmArgs(src, outPrefix string, o PDFOptions) []string {
	args := []string{"-png", "-r", strconv.Itoa(o.DPI)}
	if o.FirstPage > 0 {
		args = append(args, "-f", strconv.Itoa(o.FirstPage))
	}
	if o.LastPage > 0 {
		args = append(args, "-l", strconv.Itoa(o.LastPage))
	}
	return append(args, src, outPrefix)
}

// sortPageFiles orders pdftoppm output numerically: the tool pads page
// numbers to a fixed width per document, but documents of different
// sizes produce different widths, so a plain lexical sort is not enough
// when ranges are merged.
func sortPageFiles(paths []string) {
	sort.Slice(paths, func(i, j int) bool {
		ni, oki := pageNumber(paths[i])
		nj, okj := pageNumber(paths[j])
		if oki && okj && ni != nj {
			return ni < nj
		}
		return paths[i] < paths[j]
	})
}

func pageNumber(path string) (int, bool) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	idx := strings.LastIndexByte(base, '-')
	if idx < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(base[idx+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}
