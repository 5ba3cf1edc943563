package imageio

import (
	"errors"
	"fmt"
)

const (
	// MaxDimension caps width/height to avoid excessive allocations when
	// corrupted files lie about image sizes.
	MaxDimension = 32768
	// MaxImagePixels bounds one image's pixel count (roughly 64MP) which
	// keeps NRGBA buffers under 256 MB.
	MaxImagePixels int64 = 64 * 1024 * 1024
	// MaxTotalPixels bounds a whole document across all of its pages, the
	// budget a multi-page rasterization may spend.
	MaxTotalPixels int64 = 250 * 1024 * 1024
)

// ErrPixelBudget is wrapped by all limit violations so callers can map
// them to a client error rather than a processing fault.
var ErrPixelBudget = errors.New("imageio: pixel budget exceeded")

// ValidateBounds rejects dimensions that are degenerate or beyond the
// per-image limits.
func ValidateBounds(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("imageio: image bounds invalid (%d x %d)", width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: dimension %d x %d over %d", ErrPixelBudget, width, height, MaxDimension)
	}
	if pixels := int64(width) * int64(height); pixels > MaxImagePixels {
		return fmt.Errorf("%w: %d pixels over %d", ErrPixelBudget, pixels, MaxImagePixels)
	}
	return nil
}

// Budget tracks pixel spending across the pages of one document.
type Budget struct {
	remaining int64
}

// NewBudget returns a budget of MaxTotalPixels.
func NewBudget() *Budget {
	return &Budget{remaining: MaxTotalPixels}
}

// Charge debits width x height pixels, failing once the document total
// is exhausted.
func (b *Budget) Charge(width, height int) error {
	if err := ValidateBounds(width, height); err != nil {
		return err
	}
	pixels := int64(width) * int64(height)
	if pixels > b.remaining {
		return fmt.Errorf("%w: document total over %d", ErrPixelBudget, MaxTotalPixels)
	}
	b.remaining -= pixels
	return nil
}
