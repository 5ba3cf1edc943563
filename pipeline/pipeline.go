// Package pipeline defines the preprocessing module contract and the
// orchestrator that drives an ordered chain of modules over page
// images. A module couples a cheap Detect decision with a conditional
// Correct transformation; the orchestrator owns the working image,
// records one step per module and never reorders or retries.
package pipeline

import (
	"context"
	"image"
)

// Meta carries diagnostic key/value pairs produced by a module. Values
// are scalars, strings or nested maps; they are informational for every
// module except the one that produced them (a module's Correct may read
// its own Detect meta).
type Meta map[string]interface{}

// Detection is the outcome of a module's Detect phase.
type Detection struct {
	// ShouldCorrect requests the Correct phase. Probe-style modules set
	// it when their analysis fired even though they never touch pixels.
	ShouldCorrect bool
	Meta          Meta
}

// Correction is the outcome of a module's Correct phase.
type Correction struct {
	// Image is the (new) working image. Modules must not mutate their
	// input; an unchanged page is returned as-is or as a copy.
	Image image.Image
	Meta  Meta
	// Mutated reports whether pixels actually changed. Probe modules
	// that only emit metadata leave it false so the step record can
	// distinguish "ran" from "changed the page".
	Mutated bool
}

// Module is one preprocessing unit. Detect must be side-effect-free and
// cheap relative to Correct, and repeatable: calling it twice on the
// same image yields the same decision and meta. Correct is invoked only
// after Detect returned ShouldCorrect and receives that Detect's meta;
// it must consume the meta rather than re-derive expensive analysis.
//
// Recoverable conditions (missing external tool, degenerate input) are
// reported as ShouldCorrect=false with a "reason" meta entry. A
// returned error is fatal for the page.
type Module interface {
	Name() string
	Detect(ctx context.Context, img image.Image) (Detection, error)
	Correct(ctx context.Context, img image.Image, detectMeta Meta) (Correction, error)
}
