// Package textprobe defines the recognition probe the pipeline consults
// for text-dependent decisions: sampling the legible text of a page and
// estimating its orientation. The interfaces stay small so probes can be
// backed by a local binary, a native library, or nothing at all, and so
// each capability can degrade independently when its backend is missing.
package textprobe

import (
	"context"
	"errors"
	"image"
)

// ErrUnavailable signals that the probe's backend cannot serve the
// request (binary not installed, binding not built, capability not
// exposed). Callers treat it as a degradation, not a failure.
var ErrUnavailable = errors.New("textprobe: probe unavailable")

// Rotation is an orientation estimate for a page image.
type Rotation struct {
	// Degrees is the Tesseract OSD orientation: how far the page text
	// is rotated clockwise from upright, one of 0, 90, 180 or 270.
	// Undoing it means turning the page counter-clockwise by the same
	// amount.
	Degrees int
	// Confidence is the OSD orientation confidence, backend-scaled.
	Confidence float64
	// Script names the detected writing system when known (e.g. Latin).
	Script string
}

// Probe extracts a text sample and estimates page rotation. The two
// capabilities degrade independently: a probe may serve one and return
// ErrUnavailable for the other.
type Probe interface {
	Name() string
	SampleText(ctx context.Context, img image.Image) (string, error)
	EstimateRotation(ctx context.Context, img image.Image) (Rotation, error)
}

var defaultProbe Probe = Noop{}

// Default returns the process-wide probe. It is Noop until a backend
// package (textprobe/gosseract, or NewExec wired by the caller)
// installs one.
func Default() Probe {
	return defaultProbe
}

// SetDefault installs the process-wide probe.
func SetDefault(p Probe) {
	defaultProbe = p
}

// Noop is the null probe: always unavailable.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) SampleText(context.Context, image.Image) (string, error) {
	return "", ErrUnavailable
}

func (Noop) EstimateRotation(context.Context, image.Image) (Rotation, error) {
	return Rotation{}, ErrUnavailable
}

// Fixed is a canned probe for tests and dry runs.
type Fixed struct {
	Text        string
	TextErr     error
	Rot         Rotation
	RotErr      error
	ProbeName   string
	SampleCalls int
}

func (f *Fixed) Name() string {
	if f.ProbeName == "" {
		return "fixed"
	}
	return f.ProbeName
}

func (f *Fixed) SampleText(context.Context, image.Image) (string, error) {
	f.SampleCalls++
	return f.Text, f.TextErr
}

func (f *Fixed) EstimateRotation(context.Context, image.Image) (Rotation, error) {
	return f.Rot, f.RotErr
}
