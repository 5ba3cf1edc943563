//go:build cgo

// Package gosseract backs the text probe with the native tesseract
// binding. Importing it installs the probe as the process default.
package gosseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/wudi/scankit/textprobe"
)

func init() {
	textprobe.SetDefault(New())
}

// Probe implements textprobe.Probe on the gosseract client. Rotation
// estimation is not exposed by the binding, so that capability reports
// unavailable and callers fall back to their degraded path.
type Probe struct {
	clientFactory func() *gosseract.Client
	languages     []string
}

// Option configures the probe.
type Option func(*Probe)

// WithLanguages sets the recognition language hints.
func WithLanguages(langs ...string) Option {
	return func(p *Probe) { p.languages = append([]string(nil), langs...) }
}

// New constructs a gosseract-backed probe.
func New(opts ...Option) *Probe {
	p := &Probe{clientFactory: gosseract.NewClient}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Probe) Name() string { return "gosseract" }

// SampleText recognizes the page with a fresh client per call; the
// client is not safe for concurrent reuse.
func (p *Probe) SampleText(ctx context.Context, img image.Image) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("gosseract: encode sample: %w", err)
	}

	c := p.clientFactory()
	defer c.Close()
	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("gosseract: set image: %w", err)
	}
	if len(p.languages) > 0 {
		if err := c.SetLanguage(p.languages...); err != nil {
			return "", fmt.Errorf("gosseract: set languages: %w", err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("gosseract: recognize: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// EstimateRotation reports unavailable; the binding does not expose the
// OSD API.
func (p *Probe) EstimateRotation(context.Context, image.Image) (textprobe.Rotation, error) {
	return textprobe.Rotation{}, fmt.Errorf("%w: osd not exposed by binding", textprobe.ErrUnavailable)
}
