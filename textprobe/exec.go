package textprobe

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wudi/scankit/imageio"
)

// ExecProbe runs the tesseract binary for both capabilities. The
// leptonica loader wants files, so images take a round trip through a
// temp file per call.
type ExecProbe struct {
	binary    string
	languages []string
	psm       int
}

// ExecOption configures an ExecProbe.
type ExecOption func(*ExecProbe)

// WithLanguages sets the recognition language hints (e.g. "eng",
// "deu"). Tesseract joins multiple hints with "+".
func WithLanguages(langs ...string) ExecOption {
	return func(p *ExecProbe) { p.languages = append([]string(nil), langs...) }
}

// WithPageSegMode overrides the page segmentation mode used for text
// sampling. The default 3 is full automatic layout analysis.
func WithPageSegMode(psm int) ExecOption {
	return func(p *ExecProbe) { p.psm = psm }
}

// NewExec builds a probe around the tesseract binary, failing with
// ErrUnavailable when it is not on PATH.
func NewExec(opts ...ExecOption) (*ExecProbe, error) {
	bin, err := exec.LookPath("tesseract")
	if err != nil {
		return nil, fmt.Errorf("%w: tesseract binary not found", ErrUnavailable)
	}
	p := &ExecProbe{binary: bin, psm: 3}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *ExecProbe) Name() string { return "tesseract-exec" }

// SampleText recognizes the page and returns the trimmed plain text.
func (p *ExecProbe) SampleText(ctx context.Context, img image.Image) (string, error) {
	out, err := p.run(ctx, img, p.sampleArgs())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// EstimateRotation runs orientation and script detection (psm 0) and
// parses the OSD report.
func (p *ExecProbe) EstimateRotation(ctx context.Context, img image.Image) (Rotation, error) {
	out, err := p.run(ctx, img, []string{"--psm", "0"})
	if err != nil {
		return Rotation{}, err
	}
	rot, ok := parseOSD(out)
	if !ok {
		return Rotation{}, fmt.Errorf("textprobe: osd output unparseable")
	}
	return rot, nil
}

func (p *ExecProbe) sampleArgs() []string {
	args := []string{"--psm", strconv.Itoa(p.psm)}
	if len(p.languages) > 0 {
		args = append(args, "-l", strings.Join(p.languages, "+"))
	}
	return args
}

func (p *ExecProbe) run(ctx context.Context, img image.Image, extra []string) (string, error) {
	dir, err := os.MkdirTemp("", "textprobe")
	if err != nil {
		return "", fmt.Errorf("textprobe: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "sample.png")
	if err := imageio.EncodeFile(path, img); err != nil {
		return "", fmt.Errorf("textprobe: stage image: %w", err)
	}

	args := append([]string{path, "stdout"}, extra...)
	out, err := exec.CommandContext(ctx, p.binary, args...).CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("textprobe: tesseract: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// parseOSD extracts the rotation estimate from a psm-0 report, which
// looks like
//
//	Page number: 0
//	Orientation in degrees: 90
//	Rotate: 270
//	Orientation confidence: 15.63
//	Script: Latin
//	Script confidence: 4.18
//
// Rotate is the clockwise correction tesseract recommends.
func parseOSD(out string) (Rotation, bool) {
	var rot Rotation
	seen := false
	for _, line := range strings.Split(out, "\n") {
		key, val, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		val = strings.TrimSpace(val)
		switch strings.TrimSpace(key) {
		case "Rotate":
			if n, err := strconv.Atoi(val); err == nil {
				rot.Degrees = n
				seen = true
			}
		case "Orientation confidence":
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				rot.Confidence = f
			}
		case "Script":
			rot.Script = val
		}
	}
	return rot, seen
}
