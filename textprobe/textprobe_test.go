package textprobe

import (
	"context"
	"errors"
	"image"
	"testing"
)

func TestNoopIsUnavailableForBothCapabilities(t *testing.T) {
	var p Probe = Noop{}
	img := image.NewGray(image.Rect(0, 0, 8, 8))

	if _, err := p.SampleText(context.Background(), img); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("SampleText err = %v, want ErrUnavailable", err)
	}
	if _, err := p.EstimateRotation(context.Background(), img); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("EstimateRotation err = %v, want ErrUnavailable", err)
	}
}

func TestFixedReturnsCannedValues(t *testing.T) {
	p := &Fixed{Text: "hello", Rot: Rotation{Degrees: 180, Confidence: 7}}
	img := image.NewGray(image.Rect(0, 0, 8, 8))

	text, err := p.SampleText(context.Background(), img)
	if err != nil || text != "hello" {
		t.Fatalf("SampleText = %q, %v", text, err)
	}
	if p.SampleCalls != 1 {
		t.Fatalf("SampleCalls = %d", p.SampleCalls)
	}
	rot, err := p.EstimateRotation(context.Background(), img)
	if err != nil || rot.Degrees != 180 {
		t.Fatalf("EstimateRotation = %+v, %v", rot, err)
	}
}

func TestDefaultRoundTrip(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	p := &Fixed{ProbeName: "canned"}
	SetDefault(p)
	if Default().Name() != "canned" {
		t.Fatalf("Default().Name() = %q", Default().Name())
	}
}
