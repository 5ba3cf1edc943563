package profile

import (
	"context"
	"image"
	"testing"

	"github.com/wudi/scankit/config"
	"github.com/wudi/scankit/modules"
	"github.com/wudi/scankit/textprobe"
)

func moduleNames(t *testing.T, cfgNames []string, got []string) {
	t.Helper()
	if len(got) != len(cfgNames) {
		t.Fatalf("module list %v, want %v", got, cfgNames)
	}
	for i := range got {
		if got[i] != cfgNames[i] {
			t.Fatalf("module list %v, want %v", got, cfgNames)
		}
	}
}

func TestStandardProfileOrder(t *testing.T) {
	cfg := config.DefaultProcessing()
	mods := Standard(cfg, textprobe.Noop{})

	var got []string
	for _, m := range mods {
		got = append(got, m.Name())
	}
	want := []string{
		modules.NameEdgeMask, modules.NameOrientation, modules.NamePerspective,
		modules.NameDeskew, modules.NameDenoise, modules.NameEnhance,
		modules.NameTextRefine, modules.NameBinarize,
	}
	moduleNames(t, want, got)
}

func TestStandardProfileTogglesDropStages(t *testing.T) {
	cfg := config.DefaultProcessing()
	cfg.DeskewEnabled = false
	cfg.NoiseReduction = false
	cfg.ContrastEnhancement = false
	cfg.AllowBinarization = false

	mods := Standard(cfg, textprobe.Noop{})
	var got []string
	for _, m := range mods {
		got = append(got, m.Name())
	}
	want := []string{
		modules.NameEdgeMask, modules.NameOrientation, modules.NamePerspective,
		modules.NameTextRefine,
	}
	moduleNames(t, want, got)
}

func TestSecurityProfileNeverBinarizes(t *testing.T) {
	mods := SecurityPreserving(config.DefaultSecurity(), textprobe.Noop{})
	for _, m := range mods {
		switch m.Name() {
		case modules.NameBinarize, modules.NameEnhance, modules.NameTextRefine:
			t.Fatalf("security profile must not include %s", m.Name())
		}
	}
}

func TestOCRProfileRemovalOrderAndMRZPlacement(t *testing.T) {
	mods := OCROptimized(config.DefaultOCR(), textprobe.Noop{})
	var got []string
	for _, m := range mods {
		got = append(got, m.Name())
	}
	want := []string{
		modules.NameGuillocheRemoval, modules.NameWatermarkRemoval,
		modules.NameHologramRemoval,
		modules.NameEdgeMask, modules.NameOrientation, modules.NamePerspective,
		modules.NameDeskew, modules.NameDenoise, modules.NameEnhance,
		modules.NameMRZEnhancement, modules.NameTextRefine, modules.NameBinarize,
	}
	moduleNames(t, want, got)
	if got[len(got)-1] != modules.NameBinarize {
		t.Fatalf("binarize must run last, got %v", got)
	}
}

func TestFilterKeepsOrder(t *testing.T) {
	mods := Standard(config.DefaultProcessing(), textprobe.Noop{})
	kept := Filter(mods, []string{modules.NamePerspective, modules.NameEdgeMask})

	if len(kept) != 2 {
		t.Fatalf("kept %d modules, want 2", len(kept))
	}
	if kept[0].Name() != modules.NameEdgeMask || kept[1].Name() != modules.NamePerspective {
		t.Fatalf("filter reordered: %s, %s", kept[0].Name(), kept[1].Name())
	}
}

func TestFilterEmptyKeepsAll(t *testing.T) {
	mods := Standard(config.DefaultProcessing(), textprobe.Noop{})
	if got := Filter(mods, nil); len(got) != len(mods) {
		t.Fatalf("empty filter dropped modules: %d != %d", len(got), len(mods))
	}
}

func TestParseNameRejectsUnknown(t *testing.T) {
	if _, err := ParseName("turbo"); err == nil {
		t.Fatalf("expected error for unknown profile")
	}
	if name, err := ParseName("ocr"); err != nil || name != NameOCR {
		t.Fatalf("ParseName(ocr) = %v, %v", name, err)
	}
}

func TestSecurityProcessorBypassesStraightPages(t *testing.T) {
	page := image.NewGray(image.Rect(0, 0, 200, 200))
	for i := range page.Pix {
		page.Pix[i] = 200
	}

	proc := NewSecurityProcessor(
		SecurityPreserving(config.DefaultSecurity(), textprobe.Noop{}), nil)
	report, err := proc.ProcessPage(context.Background(), page)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !report.Bypassed {
		t.Fatalf("straight page should bypass the pipeline")
	}
	if report.Page.Final != image.Image(page) {
		t.Fatalf("bypass must preserve the original image")
	}
	if len(report.Page.Steps) != 0 {
		t.Fatalf("bypass should record no steps, got %d", len(report.Page.Steps))
	}
}
