// Package profile assembles ordered module lists for the three
// processing profiles and wraps them in ready-to-run processors. The
// builders are pure: configuration in, immutable module slice out, no
// side effects and no file access.
package profile

import (
	"fmt"

	"github.com/wudi/scankit/config"
	"github.com/wudi/scankit/modules"
	"github.com/wudi/scankit/pipeline"
	"github.com/wudi/scankit/textprobe"
)

// Name identifies a processing profile.
type Name string

const (
	// NameStandard is the general document chain.
	NameStandard Name = "standard"
	// NameSecurity fixes scan artifacts only, preserving printed
	// security features.
	NameSecurity Name = "security"
	// NameOCR strips security features for maximum recognition
	// accuracy.
	NameOCR Name = "ocr"
)

// ParseName validates a profile name from a request or flag.
func ParseName(s string) (Name, error) {
	switch Name(s) {
	case NameStandard, NameSecurity, NameOCR:
		return Name(s), nil
	}
	return "", fmt.Errorf("profile: unknown profile %q", s)
}

// Standard builds the general-purpose chain: border masking, geometry,
// optional cleanup, text refinement and binarization.
func Standard(cfg config.Processing, probe textprobe.Probe) []pipeline.Module {
	mods := []pipeline.Module{
		modules.NewEdgeMask(),
		modules.NewOrientation(probe),
		modules.NewPerspective(),
	}
	if cfg.DeskewEnabled {
		mods = append(mods, modules.NewDeskew())
	}
	if cfg.NoiseReduction {
		mods = append(mods, modules.NewDenoise())
	}
	if cfg.ContrastEnhancement {
		mods = append(mods, modules.NewEnhance())
	}
	mods = append(mods, modules.NewTextRefine(modules.NewSauvolaBinarizer()))
	if cfg.AllowBinarization {
		mods = append(mods, modules.NewBinarize(modules.NewSauvolaBinarizer()))
	}
	return mods
}

// SecurityPreserving builds the conservative chain: orientation,
// optionally gentle deskew and denoise. Never binarization, never
// contrast boosting.
func SecurityPreserving(cfg config.Security, probe textprobe.Probe) []pipeline.Module {
	mods := []pipeline.Module{
		modules.NewOrientation(probe),
	}
	if cfg.DeskewEnabled {
		mods = append(mods, modules.NewDeskew())
	}
	if cfg.NoiseReduction && cfg.MaxDenoising > 0 {
		mods = append(mods, modules.NewDenoise())
	}
	return mods
}

// OCROptimized builds the aggressive chain: security-feature removal
// first, in fixed order, then the full standard treatment.
func OCROptimized(cfg config.OCR, probe textprobe.Probe) []pipeline.Module {
	var mods []pipeline.Module
	if cfg.RemoveGuilloche {
		mods = append(mods, modules.NewGuillocheRemoval())
	}
	if cfg.RemoveWatermarks {
		mods = append(mods, modules.NewWatermarkRemoval())
	}
	if cfg.FlattenHolograms {
		mods = append(mods, modules.NewHologramRemoval())
	}
	mods = append(mods,
		modules.NewEdgeMask(),
		modules.NewOrientation(probe),
		modules.NewPerspective(),
		modules.NewDeskew(),
		modules.NewDenoise(),
		modules.NewEnhance(),
	)
	if cfg.MRZPriority {
		mods = append(mods, modules.NewMRZEnhancement())
	}
	mods = append(mods, modules.NewTextRefine(modules.NewSauvolaBinarizer()))
	if cfg.AllowBinarization {
		mods = append(mods, modules.NewBinarize(modules.NewSauvolaBinarizer()))
	}
	return mods
}

// Build assembles the named profile from the configuration file.
func Build(name Name, cfg config.File, probe textprobe.Probe) ([]pipeline.Module, error) {
	switch name {
	case NameStandard:
		return Standard(cfg.Pipeline, probe), nil
	case NameSecurity:
		return SecurityPreserving(cfg.Security, probe), nil
	case NameOCR:
		return OCROptimized(cfg.OCR, probe), nil
	}
	return nil, fmt.Errorf("profile: unknown profile %q", name)
}

// Filter keeps only the modules whose names appear in keep, preserving
// pipeline order. An empty keep list means no filtering.
func Filter(mods []pipeline.Module, keep []string) []pipeline.Module {
	if len(keep) == 0 {
		return mods
	}
	wanted := make(map[string]bool, len(keep))
	for _, name := range keep {
		wanted[name] = true
	}
	out := make([]pipeline.Module, 0, len(mods))
	for _, m := range mods {
		if wanted[m.Name()] {
			out = append(out, m)
		}
	}
	return out
}
