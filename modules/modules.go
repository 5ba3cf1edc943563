// Package modules is the preprocessing module library: geometric
// normalization, artifact and illumination cleanup, security-feature
// removal and binarization, all implementing the pipeline.Module
// contract over the raster primitives.
package modules

import (
	"image"

	"github.com/wudi/scankit/raster"
)

// Module names, used by profile assembly and per-request filters.
const (
	NameEdgeMask         = "edge_mask"
	NameOrientation      = "orientation"
	NamePerspective      = "perspective"
	NameLanguage         = "language"
	NameDeskew           = "deskew"
	NameDenoise          = "denoise"
	NameBackgroundClean  = "background_clean"
	NameDeRaster         = "de_raster"
	NameArtifactRemoval  = "artifact_removal"
	NameEnhance          = "enhance"
	NameTextRefine       = "text_refine"
	NameSharpen          = "sharpen"
	NameSmooth           = "smooth"
	NameBinarize         = "binarize"
	NameColorCorrection  = "color_correction"
	NameTextSegmentation = "text_segmentation"
	NameDotsRemoval      = "dots_removal"
	NameGuillocheRemoval = "guilloche_removal"
	NameWatermarkRemoval = "watermark_removal"
	NameHologramRemoval  = "hologram_removal"
	NameMRZEnhancement   = "mrz_enhancement"
)

// grayView converts the working image to grayscale for analysis.
func grayView(img image.Image) *image.Gray {
	return raster.Gray(img)
}

// asPage renders a grayscale result back into the pipeline's 3-channel
// working representation.
func asPage(g *image.Gray) *image.NRGBA {
	return raster.NRGBA(g)
}

func imageArea(img image.Image) int {
	b := img.Bounds()
	return b.Dx() * b.Dy()
}
